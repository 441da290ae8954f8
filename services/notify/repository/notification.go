package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// NotifyRepo implements the notification repository interface
type NotifyRepo struct {
	db *sqlx.DB
}

// NewNotifyRepository creates a new notification repository
func NewNotifyRepository(db *sqlx.DB) *NotifyRepo {
	return &NotifyRepo{db: db}
}

// GetNotification retrieves a notification by ID
func (r *NotifyRepo) GetNotification(ctx context.Context, notificationID string) (*models.Notification, error) {
	query := `
		SELECT id, emergency_id, recipient_id, channel, priority, status, meta, created_at
		FROM notifications
		WHERE id = $1
	`
	var notification models.Notification
	err := r.db.GetContext(ctx, &notification, query, notificationID)
	if err != nil {
		return nil, err // Return error to caller to check if it's sql.ErrNoRows
	}
	return &notification, nil
}

// GetUser retrieves a recipient's contact profile
func (r *NotifyRepo) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, name, phone, email, fcm_token, role, verified, available,
			latitude, longitude, geohash, location_class, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RecordAttempt appends one audit record. Attempts are append-only.
func (r *NotifyRepo) RecordAttempt(ctx context.Context, attempt *models.NotificationAttempt) error {
	query := `
		INSERT INTO notification_attempts (
			id, notification_id, channel, success, response, error_message, created_at
		) VALUES (
			:id, :notification_id, :channel, :success, :response, :error_message, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, attempt)
	if err != nil {
		return fmt.Errorf("failed to insert notification attempt: %w", err)
	}
	return nil
}

// UpdateNotificationStatus finalizes a notification's delivery status
func (r *NotifyRepo) UpdateNotificationStatus(ctx context.Context, notificationID string, status models.NotificationStatus) error {
	query := `UPDATE notifications SET status = $2 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, notificationID, status)
	if err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	return nil
}
