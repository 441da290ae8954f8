package repository

import (
	"context"
	"fmt"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// CreateNotification inserts one delivery intent record
func (r *EmergencyRepo) CreateNotification(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (
			id, emergency_id, recipient_id, channel, priority, status, meta, created_at
		) VALUES (
			:id, :emergency_id, :recipient_id, :channel, :priority, :status, :meta, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, notification)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}
