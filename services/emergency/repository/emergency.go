package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rapidaid/rapidaid/internal/pkg/database"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// EmergencyRepo implements the emergency repository interface
type EmergencyRepo struct {
	cfg         *models.Config
	db          *sqlx.DB
	redisClient *database.RedisClient
}

// NewEmergencyRepository creates a new emergency repository
func NewEmergencyRepository(
	cfg *models.Config,
	db *sqlx.DB,
	redisClient *database.RedisClient,
) *EmergencyRepo {
	return &EmergencyRepo{
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
	}
}

// CreateEmergency inserts a new emergency record
func (r *EmergencyRepo) CreateEmergency(ctx context.Context, emergency *models.Emergency) error {
	query := `
		INSERT INTO emergencies (
			id, user_id, description, category, latitude, longitude,
			address, status, created_at
		) VALUES (
			:id, :user_id, :description, :category, :latitude, :longitude,
			:address, :status, :created_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, emergency)
	if err != nil {
		return fmt.Errorf("failed to insert emergency: %w", err)
	}
	return nil
}

// GetEmergency retrieves an emergency by ID
func (r *EmergencyRepo) GetEmergency(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	query := `
		SELECT id, user_id, description, category, latitude, longitude,
			address, status, created_at, accepted_at
		FROM emergencies
		WHERE id = $1
	`
	var emergency models.Emergency
	err := r.db.GetContext(ctx, &emergency, query, emergencyID)
	if err != nil {
		return nil, err // Return error to caller to check if it's sql.ErrNoRows
	}
	return &emergency, nil
}

// HasRecentEmergency reports whether the creator made an emergency inside the
// window. Used as the rate limiter fallback when Redis is unavailable.
func (r *EmergencyRepo) HasRecentEmergency(ctx context.Context, creatorID string, window time.Duration) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM emergencies
			WHERE user_id = $1 AND created_at > $2
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, creatorID, time.Now().Add(-window))
	if err != nil {
		return false, fmt.Errorf("failed to check recent emergencies: %w", err)
	}
	return exists, nil
}

// TransitionStatus performs the conditional status update. The WHERE clause
// on the expected status is what makes concurrent transitions safe: exactly
// one caller observes rows affected == 1.
func (r *EmergencyRepo) TransitionStatus(ctx context.Context, emergencyID string, from, to models.EmergencyStatus) (bool, error) {
	query := `UPDATE emergencies SET status = $1 WHERE id = $2 AND status = $3`
	result, err := r.db.ExecContext(ctx, query, to, emergencyID, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition emergency status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return rows == 1, nil
}

// CreateResponderLinks inserts one invitation link per selected responder
func (r *EmergencyRepo) CreateResponderLinks(ctx context.Context, emergencyID string, responderIDs []string) error {
	if len(responderIDs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO responder_links (emergency_id, responder_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (emergency_id, responder_id) DO NOTHING
	`
	now := time.Now()
	for _, responderID := range responderIDs {
		if _, err := tx.ExecContext(ctx, query, emergencyID, responderID, now); err != nil {
			return fmt.Errorf("failed to insert responder link: %w", err)
		}
	}

	return tx.Commit()
}

// GetResponderLink retrieves the link for one (emergency, responder) pair
func (r *EmergencyRepo) GetResponderLink(ctx context.Context, emergencyID, responderID string) (*models.ResponderLink, error) {
	query := `
		SELECT emergency_id, responder_id, accepted, responded_at, created_at
		FROM responder_links
		WHERE emergency_id = $1 AND responder_id = $2
	`
	var link models.ResponderLink
	err := r.db.GetContext(ctx, &link, query, emergencyID, responderID)
	if err != nil {
		return nil, err // Return error to caller to check if it's sql.ErrNoRows
	}
	return &link, nil
}

// GetResponderLinks retrieves every invitation link for an emergency
func (r *EmergencyRepo) GetResponderLinks(ctx context.Context, emergencyID string) ([]*models.ResponderLink, error) {
	query := `
		SELECT emergency_id, responder_id, accepted, responded_at, created_at
		FROM responder_links
		WHERE emergency_id = $1
		ORDER BY created_at
	`
	links := []*models.ResponderLink{}
	err := r.db.SelectContext(ctx, &links, query, emergencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responder links: %w", err)
	}
	return links, nil
}

// MarkLinkRejected records a rejection on an unanswered link
func (r *EmergencyRepo) MarkLinkRejected(ctx context.Context, emergencyID, responderID string) error {
	query := `
		UPDATE responder_links
		SET accepted = false, responded_at = $3
		WHERE emergency_id = $1 AND responder_id = $2 AND accepted IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, emergencyID, responderID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark link rejected: %w", err)
	}
	return nil
}

// AcceptEmergency atomically performs the PENDING -> ACCEPTED transition,
// marks the winning link accepted and flags the responder unavailable. If the
// conditional transition loses, the whole transaction rolls back and the link
// stays untouched.
func (r *EmergencyRepo) AcceptEmergency(ctx context.Context, emergencyID, responderID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	transitionQuery := `
		UPDATE emergencies
		SET status = $1, accepted_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := tx.ExecContext(ctx, transitionQuery,
		models.EmergencyStatusAccepted, now, emergencyID, models.EmergencyStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to transition emergency: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows != 1 {
		return false, nil // Lost the race; rollback leaves everything intact
	}

	linkQuery := `
		UPDATE responder_links
		SET accepted = true, responded_at = $3
		WHERE emergency_id = $1 AND responder_id = $2 AND accepted IS NULL
	`
	if _, err := tx.ExecContext(ctx, linkQuery, emergencyID, responderID, now); err != nil {
		return false, fmt.Errorf("failed to mark link accepted: %w", err)
	}

	availabilityQuery := `UPDATE users SET available = false, updated_at = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, availabilityQuery, responderID, now); err != nil {
		return false, fmt.Errorf("failed to mark responder unavailable: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit accept transaction: %w", err)
	}
	return true, nil
}
