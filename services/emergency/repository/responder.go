package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rapidaid/rapidaid/internal/pkg/constants"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// GetUser retrieves a user by ID
func (r *EmergencyRepo) GetUser(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, name, phone, email, fcm_token, role, verified, available,
			latitude, longitude, geohash, location_class, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user models.User
	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		return nil, err // Return error to caller to check if it's sql.ErrNoRows
	}
	return &user, nil
}

// GetCandidateResponders returns the verified, available, positioned
// responder pool the matcher selects from
func (r *EmergencyRepo) GetCandidateResponders(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, name, phone, email, fcm_token, role, verified, available,
			latitude, longitude, geohash, location_class, created_at, updated_at
		FROM users
		WHERE role = $1 AND verified = true AND available = true
			AND latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY updated_at DESC
	`
	responders := []*models.User{}
	err := r.db.SelectContext(ctx, &responders, query, models.RoleResponder)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate responders: %w", err)
	}
	return responders, nil
}

// SetResponderAvailability updates the availability flag and, when supplied,
// the last known position and its geohash
func (r *EmergencyRepo) SetResponderAvailability(ctx context.Context, responderID string, available bool, latitude, longitude *float64, geohash string) error {
	now := time.Now()

	if latitude != nil && longitude != nil {
		query := `
			UPDATE users
			SET available = $2, latitude = $3, longitude = $4, geohash = $5, updated_at = $6
			WHERE id = $1
		`
		_, err := r.db.ExecContext(ctx, query, responderID, available, *latitude, *longitude, geohash, now)
		if err != nil {
			return fmt.Errorf("failed to update responder presence: %w", err)
		}
		return nil
	}

	query := `UPDATE users SET available = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, responderID, available, now)
	if err != nil {
		return fmt.Errorf("failed to update responder availability: %w", err)
	}
	return nil
}

// AddAvailableResponder indexes a responder position in the Redis geo set
func (r *EmergencyRepo) AddAvailableResponder(ctx context.Context, responderID string, latitude, longitude float64) error {
	return r.redisClient.GeoAdd(ctx, constants.KeyResponderGeo, longitude, latitude, responderID)
}

// RemoveAvailableResponder drops a responder from the Redis geo set
func (r *EmergencyRepo) RemoveAvailableResponder(ctx context.Context, responderID string) error {
	return r.redisClient.GeoRemove(ctx, constants.KeyResponderGeo, responderID)
}

// FindNearbyResponders queries the Redis geo set for available responders
// within radiusKm, nearest first
func (r *EmergencyRepo) FindNearbyResponders(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.NearbyResponder, error) {
	locations, err := r.redisClient.GeoRadius(ctx, constants.KeyResponderGeo, longitude, latitude, radiusKm, "km")
	if err != nil {
		return nil, fmt.Errorf("failed to query responder geo index: %w", err)
	}

	nearby := make([]models.NearbyResponder, 0, len(locations))
	for _, loc := range locations {
		nearby = append(nearby, models.NearbyResponder{
			ID:         loc.Name,
			DistanceKm: loc.Dist,
		})
	}
	return nearby, nil
}
