package usecase

import (
	"context"
	"fmt"

	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/internal/utils"
	"github.com/rapidaid/rapidaid/services/emergency"
)

// SetAvailability updates a responder's availability flag and, when a
// position is supplied, their last known location plus the Redis geo index.
func (uc *EmergencyUC) SetAvailability(ctx context.Context, responderID string, req *models.AvailabilityRequest) error {
	geohash := ""
	if req.Latitude != nil && req.Longitude != nil {
		if !utils.IsValidCoordinate(*req.Latitude, *req.Longitude) {
			return emergency.ErrInvalidCoordinates
		}
		geohash = utils.EncodeLocation(utils.GeoPoint{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
		}, utils.GeohashPrecision)
	}

	if err := uc.repo.SetResponderAvailability(ctx, responderID, req.Available, req.Latitude, req.Longitude, geohash); err != nil {
		return fmt.Errorf("failed to update responder availability: %w", err)
	}

	if req.Available && req.Latitude != nil && req.Longitude != nil {
		if err := uc.repo.AddAvailableResponder(ctx, responderID, *req.Latitude, *req.Longitude); err != nil {
			logger.Warn("Failed to index responder position",
				logger.String("responder_id", responderID),
				logger.Err(err))
		}
	} else if !req.Available {
		if err := uc.repo.RemoveAvailableResponder(ctx, responderID); err != nil {
			logger.Warn("Failed to remove responder from geo index",
				logger.String("responder_id", responderID),
				logger.Err(err))
		}
	}

	logger.Debug("Responder availability updated",
		logger.String("responder_id", responderID),
		logger.Bool("available", req.Available))
	return nil
}

// FindNearbyResponders returns available responders within radiusKm of the
// point, nearest first, from the Redis geo index
func (uc *EmergencyUC) FindNearbyResponders(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.NearbyResponder, error) {
	if !utils.IsValidCoordinate(latitude, longitude) {
		return nil, emergency.ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = uc.cfg.Emergency.UrbanRadiusKm
	}

	nearby, err := uc.repo.FindNearbyResponders(ctx, latitude, longitude, radiusKm)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby responders: %w", err)
	}
	return nearby, nil
}
