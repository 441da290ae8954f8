package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/internal/utils"
	"github.com/rapidaid/rapidaid/services/emergency"
)

// AcceptEmergency handles a responder accepting an invitation. At most one
// accept wins the PENDING -> ACCEPTED transition; competing attempts get a
// conflict naming the current status.
func (uc *EmergencyUC) AcceptEmergency(ctx context.Context, responderID, emergencyID string) (*models.AcceptResult, error) {
	link, err := uc.repo.GetResponderLink(ctx, emergencyID, responderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, emergency.ErrNotAssigned
		}
		return nil, fmt.Errorf("failed to load responder link: %w", err)
	}
	if link.Accepted != nil {
		return nil, emergency.ErrAlreadyResponded
	}

	em, err := uc.GetEmergency(ctx, emergencyID)
	if err != nil {
		return nil, err
	}

	if err := uc.checkResponderInRange(ctx, responderID, em); err != nil {
		return nil, err
	}

	transitioned, err := uc.repo.AcceptEmergency(ctx, emergencyID, responderID)
	if err != nil {
		return nil, fmt.Errorf("failed to accept emergency: %w", err)
	}
	if !transitioned {
		// Lost the race or the emergency already left PENDING; report the
		// status the conflict was observed against.
		current, err := uc.GetEmergency(ctx, emergencyID)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: status is %s", emergency.ErrNotPending, current.Status)
	}

	// Accepting responder is now unavailable; drop them from the geo index
	if err := uc.repo.RemoveAvailableResponder(ctx, responderID); err != nil {
		logger.Warn("Failed to remove accepting responder from geo index",
			logger.String("responder_id", responderID),
			logger.Err(err))
	}

	uc.goPush(func() {
		if err := uc.gw.PushResponderAccepted(context.Background(), em, responderID); err != nil {
			logger.Warn("Best-effort accept broadcast failed",
				logger.String("emergency_id", emergencyID),
				logger.Err(err))
		}
	})

	logger.Info("Emergency accepted",
		logger.String("emergency_id", emergencyID),
		logger.String("responder_id", responderID))

	return &models.AcceptResult{Success: true, Transitioned: true}, nil
}

// checkResponderInRange verifies the responder's last known position is
// inside the creator's effective radius. Responders without a known position
// are allowed through.
func (uc *EmergencyUC) checkResponderInRange(ctx context.Context, responderID string, em *models.Emergency) error {
	responder, err := uc.repo.GetUser(ctx, responderID)
	if err != nil {
		return fmt.Errorf("failed to load responder: %w", err)
	}
	if !responder.HasPosition() {
		return nil
	}

	creator, err := uc.repo.GetUser(ctx, em.UserID)
	if err != nil {
		return fmt.Errorf("failed to load creator: %w", err)
	}

	distance := utils.CalculateDistance(
		utils.GeoPoint{Latitude: em.Latitude, Longitude: em.Longitude},
		utils.GeoPoint{Latitude: *responder.Latitude, Longitude: *responder.Longitude},
	)
	radius := uc.effectiveRadius(nil, creator.LocationClass)
	if distance > radius {
		return fmt.Errorf("%w: %.1f km away, radius %.1f km", emergency.ErrTooFar, distance, radius)
	}
	return nil
}

// RejectEmergency records a responder declining an invitation. The emergency
// status is never touched.
func (uc *EmergencyUC) RejectEmergency(ctx context.Context, responderID, emergencyID string) error {
	link, err := uc.repo.GetResponderLink(ctx, emergencyID, responderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return emergency.ErrNotAssigned
		}
		return fmt.Errorf("failed to load responder link: %w", err)
	}
	if link.Accepted != nil {
		return emergency.ErrAlreadyResponded
	}

	if err := uc.repo.MarkLinkRejected(ctx, emergencyID, responderID); err != nil {
		return fmt.Errorf("failed to reject emergency: %w", err)
	}

	uc.goPush(func() {
		if err := uc.gw.PushResponderRejected(context.Background(), emergencyID, responderID); err != nil {
			logger.Warn("Best-effort reject broadcast failed",
				logger.String("emergency_id", emergencyID),
				logger.Err(err))
		}
	})

	logger.Info("Emergency invitation rejected",
		logger.String("emergency_id", emergencyID),
		logger.String("responder_id", responderID))
	return nil
}

// CompleteEmergency transitions an accepted emergency to COMPLETED. The
// creator or the responder who accepted may complete it.
func (uc *EmergencyUC) CompleteEmergency(ctx context.Context, requesterID, emergencyID string) error {
	em, err := uc.GetEmergency(ctx, emergencyID)
	if err != nil {
		return err
	}

	if em.UserID != requesterID {
		link, err := uc.repo.GetResponderLink(ctx, emergencyID, requesterID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return emergency.ErrNotOwner
			}
			return fmt.Errorf("failed to load responder link: %w", err)
		}
		if link.Accepted == nil || !*link.Accepted {
			return emergency.ErrNotOwner
		}
	}

	transitioned, err := uc.repo.TransitionStatus(ctx, emergencyID, models.EmergencyStatusAccepted, models.EmergencyStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to complete emergency: %w", err)
	}
	if !transitioned {
		return fmt.Errorf("%w: status is %s", emergency.ErrNotAccepted, em.Status)
	}

	uc.goPush(func() {
		if err := uc.gw.PushEmergencyCompleted(context.Background(), emergencyID); err != nil {
			logger.Warn("Best-effort completion broadcast failed",
				logger.String("emergency_id", emergencyID),
				logger.Err(err))
		}
	})

	logger.Info("Emergency completed",
		logger.String("emergency_id", emergencyID),
		logger.String("requester_id", requesterID))
	return nil
}
