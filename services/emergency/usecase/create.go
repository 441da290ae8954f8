package usecase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/internal/utils"
	"github.com/rapidaid/rapidaid/services/emergency"
)

// AdminAlertPrefix marks administrative fallback SMS texts
const AdminAlertPrefix = "ADMIN ALERT: "

// CreateEmergency creates a PENDING emergency, selects nearby responders,
// records links and notifications, enqueues delivery jobs and pushes a
// realtime alert to the selected responders.
func (uc *EmergencyUC) CreateEmergency(ctx context.Context, creatorID string, req *models.CreateEmergencyRequest) (*models.CreateEmergencyResult, error) {
	if req.Latitude == nil || req.Longitude == nil || !utils.IsValidCoordinate(*req.Latitude, *req.Longitude) {
		return nil, emergency.ErrInvalidCoordinates
	}

	window := time.Duration(uc.cfg.Emergency.RateLimitSeconds) * time.Second
	allowed, err := uc.repo.AcquireCreationSlot(ctx, creatorID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to check creation rate limit: %w", err)
	}
	if !allowed {
		return nil, emergency.ErrRateLimited
	}

	creator, err := uc.repo.GetUser(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	em := &models.Emergency{
		ID:          uuid.NewString(),
		UserID:      creatorID,
		Description: req.Description,
		Category:    req.Category,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Address:     req.Address,
		Status:      models.EmergencyStatusPending,
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.CreateEmergency(ctx, em); err != nil {
		return nil, fmt.Errorf("failed to create emergency: %w", err)
	}

	pool, err := uc.repo.GetCandidateResponders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load responder pool: %w", err)
	}

	origin := utils.GeoPoint{Latitude: em.Latitude, Longitude: em.Longitude}
	radius := uc.effectiveRadius(req.RadiusKm, creator.LocationClass)
	selected := MatchResponders(origin, radius, pool, uc.cfg.Emergency.MaxResponders)

	names := make(map[string]string, len(pool))
	for _, candidate := range pool {
		names[candidate.ID] = candidate.Name
	}

	payload := buildPayload(em)
	notifiedIDs := make([]string, 0, len(selected))
	notifications := make([]*models.Notification, 0, len(selected))

	if len(selected) > 0 {
		for _, match := range selected {
			notifiedIDs = append(notifiedIDs, match.ID)
		}
		if err := uc.repo.CreateResponderLinks(ctx, em.ID, notifiedIDs); err != nil {
			return nil, fmt.Errorf("failed to create responder links: %w", err)
		}

		for _, match := range selected {
			responderID := match.ID
			meta, _ := json.Marshal(models.NotificationMeta{ResponderName: names[responderID]})
			notifications = append(notifications, &models.Notification{
				ID:          uuid.NewString(),
				EmergencyID: em.ID,
				RecipientID: &responderID,
				Channel:     models.ChannelFCMPush,
				Priority:    1,
				Status:      models.NotificationStatusPending,
				Meta:        meta,
				CreatedAt:   time.Now(),
			})
		}
	} else {
		// Nobody in range: alert the administrative contact list instead
		adminPayload := payload
		adminPayload.SMS = AdminAlertPrefix + payload.SMS
		payload = adminPayload

		for _, phone := range uc.cfg.Emergency.AdminPhones {
			meta, _ := json.Marshal(models.NotificationMeta{AdminPhone: phone})
			notifications = append(notifications, &models.Notification{
				ID:          uuid.NewString(),
				EmergencyID: em.ID,
				Channel:     models.ChannelTermiiSMS,
				Priority:    0,
				Status:      models.NotificationStatusPending,
				Meta:        meta,
				CreatedAt:   time.Now(),
			})
		}
	}

	for _, n := range notifications {
		if err := uc.repo.CreateNotification(ctx, n); err != nil {
			return nil, fmt.Errorf("failed to create notification: %w", err)
		}
	}

	// Queueing failures leave the notification PENDING; they are logged and
	// do not fail the creation that already happened.
	for _, n := range notifications {
		job := &models.NotificationJob{
			NotificationID: n.ID,
			EmergencyID:    em.ID,
			RecipientID:    n.RecipientID,
			Payload:        payload,
		}
		if err := uc.gw.PublishNotificationJob(ctx, job); err != nil {
			logger.Error("Failed to enqueue notification job",
				logger.String("notification_id", n.ID),
				logger.String("emergency_id", em.ID),
				logger.Err(err))
		}
	}

	if len(notifiedIDs) > 0 {
		pushIDs := append([]string(nil), notifiedIDs...)
		uc.goPush(func() {
			if err := uc.gw.PushNewEmergency(context.Background(), pushIDs, em); err != nil {
				logger.Warn("Best-effort new emergency push failed",
					logger.String("emergency_id", em.ID),
					logger.Err(err))
			}
		})
	}

	logger.Info("Emergency created",
		logger.String("emergency_id", em.ID),
		logger.String("creator_id", creatorID),
		logger.Float64("radius_km", radius),
		logger.Int("responders_notified", len(notifiedIDs)))

	return &models.CreateEmergencyResult{
		Emergency:          em,
		NotifiedResponders: notifiedIDs,
	}, nil
}

// GetEmergency fetches a single emergency
func (uc *EmergencyUC) GetEmergency(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	em, err := uc.repo.GetEmergency(ctx, emergencyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, emergency.ErrEmergencyNotFound
		}
		return nil, fmt.Errorf("failed to get emergency: %w", err)
	}
	return em, nil
}

// GetEmergencyResponders lists the invitation links of an emergency,
// including who has accepted or declined
func (uc *EmergencyUC) GetEmergencyResponders(ctx context.Context, emergencyID string) ([]*models.ResponderLink, error) {
	if _, err := uc.GetEmergency(ctx, emergencyID); err != nil {
		return nil, err
	}
	links, err := uc.repo.GetResponderLinks(ctx, emergencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responder links: %w", err)
	}
	return links, nil
}

// CancelEmergency cancels a pending emergency on behalf of its creator
func (uc *EmergencyUC) CancelEmergency(ctx context.Context, requesterID, emergencyID string) error {
	em, err := uc.GetEmergency(ctx, emergencyID)
	if err != nil {
		return err
	}
	if em.UserID != requesterID {
		return emergency.ErrNotOwner
	}

	transitioned, err := uc.repo.TransitionStatus(ctx, emergencyID, models.EmergencyStatusPending, models.EmergencyStatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel emergency: %w", err)
	}
	if !transitioned {
		return fmt.Errorf("%w: status is %s", emergency.ErrNotPending, em.Status)
	}

	uc.goPush(func() {
		if err := uc.gw.PushEmergencyCancelled(context.Background(), emergencyID); err != nil {
			logger.Warn("Best-effort cancellation broadcast failed",
				logger.String("emergency_id", emergencyID),
				logger.Err(err))
		}
	})

	logger.Info("Emergency cancelled",
		logger.String("emergency_id", emergencyID),
		logger.String("requester_id", requesterID))
	return nil
}

// buildPayload renders the delivery content for an emergency
func buildPayload(em *models.Emergency) models.NotificationPayload {
	location := fmt.Sprintf("(%.4f, %.4f)", em.Latitude, em.Longitude)
	if em.Address != nil && *em.Address != "" {
		location = *em.Address
	}

	body := fmt.Sprintf("Emergency reported near %s: %s", location, em.Description)
	return models.NotificationPayload{
		Title: "New Emergency Alert",
		Body:  body,
		SMS:   fmt.Sprintf("EMERGENCY near %s: %s. Open the app to respond.", location, em.Description),
		HTML: fmt.Sprintf("<h2>New Emergency Alert</h2><p>%s</p><p>Location: %s</p>",
			em.Description, location),
	}
}
