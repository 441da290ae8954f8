package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/notify"
)

// NotifyUC implements the notification delivery use case
type NotifyUC struct {
	cfg     *models.Config
	repo    notify.NotifyRepo
	senders []notify.ChannelSender
}

// NewNotifyUC creates a new delivery use case. The sender order is the
// channel walk order.
func NewNotifyUC(
	cfg *models.Config,
	repo notify.NotifyRepo,
	senders []notify.ChannelSender,
) *NotifyUC {
	return &NotifyUC{
		cfg:     cfg,
		repo:    repo,
		senders: senders,
	}
}

// ProcessJob resolves the recipient contact and walks the ordered channel
// list until one delivery succeeds. Every real attempt leaves an audit
// record; retries re-run the full walk, so duplicate attempt rows across
// retries are expected.
func (uc *NotifyUC) ProcessJob(ctx context.Context, job *models.NotificationJob, finalAttempt bool) error {
	contact, err := uc.resolveContact(ctx, job)
	if err != nil {
		return fmt.Errorf("failed to resolve contact for notification %s: %w", job.NotificationID, err)
	}

	for _, sender := range uc.senders {
		if !sender.CanSend(contact) {
			continue
		}

		response, sendErr := sender.Send(ctx, contact, job.Payload)
		uc.recordAttempt(ctx, job.NotificationID, sender.Channel(), response, sendErr)

		if sendErr == nil {
			if err := uc.repo.UpdateNotificationStatus(ctx, job.NotificationID, models.NotificationStatusSent); err != nil {
				return fmt.Errorf("failed to finalize notification %s: %w", job.NotificationID, err)
			}
			logger.Info("Notification delivered",
				logger.String("notification_id", job.NotificationID),
				logger.String("channel", string(sender.Channel())))
			return nil
		}

		logger.Warn("Channel delivery failed, trying next",
			logger.String("notification_id", job.NotificationID),
			logger.String("channel", string(sender.Channel())),
			logger.Err(sendErr))
	}

	if !finalAttempt {
		return fmt.Errorf("all channels failed for notification %s", job.NotificationID)
	}

	// Last queue attempt exhausted the walk: the notification is terminal
	if err := uc.repo.UpdateNotificationStatus(ctx, job.NotificationID, models.NotificationStatusFailed); err != nil {
		return fmt.Errorf("failed to mark notification %s failed: %w", job.NotificationID, err)
	}
	logger.Error("Notification failed on all channels",
		logger.String("notification_id", job.NotificationID))
	return nil
}

// resolveContact loads the recipient's contact profile, or builds one from
// the admin phone in the notification meta for administrative broadcasts
func (uc *NotifyUC) resolveContact(ctx context.Context, job *models.NotificationJob) (notify.Contact, error) {
	if job.RecipientID != nil {
		user, err := uc.repo.GetUser(ctx, *job.RecipientID)
		if err != nil {
			return notify.Contact{}, err
		}
		return notify.Contact{
			Name:     user.Name,
			Email:    user.Email,
			Phone:    user.Phone,
			FCMToken: user.FCMToken,
		}, nil
	}

	notification, err := uc.repo.GetNotification(ctx, job.NotificationID)
	if err != nil {
		return notify.Contact{}, err
	}

	var meta models.NotificationMeta
	if len(notification.Meta) > 0 {
		if err := json.Unmarshal(notification.Meta, &meta); err != nil {
			return notify.Contact{}, fmt.Errorf("invalid notification meta: %w", err)
		}
	}
	if meta.AdminPhone == "" {
		return notify.Contact{}, fmt.Errorf("administrative notification %s has no admin phone", job.NotificationID)
	}
	return notify.Contact{Phone: meta.AdminPhone}, nil
}

// recordAttempt appends one audit record. A failure to write the audit row is
// logged but never interrupts the walk.
func (uc *NotifyUC) recordAttempt(ctx context.Context, notificationID string, channel models.NotificationChannel, response string, sendErr error) {
	attempt := &models.NotificationAttempt{
		ID:             uuid.NewString(),
		NotificationID: notificationID,
		Channel:        channel,
		Success:        sendErr == nil,
		CreatedAt:      time.Now(),
	}
	if sendErr != nil {
		msg := sendErr.Error()
		attempt.ErrorMessage = &msg
	} else if response != "" {
		attempt.Response = &response
	}

	if err := uc.repo.RecordAttempt(ctx, attempt); err != nil {
		logger.Error("Failed to record notification attempt",
			logger.String("notification_id", notificationID),
			logger.String("channel", string(channel)),
			logger.Err(err))
	}
}
