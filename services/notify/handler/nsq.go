package handler

import (
	"context"
	"time"

	gonsq "github.com/nsqio/go-nsq"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/internal/pkg/nsq"
	"github.com/rapidaid/rapidaid/services/notify"
)

const (
	retryBaseDelay = 5 * time.Second
	retryMaxDelay  = 5 * time.Minute
)

// NSQHandler consumes notification delivery jobs
type NSQHandler struct {
	notifyUC    notify.NotifyUC
	maxAttempts uint16
}

// NewNSQHandler creates a new delivery job handler
func NewNSQHandler(notifyUC notify.NotifyUC, maxAttempts uint16) *NSQHandler {
	if maxAttempts == 0 {
		maxAttempts = 5
	}
	return &NSQHandler{
		notifyUC:    notifyUC,
		maxAttempts: maxAttempts,
	}
}

// HandleMessage processes one queued delivery job. A failed walk on a
// non-final attempt is requeued with exponential backoff; malformed messages
// are dropped since a retry can never fix them.
func (h *NSQHandler) HandleMessage(message *gonsq.Message) error {
	var job models.NotificationJob
	if err := nsq.UnmarshalMessage(message.Body, &job); err != nil {
		logger.Error("Dropping malformed notification job",
			logger.Err(err))
		return nil
	}

	finalAttempt := message.Attempts >= h.maxAttempts

	err := h.notifyUC.ProcessJob(context.Background(), &job, finalAttempt)
	if err == nil {
		return nil
	}

	if finalAttempt {
		logger.Error("Notification job failed on final attempt",
			logger.String("notification_id", job.NotificationID),
			logger.Err(err))
		return nil
	}

	delay := RetryDelay(message.Attempts)
	logger.Warn("Requeueing notification job",
		logger.String("notification_id", job.NotificationID),
		logger.Int("attempt", int(message.Attempts)),
		logger.Duration("delay", delay),
		logger.Err(err))
	message.Requeue(delay)
	return nil
}

// RetryDelay computes the exponential backoff for a given attempt number:
// base * 2^(attempt-1), capped
func RetryDelay(attempt uint16) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := retryBaseDelay
	for i := uint16(1); i < attempt; i++ {
		delay *= 2
		if delay >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return delay
}
