package notify

import (
	"context"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// Contact is the resolved delivery profile for one job: a recipient's stored
// contact fields, or just the admin phone for administrative broadcasts.
type Contact struct {
	Name     string
	Email    string
	Phone    string
	FCMToken string
}

// ChannelSender delivers one message over one medium. Senders are walked in
// a fixed order; a sender whose required contact field is missing is skipped
// without an attempt record.
type ChannelSender interface {
	Channel() models.NotificationChannel
	CanSend(contact Contact) bool
	Send(ctx context.Context, contact Contact, payload models.NotificationPayload) (response string, err error)
}

// NotifyUC defines the interface for notification delivery business logic
type NotifyUC interface {
	// ProcessJob runs the ordered channel walk for one queued job. When
	// finalAttempt is set, exhaustion finalizes the notification FAILED;
	// otherwise exhaustion returns an error so the queue retries the job.
	ProcessJob(ctx context.Context, job *models.NotificationJob, finalAttempt bool) error
}

// NotifyRepo defines the interface for notification data access operations
type NotifyRepo interface {
	GetNotification(ctx context.Context, notificationID string) (*models.Notification, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	RecordAttempt(ctx context.Context, attempt *models.NotificationAttempt) error
	UpdateNotificationStatus(ctx context.Context, notificationID string, status models.NotificationStatus) error
}
