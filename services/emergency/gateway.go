package emergency

import (
	"context"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// EmergencyGW defines the emergency gateways interface
type EmergencyGW interface {
	// PublishNotificationJob enqueues a delivery job on the durable queue
	PublishNotificationJob(ctx context.Context, job *models.NotificationJob) error

	// Realtime pushes. All of these are best-effort from the caller's point
	// of view: the use case logs failures and never fails the triggering
	// operation because of them.
	PushNewEmergency(ctx context.Context, responderIDs []string, emergency *models.Emergency) error
	PushResponderAccepted(ctx context.Context, emergency *models.Emergency, responderID string) error
	PushResponderRejected(ctx context.Context, emergencyID, responderID string) error
	PushEmergencyCancelled(ctx context.Context, emergencyID string) error
	PushEmergencyCompleted(ctx context.Context, emergencyID string) error
}
