package realtime

import (
	"context"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// Bus is the delivery capability exposed to other components. Every primitive
// attempts local delivery first and then publishes on the shared pub/sub
// channel so instances holding the target sockets can deliver too.
type Bus interface {
	SendToUser(ctx context.Context, userID string, payload interface{}) error
	BroadcastToUsers(ctx context.Context, userIDs []string, payload interface{}) error
	BroadcastToRoom(ctx context.Context, roomID string, payload interface{}) error
}

// PubSubMessage is one fan-out frame received from the shared channel
type PubSubMessage struct {
	Channel string
	Payload []byte
}

// FanoutPubSub is the shared publish/subscribe transport the bus fans out
// through. Implemented on Redis; faked in tests.
type FanoutPubSub interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, pattern string) (<-chan PubSubMessage, error)
	Close() error
}

// EmergencyActions is the slice of emergency business logic the websocket
// handler drives on behalf of connected clients
type EmergencyActions interface {
	GetEmergency(ctx context.Context, emergencyID string) (*models.Emergency, error)
	AcceptEmergency(ctx context.Context, responderID, emergencyID string) (*models.AcceptResult, error)
	RejectEmergency(ctx context.Context, responderID, emergencyID string) error
	CompleteEmergency(ctx context.Context, requesterID, emergencyID string) error
}
