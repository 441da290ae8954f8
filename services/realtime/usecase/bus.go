package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rapidaid/rapidaid/internal/pkg/constants"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/websocket"
	"github.com/rapidaid/rapidaid/services/realtime"
)

// BroadcastBus implements the realtime delivery capability. Per-user sends
// try the local registry first and fall back to the per-user pub/sub channel;
// room broadcasts always go through pub/sub, and the subscription loop
// delivers to local members on every instance, the publisher included. That
// keeps each member's delivery exactly-once per instance without tagging
// frames with their origin.
type BroadcastBus struct {
	manager *websocket.Manager
	pubsub  realtime.FanoutPubSub
	done    chan struct{}
}

// NewBroadcastBus creates a new broadcast bus
func NewBroadcastBus(manager *websocket.Manager, pubsub realtime.FanoutPubSub) *BroadcastBus {
	return &BroadcastBus{
		manager: manager,
		pubsub:  pubsub,
		done:    make(chan struct{}),
	}
}

// Start subscribes to the fan-out channels and runs the delivery loop until
// the subscription closes
func (b *BroadcastBus) Start(ctx context.Context) error {
	frames, err := b.pubsub.Subscribe(ctx, constants.ChannelRoomPattern)
	if err != nil {
		return fmt.Errorf("failed to subscribe to fan-out channels: %w", err)
	}

	go func() {
		defer close(b.done)
		for frame := range frames {
			b.deliverLocal(frame)
		}
	}()
	return nil
}

// Shutdown closes the fan-out subscription and waits for the loop to drain
func (b *BroadcastBus) Shutdown(ctx context.Context) error {
	if err := b.pubsub.Close(); err != nil {
		return err
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliverLocal routes one fan-out frame to locally connected sockets
func (b *BroadcastBus) deliverLocal(frame realtime.PubSubMessage) {
	userChannelPrefix := strings.TrimSuffix(constants.ChannelUser, "%s")
	roomChannelPrefix := strings.TrimSuffix(constants.ChannelRoom, "%s")

	payload := json.RawMessage(frame.Payload)
	switch {
	case strings.HasPrefix(frame.Channel, userChannelPrefix):
		userID := strings.TrimPrefix(frame.Channel, userChannelPrefix)
		b.manager.SendToUser(userID, payload)
	case strings.HasPrefix(frame.Channel, roomChannelPrefix):
		roomID := strings.TrimPrefix(frame.Channel, roomChannelPrefix)
		b.manager.BroadcastToRoom(roomID, payload)
	default:
		logger.Debug("Ignoring frame on unexpected channel",
			logger.String("channel", frame.Channel))
	}
}

// SendToUser delivers a payload to one identity, instance-transparently
func (b *BroadcastBus) SendToUser(ctx context.Context, userID string, payload interface{}) error {
	if b.manager.SendToUser(userID, payload) {
		return nil
	}

	// Not connected here; hand it to whichever instance holds the socket
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return b.pubsub.Publish(ctx, fmt.Sprintf(constants.ChannelUser, userID), raw)
}

// BroadcastToUsers delivers a payload to many identities
func (b *BroadcastBus) BroadcastToUsers(ctx context.Context, userIDs []string, payload interface{}) error {
	var firstErr error
	for _, userID := range userIDs {
		if err := b.SendToUser(ctx, userID, payload); err != nil {
			logger.Warn("Failed to deliver to user",
				logger.String("user_id", userID),
				logger.Err(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// BroadcastToRoom publishes a payload to every member of a room across all
// instances
func (b *BroadcastBus) BroadcastToRoom(ctx context.Context, roomID string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	return b.pubsub.Publish(ctx, fmt.Sprintf(constants.ChannelRoom, roomID), raw)
}
