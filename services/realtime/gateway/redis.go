package gateway

import (
	"context"
	"sync"

	"github.com/rapidaid/rapidaid/internal/pkg/database"
	"github.com/rapidaid/rapidaid/services/realtime"
)

// RedisFanout implements the fan-out pub/sub transport on Redis
type RedisFanout struct {
	redisClient *database.RedisClient

	mu      sync.Mutex
	closers []func() error
}

// NewRedisFanout creates a new Redis-backed fan-out transport
func NewRedisFanout(redisClient *database.RedisClient) *RedisFanout {
	return &RedisFanout{redisClient: redisClient}
}

// Publish sends a payload on a channel
func (f *RedisFanout) Publish(ctx context.Context, channel string, payload []byte) error {
	return f.redisClient.Publish(ctx, channel, payload)
}

// Subscribe pattern-subscribes and converts messages into fan-out frames.
// The returned channel closes when the subscription is closed.
func (f *RedisFanout) Subscribe(ctx context.Context, pattern string) (<-chan realtime.PubSubMessage, error) {
	pubsub := f.redisClient.PSubscribe(ctx, pattern)

	// Force the subscription to be established before returning
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan realtime.PubSubMessage)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			out <- realtime.PubSubMessage{
				Channel: msg.Channel,
				Payload: []byte(msg.Payload),
			}
		}
	}()

	f.mu.Lock()
	f.closers = append(f.closers, pubsub.Close)
	f.mu.Unlock()

	return out, nil
}

// Close closes every open subscription
func (f *RedisFanout) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var firstErr error
	for _, closeFn := range f.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}
