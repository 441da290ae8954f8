package nsq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nsqio/go-nsq"
)

// MessageHandler processes a raw NSQ message. Returning an error requeues the
// message with the configured backoff; returning nil finishes it. Handlers
// that care about delivery attempts read message.Attempts themselves.
type MessageHandler func(message *nsq.Message) error

// ConsumerConfig tunes the consumer's retry behavior
type ConsumerConfig struct {
	MaxAttempts  uint16
	Concurrency  int
	RequeueDelay time.Duration
}

// Consumer handles consuming messages from NSQ topics
type Consumer struct {
	consumer *nsq.Consumer
}

// NewConsumer creates a new NSQ consumer for a topic/channel
func NewConsumer(topic, channel, address string, cc ConsumerConfig, handler MessageHandler) (*Consumer, error) {
	config := nsq.NewConfig()
	if cc.MaxAttempts > 0 {
		config.MaxAttempts = cc.MaxAttempts
	}
	if cc.RequeueDelay > 0 {
		config.DefaultRequeueDelay = cc.RequeueDelay
	}

	concurrency := cc.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	// Create a new consumer for the specified topic/channel
	consumer, err := nsq.NewConsumer(topic, channel, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSQ consumer: %w", err)
	}

	// Set the message handler
	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(message *nsq.Message) error {
		err := handler(message)
		if err != nil {
			log.Printf("Error processing message (attempt %d): %v", message.Attempts, err)
			// Requeue the message for later processing
			return err
		}
		return nil
	}), concurrency)

	// Connect to the NSQ daemon
	err = consumer.ConnectToNSQD(address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NSQ daemon: %w", err)
	}

	return &Consumer{consumer: consumer}, nil
}

// ConnectToLookupd connects the consumer to NSQ lookupd instances
func (c *Consumer) ConnectToLookupd(addresses []string) error {
	for _, addr := range addresses {
		err := c.consumer.ConnectToNSQLookupd(addr)
		if err != nil {
			return fmt.Errorf("failed to connect to NSQ lookupd at %s: %w", addr, err)
		}
	}
	return nil
}

// UnmarshalMessage deserializes a JSON message into the provided struct
func UnmarshalMessage(messageBody []byte, v interface{}) error {
	err := json.Unmarshal(messageBody, v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	c.consumer.Stop()
}
