package channels

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/notify"
	"google.golang.org/api/option"
)

// FCMSender delivers push notifications through Firebase Cloud Messaging
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender creates a new push channel sender
func NewFCMSender(ctx context.Context, cfg models.FCMConfig) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Channel() models.NotificationChannel {
	return models.ChannelFCMPush
}

func (s *FCMSender) CanSend(contact notify.Contact) bool {
	return contact.FCMToken != ""
}

func (s *FCMSender) Send(ctx context.Context, contact notify.Contact, payload models.NotificationPayload) (string, error) {
	message := &messaging.Message{
		Token: contact.FCMToken,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
	}

	id, err := s.client.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("fcm send failed: %w", err)
	}
	return id, nil
}
