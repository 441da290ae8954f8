package channels

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/notify"
)

// TermiiSender delivers SMS through the Termii HTTP API
type TermiiSender struct {
	cfg    models.TermiiConfig
	client *resty.Client
}

// NewTermiiSender creates a new Termii SMS channel sender
func NewTermiiSender(cfg models.TermiiConfig) *TermiiSender {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")

	return &TermiiSender{
		cfg:    cfg,
		client: client,
	}
}

func (s *TermiiSender) Channel() models.NotificationChannel {
	return models.ChannelTermiiSMS
}

func (s *TermiiSender) CanSend(contact notify.Contact) bool {
	return contact.Phone != ""
}

func (s *TermiiSender) Send(ctx context.Context, contact notify.Contact, payload models.NotificationPayload) (string, error) {
	body := map[string]interface{}{
		"api_key": s.cfg.APIKey,
		"to":      contact.Phone,
		"from":    s.cfg.SenderID,
		"sms":     payload.SMS,
		"type":    "plain",
		"channel": "generic",
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/api/sms/send")
	if err != nil {
		return "", fmt.Errorf("termii request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("termii returned %d: %s", resp.StatusCode(), resp.String())
	}
	return resp.String(), nil
}
