package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/notify"
	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSMSSender delivers SMS through Twilio
type TwilioSMSSender struct {
	cfg    models.TwilioConfig
	client *twilio.RestClient
}

// NewTwilioSMSSender creates a new Twilio SMS channel sender
func NewTwilioSMSSender(cfg models.TwilioConfig) *TwilioSMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioSMSSender{cfg: cfg, client: client}
}

func (s *TwilioSMSSender) Channel() models.NotificationChannel {
	return models.ChannelTwilioSMS
}

func (s *TwilioSMSSender) CanSend(contact notify.Contact) bool {
	return contact.Phone != ""
}

func (s *TwilioSMSSender) Send(ctx context.Context, contact notify.Contact, payload models.NotificationPayload) (string, error) {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(contact.Phone)
	params.SetFrom(s.cfg.SenderPhone)
	params.SetBody(payload.SMS)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio sms failed: %w", err)
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "twilio sms queued", nil
}

// TwilioWhatsAppSender delivers chat messages through the Twilio WhatsApp API
type TwilioWhatsAppSender struct {
	cfg    models.TwilioConfig
	client *twilio.RestClient
}

// NewTwilioWhatsAppSender creates a new WhatsApp channel sender
func NewTwilioWhatsAppSender(cfg models.TwilioConfig) *TwilioWhatsAppSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &TwilioWhatsAppSender{cfg: cfg, client: client}
}

func (s *TwilioWhatsAppSender) Channel() models.NotificationChannel {
	return models.ChannelWhatsApp
}

func (s *TwilioWhatsAppSender) CanSend(contact notify.Contact) bool {
	return contact.Phone != "" && s.cfg.WhatsAppNumber != ""
}

func (s *TwilioWhatsAppSender) Send(ctx context.Context, contact notify.Contact, payload models.NotificationPayload) (string, error) {
	to := contact.Phone
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.cfg.WhatsAppNumber)
	params.SetBody(payload.Body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio whatsapp failed: %w", err)
	}
	if resp.Sid != nil {
		return *resp.Sid, nil
	}
	return "twilio whatsapp queued", nil
}
