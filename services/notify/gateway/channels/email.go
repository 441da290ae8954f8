package channels

import (
	"context"
	"fmt"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/notify"
	gomail "gopkg.in/gomail.v2"
)

// EmailSender delivers via SMTP
type EmailSender struct {
	cfg models.SMTPConfig
}

// NewEmailSender creates a new SMTP channel sender
func NewEmailSender(cfg models.SMTPConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

func (s *EmailSender) Channel() models.NotificationChannel {
	return models.ChannelEmail
}

func (s *EmailSender) CanSend(contact notify.Contact) bool {
	return contact.Email != ""
}

func (s *EmailSender) Send(ctx context.Context, contact notify.Contact, payload models.NotificationPayload) (string, error) {
	message := gomail.NewMessage()
	message.SetHeader("From", s.cfg.From)
	message.SetHeader("To", contact.Email)
	message.SetHeader("Subject", payload.Title)
	message.SetBody("text/plain", payload.Body)
	if payload.HTML != "" {
		message.AddAlternative("text/html", payload.HTML)
	}

	dialer := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := dialer.DialAndSend(message); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}
	return fmt.Sprintf("email sent to %s", contact.Email), nil
}
