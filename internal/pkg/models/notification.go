package models

import (
	"encoding/json"
	"time"
)

// NotificationStatus represents the delivery state of a notification
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification channels, walked in this order by the delivery worker
type NotificationChannel string

const (
	ChannelEmail     NotificationChannel = "EMAIL"
	ChannelTermiiSMS NotificationChannel = "TERMII_SMS"
	ChannelTwilioSMS NotificationChannel = "TWILIO_SMS"
	ChannelWhatsApp  NotificationChannel = "WHATSAPP"
	ChannelFCMPush   NotificationChannel = "FCM_PUSH"
)

// Notification is one delivery intent for one recipient. RecipientID is nil
// for administrative broadcasts; the admin phone then lives in Meta.
type Notification struct {
	ID          string              `json:"id" db:"id"`
	EmergencyID string              `json:"emergency_id" db:"emergency_id"`
	RecipientID *string             `json:"recipient_id,omitempty" db:"recipient_id"`
	Channel     NotificationChannel `json:"channel" db:"channel"`
	Priority    int                 `json:"priority" db:"priority"`
	Status      NotificationStatus  `json:"status" db:"status"`
	Meta        json.RawMessage     `json:"meta,omitempty" db:"meta"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
}

// NotificationMeta carries per-notification extras
type NotificationMeta struct {
	ResponderName string `json:"responderName,omitempty"`
	AdminPhone    string `json:"adminPhone,omitempty"`
}

// NotificationAttempt is the append-only audit record of one channel try.
// Never mutated after creation.
type NotificationAttempt struct {
	ID             string              `json:"id" db:"id"`
	NotificationID string              `json:"notification_id" db:"notification_id"`
	Channel        NotificationChannel `json:"channel" db:"channel"`
	Success        bool                `json:"success" db:"success"`
	Response       *string             `json:"response,omitempty" db:"response"`
	ErrorMessage   *string             `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
}

// NotificationPayload is the rendered message content shipped with a job
type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	SMS   string `json:"sms"`
	HTML  string `json:"html"`
}

// NotificationJob is the queued delivery job consumed by the worker
type NotificationJob struct {
	NotificationID string              `json:"notificationId"`
	EmergencyID    string              `json:"emergencyId"`
	RecipientID    *string             `json:"recipientId"`
	Payload        NotificationPayload `json:"payload"`
}
