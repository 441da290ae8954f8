package models

import "time"

// EmergencyStatus represents the lifecycle state of an emergency
type EmergencyStatus string

const (
	EmergencyStatusPending   EmergencyStatus = "PENDING"
	EmergencyStatusAccepted  EmergencyStatus = "ACCEPTED"
	EmergencyStatusCancelled EmergencyStatus = "CANCELLED"
	EmergencyStatusCompleted EmergencyStatus = "COMPLETED"
)

// Emergency represents a reported incident awaiting or under response.
// Status is mutated only through the response state machine; the single
// concurrent-safe write path for PENDING -> ACCEPTED is the conditional
// transition in the repository.
type Emergency struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"user_id" db:"user_id"`
	Description string          `json:"description" db:"description"`
	Category    *string         `json:"category,omitempty" db:"category"`
	Latitude    float64         `json:"latitude" db:"latitude"`
	Longitude   float64         `json:"longitude" db:"longitude"`
	Address     *string         `json:"address,omitempty" db:"address"`
	Status      EmergencyStatus `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	AcceptedAt  *time.Time      `json:"accepted_at,omitempty" db:"accepted_at"`
}

// ResponderLink is the invitation/response record between one emergency and
// one candidate responder. Accepted is tri-state: nil means no response yet.
type ResponderLink struct {
	EmergencyID string     `json:"emergency_id" db:"emergency_id"`
	ResponderID string     `json:"responder_id" db:"responder_id"`
	Accepted    *bool      `json:"accepted,omitempty" db:"accepted"`
	RespondedAt *time.Time `json:"responded_at,omitempty" db:"responded_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// CreateEmergencyRequest is the createEmergency input body. Latitude and
// longitude are pointers so that missing values are distinguishable from 0.
type CreateEmergencyRequest struct {
	Description string   `json:"description"`
	Category    *string  `json:"category,omitempty"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Address     *string  `json:"address,omitempty"`
	RadiusKm    *float64 `json:"radius,omitempty"`
}

// CreateEmergencyResult is returned to the creator
type CreateEmergencyResult struct {
	Emergency          *Emergency `json:"emergency"`
	NotifiedResponders []string   `json:"notifiedResponders"`
}

// AcceptResult reports whether this accept call performed the
// PENDING -> ACCEPTED transition
type AcceptResult struct {
	Success      bool `json:"success"`
	Transitioned bool `json:"acceptedEmergencyTransitioned"`
}
