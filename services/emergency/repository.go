package emergency

import (
	"context"
	"time"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// EmergencyRepo defines the interface for emergency data access operations
type EmergencyRepo interface {
	// Emergency records
	CreateEmergency(ctx context.Context, emergency *models.Emergency) error
	GetEmergency(ctx context.Context, emergencyID string) (*models.Emergency, error)
	HasRecentEmergency(ctx context.Context, creatorID string, window time.Duration) (bool, error)

	// TransitionStatus performs the conditional status update and reports
	// whether this call won the transition.
	TransitionStatus(ctx context.Context, emergencyID string, from, to models.EmergencyStatus) (bool, error)

	// Responder links
	CreateResponderLinks(ctx context.Context, emergencyID string, responderIDs []string) error
	GetResponderLink(ctx context.Context, emergencyID, responderID string) (*models.ResponderLink, error)
	GetResponderLinks(ctx context.Context, emergencyID string) ([]*models.ResponderLink, error)
	MarkLinkRejected(ctx context.Context, emergencyID, responderID string) error

	// AcceptEmergency atomically marks the link accepted, performs the
	// PENDING -> ACCEPTED conditional transition and marks the responder
	// unavailable, all in one transaction. Returns whether the transition
	// happened in this call.
	AcceptEmergency(ctx context.Context, emergencyID, responderID string) (bool, error)

	// Responder pool and presence
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetCandidateResponders(ctx context.Context) ([]*models.User, error)
	SetResponderAvailability(ctx context.Context, responderID string, available bool, latitude, longitude *float64, geohash string) error

	// Rate limiting: claims the per-creator creation slot for the window,
	// reporting false when a creation is still inside the cooldown.
	AcquireCreationSlot(ctx context.Context, creatorID string, window time.Duration) (bool, error)

	// Notifications
	CreateNotification(ctx context.Context, notification *models.Notification) error

	// Redis geo index of available responders
	AddAvailableResponder(ctx context.Context, responderID string, latitude, longitude float64) error
	RemoveAvailableResponder(ctx context.Context, responderID string) error
	FindNearbyResponders(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.NearbyResponder, error)
}
