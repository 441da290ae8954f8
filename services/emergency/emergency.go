package emergency

import (
	"context"
	"errors"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// Sentinel errors returned by the use case layer. Handlers map these to
// precise HTTP responses; anything else is reported as an opaque internal
// failure.
var (
	ErrInvalidCoordinates = errors.New("latitude and longitude are required")
	ErrRateLimited        = errors.New("an emergency was created too recently, please wait before creating another")
	ErrEmergencyNotFound  = errors.New("emergency not found")
	ErrNotOwner           = errors.New("only the creator can perform this action")
	ErrNotAssigned        = errors.New("responder was not assigned to this emergency")
	ErrAlreadyResponded   = errors.New("responder has already responded to this emergency")
	ErrNotPending         = errors.New("emergency is no longer pending")
	ErrNotAccepted        = errors.New("emergency has not been accepted")
	ErrTooFar             = errors.New("responder is outside the emergency search radius")
)

// EmergencyUC defines the interface for emergency dispatch business logic
type EmergencyUC interface {
	CreateEmergency(ctx context.Context, creatorID string, req *models.CreateEmergencyRequest) (*models.CreateEmergencyResult, error)
	GetEmergency(ctx context.Context, emergencyID string) (*models.Emergency, error)
	GetEmergencyResponders(ctx context.Context, emergencyID string) ([]*models.ResponderLink, error)
	CancelEmergency(ctx context.Context, requesterID, emergencyID string) error

	AcceptEmergency(ctx context.Context, responderID, emergencyID string) (*models.AcceptResult, error)
	RejectEmergency(ctx context.Context, responderID, emergencyID string) error
	CompleteEmergency(ctx context.Context, requesterID, emergencyID string) error

	SetAvailability(ctx context.Context, responderID string, req *models.AvailabilityRequest) error
	FindNearbyResponders(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.NearbyResponder, error)
}
