package gateway

import (
	"context"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// PushNewEmergency alerts the selected responders about a fresh emergency
func (g *EmergencyGW) PushNewEmergency(ctx context.Context, responderIDs []string, emergency *models.Emergency) error {
	return g.bus.BroadcastToUsers(ctx, responderIDs, models.NewEmergencyEvent{
		Type:      models.EventNewEmergency,
		Emergency: emergency,
	})
}

// PushResponderAccepted notifies the creator directly and tells the room the
// emergency is taken
func (g *EmergencyGW) PushResponderAccepted(ctx context.Context, emergency *models.Emergency, responderID string) error {
	if err := g.bus.SendToUser(ctx, emergency.UserID, models.ResponderActionEvent{
		Type:        models.EventResponderAccepted,
		EmergencyID: emergency.ID,
		ResponderID: responderID,
	}); err != nil {
		return err
	}

	return g.bus.BroadcastToRoom(ctx, emergency.ID, models.ResponderActionEvent{
		Type:        models.EventAcceptedBroadcast,
		EmergencyID: emergency.ID,
		ResponderID: responderID,
	})
}

// PushResponderRejected tells the room a responder declined
func (g *EmergencyGW) PushResponderRejected(ctx context.Context, emergencyID, responderID string) error {
	return g.bus.BroadcastToRoom(ctx, emergencyID, models.ResponderActionEvent{
		Type:        models.EventResponderRejected,
		EmergencyID: emergencyID,
		ResponderID: responderID,
	})
}

// PushEmergencyCancelled broadcasts a cancellation to the emergency's room
func (g *EmergencyGW) PushEmergencyCancelled(ctx context.Context, emergencyID string) error {
	return g.bus.BroadcastToRoom(ctx, emergencyID, models.EmergencyStatusEvent{
		Type:        models.EventEmergencyCancelled,
		EmergencyID: emergencyID,
	})
}

// PushEmergencyCompleted broadcasts completion to the emergency's room
func (g *EmergencyGW) PushEmergencyCompleted(ctx context.Context, emergencyID string) error {
	return g.bus.BroadcastToRoom(ctx, emergencyID, models.EmergencyStatusEvent{
		Type:        models.EventEmergencyCompleted,
		EmergencyID: emergencyID,
	})
}
