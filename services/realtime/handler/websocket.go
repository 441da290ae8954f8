package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rapidaid/rapidaid/internal/pkg/constants"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/internal/pkg/websocket"
	"github.com/rapidaid/rapidaid/internal/utils"
	"github.com/rapidaid/rapidaid/services/emergency"
	"github.com/rapidaid/rapidaid/services/realtime"
)

// WebSocketHandler drives the realtime message protocol for one instance
type WebSocketHandler struct {
	manager *websocket.Manager
	bus     realtime.Bus
	actions realtime.EmergencyActions
	cfg     *models.Config
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(
	manager *websocket.Manager,
	bus realtime.Bus,
	actions realtime.EmergencyActions,
	cfg *models.Config,
) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		bus:     bus,
		actions: actions,
		cfg:     cfg,
	}
}

// HandleWebSocket upgrades and serves one client connection
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	return h.manager.HandleConnection(c, h.handleClient)
}

// handleClient runs the read loop for an authenticated connection
func (h *WebSocketHandler) handleClient(client *models.WebSocketClient, conn *gorilla.Conn) error {
	client.Conn = conn
	h.manager.AddClient(client)
	defer h.manager.RemoveClient(client.UserID)

	logger.Info("WebSocket client connected",
		logger.String("user_id", client.UserID),
		logger.String("role", client.Role))

	if err := h.manager.SendJSON(client, models.ConnectedEvent{
		Type:   models.EventConnected,
		UserID: client.UserID,
	}); err != nil {
		return err
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			logger.Info("WebSocket client disconnected",
				logger.String("user_id", client.UserID))
			return nil
		}

		var envelope models.WSMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			h.manager.SendCategorizedError(client, err, constants.ErrorInvalidFormat, constants.ErrorSeverityClient, client.UserID)
			continue
		}

		h.dispatch(client, envelope.Type, raw)
	}
}

// dispatch routes one client frame to its handler. Unknown types get an
// explicit error reply, never a silent drop.
func (h *WebSocketHandler) dispatch(client *models.WebSocketClient, msgType string, raw []byte) {
	ctx := context.Background()

	switch msgType {
	case models.MessageJoinRoom:
		h.handleJoinRoom(client, raw)
	case models.MessageLeaveRoom:
		h.handleLeaveRoom(client, raw)
	case models.MessageLocationUpdate:
		h.handleLocationUpdate(ctx, client, raw)
	case models.MessageResponderAccept:
		h.handleAccept(ctx, client, raw)
	case models.MessageResponderReject:
		h.handleReject(ctx, client, raw)
	case models.MessageCompleteEmergency:
		h.handleComplete(ctx, client, raw)
	case models.MessageGenericBroadcast:
		h.handleGenericBroadcast(ctx, client, raw)
	default:
		h.manager.SendErrorMessage(client, "unknown message type: "+msgType)
	}
}

func (h *WebSocketHandler) handleJoinRoom(client *models.WebSocketClient, raw []byte) {
	var req models.RoomRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.RoomID == "" {
		h.manager.SendErrorMessage(client, "roomId is required")
		return
	}

	h.manager.JoinRoom(client.UserID, req.RoomID)
	h.manager.SendJSON(client, models.RoomEvent{
		Type:   models.EventJoinedRoom,
		RoomID: req.RoomID,
	})
}

func (h *WebSocketHandler) handleLeaveRoom(client *models.WebSocketClient, raw []byte) {
	var req models.RoomRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.RoomID == "" {
		h.manager.SendErrorMessage(client, "roomId is required")
		return
	}

	h.manager.LeaveRoom(client.UserID, req.RoomID)
	h.manager.SendJSON(client, models.RoomEvent{
		Type:   models.EventLeftRoom,
		RoomID: req.RoomID,
	})
}

// handleLocationUpdate broadcasts a responder position with a rough ETA
// relative to the emergency location
func (h *WebSocketHandler) handleLocationUpdate(ctx context.Context, client *models.WebSocketClient, raw []byte) {
	var req models.LocationUpdateRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		h.manager.SendCategorizedError(client, err, constants.ErrorInvalidFormat, constants.ErrorSeverityClient, client.UserID)
		return
	}

	roomID := req.RoomID
	if roomID == "" {
		roomID = req.EmergencyID
	}
	if roomID == "" || req.Latitude == nil || req.Longitude == nil {
		h.manager.SendErrorMessage(client, "roomId, latitude and longitude are required")
		return
	}

	emergencyID := req.EmergencyID
	if emergencyID == "" {
		emergencyID = roomID
	}

	etaMinutes := 0
	if em, err := h.actions.GetEmergency(ctx, emergencyID); err == nil {
		distance := utils.CalculateDistance(
			utils.GeoPoint{Latitude: em.Latitude, Longitude: em.Longitude},
			utils.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude},
		)
		etaMinutes = utils.EstimateETAMinutes(distance, h.cfg.Emergency.AvgSpeedKmh)
	}

	event := models.ResponderLocationEvent{
		Type:        models.EventResponderLocation,
		EmergencyID: emergencyID,
		ResponderID: client.UserID,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		ETAMinutes:  etaMinutes,
		Timestamp:   time.Now().UnixMilli(),
	}
	if err := h.bus.BroadcastToRoom(ctx, roomID, event); err != nil {
		h.manager.SendCategorizedError(client, err, constants.ErrorInternalError, constants.ErrorSeverityServer, client.UserID)
	}
}

func (h *WebSocketHandler) handleAccept(ctx context.Context, client *models.WebSocketClient, raw []byte) {
	var req models.EmergencyActionRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.EmergencyID == "" {
		h.manager.SendErrorMessage(client, "emergencyId is required")
		return
	}

	result, err := h.actions.AcceptEmergency(ctx, client.UserID, req.EmergencyID)
	if err != nil {
		h.sendActionError(client, err)
		return
	}

	h.manager.SendJSON(client, result)
}

func (h *WebSocketHandler) handleReject(ctx context.Context, client *models.WebSocketClient, raw []byte) {
	var req models.EmergencyActionRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.EmergencyID == "" {
		h.manager.SendErrorMessage(client, "emergencyId is required")
		return
	}

	if err := h.actions.RejectEmergency(ctx, client.UserID, req.EmergencyID); err != nil {
		h.sendActionError(client, err)
	}
}

func (h *WebSocketHandler) handleComplete(ctx context.Context, client *models.WebSocketClient, raw []byte) {
	var req models.EmergencyActionRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.EmergencyID == "" {
		h.manager.SendErrorMessage(client, "emergencyId is required")
		return
	}

	if err := h.actions.CompleteEmergency(ctx, client.UserID, req.EmergencyID); err != nil {
		h.sendActionError(client, err)
	}
}

func (h *WebSocketHandler) handleGenericBroadcast(ctx context.Context, client *models.WebSocketClient, raw []byte) {
	var req models.GenericBroadcastRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.RoomID == "" || len(req.Payload) == 0 {
		h.manager.SendErrorMessage(client, "roomId and payload are required")
		return
	}

	if err := h.bus.BroadcastToRoom(ctx, req.RoomID, req.Payload); err != nil {
		h.manager.SendCategorizedError(client, err, constants.ErrorInternalError, constants.ErrorSeverityServer, client.UserID)
	}
}

// sendActionError maps emergency sentinel errors to client-visible messages;
// anything else goes out as a generic server failure
func (h *WebSocketHandler) sendActionError(client *models.WebSocketClient, err error) {
	switch {
	case errors.Is(err, emergency.ErrNotAssigned):
		h.manager.SendCategorizedError(client, err, constants.ErrorNotAssigned, constants.ErrorSeverityClient, client.UserID)
	case errors.Is(err, emergency.ErrEmergencyNotFound),
		errors.Is(err, emergency.ErrAlreadyResponded),
		errors.Is(err, emergency.ErrNotPending),
		errors.Is(err, emergency.ErrNotAccepted),
		errors.Is(err, emergency.ErrTooFar),
		errors.Is(err, emergency.ErrNotOwner):
		h.manager.SendCategorizedError(client, err, constants.ErrorConflict, constants.ErrorSeverityClient, client.UserID)
	default:
		h.manager.SendCategorizedError(client, err, constants.ErrorInternalError, constants.ErrorSeverityServer, client.UserID)
	}
}
