package models

import (
	"encoding/json"
	"sync"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
)

// WebSocketClient represents an authenticated WebSocket connection.
// WriteMu serializes writes; gorilla connections allow one writer at a time.
type WebSocketClient struct {
	UserID  string
	Role    string
	Conn    *websocket.Conn
	WriteMu sync.Mutex
}

// WebSocketClaims are the JWT claims presented at connect time
type WebSocketClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// WSMessage is the envelope of every client frame; Type selects the handler
// and the remaining fields are re-parsed per message type.
type WSMessage struct {
	Type string `json:"type"`
}

// Client -> server message bodies

// RoomRequest covers join_room and leave_room
type RoomRequest struct {
	RoomID string `json:"roomId"`
}

// LocationUpdateRequest is a responder position push tagged with a room.
// EmergencyID is accepted as an alias for RoomID for older clients.
type LocationUpdateRequest struct {
	RoomID      string   `json:"roomId"`
	EmergencyID string   `json:"emergencyId"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// EmergencyActionRequest covers responder_accept, responder_reject and
// complete_emergency
type EmergencyActionRequest struct {
	EmergencyID string `json:"emergencyId"`
}

// GenericBroadcastRequest is a pass-through payload for a room
type GenericBroadcastRequest struct {
	RoomID  string          `json:"roomId"`
	Payload json.RawMessage `json:"payload"`
}

// Server -> client events. Every event carries its own type discriminator so
// frames can be sent as-is to sockets and through the pub/sub fan-out.

// WSEvent type values
const (
	EventConnected           = "connected"
	EventJoinedRoom          = "joined_room"
	EventLeftRoom            = "left_room"
	EventError               = "error"
	EventNewEmergency        = "newEmergency"
	EventResponderLocation   = "responder_location"
	EventResponderAccepted   = "responder_accepted"
	EventAcceptedBroadcast   = "responderAcceptedBroadcast"
	EventResponderRejected   = "responder_rejected"
	EventEmergencyCancelled  = "emergencyCancelled"
	EventEmergencyCompleted  = "emergency_completed"
)

// Client -> server message types
const (
	MessageJoinRoom          = "join_room"
	MessageLeaveRoom         = "leave_room"
	MessageLocationUpdate    = "location_update"
	MessageResponderAccept   = "responder_accept"
	MessageResponderReject   = "responder_reject"
	MessageCompleteEmergency = "complete_emergency"
	MessageGenericBroadcast  = "generic_broadcast"
)

// ConnectedEvent acknowledges a successful connection
type ConnectedEvent struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

// RoomEvent acknowledges a join or leave
type RoomEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

// ErrorEvent reports a client-visible failure
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewEmergencyEvent pushes a freshly created emergency to selected responders
type NewEmergencyEvent struct {
	Type      string     `json:"type"`
	Emergency *Emergency `json:"emergency"`
}

// ResponderLocationEvent carries a responder position plus a rough ETA in
// whole minutes relative to the emergency location
type ResponderLocationEvent struct {
	Type        string  `json:"type"`
	EmergencyID string  `json:"emergencyId"`
	ResponderID string  `json:"responderId"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ETAMinutes  int     `json:"eta"`
	Timestamp   int64   `json:"timestamp"`
}

// ResponderActionEvent covers accept/reject notifications
type ResponderActionEvent struct {
	Type        string `json:"type"`
	EmergencyID string `json:"emergencyId"`
	ResponderID string `json:"responderId"`
}

// EmergencyStatusEvent covers cancellation and completion broadcasts
type EmergencyStatusEvent struct {
	Type        string `json:"type"`
	EmergencyID string `json:"emergencyId"`
}
