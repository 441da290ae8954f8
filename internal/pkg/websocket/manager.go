package websocket

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rapidaid/rapidaid/internal/pkg/constants"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// Manager manages WebSocket connections, room membership and client state
type Manager struct {
	sync.RWMutex
	clients  map[string]*models.WebSocketClient
	rooms    map[string]map[string]struct{}
	cfg      models.JWTConfig
	upgrader websocket.Upgrader
}

// NewManager creates a new WebSocket manager
func NewManager(jwtConfig models.JWTConfig) *Manager {
	return &Manager{
		clients: make(map[string]*models.WebSocketClient),
		rooms:   make(map[string]map[string]struct{}),
		cfg:     jwtConfig,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleConnection authenticates and handles a new WebSocket connection
func (m *Manager) HandleConnection(c echo.Context, handleClient func(*models.WebSocketClient, *websocket.Conn) error) error {
	client, err := m.authenticateClient(c)
	if err != nil {
		return err
	}

	ws, err := m.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	return handleClient(client, ws)
}

// authenticateClient authenticates the WebSocket client using JWT. The token
// is taken from the Authorization header or, for browser clients that cannot
// set headers on WebSocket upgrades, from the token query parameter.
func (m *Manager) authenticateClient(c echo.Context) (*models.WebSocketClient, error) {
	tokenString := ""
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization format")
		}
		tokenString = parts[1]
	} else {
		tokenString = c.QueryParam("token")
	}

	if tokenString == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication token is required")
	}

	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		logger.Warn("Token validation failed",
			logger.Err(err))
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	return &models.WebSocketClient{
		UserID: claims.UserID,
		Role:   claims.Role,
	}, nil
}

// ValidateToken validates the JWT token and returns the claims
func (m *Manager) ValidateToken(tokenString string) (*models.WebSocketClaims, error) {
	claims := &models.WebSocketClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// AddClient safely adds a client to the manager. A reconnect replaces the
// previous registration for the same user.
func (m *Manager) AddClient(client *models.WebSocketClient) {
	m.Lock()
	defer m.Unlock()
	m.clients[client.UserID] = client
}

// RemoveClient removes a client and clears its room memberships
func (m *Manager) RemoveClient(userID string) {
	m.Lock()
	defer m.Unlock()
	delete(m.clients, userID)
	for roomID, members := range m.rooms {
		delete(members, userID)
		if len(members) == 0 {
			delete(m.rooms, roomID)
		}
	}
}

// GetClient returns a client by ID
func (m *Manager) GetClient(userID string) (*models.WebSocketClient, bool) {
	m.RLock()
	defer m.RUnlock()
	client, exists := m.clients[userID]
	return client, exists
}

// JoinRoom adds a user to a room. Joining twice is a no-op.
func (m *Manager) JoinRoom(userID, roomID string) {
	m.Lock()
	defer m.Unlock()
	members, exists := m.rooms[roomID]
	if !exists {
		members = make(map[string]struct{})
		m.rooms[roomID] = members
	}
	members[userID] = struct{}{}
}

// LeaveRoom removes a user from a room
func (m *Manager) LeaveRoom(userID, roomID string) {
	m.Lock()
	defer m.Unlock()
	members, exists := m.rooms[roomID]
	if !exists {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(m.rooms, roomID)
	}
}

// RoomMembers returns the user IDs currently joined to a room
func (m *Manager) RoomMembers(roomID string) []string {
	m.RLock()
	defer m.RUnlock()
	members := make([]string, 0, len(m.rooms[roomID]))
	for userID := range m.rooms[roomID] {
		members = append(members, userID)
	}
	return members
}

// SendJSON writes a payload frame to a client connection
func (m *Manager) SendJSON(client *models.WebSocketClient, payload interface{}) error {
	if client == nil || client.Conn == nil {
		return nil // Handle nil connection gracefully for tests
	}

	client.WriteMu.Lock()
	defer client.WriteMu.Unlock()
	return client.Conn.WriteJSON(payload)
}

// SendToUser delivers a payload to a locally connected user, reporting
// whether the user had a connection on this instance
func (m *Manager) SendToUser(userID string, payload interface{}) bool {
	m.RLock()
	client, exists := m.clients[userID]
	m.RUnlock()

	if !exists {
		return false
	}

	if err := m.SendJSON(client, payload); err != nil {
		logger.Warn("Error sending message to client",
			logger.String("user_id", userID),
			logger.Err(err))
	}
	return true
}

// BroadcastToRoom delivers a payload to every locally connected member of a
// room. Send failures are logged and do not stop the fan-out.
func (m *Manager) BroadcastToRoom(roomID string, payload interface{}) {
	for _, userID := range m.RoomMembers(roomID) {
		m.SendToUser(userID, payload)
	}
}

// SendErrorMessage sends an error frame to a WebSocket client
func (m *Manager) SendErrorMessage(client *models.WebSocketClient, message string) error {
	return m.SendJSON(client, models.ErrorEvent{
		Type:    models.EventError,
		Message: message,
	})
}

// SendCategorizedError sends an error message based on severity level
func (m *Manager) SendCategorizedError(client *models.WebSocketClient, err error, code string, severity constants.ErrorSeverity, userID string) error {
	// Always log detailed error server-side
	logger.Error("WebSocket operation failed",
		logger.String("user_id", userID),
		logger.String("error_code", code),
		logger.String("severity", m.getSeverityString(severity)),
		logger.Err(err))

	switch severity {
	case constants.ErrorSeverityClient:
		// Show detailed error to client for validation/input issues
		return m.SendErrorMessage(client, err.Error())
	case constants.ErrorSeveritySecurity:
		// Minimal info to client for security issues
		return m.SendErrorMessage(client, "Access denied")
	default: // ErrorSeverityServer
		// Generic message for server errors
		return m.SendErrorMessage(client, "Operation failed")
	}
}

// getSeverityString returns string representation of error severity
func (m *Manager) getSeverityString(severity constants.ErrorSeverity) string {
	switch severity {
	case constants.ErrorSeverityClient:
		return "client"
	case constants.ErrorSeverityServer:
		return "server"
	case constants.ErrorSeveritySecurity:
		return "security"
	default:
		return "unknown"
	}
}
