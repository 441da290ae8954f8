package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/rapidaid/rapidaid/internal/pkg/middleware"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/emergency/handler/http"
)

// Handler coordinates the HTTP handlers for the emergency service
type Handler struct {
	emergencyHandler *http.EmergencyHandler
	responderHandler *http.ResponderHandler
	cfg              *models.Config
}

// NewHandler creates and initializes all handlers
func NewHandler(
	emergencyHandler *http.EmergencyHandler,
	responderHandler *http.ResponderHandler,
	cfg *models.Config,
) *Handler {
	return &Handler{
		emergencyHandler: emergencyHandler,
		responderHandler: responderHandler,
		cfg:              cfg,
	}
}

// RegisterRoutes registers the emergency service routes
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	protected := e.Group("", middleware.JWTAuthMiddleware(h.cfg.JWT))

	emergencyGroup := protected.Group("/emergencies")
	emergencyGroup.POST("", h.emergencyHandler.CreateEmergency)
	emergencyGroup.GET("/:id", h.emergencyHandler.GetEmergency)
	emergencyGroup.GET("/:id/responders", h.emergencyHandler.GetEmergencyResponders)
	emergencyGroup.POST("/:id/cancel", h.emergencyHandler.CancelEmergency)
	emergencyGroup.POST("/:id/accept", h.emergencyHandler.AcceptEmergency)
	emergencyGroup.POST("/:id/reject", h.emergencyHandler.RejectEmergency)
	emergencyGroup.POST("/:id/complete", h.emergencyHandler.CompleteEmergency)

	responderGroup := protected.Group("/responders")
	responderGroup.POST("/availability", h.responderHandler.SetAvailability)
	responderGroup.GET("/nearby", h.responderHandler.GetNearbyResponders)
}
