package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rapidaid/rapidaid/internal/pkg/middleware"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/internal/utils"
	"github.com/rapidaid/rapidaid/services/emergency"
)

// ResponderHandler handles HTTP requests for responder presence
type ResponderHandler struct {
	emergencyUC emergency.EmergencyUC
}

// NewResponderHandler creates a new responder handler
func NewResponderHandler(
	emergencyUC emergency.EmergencyUC,
) *ResponderHandler {
	return &ResponderHandler{
		emergencyUC: emergencyUC,
	}
}

// SetAvailability handles responder availability and position updates
func (h *ResponderHandler) SetAvailability(c echo.Context) error {
	responderID := middleware.UserIDFromContext(c)
	if responderID == "" {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "Invalid request payload")
	}

	if err := h.emergencyUC.SetAvailability(c.Request().Context(), responderID, &req); err != nil {
		return mapEmergencyError(c, err, "Failed to update availability")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Availability updated", nil)
}

// GetNearbyResponders returns available responders around a point
func (h *ResponderHandler) GetNearbyResponders(c echo.Context) error {
	latitude, err := strconv.ParseFloat(c.QueryParam("latitude"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "latitude query parameter is required")
	}
	longitude, err := strconv.ParseFloat(c.QueryParam("longitude"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "longitude query parameter is required")
	}

	radiusKm := 0.0
	if raw := c.QueryParam("radius"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return utils.BadRequestResponse(c, "radius must be a number")
		}
	}

	nearby, err := h.emergencyUC.FindNearbyResponders(c.Request().Context(), latitude, longitude, radiusKm)
	if err != nil {
		return mapEmergencyError(c, err, "Failed to find nearby responders")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Nearby responders retrieved", nearby)
}
