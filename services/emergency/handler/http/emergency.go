package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
	"github.com/rapidaid/rapidaid/internal/pkg/middleware"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/internal/utils"
	"github.com/rapidaid/rapidaid/services/emergency"
)

// EmergencyHandler handles HTTP requests for emergency operations
type EmergencyHandler struct {
	emergencyUC emergency.EmergencyUC
}

// NewEmergencyHandler creates a new emergency handler
func NewEmergencyHandler(
	emergencyUC emergency.EmergencyUC,
) *EmergencyHandler {
	return &EmergencyHandler{
		emergencyUC: emergencyUC,
	}
}

// CreateEmergency handles emergency creation requests
func (h *EmergencyHandler) CreateEmergency(c echo.Context) error {
	creatorID := middleware.UserIDFromContext(c)
	if creatorID == "" {
		return utils.UnauthorizedResponse(c, "")
	}

	var req models.CreateEmergencyRequest
	if err := c.Bind(&req); err != nil {
		logger.Warn("Invalid request payload for emergency creation",
			logger.Err(err),
			logger.String("endpoint", "CreateEmergency"))
		return utils.BadRequestResponse(c, "Invalid request payload")
	}

	result, err := h.emergencyUC.CreateEmergency(c.Request().Context(), creatorID, &req)
	if err != nil {
		return mapEmergencyError(c, err, "Failed to create emergency")
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Emergency created successfully", result)
}

// GetEmergency handles emergency retrieval requests
func (h *EmergencyHandler) GetEmergency(c echo.Context) error {
	emergencyID := c.Param("id")
	if emergencyID == "" {
		return utils.BadRequestResponse(c, "Invalid emergency ID")
	}

	em, err := h.emergencyUC.GetEmergency(c.Request().Context(), emergencyID)
	if err != nil {
		return mapEmergencyError(c, err, "Failed to retrieve emergency")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Emergency retrieved successfully", em)
}

// GetEmergencyResponders handles listing the invitation links of an emergency
func (h *EmergencyHandler) GetEmergencyResponders(c echo.Context) error {
	emergencyID := c.Param("id")
	if emergencyID == "" {
		return utils.BadRequestResponse(c, "Invalid emergency ID")
	}

	links, err := h.emergencyUC.GetEmergencyResponders(c.Request().Context(), emergencyID)
	if err != nil {
		return mapEmergencyError(c, err, "Failed to retrieve emergency responders")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Emergency responders retrieved successfully", links)
}

// CancelEmergency handles cancellation by the creator
func (h *EmergencyHandler) CancelEmergency(c echo.Context) error {
	requesterID := middleware.UserIDFromContext(c)
	emergencyID := c.Param("id")
	if emergencyID == "" {
		return utils.BadRequestResponse(c, "Invalid emergency ID")
	}

	if err := h.emergencyUC.CancelEmergency(c.Request().Context(), requesterID, emergencyID); err != nil {
		return mapEmergencyError(c, err, "Failed to cancel emergency")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Emergency cancelled", nil)
}

// AcceptEmergency handles a responder accepting an invitation
func (h *EmergencyHandler) AcceptEmergency(c echo.Context) error {
	responderID := middleware.UserIDFromContext(c)
	emergencyID := c.Param("id")
	if emergencyID == "" {
		return utils.BadRequestResponse(c, "Invalid emergency ID")
	}

	result, err := h.emergencyUC.AcceptEmergency(c.Request().Context(), responderID, emergencyID)
	if err != nil {
		return mapEmergencyError(c, err, "Failed to accept emergency")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Emergency accepted", result)
}

// RejectEmergency handles a responder declining an invitation
func (h *EmergencyHandler) RejectEmergency(c echo.Context) error {
	responderID := middleware.UserIDFromContext(c)
	emergencyID := c.Param("id")
	if emergencyID == "" {
		return utils.BadRequestResponse(c, "Invalid emergency ID")
	}

	if err := h.emergencyUC.RejectEmergency(c.Request().Context(), responderID, emergencyID); err != nil {
		return mapEmergencyError(c, err, "Failed to reject emergency")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Emergency rejected", nil)
}

// CompleteEmergency handles completion of an accepted emergency
func (h *EmergencyHandler) CompleteEmergency(c echo.Context) error {
	requesterID := middleware.UserIDFromContext(c)
	emergencyID := c.Param("id")
	if emergencyID == "" {
		return utils.BadRequestResponse(c, "Invalid emergency ID")
	}

	if err := h.emergencyUC.CompleteEmergency(c.Request().Context(), requesterID, emergencyID); err != nil {
		return mapEmergencyError(c, err, "Failed to complete emergency")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Emergency completed", nil)
}

// mapEmergencyError maps use case sentinel errors to precise responses.
// Anything unrecognized is logged in full and reported opaquely.
func mapEmergencyError(c echo.Context, err error, opaqueMessage string) error {
	switch {
	case errors.Is(err, emergency.ErrInvalidCoordinates):
		return utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, emergency.ErrRateLimited):
		return utils.TooManyRequestsResponse(c, err.Error())
	case errors.Is(err, emergency.ErrEmergencyNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, emergency.ErrNotOwner), errors.Is(err, emergency.ErrNotAssigned):
		return utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, emergency.ErrAlreadyResponded),
		errors.Is(err, emergency.ErrNotPending),
		errors.Is(err, emergency.ErrNotAccepted),
		errors.Is(err, emergency.ErrTooFar):
		return utils.ConflictResponse(c, err.Error())
	default:
		logger.Error(opaqueMessage,
			logger.String("path", c.Path()),
			logger.Err(err))
		return utils.InternalServerErrorResponse(c, opaqueMessage)
	}
}
