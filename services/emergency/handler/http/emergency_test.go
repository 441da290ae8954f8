package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/emergency"
	httpHandler "github.com/rapidaid/rapidaid/services/emergency/handler/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUC returns scripted results for every operation
type stubUC struct {
	createResult *models.CreateEmergencyResult
	acceptResult *models.AcceptResult
	emergency    *models.Emergency
	nearby       []models.NearbyResponder
	err          error
}

func (s *stubUC) CreateEmergency(ctx context.Context, creatorID string, req *models.CreateEmergencyRequest) (*models.CreateEmergencyResult, error) {
	return s.createResult, s.err
}

func (s *stubUC) GetEmergency(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	return s.emergency, s.err
}

func (s *stubUC) GetEmergencyResponders(ctx context.Context, emergencyID string) ([]*models.ResponderLink, error) {
	return nil, s.err
}

func (s *stubUC) CancelEmergency(ctx context.Context, requesterID, emergencyID string) error {
	return s.err
}

func (s *stubUC) AcceptEmergency(ctx context.Context, responderID, emergencyID string) (*models.AcceptResult, error) {
	return s.acceptResult, s.err
}

func (s *stubUC) RejectEmergency(ctx context.Context, responderID, emergencyID string) error {
	return s.err
}

func (s *stubUC) CompleteEmergency(ctx context.Context, requesterID, emergencyID string) error {
	return s.err
}

func (s *stubUC) SetAvailability(ctx context.Context, responderID string, req *models.AvailabilityRequest) error {
	return s.err
}

func (s *stubUC) FindNearbyResponders(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.NearbyResponder, error) {
	return s.nearby, s.err
}

func newContext(t *testing.T, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestCreateEmergencyHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		uc := &stubUC{createResult: &models.CreateEmergencyResult{
			Emergency:          &models.Emergency{ID: "em-1", Status: models.EmergencyStatusPending},
			NotifiedResponders: []string{"r1"},
		}}
		h := httpHandler.NewEmergencyHandler(uc)

		c, rec := newContext(t, http.MethodPost, "/emergencies",
			`{"description":"fire","latitude":6.52,"longitude":3.37}`, "user-1")
		require.NoError(t, h.CreateEmergency(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "em-1")
	})

	t.Run("missing identity", func(t *testing.T) {
		h := httpHandler.NewEmergencyHandler(&stubUC{})
		c, rec := newContext(t, http.MethodPost, "/emergencies", `{}`, "")
		require.NoError(t, h.CreateEmergency(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rate limited", func(t *testing.T) {
		h := httpHandler.NewEmergencyHandler(&stubUC{err: emergency.ErrRateLimited})
		c, rec := newContext(t, http.MethodPost, "/emergencies",
			`{"description":"fire","latitude":6.52,"longitude":3.37}`, "user-1")
		require.NoError(t, h.CreateEmergency(c))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("invalid coordinates", func(t *testing.T) {
		h := httpHandler.NewEmergencyHandler(&stubUC{err: emergency.ErrInvalidCoordinates})
		c, rec := newContext(t, http.MethodPost, "/emergencies", `{"description":"fire"}`, "user-1")
		require.NoError(t, h.CreateEmergency(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEmergencyErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", emergency.ErrEmergencyNotFound, http.StatusNotFound},
		{"not owner", emergency.ErrNotOwner, http.StatusForbidden},
		{"not assigned", emergency.ErrNotAssigned, http.StatusForbidden},
		{"already responded", emergency.ErrAlreadyResponded, http.StatusConflict},
		{"not pending", emergency.ErrNotPending, http.StatusConflict},
		{"not accepted", emergency.ErrNotAccepted, http.StatusConflict},
		{"too far", emergency.ErrTooFar, http.StatusConflict},
		{"unexpected errors stay opaque", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := httpHandler.NewEmergencyHandler(&stubUC{err: tt.err})

			c, rec := newContext(t, http.MethodPost, "/emergencies/em-1/accept", "", "user-1")
			c.SetParamNames("id")
			c.SetParamValues("em-1")

			require.NoError(t, h.AcceptEmergency(c))
			assert.Equal(t, tt.code, rec.Code)

			if tt.err == assert.AnError {
				// Internal detail must not leak to the client
				assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
			}
		})
	}
}

func TestAcceptEmergencyHandler(t *testing.T) {
	uc := &stubUC{acceptResult: &models.AcceptResult{Success: true, Transitioned: true}}
	h := httpHandler.NewEmergencyHandler(uc)

	c, rec := newContext(t, http.MethodPost, "/emergencies/em-1/accept", "", "responder-1")
	c.SetParamNames("id")
	c.SetParamValues("em-1")

	require.NoError(t, h.AcceptEmergency(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "acceptedEmergencyTransitioned")
}

func TestCancelEmergencyHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := httpHandler.NewEmergencyHandler(&stubUC{})
		c, rec := newContext(t, http.MethodPost, "/emergencies/em-1/cancel", "", "user-1")
		c.SetParamNames("id")
		c.SetParamValues("em-1")

		require.NoError(t, h.CancelEmergency(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing emergency id", func(t *testing.T) {
		h := httpHandler.NewEmergencyHandler(&stubUC{})
		c, rec := newContext(t, http.MethodPost, "/emergencies//cancel", "", "user-1")

		require.NoError(t, h.CancelEmergency(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetEmergencyHandler(t *testing.T) {
	h := httpHandler.NewEmergencyHandler(&stubUC{
		emergency: &models.Emergency{ID: "em-1", Status: models.EmergencyStatusAccepted},
	})
	c, rec := newContext(t, http.MethodGet, "/emergencies/em-1", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("em-1")

	require.NoError(t, h.GetEmergency(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(models.EmergencyStatusAccepted))
}
