package usecase_test

import (
	"context"
	"testing"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/emergency"
	"github.com/rapidaid/rapidaid/services/emergency/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAvailability(t *testing.T) {
	t.Run("going available with a position updates the geohash", func(t *testing.T) {
		repo := newFakeRepo()
		repo.users["r1"] = responderAt("r1", 6.5244, 3.3792)
		uc := usecase.NewEmergencyUC(testConfig(), repo, &fakeGateway{})

		err := uc.SetAvailability(context.Background(), "r1", &models.AvailabilityRequest{
			Available: true,
			Latitude:  ptrFloat(6.6000),
			Longitude: ptrFloat(3.4000),
		})
		require.NoError(t, err)

		user, err := repo.GetUser(context.Background(), "r1")
		require.NoError(t, err)
		assert.True(t, user.Available)
		assert.NotEmpty(t, user.Geohash)
		assert.InDelta(t, 6.6000, *user.Latitude, 0.0001)
	})

	t.Run("going unavailable drops the responder from the geo index", func(t *testing.T) {
		repo := newFakeRepo()
		repo.users["r1"] = responderAt("r1", 6.5244, 3.3792)
		uc := usecase.NewEmergencyUC(testConfig(), repo, &fakeGateway{})

		err := uc.SetAvailability(context.Background(), "r1", &models.AvailabilityRequest{
			Available: false,
		})
		require.NoError(t, err)
		assert.Contains(t, repo.geoRemoved, "r1")
	})

	t.Run("invalid position is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		repo.users["r1"] = responderAt("r1", 6.5244, 3.3792)
		uc := usecase.NewEmergencyUC(testConfig(), repo, &fakeGateway{})

		err := uc.SetAvailability(context.Background(), "r1", &models.AvailabilityRequest{
			Available: true,
			Latitude:  ptrFloat(91.0),
			Longitude: ptrFloat(3.4),
		})
		assert.ErrorIs(t, err, emergency.ErrInvalidCoordinates)
	})
}

func TestFindNearbyResponders(t *testing.T) {
	t.Run("invalid coordinates are rejected", func(t *testing.T) {
		uc := usecase.NewEmergencyUC(testConfig(), newFakeRepo(), &fakeGateway{})
		_, err := uc.FindNearbyResponders(context.Background(), 120, 3.4, 5)
		assert.ErrorIs(t, err, emergency.ErrInvalidCoordinates)
	})

	t.Run("valid query passes through", func(t *testing.T) {
		uc := usecase.NewEmergencyUC(testConfig(), newFakeRepo(), &fakeGateway{})
		nearby, err := uc.FindNearbyResponders(context.Background(), 6.5244, 3.3792, 0)
		require.NoError(t, err)
		assert.Empty(t, nearby)
	})
}
