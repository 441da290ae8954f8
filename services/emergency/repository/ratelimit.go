package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rapidaid/rapidaid/internal/pkg/constants"
	"github.com/rapidaid/rapidaid/internal/pkg/logger"
)

// AcquireCreationSlot claims the per-creator creation slot for the window via
// a Redis SETNX key with a TTL equal to the window. When Redis is down it
// falls back to the most-recent-emergency query, which is semantically
// equivalent: both report false while a creation is inside the cooldown.
func (r *EmergencyRepo) AcquireCreationSlot(ctx context.Context, creatorID string, window time.Duration) (bool, error) {
	key := fmt.Sprintf(constants.KeyLastEmergency, creatorID)

	acquired, err := r.redisClient.SetNX(ctx, key, time.Now().Unix(), window)
	if err == nil {
		return acquired, nil
	}

	logger.Warn("Rate limiter store unavailable, falling back to database",
		logger.String("creator_id", creatorID),
		logger.Err(err))

	recent, dbErr := r.HasRecentEmergency(ctx, creatorID, window)
	if dbErr != nil {
		return false, dbErr
	}
	return !recent, nil
}
