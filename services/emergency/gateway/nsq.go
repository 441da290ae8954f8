package gateway

import (
	"context"
	"fmt"

	"github.com/rapidaid/rapidaid/internal/pkg/constants"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// PublishNotificationJob enqueues one delivery job on the notification topic
func (g *EmergencyGW) PublishNotificationJob(ctx context.Context, job *models.NotificationJob) error {
	if err := g.producer.Publish(constants.TopicNotificationDispatch, job); err != nil {
		return fmt.Errorf("failed to publish notification job: %w", err)
	}
	return nil
}
