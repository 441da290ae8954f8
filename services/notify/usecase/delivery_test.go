package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/notify"
	"github.com/rapidaid/rapidaid/services/notify/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender is a scriptable channel sender
type fakeSender struct {
	channel models.NotificationChannel
	canSend func(contact notify.Contact) bool
	sendErr error
	calls   int
}

func (s *fakeSender) Channel() models.NotificationChannel { return s.channel }

func (s *fakeSender) CanSend(contact notify.Contact) bool {
	if s.canSend == nil {
		return true
	}
	return s.canSend(contact)
}

func (s *fakeSender) Send(ctx context.Context, contact notify.Contact, payload models.NotificationPayload) (string, error) {
	s.calls++
	if s.sendErr != nil {
		return "", s.sendErr
	}
	return "delivered", nil
}

// fakeNotifyRepo is an in-memory NotifyRepo
type fakeNotifyRepo struct {
	users         map[string]*models.User
	notifications map[string]*models.Notification
	attempts      []*models.NotificationAttempt
	statuses      map[string]models.NotificationStatus
	attemptErr    error
}

func newFakeNotifyRepo() *fakeNotifyRepo {
	return &fakeNotifyRepo{
		users:         make(map[string]*models.User),
		notifications: make(map[string]*models.Notification),
		statuses:      make(map[string]models.NotificationStatus),
	}
}

func (r *fakeNotifyRepo) GetNotification(ctx context.Context, notificationID string) (*models.Notification, error) {
	n, ok := r.notifications[notificationID]
	if !ok {
		return nil, assert.AnError
	}
	return n, nil
}

func (r *fakeNotifyRepo) GetUser(ctx context.Context, userID string) (*models.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, assert.AnError
	}
	return u, nil
}

func (r *fakeNotifyRepo) RecordAttempt(ctx context.Context, attempt *models.NotificationAttempt) error {
	if r.attemptErr != nil {
		return r.attemptErr
	}
	copied := *attempt
	r.attempts = append(r.attempts, &copied)
	return nil
}

func (r *fakeNotifyRepo) UpdateNotificationStatus(ctx context.Context, notificationID string, status models.NotificationStatus) error {
	r.statuses[notificationID] = status
	return nil
}

func emailContact(contact notify.Contact) bool { return contact.Email != "" }
func phoneContact(contact notify.Contact) bool { return contact.Phone != "" }
func tokenContact(contact notify.Contact) bool { return contact.FCMToken != "" }

func orderedSenders() []*fakeSender {
	return []*fakeSender{
		{channel: models.ChannelEmail, canSend: emailContact},
		{channel: models.ChannelTermiiSMS, canSend: phoneContact},
		{channel: models.ChannelTwilioSMS, canSend: phoneContact},
		{channel: models.ChannelWhatsApp, canSend: phoneContact},
		{channel: models.ChannelFCMPush, canSend: tokenContact},
	}
}

func asChannelSenders(senders []*fakeSender) []notify.ChannelSender {
	out := make([]notify.ChannelSender, len(senders))
	for i, s := range senders {
		out[i] = s
	}
	return out
}

func deliveryJob(recipientID *string) *models.NotificationJob {
	return &models.NotificationJob{
		NotificationID: uuid.NewString(),
		EmergencyID:    uuid.NewString(),
		RecipientID:    recipientID,
		Payload: models.NotificationPayload{
			Title: "New Emergency Alert",
			Body:  "Emergency reported nearby",
			SMS:   "EMERGENCY nearby",
		},
	}
}

func TestProcessJob(t *testing.T) {
	recipientID := uuid.NewString()

	t.Run("first successful channel stops the walk", func(t *testing.T) {
		repo := newFakeNotifyRepo()
		repo.users[recipientID] = &models.User{
			ID:    recipientID,
			Email: "responder@example.com",
			Phone: "+2348100000001",
		}
		senders := orderedSenders()
		uc := usecase.NewNotifyUC(&models.Config{}, repo, asChannelSenders(senders))

		job := deliveryJob(&recipientID)
		require.NoError(t, uc.ProcessJob(context.Background(), job, false))

		// Email succeeded, nothing after it ran
		assert.Equal(t, 1, senders[0].calls)
		assert.Equal(t, 0, senders[1].calls)

		require.Len(t, repo.attempts, 1)
		assert.Equal(t, models.ChannelEmail, repo.attempts[0].Channel)
		assert.True(t, repo.attempts[0].Success)
		require.NotNil(t, repo.attempts[0].Response)
		assert.Equal(t, models.NotificationStatusSent, repo.statuses[job.NotificationID])
	})

	t.Run("failures walk down the order until one succeeds", func(t *testing.T) {
		repo := newFakeNotifyRepo()
		repo.users[recipientID] = &models.User{
			ID:    recipientID,
			Email: "responder@example.com",
			Phone: "+2348100000001",
		}
		senders := orderedSenders()
		senders[0].sendErr = assert.AnError // email down
		senders[1].sendErr = assert.AnError // termii down
		uc := usecase.NewNotifyUC(&models.Config{}, repo, asChannelSenders(senders))

		job := deliveryJob(&recipientID)
		require.NoError(t, uc.ProcessJob(context.Background(), job, false))

		// Two failed attempts then the twilio success, each with its own row
		require.Len(t, repo.attempts, 3)
		assert.Equal(t, models.ChannelEmail, repo.attempts[0].Channel)
		assert.False(t, repo.attempts[0].Success)
		require.NotNil(t, repo.attempts[0].ErrorMessage)
		assert.Equal(t, models.ChannelTermiiSMS, repo.attempts[1].Channel)
		assert.False(t, repo.attempts[1].Success)
		assert.Equal(t, models.ChannelTwilioSMS, repo.attempts[2].Channel)
		assert.True(t, repo.attempts[2].Success)
		assert.Equal(t, models.NotificationStatusSent, repo.statuses[job.NotificationID])
	})

	t.Run("channels without a contact field are skipped silently", func(t *testing.T) {
		repo := newFakeNotifyRepo()
		// No email address: the email channel must not even be attempted
		repo.users[recipientID] = &models.User{
			ID:    recipientID,
			Phone: "+2348100000001",
		}
		senders := orderedSenders()
		uc := usecase.NewNotifyUC(&models.Config{}, repo, asChannelSenders(senders))

		job := deliveryJob(&recipientID)
		require.NoError(t, uc.ProcessJob(context.Background(), job, false))

		assert.Equal(t, 0, senders[0].calls)
		require.Len(t, repo.attempts, 1)
		assert.Equal(t, models.ChannelTermiiSMS, repo.attempts[0].Channel)
	})

	t.Run("exhaustion on a non-final attempt asks for a retry", func(t *testing.T) {
		repo := newFakeNotifyRepo()
		repo.users[recipientID] = &models.User{
			ID:    recipientID,
			Phone: "+2348100000001",
		}
		senders := orderedSenders()
		for _, s := range senders {
			s.sendErr = assert.AnError
		}
		uc := usecase.NewNotifyUC(&models.Config{}, repo, asChannelSenders(senders))

		job := deliveryJob(&recipientID)
		err := uc.ProcessJob(context.Background(), job, false)
		require.Error(t, err)

		// Three phone channels were tried, and the notification is not
		// finalized while retries remain
		assert.Len(t, repo.attempts, 3)
		_, finalized := repo.statuses[job.NotificationID]
		assert.False(t, finalized)
	})

	t.Run("exhaustion on the final attempt marks the notification failed", func(t *testing.T) {
		repo := newFakeNotifyRepo()
		repo.users[recipientID] = &models.User{
			ID:    recipientID,
			Phone: "+2348100000001",
		}
		senders := orderedSenders()
		for _, s := range senders {
			s.sendErr = assert.AnError
		}
		uc := usecase.NewNotifyUC(&models.Config{}, repo, asChannelSenders(senders))

		job := deliveryJob(&recipientID)
		require.NoError(t, uc.ProcessJob(context.Background(), job, true))
		assert.Equal(t, models.NotificationStatusFailed, repo.statuses[job.NotificationID])
	})

	t.Run("admin notifications resolve the phone from meta", func(t *testing.T) {
		repo := newFakeNotifyRepo()
		senders := orderedSenders()
		uc := usecase.NewNotifyUC(&models.Config{}, repo, asChannelSenders(senders))

		job := deliveryJob(nil)
		meta, _ := json.Marshal(models.NotificationMeta{AdminPhone: "+2348000000001"})
		repo.notifications[job.NotificationID] = &models.Notification{
			ID:      job.NotificationID,
			Channel: models.ChannelTermiiSMS,
			Meta:    meta,
		}

		require.NoError(t, uc.ProcessJob(context.Background(), job, false))

		// No email or push contact: the walk starts at the first SMS channel
		assert.Equal(t, 0, senders[0].calls)
		require.Len(t, repo.attempts, 1)
		assert.Equal(t, models.ChannelTermiiSMS, repo.attempts[0].Channel)
		assert.True(t, repo.attempts[0].Success)
	})

	t.Run("admin notification without a phone is an error", func(t *testing.T) {
		repo := newFakeNotifyRepo()
		uc := usecase.NewNotifyUC(&models.Config{}, repo, asChannelSenders(orderedSenders()))

		job := deliveryJob(nil)
		repo.notifications[job.NotificationID] = &models.Notification{ID: job.NotificationID}

		err := uc.ProcessJob(context.Background(), job, false)
		require.Error(t, err)
		assert.Empty(t, repo.attempts)
	})

	t.Run("audit write failures do not interrupt the walk", func(t *testing.T) {
		repo := newFakeNotifyRepo()
		repo.attemptErr = assert.AnError
		repo.users[recipientID] = &models.User{
			ID:    recipientID,
			Phone: "+2348100000001",
		}
		senders := orderedSenders()
		senders[1].sendErr = assert.AnError
		uc := usecase.NewNotifyUC(&models.Config{}, repo, asChannelSenders(senders))

		job := deliveryJob(&recipientID)
		require.NoError(t, uc.ProcessJob(context.Background(), job, false))
		assert.Equal(t, models.NotificationStatusSent, repo.statuses[job.NotificationID])
	})
}
