package usecase_test

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
)

// fakeRepo is an in-memory EmergencyRepo. The accept path reproduces the
// production transaction semantics: the conditional transition and the link
// update happen atomically, and a lost race leaves the link untouched.
type fakeRepo struct {
	mu sync.Mutex

	users         map[string]*models.User
	emergencies   map[string]*models.Emergency
	links         map[string]*models.ResponderLink
	notifications []*models.Notification
	candidates    []*models.User

	slotDenied bool
	slotErr    error
	recent     bool
	geoRemoved []string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:       make(map[string]*models.User),
		emergencies: make(map[string]*models.Emergency),
		links:       make(map[string]*models.ResponderLink),
	}
}

func linkKey(emergencyID, responderID string) string {
	return emergencyID + "/" + responderID
}

func (r *fakeRepo) CreateEmergency(ctx context.Context, em *models.Emergency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *em
	r.emergencies[em.ID] = &stored
	return nil
}

func (r *fakeRepo) GetEmergency(ctx context.Context, emergencyID string) (*models.Emergency, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	em, ok := r.emergencies[emergencyID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *em
	return &copied, nil
}

func (r *fakeRepo) HasRecentEmergency(ctx context.Context, creatorID string, window time.Duration) (bool, error) {
	return r.recent, nil
}

func (r *fakeRepo) TransitionStatus(ctx context.Context, emergencyID string, from, to models.EmergencyStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	em, ok := r.emergencies[emergencyID]
	if !ok || em.Status != from {
		return false, nil
	}
	em.Status = to
	return true, nil
}

func (r *fakeRepo) CreateResponderLinks(ctx context.Context, emergencyID string, responderIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, responderID := range responderIDs {
		r.links[linkKey(emergencyID, responderID)] = &models.ResponderLink{
			EmergencyID: emergencyID,
			ResponderID: responderID,
			CreatedAt:   time.Now(),
		}
	}
	return nil
}

func (r *fakeRepo) GetResponderLink(ctx context.Context, emergencyID, responderID string) (*models.ResponderLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[linkKey(emergencyID, responderID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *link
	return &copied, nil
}

func (r *fakeRepo) GetResponderLinks(ctx context.Context, emergencyID string) ([]*models.ResponderLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var links []*models.ResponderLink
	for _, link := range r.links {
		if link.EmergencyID == emergencyID {
			copied := *link
			links = append(links, &copied)
		}
	}
	return links, nil
}

func (r *fakeRepo) MarkLinkRejected(ctx context.Context, emergencyID, responderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[linkKey(emergencyID, responderID)]
	if !ok {
		return sql.ErrNoRows
	}
	if link.Accepted == nil {
		rejected := false
		now := time.Now()
		link.Accepted = &rejected
		link.RespondedAt = &now
	}
	return nil
}

func (r *fakeRepo) AcceptEmergency(ctx context.Context, emergencyID, responderID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	em, ok := r.emergencies[emergencyID]
	if !ok || em.Status != models.EmergencyStatusPending {
		return false, nil
	}
	link, ok := r.links[linkKey(emergencyID, responderID)]
	if !ok {
		return false, sql.ErrNoRows
	}

	now := time.Now()
	em.Status = models.EmergencyStatusAccepted
	em.AcceptedAt = &now
	accepted := true
	link.Accepted = &accepted
	link.RespondedAt = &now
	if user, ok := r.users[responderID]; ok {
		user.Available = false
	}
	return true, nil
}

func (r *fakeRepo) GetUser(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeRepo) GetCandidateResponders(ctx context.Context) ([]*models.User, error) {
	return r.candidates, nil
}

func (r *fakeRepo) SetResponderAvailability(ctx context.Context, responderID string, available bool, latitude, longitude *float64, geohash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[responderID]; ok {
		user.Available = available
		user.Latitude = latitude
		user.Longitude = longitude
		user.Geohash = geohash
	}
	return nil
}

func (r *fakeRepo) AcquireCreationSlot(ctx context.Context, creatorID string, window time.Duration) (bool, error) {
	if r.slotErr != nil {
		return false, r.slotErr
	}
	return !r.slotDenied, nil
}

func (r *fakeRepo) CreateNotification(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *notification
	r.notifications = append(r.notifications, &copied)
	return nil
}

func (r *fakeRepo) AddAvailableResponder(ctx context.Context, responderID string, latitude, longitude float64) error {
	return nil
}

func (r *fakeRepo) RemoveAvailableResponder(ctx context.Context, responderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.geoRemoved = append(r.geoRemoved, responderID)
	return nil
}

func (r *fakeRepo) FindNearbyResponders(ctx context.Context, latitude, longitude, radiusKm float64) ([]models.NearbyResponder, error) {
	return nil, nil
}

// fakeGateway records published jobs and realtime pushes
type fakeGateway struct {
	mu sync.Mutex

	jobs               []*models.NotificationJob
	newEmergencyPushes [][]string
	acceptedPushes     []string
	rejectedPushes     []string
	cancelledPushes    []string
	completedPushes    []string
	publishErr         error
}

func (g *fakeGateway) PublishNotificationJob(ctx context.Context, job *models.NotificationJob) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.publishErr != nil {
		return g.publishErr
	}
	copied := *job
	g.jobs = append(g.jobs, &copied)
	return nil
}

func (g *fakeGateway) PushNewEmergency(ctx context.Context, responderIDs []string, em *models.Emergency) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.newEmergencyPushes = append(g.newEmergencyPushes, append([]string(nil), responderIDs...))
	return nil
}

func (g *fakeGateway) PushResponderAccepted(ctx context.Context, em *models.Emergency, responderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acceptedPushes = append(g.acceptedPushes, responderID)
	return nil
}

func (g *fakeGateway) PushResponderRejected(ctx context.Context, emergencyID, responderID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rejectedPushes = append(g.rejectedPushes, responderID)
	return nil
}

func (g *fakeGateway) PushEmergencyCancelled(ctx context.Context, emergencyID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelledPushes = append(g.cancelledPushes, emergencyID)
	return nil
}

func (g *fakeGateway) PushEmergencyCompleted(ctx context.Context, emergencyID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completedPushes = append(g.completedPushes, emergencyID)
	return nil
}
