package usecase

import (
	"context"
	"sync"

	"github.com/rapidaid/rapidaid/internal/pkg/models"
	"github.com/rapidaid/rapidaid/services/emergency"
)

// EmergencyUC implements the emergency use case interface
type EmergencyUC struct {
	cfg  *models.Config
	repo emergency.EmergencyRepo
	gw   emergency.EmergencyGW

	// pushes tracks in-flight best-effort realtime pushes so shutdown can
	// wait for them instead of dropping work on the floor
	pushes sync.WaitGroup
}

// NewEmergencyUC creates a new emergency use case
func NewEmergencyUC(
	cfg *models.Config,
	repo emergency.EmergencyRepo,
	gw emergency.EmergencyGW,
) *EmergencyUC {
	return &EmergencyUC{
		cfg:  cfg,
		repo: repo,
		gw:   gw,
	}
}

// Shutdown waits for in-flight realtime pushes, bounded by the context
func (uc *EmergencyUC) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		uc.pushes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// goPush runs a best-effort realtime push in a tracked goroutine. Errors are
// logged by the push functions themselves; nothing here can fail the caller.
func (uc *EmergencyUC) goPush(fn func()) {
	uc.pushes.Add(1)
	go func() {
		defer uc.pushes.Done()
		fn()
	}()
}
