package components

import (
	"context"
	"sync"

	"github.com/vozlegal/intake/internal/daemon"
	"github.com/vozlegal/intake/internal/session"
)

// ReaperComponent runs the idle-session sweep on the daemon lifecycle.
type ReaperComponent struct {
	reaper *session.Reaper

	mu      sync.Mutex
	started bool
}

func NewReaperComponent(r *session.Reaper) *ReaperComponent {
	return &ReaperComponent{reaper: r}
}

func (r *ReaperComponent) Name() string { return "session-reaper" }

func (r *ReaperComponent) Dependencies() []string { return nil }

func (r *ReaperComponent) Init(ctx context.Context) error { return nil }

func (r *ReaperComponent) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.reaper.Start(); err != nil {
		return err
	}
	r.started = true
	return nil
}

func (r *ReaperComponent) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return nil
	}
	r.started = false
	r.reaper.Stop()
	return nil
}

func (r *ReaperComponent) Health(ctx context.Context) daemon.ComponentHealth {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return daemon.Unhealthy("not started")
	}
	return daemon.Healthy()
}
