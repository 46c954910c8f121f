package session

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vozlegal/intake/internal/errors"
)

// Reaper sweeps idle sessions out of the manager on a cron schedule.
type Reaper struct {
	manager  *Manager
	ttl      time.Duration
	schedule string
	cron     *cron.Cron
}

func NewReaper(manager *Manager, ttl time.Duration, schedule string) *Reaper {
	return &Reaper{
		manager:  manager,
		ttl:      ttl,
		schedule: schedule,
	}
}

// Start registers the sweep job and launches the scheduler.
func (r *Reaper) Start() error {
	if r.ttl <= 0 {
		return errors.InvalidInput("session ttl must be positive")
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() {
		r.manager.Reap(r.ttl)
	}); err != nil {
		return errors.Wrap(err, "invalid sweep schedule")
	}

	c.Start()
	r.cron = c
	slog.Info("Session reaper started", "ttl", r.ttl, "schedule", r.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	if r.cron == nil {
		return
	}
	ctx := r.cron.Stop()
	<-ctx.Done()
	slog.Info("Session reaper stopped")
}
