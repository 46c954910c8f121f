package components

import (
	"context"
	"sync"

	"github.com/vozlegal/intake/internal/adapter"
	"github.com/vozlegal/intake/internal/daemon"
)

// AdapterComponent wraps a conversation adapter (Telegram today) so the
// daemon can manage its lifecycle alongside the HTTP server.
type AdapterComponent struct {
	adapter adapter.Adapter

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

func NewAdapterComponent(a adapter.Adapter) *AdapterComponent {
	return &AdapterComponent{adapter: a}
}

func (c *AdapterComponent) Name() string { return c.adapter.Name() + "-adapter" }

// Adapters feed turns into the same intake service the webhooks use, so
// they only need the process up, not the HTTP listener.
func (c *AdapterComponent) Dependencies() []string { return nil }

func (c *AdapterComponent) Init(ctx context.Context) error { return nil }

func (c *AdapterComponent) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if err := c.adapter.Start(runCtx); err != nil {
		cancel()
		return err
	}
	c.cancel = cancel
	c.started = true
	return nil
}

func (c *AdapterComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	c.started = false
	c.cancel()
	return c.adapter.Stop(ctx)
}

func (c *AdapterComponent) Health(ctx context.Context) daemon.ComponentHealth {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()

	if !started {
		return daemon.Unhealthy("not started")
	}
	if err := c.adapter.Health(ctx); err != nil {
		return daemon.Degraded(err.Error())
	}
	return daemon.Healthy()
}
