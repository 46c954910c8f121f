package daemon

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/vozlegal/intake/internal/errors"
)

const healthCheckInterval = 30 * time.Second

// Daemon runs the intake process: it initializes components in
// dependency order, starts them, monitors their health, and shuts them
// down in reverse order when the context is cancelled.
type Daemon struct {
	components      map[string]Component
	startOrder      []string
	shutdownTimeout time.Duration

	mu      sync.RWMutex
	health  map[string]ComponentHealth
	started []string
}

func New(shutdownTimeout time.Duration) *Daemon {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	return &Daemon{
		components:      make(map[string]Component),
		shutdownTimeout: shutdownTimeout,
		health:          make(map[string]ComponentHealth),
	}
}

// AddComponent registers a component. Registration order is irrelevant;
// start order comes from declared dependencies.
func (d *Daemon) AddComponent(c Component) error {
	name := c.Name()
	if name == "" {
		return errors.InvalidInput("component name must not be empty")
	}
	if _, exists := d.components[name]; exists {
		return errors.InvalidInput("duplicate component: " + name)
	}
	d.components[name] = c
	return nil
}

// Run initializes and starts every component, then blocks until ctx is
// cancelled and shuts everything down in reverse start order.
func (d *Daemon) Run(ctx context.Context) error {
	order, err := d.resolveStartOrder()
	if err != nil {
		return err
	}
	d.startOrder = order

	for _, name := range order {
		c := d.components[name]
		if err := c.Init(ctx); err != nil {
			d.rollback(ctx)
			return errors.Wrap(err, "failed to init component "+name)
		}
	}

	for _, name := range order {
		c := d.components[name]
		if err := c.Start(ctx); err != nil {
			d.rollback(ctx)
			return errors.Wrap(err, "failed to start component "+name)
		}
		d.mu.Lock()
		d.started = append(d.started, name)
		d.mu.Unlock()
		slog.Info("Component started", "component", name)
	}

	monitorDone := d.monitorHealth(ctx)

	<-ctx.Done()
	<-monitorDone
	return d.shutdown()
}

// Health returns the latest health report per component.
func (d *Daemon) Health() map[string]ComponentHealth {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]ComponentHealth, len(d.health))
	for name, h := range d.health {
		out[name] = h
	}
	return out
}

// resolveStartOrder topologically sorts components by their declared
// dependencies, detecting unknown references and cycles.
func (d *Daemon) resolveStartOrder() ([]string, error) {
	for name, c := range d.components {
		for _, dep := range c.Dependencies() {
			if _, ok := d.components[dep]; !ok {
				return nil, errors.InvalidInput("component " + name + " depends on unknown component " + dep)
			}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(d.components))
	order := make([]string, 0, len(d.components))

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return errors.InvalidInput("dependency cycle involving component " + name)
		}
		state[name] = visiting
		for _, dep := range d.components[name].Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[name] = done
		order = append(order, name)
		return nil
	}

	names := make([]string, 0, len(d.components))
	for name := range d.components {
		names = append(names, name)
	}
	// Deterministic traversal keeps start order stable across runs.
	slices.Sort(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (d *Daemon) monitorHealth(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()

		d.checkHealth(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.checkHealth(ctx)
			}
		}
	}()
	return done
}

func (d *Daemon) checkHealth(ctx context.Context) {
	d.mu.RLock()
	started := make([]string, len(d.started))
	copy(started, d.started)
	d.mu.RUnlock()

	for _, name := range started {
		h := d.components[name].Health(ctx)
		d.mu.Lock()
		d.health[name] = h
		d.mu.Unlock()

		if h.Status != HealthStatusHealthy {
			slog.Warn("Component unhealthy", "component", name, "status", h.Status, "message", h.Message)
		}
	}
}

// shutdown stops started components in reverse start order.
func (d *Daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), d.shutdownTimeout)
	defer cancel()

	d.mu.RLock()
	started := make([]string, len(d.started))
	copy(started, d.started)
	d.mu.RUnlock()

	var firstErr error
	for i := len(started) - 1; i >= 0; i-- {
		name := started[i]
		if err := d.components[name].Stop(ctx); err != nil {
			slog.Error("Component stop failed", "component", name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		slog.Info("Component stopped", "component", name)
	}
	return firstErr
}

// rollback stops whatever started before a startup failure.
func (d *Daemon) rollback(ctx context.Context) {
	d.mu.RLock()
	started := make([]string, len(d.started))
	copy(started, d.started)
	d.mu.RUnlock()

	for i := len(started) - 1; i >= 0; i-- {
		name := started[i]
		if err := d.components[name].Stop(ctx); err != nil {
			slog.Error("Rollback stop failed", "component", name, "error", err)
		}
	}
}
