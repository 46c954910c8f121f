package daemon

import (
	"context"
	"time"
)

// Component is a long-running part of the intake process that the
// daemon initializes, starts, and stops in dependency order.
type Component interface {
	// Name returns the unique name of the component.
	Name() string

	// Dependencies returns names of components that must start first.
	Dependencies() []string

	// Init prepares the component. Called once before Start.
	Init(ctx context.Context) error

	// Start begins the component's work. Must not block; long-running
	// work happens in goroutines owned by the component.
	Start(ctx context.Context) error

	// Stop shuts the component down gracefully.
	Stop(ctx context.Context) error

	// Health reports the component's current state.
	Health(ctx context.Context) ComponentHealth
}

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth is a point-in-time health report.
type ComponentHealth struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Checked time.Time    `json:"checked"`
}

func Healthy() ComponentHealth {
	return ComponentHealth{Status: HealthStatusHealthy, Checked: time.Now().UTC()}
}

func Degraded(message string) ComponentHealth {
	return ComponentHealth{Status: HealthStatusDegraded, Message: message, Checked: time.Now().UTC()}
}

func Unhealthy(message string) ComponentHealth {
	return ComponentHealth{Status: HealthStatusUnhealthy, Message: message, Checked: time.Now().UTC()}
}
