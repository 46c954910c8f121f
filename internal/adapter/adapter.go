package adapter

import "context"

// Adapter is a conversation transport: it receives user messages from a
// platform, runs them through the intake flow, and sends replies back.
type Adapter interface {
	Name() string

	// Start begins listening for messages (e.g. long-polling). Must
	// respect context cancellation.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the adapter.
	Stop(ctx context.Context) error

	// Health checks if the adapter is connected.
	Health(ctx context.Context) error
}
