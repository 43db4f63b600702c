// Package context provides shared context timeouts.
package context

import (
	"context"
	"time"
)

const (
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultPingTimeout bounds ping and readiness probes.
	DefaultPingTimeout = 5 * time.Second
)

// WithShutdownTimeout creates a context with default shutdown timeout.
func WithShutdownTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DefaultShutdownTimeout)
}

// WithPingTimeout derives a context bounded by DefaultPingTimeout from parent.
func WithPingTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultPingTimeout)
}
