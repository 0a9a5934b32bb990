package interfaces

import (
	"context"

	"github.com/clawinfra/herald/internal/types"
)

// Channel is the interface for delivery channels (SMS, Email, Push, Webhook, etc.).
// Decorators implement the same interface so a wrapped channel is indistinguishable
// from a bare one; every chain terminates in a concrete channel.
type Channel interface {
	// Name returns the channel identifier.
	Name() string

	// Kind returns the channel kind the registry resolves by.
	Kind() types.Kind

	// Send delivers a single notification.
	Send(ctx context.Context, n types.Notification) error

	// Close shuts down the channel and releases transport resources.
	Close() error
}
