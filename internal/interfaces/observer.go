// Package interfaces defines the trait-style interfaces herald's subsystems
// implement, keeping channels and subscribers swappable via configuration.
package interfaces

import (
	"context"

	"github.com/clawinfra/herald/internal/types"
)

// Subscriber is a party interested in notifications of one kind.
type Subscriber interface {
	// ID uniquely identifies the subscriber; registration is keyed by it.
	ID() string

	// Preference returns the single kind this subscriber wants.
	Preference() types.Kind

	// Update is invoked for every matching notification, in registration order.
	Update(ctx context.Context, n types.Notification) error
}
