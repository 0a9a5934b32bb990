// Package subscribe tracks interested parties per channel kind and fans
// notifications out to the ones whose preference matches.
package subscribe

import (
	"context"
	"log/slog"
	"sync"

	"github.com/clawinfra/herald/internal/interfaces"
	"github.com/clawinfra/herald/internal/types"
)

// Registry holds the subscriber set. Registration has true set semantics
// keyed by subscriber ID: re-subscribing is a no-op and the first
// registration fixes the fan-out position.
type Registry struct {
	mu      sync.RWMutex
	order   []interfaces.Subscriber
	present map[string]struct{}
	logger  *slog.Logger
}

// NewRegistry creates an empty subscriber registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		present: make(map[string]struct{}),
		logger:  logger.With("component", "subscribers"),
	}
}

// Subscribe adds a subscriber. A subscriber already present (by ID) is left
// in place, so duplicate registration never causes duplicate delivery.
func (r *Registry) Subscribe(s interfaces.Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.present[s.ID()]; ok {
		r.logger.Debug("subscriber already registered", "id", s.ID())
		return
	}
	r.present[s.ID()] = struct{}{}
	r.order = append(r.order, s)
	r.logger.Debug("subscriber registered", "id", s.ID(), "kind", s.Preference())
}

// Unsubscribe removes a subscriber by ID. Unknown subscribers are ignored.
func (r *Registry) Unsubscribe(s interfaces.Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.present[s.ID()]; !ok {
		return
	}
	delete(r.present, s.ID())
	for i, existing := range r.order {
		if existing.ID() == s.ID() {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.logger.Debug("subscriber removed", "id", s.ID())
}

// Notify delivers n to every subscriber whose preference equals n.Kind, in
// registration order. Zero matching subscribers is not an error. It returns
// the number of subscribers reached.
func (r *Registry) Notify(ctx context.Context, n types.Notification) int {
	r.mu.RLock()
	matching := make([]interfaces.Subscriber, 0, len(r.order))
	for _, s := range r.order {
		if s.Preference() == n.Kind {
			matching = append(matching, s)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, s := range matching {
		if err := s.Update(ctx, n); err != nil {
			r.logger.Warn("subscriber update failed", "id", s.ID(), "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
