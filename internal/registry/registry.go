// Package registry maps channel kinds to factories and hands out channel
// instances on demand.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/clawinfra/herald/internal/interfaces"
	"github.com/clawinfra/herald/internal/types"
)

// ErrUnknownKind is returned by Resolve when no factory is registered for
// the requested kind. There is no catch-all fallback.
var ErrUnknownKind = errors.New("registry: unknown channel kind")

// Factory constructs a fresh channel instance for its kind.
type Factory func() (interfaces.Channel, error)

// Registry maintains the kind -> factory mapping.
type Registry struct {
	mu        sync.RWMutex
	factories map[types.Kind]Factory
	logger    *slog.Logger
}

// New creates an empty channel registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		factories: make(map[types.Kind]Factory),
		logger:    logger.With("component", "registry"),
	}
}

// Register adds or replaces the factory for a kind. Re-registering a kind
// swaps its factory; the old one is discarded.
func (r *Registry) Register(kind types.Kind, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		r.logger.Debug("replacing channel factory", "kind", kind)
	}
	r.factories[kind] = factory
}

// Resolve constructs a channel for the kind. Repeated calls yield
// functionally equivalent instances, not necessarily the same identity.
func (r *Registry) Resolve(kind types.Kind) (interfaces.Channel, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	ch, err := factory()
	if err != nil {
		return nil, fmt.Errorf("construct channel %q: %w", kind, err)
	}
	return ch, nil
}

// Has reports whether a factory is registered for kind.
func (r *Registry) Has(kind types.Kind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Kinds returns all registered kinds, sorted for stable output.
func (r *Registry) Kinds() []types.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]types.Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}
