// Package dispatch routes notifications to channels resolved through the
// registry, applying the configured decorator chain and fanning out to
// subscribers.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clawinfra/herald/internal/decorate"
	"github.com/clawinfra/herald/internal/registry"
	"github.com/clawinfra/herald/internal/subscribe"
	"github.com/clawinfra/herald/internal/types"
)

// DeliveryHook observes every completed delivery, success or failure.
type DeliveryHook func(types.Delivery)

// Dispatcher is the client-facing entry point for sending notifications.
type Dispatcher struct {
	registry    *registry.Registry
	subscribers *subscribe.Registry
	flyweight   *registry.Flyweight
	windows     *WindowChain
	decorators  []decorate.Decorator
	hooks       []DeliveryHook
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSubscribers enables fan-out to a subscriber registry after each
// successful send.
func WithSubscribers(s *subscribe.Registry) Option {
	return func(d *Dispatcher) { d.subscribers = s }
}

// WithFlyweight interns message bodies through the shared-message cache.
func WithFlyweight(f *registry.Flyweight) Option {
	return func(d *Dispatcher) { d.flyweight = f }
}

// WithWindows enables time-of-day routing for DispatchRouted.
func WithWindows(w *WindowChain) Option {
	return func(d *Dispatcher) { d.windows = w }
}

// WithDecorators sets the decorator chain applied to every resolved
// channel; the first decorator is outermost.
func WithDecorators(ds ...decorate.Decorator) Option {
	return func(d *Dispatcher) { d.decorators = ds }
}

// WithDeliveryHook registers a hook invoked for every completed delivery.
func WithDeliveryHook(h DeliveryHook) Option {
	return func(d *Dispatcher) { d.hooks = append(d.hooks, h) }
}

// New creates a dispatcher over the given channel registry.
func New(reg *registry.Registry, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		registry: reg,
		logger:   logger.With("component", "dispatch"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnDelivery registers an additional delivery hook. Call before the
// dispatcher starts serving; hooks are not guarded by a lock.
func (d *Dispatcher) OnDelivery(h DeliveryHook) {
	d.hooks = append(d.hooks, h)
}

// Kinds returns the channel kinds currently registered.
func (d *Dispatcher) Kinds() []types.Kind {
	return d.registry.Kinds()
}

// Dispatch sends body to the channel registered for kind. It returns the
// delivery record along with any send error; an unregistered kind fails
// with registry.ErrUnknownKind before anything is sent.
func (d *Dispatcher) Dispatch(ctx context.Context, kind types.Kind, to, body string) (*types.Delivery, error) {
	if d.flyweight != nil {
		body = d.flyweight.Shared(body).Text
	}

	n := types.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		To:        to,
		Body:      body,
		CreatedAt: d.now(),
	}

	ch, err := d.registry.Resolve(kind)
	if err != nil {
		return nil, err
	}

	wrapped := decorate.Wrap(ch, d.decorators...)

	start := d.now()
	sendErr := wrapped.Send(ctx, n)
	delivery := types.Delivery{
		ID:       n.ID,
		Kind:     kind,
		To:       to,
		Body:     body,
		Status:   types.StatusSent,
		SentAt:   start.UTC(),
		Duration: d.now().Sub(start),
	}
	if sendErr != nil {
		delivery.Status = types.StatusFailed
		delivery.Error = sendErr.Error()
	}

	for _, hook := range d.hooks {
		hook(delivery)
	}

	if sendErr != nil {
		return &delivery, sendErr
	}

	if d.subscribers != nil {
		reached := d.subscribers.Notify(ctx, n)
		if reached > 0 {
			d.logger.Debug("subscribers notified", "id", n.ID, "count", reached)
		}
	}

	return &delivery, nil
}

// DispatchRouted picks the channel kind from the time-of-day window chain
// and dispatches through it. Without a configured chain, or when no window
// matches, it fails with ErrNoWindow rather than dropping the message.
func (d *Dispatcher) DispatchRouted(ctx context.Context, to, body string) (*types.Delivery, error) {
	if d.windows == nil {
		return nil, ErrNoWindow
	}
	kind, err := d.windows.Route(d.now())
	if err != nil {
		d.logger.Warn("no routing window matched", "at", d.now().Format("15:04"))
		return nil, err
	}
	return d.Dispatch(ctx, kind, to, body)
}
