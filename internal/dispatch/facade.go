package dispatch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/clawinfra/herald/internal/types"
)

// Facade offers the one-call send surface most callers want, hiding
// registry lookup, decoration and fan-out behind kind-specific helpers.
type Facade struct {
	d *Dispatcher
}

// NewFacade wraps a dispatcher.
func NewFacade(d *Dispatcher) *Facade {
	return &Facade{d: d}
}

// SendSMS delivers body over the SMS channel.
func (f *Facade) SendSMS(ctx context.Context, to, body string) (*types.Delivery, error) {
	return f.d.Dispatch(ctx, types.KindSMS, to, body)
}

// SendEmail delivers body over the email channel.
func (f *Facade) SendEmail(ctx context.Context, to, body string) (*types.Delivery, error) {
	return f.d.Dispatch(ctx, types.KindEmail, to, body)
}

// SendPush delivers body over the push channel.
func (f *Facade) SendPush(ctx context.Context, to, body string) (*types.Delivery, error) {
	return f.d.Dispatch(ctx, types.KindPush, to, body)
}

// SendAll broadcasts body over every registered channel concurrently and
// returns the deliveries that completed. The first send error is returned;
// the remaining sends still run to completion.
func (f *Facade) SendAll(ctx context.Context, to, body string) ([]types.Delivery, error) {
	kinds := f.d.Kinds()
	results := make([]*types.Delivery, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			d, err := f.d.Dispatch(ctx, kind, to, body)
			results[i] = d
			return err
		})
	}
	err := g.Wait()

	deliveries := make([]types.Delivery, 0, len(kinds))
	for _, d := range results {
		if d != nil {
			deliveries = append(deliveries, *d)
		}
	}
	return deliveries, err
}
