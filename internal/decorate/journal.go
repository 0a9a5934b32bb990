package decorate

import (
	"context"
	"fmt"
	"time"

	"github.com/clawinfra/herald/internal/interfaces"
	"github.com/clawinfra/herald/internal/store"
	"github.com/clawinfra/herald/internal/types"
)

// JournalChannel records the outcome of each send in the delivery journal.
type JournalChannel struct {
	inner interfaces.Channel
	store *store.Store
	now   func() time.Time
}

// Journal returns a decorator that writes one journal row per send,
// success or failure.
func Journal(s *store.Store) Decorator {
	return func(inner interfaces.Channel) interfaces.Channel {
		return &JournalChannel{inner: inner, store: s, now: time.Now}
	}
}

func (c *JournalChannel) Name() string     { return c.inner.Name() }
func (c *JournalChannel) Kind() types.Kind { return c.inner.Kind() }
func (c *JournalChannel) Close() error     { return c.inner.Close() }

func (c *JournalChannel) Send(ctx context.Context, n types.Notification) error {
	start := c.now()

	sendErr := c.inner.Send(ctx, n)

	d := types.Delivery{
		ID:       n.ID,
		Kind:     n.Kind,
		To:       n.To,
		Body:     n.Body,
		Digest:   n.Digest,
		Status:   types.StatusSent,
		SentAt:   start.UTC(),
		Duration: c.now().Sub(start),
	}
	if sendErr != nil {
		d.Status = types.StatusFailed
		d.Error = sendErr.Error()
	}

	if err := c.store.Record(ctx, d); err != nil {
		if sendErr != nil {
			// Inner failure wins; journaling is best-effort on that path.
			return sendErr
		}
		return fmt.Errorf("journal delivery: %w", err)
	}
	return sendErr
}
