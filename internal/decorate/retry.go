package decorate

import (
	"context"
	crand "crypto/rand"
	"math/big"
	"time"

	"github.com/clawinfra/herald/internal/interfaces"
	"github.com/clawinfra/herald/internal/types"
)

// RetryPolicy tunes the retry decorator.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	Jitter      time.Duration
}

// RetryChannel retries the inner send with exponential backoff.
type RetryChannel struct {
	inner  interfaces.Channel
	policy RetryPolicy
	sleep  func(time.Duration) // injectable for tests
}

// Retry returns a decorator that retries failed sends. Backoff doubles per
// attempt, with optional random jitter to avoid thundering herds.
func Retry(policy RetryPolicy) Decorator {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.BaseBackoff <= 0 {
		policy.BaseBackoff = 100 * time.Millisecond
	}
	return func(inner interfaces.Channel) interfaces.Channel {
		return &RetryChannel{inner: inner, policy: policy, sleep: time.Sleep}
	}
}

func (c *RetryChannel) Name() string     { return c.inner.Name() }
func (c *RetryChannel) Kind() types.Kind { return c.inner.Kind() }
func (c *RetryChannel) Close() error     { return c.inner.Close() }

func (c *RetryChannel) Send(ctx context.Context, n types.Notification) error {
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		lastErr = c.inner.Send(ctx, n)
		if lastErr == nil {
			return nil
		}
		if attempt == c.policy.MaxAttempts {
			break
		}

		// context-aware backoff: the sleep runs in a goroutine so
		// cancellation is honored immediately.
		d := c.backoff(attempt)
		slept := make(chan struct{})
		go func() {
			c.sleep(d)
			close(slept)
		}()
		select {
		case <-slept:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// backoff returns the delay before the next attempt.
func (c *RetryChannel) backoff(attempt int) time.Duration {
	d := c.policy.BaseBackoff * time.Duration(1<<uint(attempt-1))
	if c.policy.Jitter > 0 {
		max := big.NewInt(int64(c.policy.Jitter))
		if n, err := crand.Int(crand.Reader, max); err == nil {
			d += time.Duration(n.Int64())
		}
	}
	return d
}
