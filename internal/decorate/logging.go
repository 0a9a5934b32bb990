package decorate

import (
	"context"
	"log/slog"
	"time"

	"github.com/clawinfra/herald/internal/interfaces"
	"github.com/clawinfra/herald/internal/types"
)

// LoggingChannel logs around the inner send.
type LoggingChannel struct {
	inner  interfaces.Channel
	logger *slog.Logger
}

// Logging returns a decorator that logs each send with its outcome and latency.
func Logging(logger *slog.Logger) Decorator {
	if logger == nil {
		logger = slog.Default()
	}
	return func(inner interfaces.Channel) interfaces.Channel {
		return &LoggingChannel{
			inner:  inner,
			logger: logger.With("channel", inner.Name()),
		}
	}
}

func (c *LoggingChannel) Name() string     { return c.inner.Name() }
func (c *LoggingChannel) Kind() types.Kind { return c.inner.Kind() }
func (c *LoggingChannel) Close() error     { return c.inner.Close() }

func (c *LoggingChannel) Send(ctx context.Context, n types.Notification) error {
	c.logger.Debug("sending notification", "id", n.ID, "to", n.To, "length", len(n.Body))
	start := time.Now()

	err := c.inner.Send(ctx, n)

	if err != nil {
		c.logger.Error("notification failed", "id", n.ID, "error", err, "duration", time.Since(start))
		return err
	}
	c.logger.Info("notification sent", "id", n.ID, "duration", time.Since(start))
	return nil
}
