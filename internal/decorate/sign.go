package decorate

import (
	"context"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/clawinfra/herald/internal/interfaces"
	"github.com/clawinfra/herald/internal/types"
)

// SignChannel attaches a keyed blake2b digest of the body before delegating,
// so downstream consumers can verify the payload was produced by this daemon.
type SignChannel struct {
	inner interfaces.Channel
	key   []byte
}

// Sign returns a decorator that stamps each notification with a keyed
// digest. The key must be at most 64 bytes (blake2b limit).
func Sign(key []byte) Decorator {
	return func(inner interfaces.Channel) interfaces.Channel {
		return &SignChannel{inner: inner, key: key}
	}
}

func (c *SignChannel) Name() string     { return c.inner.Name() }
func (c *SignChannel) Kind() types.Kind { return c.inner.Kind() }
func (c *SignChannel) Close() error     { return c.inner.Close() }

func (c *SignChannel) Send(ctx context.Context, n types.Notification) error {
	digest, err := Digest(c.key, n.Body)
	if err != nil {
		return fmt.Errorf("sign notification: %w", err)
	}
	n.Digest = digest
	return c.inner.Send(ctx, n)
}

// Digest computes the hex-encoded keyed blake2b-256 digest of body.
func Digest(key []byte, body string) (string, error) {
	h, err := blake2b.New256(key)
	if err != nil {
		return "", err
	}
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil)), nil
}
