// Package decorate wraps channels with cross-cutting send behavior.
//
// Every decorator implements interfaces.Channel and owns exactly one inner
// sender, so chains compose freely and always terminate in a concrete
// channel. A decorator runs its pre-behavior, delegates, then runs its
// post-behavior; it never suppresses an inner failure.
package decorate

import "github.com/clawinfra/herald/internal/interfaces"

// Decorator produces a wrapped channel from an inner one.
type Decorator func(interfaces.Channel) interfaces.Channel

// Wrap applies decorators around inner. The first decorator listed becomes
// the outermost wrapper: its pre-behavior runs first and its post-behavior
// runs last.
func Wrap(inner interfaces.Channel, ds ...Decorator) interfaces.Channel {
	for i := len(ds) - 1; i >= 0; i-- {
		inner = ds[i](inner)
	}
	return inner
}
