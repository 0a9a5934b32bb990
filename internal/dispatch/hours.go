package dispatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/clawinfra/herald/internal/types"
)

// ErrNoWindow is returned when no routing window claims the current time.
// The message is never dropped silently.
var ErrNoWindow = errors.New("dispatch: no routing window matches")

// Window declares one time-of-day routing rule. Bounds are "HH:MM"; To is
// exclusive and a window with To <= From wraps past midnight.
type Window struct {
	Name string
	From string
	To   string
	Kind types.Kind
}

// windowNode is one handler in the chain; each node has exactly one
// successor (or none, terminal).
type windowNode struct {
	name string
	from int // minutes since midnight, inclusive
	to   int // minutes since midnight, exclusive
	kind types.Kind
	next *windowNode
}

// WindowChain routes by wall-clock time through a linked handler chain.
// The first window whose span contains the time handles the message.
type WindowChain struct {
	head *windowNode
}

// NewWindowChain builds a chain in declaration order.
func NewWindowChain(windows []Window) (*WindowChain, error) {
	if len(windows) == 0 {
		return nil, errors.New("dispatch: at least one window required")
	}

	var head, tail *windowNode
	for _, w := range windows {
		from, err := parseClock(w.From)
		if err != nil {
			return nil, fmt.Errorf("window %q: invalid from: %w", w.Name, err)
		}
		to, err := parseClock(w.To)
		if err != nil {
			return nil, fmt.Errorf("window %q: invalid to: %w", w.Name, err)
		}
		if w.Kind == "" {
			return nil, fmt.Errorf("window %q: kind required", w.Name)
		}

		node := &windowNode{name: w.Name, from: from, to: to, kind: w.Kind}
		if head == nil {
			head = node
		} else {
			tail.next = node
		}
		tail = node
	}
	return &WindowChain{head: head}, nil
}

// Route walks the chain and returns the kind of the first matching window,
// or ErrNoWindow when the chain is exhausted.
func (c *WindowChain) Route(at time.Time) (types.Kind, error) {
	minutes := at.Hour()*60 + at.Minute()
	return c.head.handle(minutes)
}

func (n *windowNode) handle(minutes int) (types.Kind, error) {
	if n.contains(minutes) {
		return n.kind, nil
	}
	if n.next == nil {
		return "", ErrNoWindow
	}
	return n.next.handle(minutes)
}

func (n *windowNode) contains(minutes int) bool {
	if n.from < n.to {
		return minutes >= n.from && minutes < n.to
	}
	// wraps midnight (e.g. 22:00-06:00)
	return minutes >= n.from || minutes < n.to
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
