package registry

import "sync"

// SharedMessage is an interned message body. Instances are immutable after
// creation and shared by pointer between every delivery of the same text.
type SharedMessage struct {
	Text string
}

// Flyweight caches SharedMessage instances keyed by exact text equality.
// Two Shared calls with equal strings return the same instance.
type Flyweight struct {
	mu     sync.Mutex
	byText map[string]*SharedMessage
	hits   int64
	misses int64
}

// NewFlyweight creates an empty message cache.
func NewFlyweight() *Flyweight {
	return &Flyweight{byText: make(map[string]*SharedMessage)}
}

// Shared returns the cached instance for text, creating it on first use.
func (f *Flyweight) Shared(text string) *SharedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok := f.byText[text]; ok {
		f.hits++
		return m
	}

	m := &SharedMessage{Text: text}
	f.byText[text] = m
	f.misses++
	return m
}

// Stats returns cache hit and miss counters.
func (f *Flyweight) Stats() (hits, misses int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits, f.misses
}

// Len returns the number of distinct cached messages.
func (f *Flyweight) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byText)
}
