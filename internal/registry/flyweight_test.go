package registry

import (
	"sync"
	"testing"
)

func TestSharedIdentity(t *testing.T) {
	f := NewFlyweight()

	a := f.Shared("X")
	b := f.Shared("X")
	if a != b {
		t.Error("equal texts must share one instance")
	}

	c := f.Shared("Y")
	if a == c {
		t.Error("distinct texts must not share an instance")
	}
	if c.Text != "Y" {
		t.Errorf("unexpected text: %s", c.Text)
	}
}

func TestSharedExactEquality(t *testing.T) {
	f := NewFlyweight()

	// Equality is exact string equality, not semantic similarity
	a := f.Shared("hello")
	b := f.Shared("Hello")
	if a == b {
		t.Error("case-differing texts must not share an instance")
	}
	c := f.Shared("hello ")
	if a == c {
		t.Error("whitespace-differing texts must not share an instance")
	}
}

func TestStats(t *testing.T) {
	f := NewFlyweight()

	f.Shared("X")
	f.Shared("X")
	f.Shared("Y")

	hits, misses := f.Stats()
	if hits != 1 {
		t.Errorf("expected 1 hit, got %d", hits)
	}
	if misses != 2 {
		t.Errorf("expected 2 misses, got %d", misses)
	}
	if f.Len() != 2 {
		t.Errorf("expected 2 cached messages, got %d", f.Len())
	}
}

func TestSharedConcurrent(t *testing.T) {
	f := NewFlyweight()

	const workers = 16
	results := make([]*SharedMessage, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = f.Shared("contended")
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent Shared calls returned different instances")
		}
	}
	if f.Len() != 1 {
		t.Errorf("expected single cached message, got %d", f.Len())
	}
}
