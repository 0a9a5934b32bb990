package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/clawinfra/herald/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sample(id string, kind types.Kind, at time.Time) types.Delivery {
	return types.Delivery{
		ID:       id,
		Kind:     kind,
		To:       "dest",
		Body:     "hello",
		Status:   types.StatusSent,
		SentAt:   at,
		Duration: 5 * time.Millisecond,
	}
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, id := range []string{"a", "b", "c"} {
		if err := s.Record(ctx, sample(id, types.KindSMS, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	// Newest first
	if got[0].ID != "c" || got[1].ID != "b" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Status != types.StatusSent {
		t.Errorf("unexpected status: %s", got[0].Status)
	}
}

func TestByKind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	s.Record(ctx, sample("s1", types.KindSMS, now))
	s.Record(ctx, sample("e1", types.KindEmail, now.Add(time.Second)))
	s.Record(ctx, sample("s2", types.KindSMS, now.Add(2*time.Second)))

	got, err := s.ByKind(ctx, types.KindSMS, 10)
	if err != nil {
		t.Fatalf("by kind: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sms deliveries, got %d", len(got))
	}
	for _, d := range got {
		if d.Kind != types.KindSMS {
			t.Errorf("unexpected kind: %s", d.Kind)
		}
	}
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected empty journal, got %d", n)
	}

	s.Record(ctx, sample("x", types.KindPush, time.Now()))
	n, err = s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestFailedDeliveryRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := sample("f1", types.KindWebhook, time.Now().UTC())
	d.Status = types.StatusFailed
	d.Error = "gateway returned status 502"
	if err := s.Record(ctx, d); err != nil {
		t.Fatal(err)
	}

	got, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(got))
	}
	if got[0].Status != types.StatusFailed || got[0].Error != "gateway returned status 502" {
		t.Errorf("failure details lost: %+v", got[0])
	}
}
