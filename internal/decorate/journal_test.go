package decorate

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/clawinfra/herald/internal/store"
	"github.com/clawinfra/herald/internal/types"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestJournalRecordsSuccess(t *testing.T) {
	s := newTestStore(t)
	var trace []string
	inner := &probeChannel{trace: &trace}
	ch := Journal(s)(inner)

	n := types.Notification{ID: "d-1", Kind: types.KindSMS, To: "x", Body: "hello", Digest: "abc"}
	if err := ch.Send(context.Background(), n); err != nil {
		t.Fatal(err)
	}

	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 journal row, got %d", len(got))
	}
	d := got[0]
	if d.ID != "d-1" || d.Status != types.StatusSent || d.Digest != "abc" {
		t.Errorf("unexpected row: %+v", d)
	}
}

func TestJournalRecordsFailure(t *testing.T) {
	s := newTestStore(t)
	var trace []string
	wantErr := errors.New("gateway timeout")
	inner := &probeChannel{trace: &trace, err: wantErr}
	ch := Journal(s)(inner)

	n := types.Notification{ID: "d-2", Kind: types.KindEmail, Body: "oops"}
	err := ch.Send(context.Background(), n)
	if !errors.Is(err, wantErr) {
		t.Fatalf("inner error suppressed: %v", err)
	}

	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 journal row, got %d", len(got))
	}
	if got[0].Status != types.StatusFailed || got[0].Error != "gateway timeout" {
		t.Errorf("failure not journaled: %+v", got[0])
	}
}
