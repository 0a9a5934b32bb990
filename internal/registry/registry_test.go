package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/clawinfra/herald/internal/interfaces"
	"github.com/clawinfra/herald/internal/types"
)

// stubChannel is a minimal concrete channel for registry tests.
type stubChannel struct {
	kind types.Kind
	tag  string
}

func (s *stubChannel) Name() string     { return string(s.kind) }
func (s *stubChannel) Kind() types.Kind { return s.kind }
func (s *stubChannel) Send(ctx context.Context, n types.Notification) error {
	return nil
}
func (s *stubChannel) Close() error { return nil }

func stubFactory(kind types.Kind, tag string) Factory {
	return func() (interfaces.Channel, error) {
		return &stubChannel{kind: kind, tag: tag}, nil
	}
}

func TestResolveRegistered(t *testing.T) {
	r := New(nil)
	r.Register(types.KindSMS, stubFactory(types.KindSMS, "v1"))

	ch, err := r.Resolve(types.KindSMS)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if ch.Kind() != types.KindSMS {
		t.Errorf("expected sms kind, got %s", ch.Kind())
	}
}

func TestResolveUnknownKind(t *testing.T) {
	r := New(nil)
	r.Register(types.KindSMS, stubFactory(types.KindSMS, "v1"))

	_, err := r.Resolve(types.Kind("fax"))
	if err == nil {
		t.Fatal("expected error for unregistered kind")
	}
	if !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRegisterReplaces(t *testing.T) {
	r := New(nil)
	r.Register(types.KindEmail, stubFactory(types.KindEmail, "v1"))
	r.Register(types.KindEmail, stubFactory(types.KindEmail, "v2"))

	if r.Len() != 1 {
		t.Fatalf("expected 1 registered kind, got %d", r.Len())
	}

	ch, err := r.Resolve(types.KindEmail)
	if err != nil {
		t.Fatal(err)
	}
	if ch.(*stubChannel).tag != "v2" {
		t.Errorf("expected replacement factory, got %s", ch.(*stubChannel).tag)
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := New(nil)
	r.Register(types.KindPush, stubFactory(types.KindPush, "v1"))

	a, err := r.Resolve(types.KindPush)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Resolve(types.KindPush)
	if err != nil {
		t.Fatal(err)
	}

	// Functionally equivalent, identity not guaranteed
	if a.Kind() != b.Kind() || a.Name() != b.Name() {
		t.Error("repeated resolve returned inequivalent channels")
	}
}

func TestFactoryError(t *testing.T) {
	r := New(nil)
	wantErr := errors.New("broker unreachable")
	r.Register(types.KindPush, func() (interfaces.Channel, error) {
		return nil, wantErr
	})

	_, err := r.Resolve(types.KindPush)
	if !errors.Is(err, wantErr) {
		t.Errorf("expected factory error, got %v", err)
	}
	if errors.Is(err, ErrUnknownKind) {
		t.Error("factory failure must not look like an unknown kind")
	}
}

func TestKindsSorted(t *testing.T) {
	r := New(nil)
	r.Register(types.KindWebhook, stubFactory(types.KindWebhook, ""))
	r.Register(types.KindEmail, stubFactory(types.KindEmail, ""))
	r.Register(types.KindSMS, stubFactory(types.KindSMS, ""))

	kinds := r.Kinds()
	want := []types.Kind{types.KindEmail, types.KindSMS, types.KindWebhook}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d kinds, got %d", len(want), len(kinds))
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kinds[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}
