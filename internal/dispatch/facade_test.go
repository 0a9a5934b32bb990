package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/clawinfra/herald/internal/types"
)

func TestFacadeKindHelpers(t *testing.T) {
	sms := &stubChannel{kind: types.KindSMS}
	email := &stubChannel{kind: types.KindEmail}
	push := &stubChannel{kind: types.KindPush}
	f := NewFacade(New(newTestRegistry(t, sms, email, push), nil))

	ctx := context.Background()
	if _, err := f.SendSMS(ctx, "a", "m1"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.SendEmail(ctx, "b", "m2"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.SendPush(ctx, "c", "m3"); err != nil {
		t.Fatal(err)
	}

	if len(sms.sent) != 1 || len(email.sent) != 1 || len(push.sent) != 1 {
		t.Errorf("each helper must hit its own channel: sms=%d email=%d push=%d",
			len(sms.sent), len(email.sent), len(push.sent))
	}
	if sms.sent[0].Body != "m1" || email.sent[0].Body != "m2" || push.sent[0].Body != "m3" {
		t.Error("helper routed body to the wrong channel")
	}
}

func TestFacadeSendAll(t *testing.T) {
	sms := &stubChannel{kind: types.KindSMS}
	email := &stubChannel{kind: types.KindEmail}
	f := NewFacade(New(newTestRegistry(t, sms, email), nil))

	deliveries, err := f.SendAll(context.Background(), "everyone", "broadcast")
	if err != nil {
		t.Fatal(err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}
	if len(sms.sent) != 1 || len(email.sent) != 1 {
		t.Errorf("broadcast must reach every channel: sms=%d email=%d", len(sms.sent), len(email.sent))
	}
}

func TestFacadeSendAllPartialFailure(t *testing.T) {
	ok := &stubChannel{kind: types.KindSMS}
	bad := &stubChannel{kind: types.KindEmail, err: errors.New("smtp down")}
	f := NewFacade(New(newTestRegistry(t, ok, bad), nil))

	deliveries, err := f.SendAll(context.Background(), "everyone", "broadcast")
	if err == nil {
		t.Fatal("expected the failing channel's error")
	}
	if len(ok.sent) != 1 {
		t.Error("healthy channels must still deliver")
	}

	var failed, sent int
	for _, d := range deliveries {
		switch d.Status {
		case types.StatusSent:
			sent++
		case types.StatusFailed:
			failed++
		}
	}
	if sent != 1 || failed != 1 {
		t.Errorf("deliveries = %d sent / %d failed, want 1/1", sent, failed)
	}
}
