package stripe

import (
	"errors"
	"testing"
	"time"
)

const secret = "whsec_test"

func TestVerifySignatureRoundTrip(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	now := time.Now()
	header := SignPayload(payload, secret, now)

	if err := VerifySignature(payload, header, secret, now); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	payload := []byte(`{}`)
	now := time.Now()
	header := SignPayload(payload, "whsec_other", now)

	err := VerifySignature(payload, header, secret, now)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	now := time.Now()
	header := SignPayload([]byte(`{"credits":100}`), secret, now)

	err := VerifySignature([]byte(`{"credits":100000}`), header, secret, now)
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestVerifySignatureStaleTimestamp(t *testing.T) {
	payload := []byte(`{}`)
	signed := time.Now().Add(-10 * time.Minute)
	header := SignPayload(payload, secret, signed)

	err := VerifySignature(payload, header, secret, time.Now())
	if !errors.Is(err, ErrStaleEvent) {
		t.Fatalf("err = %v, want ErrStaleEvent", err)
	}
}

func TestVerifySignatureGarbageHeader(t *testing.T) {
	if err := VerifySignature([]byte(`{}`), "not-a-header", secret, time.Now()); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("err = %v, want ErrBadSignature", err)
	}
}

func TestCompletedSessionExtraction(t *testing.T) {
	payload := []byte(`{
		"id": "evt_2",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_42", "metadata": {"user_id": "u1", "credits": "500"}}}
	}`)
	header := SignPayload(payload, secret, time.Now())

	ev, err := ParseEvent(payload, header, secret)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := ev.CompletedSession()
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID != "cs_42" || sess.Metadata["user_id"] != "u1" || sess.Metadata["credits"] != "500" {
		t.Errorf("session = %+v", sess)
	}
}

func TestCompletedSessionWrongType(t *testing.T) {
	ev := Event{ID: "evt_3", Type: "invoice.paid"}
	if _, err := ev.CompletedSession(); err == nil {
		t.Fatal("wrong event type accepted")
	}
}
