package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leadblitz/internal/services/billing"
)

var (
	ErrBadSignature = errors.New("webhook signature verification failed")
	ErrStaleEvent   = errors.New("webhook timestamp outside tolerance")
)

const signatureTolerance = 5 * time.Minute

// Event is a decoded webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// VerifySignature checks a Stripe-Signature header ("t=...,v1=...") against
// the raw request body. Comparison is constant-time; events older than the
// tolerance are rejected to block replays.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var ts int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: bad timestamp", ErrBadSignature)
			}
			ts = parsed
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return fmt.Errorf("%w: missing components", ErrBadSignature)
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrStaleEvent
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrBadSignature
}

// SignPayload builds a valid Stripe-Signature header; used by tests and
// local webhook replays.
func SignPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

// ParseEvent verifies and decodes a webhook request body.
func ParseEvent(payload []byte, header, secret string) (Event, error) {
	if err := VerifySignature(payload, header, secret, time.Now()); err != nil {
		return Event{}, err
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, fmt.Errorf("webhook payload: %w", err)
	}
	return ev, nil
}

type checkoutSessionObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// CompletedSession extracts the checkout session from a
// checkout.session.completed event.
func (e Event) CompletedSession() (billing.CompletedSession, error) {
	if e.Type != "checkout.session.completed" {
		return billing.CompletedSession{}, fmt.Errorf("event %s is %s, not checkout.session.completed", e.ID, e.Type)
	}
	var obj checkoutSessionObject
	if err := json.Unmarshal(e.Data.Object, &obj); err != nil {
		return billing.CompletedSession{}, fmt.Errorf("session object: %w", err)
	}
	return billing.CompletedSession{ID: obj.ID, Metadata: obj.Metadata}, nil
}
