package payment

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/webhook"
)

// ErrVerificationFailed means the signature header did not match the
// payload under the shared secret.  Such deliveries are never processed.
var ErrVerificationFailed = errors.New("webhook verification failed")

// ErrMalformedPayload means the delivery was authentic but its checkout
// session could not be decoded.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Verifier authenticates webhook deliveries with the endpoint secret.
type Verifier struct {
	secret string
}

// NewVerifier returns a Verifier for the given endpoint secret.
func NewVerifier(secret string) *Verifier { return &Verifier{secret: secret} }

type checkoutSession struct {
	ID          string            `json:"id"`
	AmountTotal *int64            `json:"amount_total"`
	Metadata    map[string]string `json:"metadata"`
}

// Parse checks the Stripe-Signature header against payload before looking
// at any field.  Deliveries of other event types come back with only ID
// and Type set.
func (v *Verifier) Parse(payload []byte, signature string) (Notification, error) {
	ev, err := webhook.ConstructEvent(payload, signature, v.secret)
	if err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	n := Notification{ID: ev.ID, Type: ev.Type}
	if !n.Completed() {
		return n, nil
	}
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return n, fmt.Errorf("%w: missing data object", ErrMalformedPayload)
	}
	var cs checkoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return n, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if cs.ID == "" {
		return n, fmt.Errorf("%w: checkout session without id", ErrMalformedPayload)
	}
	n.PaymentRef = cs.ID
	n.AmountMinor = cs.AmountTotal
	n.Metadata = cs.Metadata
	if n.Metadata == nil {
		n.Metadata = map[string]string{}
	}
	return n, nil
}
