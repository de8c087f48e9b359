// Package payment talks to the payment collaborator (Stripe): it verifies
// inbound webhook deliveries and looks up checkout line items.
package payment

import (
	"strconv"
	"strings"
)

// CheckoutSessionCompleted is the only event type that creates orders.
const CheckoutSessionCompleted = "checkout.session.completed"

// Metadata keys set on the checkout session when it is created.
const (
	MetaEventID  = "eventId"
	MetaBuyerID  = "buyerId"
	MetaQuantity = "quantity"
)

// Notification is a verified webhook delivery reduced to the fields the
// order reconciliation needs.
type Notification struct {
	ID          string            // webhook event id
	Type        string            // webhook event type
	PaymentRef  string            // checkout session id, unique per payment
	AmountMinor *int64            // amount_total in minor units, nil when absent
	Metadata    map[string]string // caller-supplied metadata
}

// Completed reports whether the delivery signals a finished checkout.
func (n Notification) Completed() bool { return n.Type == CheckoutSessionCompleted }

// EventID is the event the tickets were bought for.
func (n Notification) EventID() string { return strings.TrimSpace(n.Metadata[MetaEventID]) }

// BuyerID is the purchasing user.
func (n Notification) BuyerID() string { return strings.TrimSpace(n.Metadata[MetaBuyerID]) }

// Quantity returns the ticket count carried in metadata, or 0 when the
// delivery does not carry a usable one.
func (n Notification) Quantity() int {
	q, err := strconv.Atoi(strings.TrimSpace(n.Metadata[MetaQuantity]))
	if err != nil || q < 1 {
		return 0
	}
	return q
}
