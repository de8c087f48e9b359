package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order records a completed ticket purchase.  PaymentRef is the payment
// collaborator's checkout reference and doubles as the idempotency key:
// storage keeps it unique, so one payment yields at most one order.
type Order struct {
	ID          string          `json:"id"`
	PaymentRef  string          `json:"stripeId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Quantity    int             `json:"quantity"`
	EventID     string          `json:"eventId"`
	BuyerID     string          `json:"buyerId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// OrderItem is the listing view of an order with display fields resolved.
type OrderItem struct {
	ID          string          `json:"id"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
	EventID     string          `json:"eventId"`
	EventTitle  string          `json:"eventTitle"`
	Buyer       UserRef         `json:"buyer"`
}
