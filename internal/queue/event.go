// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/shopspring/decimal"

// OrderQueueName is the default queue for confirmed orders.
const OrderQueueName = "order.confirmed"

// OrderConfirmedEvent is published once an order and its inventory
// decrement have been committed.  It carries enough for downstream
// consumers to log or notify without querying the primary database.
type OrderConfirmedEvent struct {
	OrderID     string          `json:"order_id"`
	PaymentRef  string          `json:"payment_ref"`
	EventID     string          `json:"event_id"`
	BuyerID     string          `json:"buyer_id"`
	Quantity    int             `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ConfirmedAt string          `json:"confirmed_at"`
}
