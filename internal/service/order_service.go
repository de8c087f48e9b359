package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/event-ticketing/internal/metrics"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// OrderStore persists orders.  PlaceOrder must insert the order and take
// its tickets atomically.
type OrderStore interface {
	PlaceOrder(ctx context.Context, o *model.Order) error
	GetByPaymentRef(ctx context.Context, ref string) (*model.Order, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.OrderItem, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]model.OrderItem, error)
}

// LineItemLookup resolves the purchased quantity of a checkout session.
type LineItemLookup interface {
	Quantity(ctx context.Context, sessionID string) (int, error)
}

// OrderPublisher announces committed orders.
type OrderPublisher interface {
	PublishOrderConfirmed(ctx context.Context, ev queue.OrderConfirmedEvent) error
}

// OrderService turns verified payment completions into orders.
type OrderService struct {
	orders    OrderStore
	events    EventStore
	lineItems LineItemLookup
	publisher OrderPublisher
	log       *log.Logger
}

// NewOrderService wires an OrderService.  lineItems and publisher are
// optional.
func NewOrderService(orders OrderStore, events EventStore, lineItems LineItemLookup, publisher OrderPublisher, logger *log.Logger) *OrderService {
	return &OrderService{orders: orders, events: events, lineItems: lineItems, publisher: publisher, log: logger}
}

// Reconcile records exactly one order for a completed checkout.
//
// A repeated payment reference returns ErrDuplicateOrder together with the
// order recorded by the first delivery, and moves no inventory.  ErrInsufficientInventory means nothing was written.  The
// amount is soft: a missing amount_total is stored as zero.
func (s *OrderService) Reconcile(ctx context.Context, n payment.Notification) (*model.Order, error) {
	if n.PaymentRef == "" {
		return nil, fmt.Errorf("%w: payment reference is required", repository.ErrInvalidArgument)
	}
	o := &model.Order{
		PaymentRef:  n.PaymentRef,
		TotalAmount: amountOf(n),
		Quantity:    s.resolveQuantity(ctx, n),
		EventID:     n.EventID(),
		BuyerID:     n.BuyerID(),
	}
	if o.EventID == "" {
		s.log.Warnf("payment %s carries no eventId; recording order without inventory change", n.PaymentRef)
	}

	if err := s.orders.PlaceOrder(ctx, o); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateOrder):
			prev, lookupErr := s.orders.GetByPaymentRef(ctx, n.PaymentRef)
			if lookupErr != nil {
				s.log.Warnf("payment %s already reconciled; lookup failed: %v", n.PaymentRef, lookupErr)
				break
			}
			s.log.Infof("payment %s already reconciled as order %s", n.PaymentRef, prev.ID)
			return prev, fmt.Errorf("reconcile %s: %w", n.PaymentRef, err)
		case errors.Is(err, repository.ErrInsufficientInventory):
			s.log.Warnf("payment %s: %d tickets requested for event %s: %v", n.PaymentRef, o.Quantity, o.EventID, err)
		default:
			s.log.Errorf("payment %s: place order: %v", n.PaymentRef, err)
		}
		return nil, fmt.Errorf("reconcile %s: %w", n.PaymentRef, err)
	}

	if o.EventID != "" {
		metrics.TicketsSold.WithLabelValues(o.EventID).Add(float64(o.Quantity))
	}
	s.log.Infof("order %s recorded for payment %s (%d tickets)", o.ID, o.PaymentRef, o.Quantity)
	s.publish(ctx, o)
	return o, nil
}

func amountOf(n payment.Notification) decimal.Decimal {
	if n.AmountMinor == nil {
		return decimal.Zero
	}
	return decimal.New(*n.AmountMinor, -2)
}

// resolveQuantity prefers the quantity carried in metadata, then the
// session's line items, then 1.
func (s *OrderService) resolveQuantity(ctx context.Context, n payment.Notification) int {
	if q := n.Quantity(); q > 0 {
		return q
	}
	if s.lineItems != nil {
		q, err := s.lineItems.Quantity(ctx, n.PaymentRef)
		if err != nil {
			s.log.Warnf("payment %s: line item lookup failed: %v", n.PaymentRef, err)
		} else if q > 0 {
			return q
		}
	}
	return 1
}

// publish is best effort: the order is already committed.
func (s *OrderService) publish(ctx context.Context, o *model.Order) {
	if s.publisher == nil {
		return
	}
	ev := queue.OrderConfirmedEvent{
		OrderID:     o.ID,
		PaymentRef:  o.PaymentRef,
		EventID:     o.EventID,
		BuyerID:     o.BuyerID,
		Quantity:    o.Quantity,
		TotalAmount: o.TotalAmount,
		ConfirmedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishOrderConfirmed(ctx, ev); err != nil {
		s.log.Warnf("publish order %s: %v", o.ID, err)
	}
}

// ListOrdersByEvent lists an event's orders.  Only its organizer may look.
func (s *OrderService) ListOrdersByEvent(ctx context.Context, callerID, eventID string) ([]model.OrderItem, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Organizer.ID != callerID {
		return nil, fmt.Errorf("orders of event %s: %w", eventID, repository.ErrUnauthorized)
	}
	return nonNil(s.orders.ListByEvent(ctx, eventID))
}

// ListOrdersByBuyer lists the caller's own orders, newest first.
func (s *OrderService) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]model.OrderItem, error) {
	return nonNil(s.orders.ListByBuyer(ctx, buyerID))
}

func nonNil(items []model.OrderItem, err error) ([]model.OrderItem, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.OrderItem{}
	}
	return items, nil
}
