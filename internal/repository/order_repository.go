package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// OrderRepo persists orders.  Orders are written once per payment
// reference and never mutated afterwards.
type OrderRepo struct {
	db     *sql.DB
	events *EventRepo
}

// NewOrderRepo returns an OrderRepo that decrements inventory through events.
func NewOrderRepo(db *sql.DB, events *EventRepo) *OrderRepo {
	return &OrderRepo{db: db, events: events}
}

// PlaceOrder records the order and takes its tickets from the event in a
// single transaction.  The insert runs first so that a redelivered payment
// reference collides on the unique index (ErrDuplicateOrder) before any
// inventory moves; a concurrent delivery of the same reference blocks on
// the index until the first transaction settles.  If the decrement fails
// the whole transaction rolls back and no order remains.
// Orders without an event reference are recorded without a decrement; an
// event reference naming no event yields ErrNotFound.
func (r *OrderRepo) PlaceOrder(ctx context.Context, o *model.Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `INSERT INTO orders (id, payment_ref, total_amount, quantity, event_id, buyer_id, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q,
		o.ID, o.PaymentRef, o.TotalAmount, o.Quantity,
		nullable(o.EventID), nullable(o.BuyerID), o.CreatedAt,
	); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateOrder
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: event %s", ErrNotFound, o.EventID)
		}
		return err
	}
	if o.EventID != "" {
		if err := r.events.DecrementTicketsTx(ctx, tx, o.EventID, o.Quantity); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByPaymentRef returns the order recorded for a payment reference.
func (r *OrderRepo) GetByPaymentRef(ctx context.Context, ref string) (*model.Order, error) {
	const q = `SELECT id, payment_ref, total_amount, quantity, COALESCE(event_id, ''), COALESCE(buyer_id, ''), created_at
	           FROM orders WHERE payment_ref = ?`
	var o model.Order
	err := r.db.QueryRowContext(ctx, q, ref).Scan(
		&o.ID, &o.PaymentRef, &o.TotalAmount, &o.Quantity, &o.EventID, &o.BuyerID, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

const orderItemSelect = `SELECT o.id, o.total_amount, o.quantity, o.created_at,
       COALESCE(o.event_id, ''), COALESCE(e.title, ''),
       COALESCE(o.buyer_id, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
FROM orders o
LEFT JOIN events e ON e.id = o.event_id
LEFT JOIN users u ON u.id = o.buyer_id`

// ListByEvent returns the orders placed for an event, newest first.
func (r *OrderRepo) ListByEvent(ctx context.Context, eventID string) ([]model.OrderItem, error) {
	return r.listItems(ctx, orderItemSelect+` WHERE o.event_id = ? ORDER BY o.created_at DESC`, eventID)
}

// ListByBuyer returns the orders placed by a user, newest first.
func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID string) ([]model.OrderItem, error) {
	return r.listItems(ctx, orderItemSelect+` WHERE o.buyer_id = ? ORDER BY o.created_at DESC`, buyerID)
}

func (r *OrderRepo) listItems(ctx context.Context, q string, arg string) ([]model.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(
			&it.ID, &it.TotalAmount, &it.Quantity, &it.CreatedAt,
			&it.EventID, &it.EventTitle,
			&it.Buyer.ID, &it.Buyer.FirstName, &it.Buyer.LastName,
		); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
