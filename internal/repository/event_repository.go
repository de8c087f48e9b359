package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// EventRepo encapsulates all queries on the events table and its owned
// event_ratings rows.  It depends on a *sql.DB pool configured elsewhere.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the provided DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventSelect = `SELECT e.id, e.title, COALESCE(e.description, ''), e.location, e.image_url, e.url,
       e.start_at, e.end_at, e.price, e.is_free,
       e.category_id, COALESCE(c.name, ''),
       e.organizer_id, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
       e.total_tickets, e.available_tickets, e.average_rating, e.created_at
FROM events e
LEFT JOIN categories c ON c.id = e.category_id
LEFT JOIN users u ON u.id = e.organizer_id`

func scanEvent(s rowScanner) (*model.Event, error) {
	var (
		e       model.Event
		catID   sql.NullString
		catName string
	)
	err := s.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.ImageURL, &e.URL,
		&e.StartAt, &e.EndAt, &e.Price, &e.IsFree,
		&catID, &catName,
		&e.Organizer.ID, &e.Organizer.FirstName, &e.Organizer.LastName,
		&e.TotalTickets, &e.AvailableTickets, &e.AverageRating, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if catID.Valid {
		e.Category = &model.Category{ID: catID.String, Name: catName}
	}
	return &e, nil
}

// Create inserts a new event.  A missing ID is generated.  The caller is
// responsible for the derived fields (available tickets, rating average).
// After the insert a SELECT populates created_at and the resolved
// organizer/category so callers receive a fully populated record.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	var categoryID string
	if e.Category != nil {
		categoryID = e.Category.ID
	}
	const q = `INSERT INTO events (id, title, description, location, image_url, url, start_at, end_at,
	                    price, is_free, category_id, organizer_id, total_tickets, available_tickets, average_rating)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		e.ID, e.Title, e.Description, e.Location, e.ImageURL, e.URL, e.StartAt, e.EndAt,
		e.Price, e.IsFree, nullable(categoryID), e.Organizer.ID,
		e.TotalTickets, e.AvailableTickets, e.AverageRating,
	); err != nil {
		return err
	}
	created, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *created
	return nil
}

// GetByID fetches an event with organizer, category and ratings resolved.
// It returns ErrNotFound if no row is found.
func (r *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, eventSelect+" WHERE e.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if e.Ratings, err = loadRatings(ctx, r.db, id); err != nil {
		return nil, err
	}
	return e, nil
}

// Update rewrites the organizer-editable fields.  When total_tickets
// changes, available_tickets is reset to the new total; otherwise it is
// left alone.  MySQL evaluates single-table SET assignments left to right,
// so available_tickets must be assigned before total_tickets.
func (r *EventRepo) Update(ctx context.Context, id string, in model.EventInput) (*model.Event, error) {
	const q = `UPDATE events
	           SET title = ?, description = ?, location = ?, image_url = ?, url = ?,
	               start_at = ?, end_at = ?, price = ?, is_free = ?, category_id = ?,
	               available_tickets = IF(total_tickets <> ?, ?, available_tickets),
	               total_tickets = ?
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		in.Title, in.Description, in.Location, in.ImageURL, in.URL,
		in.StartAt, in.EndAt, in.Price, in.IsFree, nullable(in.CategoryID),
		in.TotalTickets, in.TotalTickets,
		in.TotalTickets,
		id,
	); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an event.  Deleting an absent event is not an error.
// Ratings and comments go with it (ON DELETE CASCADE); orders keep their
// row with event_id set to NULL.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}

// DecrementTicketsTx removes qty tickets from the event inside tx.  The
// check and the write happen in one conditional UPDATE evaluated by the
// database, so concurrent decrements can never oversubscribe the event.
// When no row matches, a follow-up existence probe distinguishes
// ErrNotFound from ErrInsufficientInventory.
func (r *EventRepo) DecrementTicketsTx(ctx context.Context, tx *sql.Tx, id string, qty int) error {
	if qty <= 0 {
		return ErrInvalidArgument
	}
	const q = `UPDATE events
	           SET available_tickets = available_tickets - ?
	           WHERE id = ? AND available_tickets >= ?`
	res, err := tx.ExecContext(ctx, q, qty, id, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrInsufficientInventory
}

// DecrementTickets runs DecrementTicketsTx in its own transaction and
// returns the updated event snapshot.
func (r *EventRepo) DecrementTickets(ctx context.Context, id string, qty int) (*model.Event, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.DecrementTicketsTx(ctx, tx, id, qty); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return r.GetByID(ctx, id)
}
