package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadRatings(ctx context.Context, q queryer, eventID string) ([]model.Rating, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT user_id, value FROM event_ratings WHERE event_id = ? ORDER BY user_id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Rating{}
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.UserID, &rt.Value); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertRating stores the user's rating for the event and persists the
// recomputed average in the same transaction.  The event row is locked
// first so concurrent ratings on one event recompute from a consistent
// list.  It returns the new average, or ErrNotFound for an unknown event.
func (r *EventRepo) UpsertRating(ctx context.Context, eventID, userID string, value int) (float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = ? FOR UPDATE`, eventID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	ratings, err := loadRatings(ctx, tx, eventID)
	if err != nil {
		return 0, err
	}
	ev := model.Event{ID: eventID, Ratings: ratings}
	avg := ev.UpsertRating(userID, value)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO event_ratings (event_id, user_id, value) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		eventID, userID, value); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE events SET average_rating = ? WHERE id = ?`, avg, eventID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return avg, nil
}

// GetUserRating returns the user's rating for the event.  The boolean is
// false when the user has not rated it; ErrNotFound means the event itself
// is absent.
func (r *EventRepo) GetUserRating(ctx context.Context, eventID, userID string) (int, bool, error) {
	const q = `SELECT er.value
	           FROM events e
	           LEFT JOIN event_ratings er ON er.event_id = e.id AND er.user_id = ?
	           WHERE e.id = ?`
	var v sql.NullInt64
	if err := r.db.QueryRowContext(ctx, q, userID, eventID).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrNotFound
		}
		return 0, false, err
	}
	if !v.Valid {
		return 0, false, nil
	}
	return int(v.Int64), true, nil
}
