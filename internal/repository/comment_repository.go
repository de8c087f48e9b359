package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CommentRepo is an append/list/delete log of comments keyed by event.
type CommentRepo struct {
	db *sql.DB
}

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

const commentSelect = `SELECT cm.id, cm.content, cm.created_at,
       cm.event_id, COALESCE(e.title, ''),
       cm.user_id, COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
FROM comments cm
LEFT JOIN events e ON e.id = cm.event_id
LEFT JOIN users u ON u.id = cm.user_id`

func scanComment(s rowScanner) (*model.Comment, error) {
	var c model.Comment
	err := s.Scan(&c.ID, &c.Content, &c.CreatedAt,
		&c.Event.ID, &c.Event.Title,
		&c.User.ID, &c.User.FirstName, &c.User.LastName)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create stores a comment with a server-assigned id and timestamp and
// returns it with the author and event display fields resolved.
func (r *CommentRepo) Create(ctx context.Context, eventID, userID, content string) (*model.Comment, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Millisecond)
	const q = `INSERT INTO comments (id, content, event_id, user_id, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, id, content, eventID, userID, now); err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID returns ErrNotFound when the comment does not exist.
func (r *CommentRepo) GetByID(ctx context.Context, id string) (*model.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+` WHERE cm.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListByEvent returns every comment on the event, newest first.
func (r *CommentRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		commentSelect+` WHERE cm.event_id = ? ORDER BY cm.created_at DESC, cm.id DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the comment unconditionally; authorization is the
// caller's job.
func (r *CommentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	return err
}
