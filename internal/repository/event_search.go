package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// EventSearchQuery defines filters & pagination for listing events.  All
// filters are optional and combined with AND.  Results are newest first.
type EventSearchQuery struct {
	Text        string // case-insensitive substring of the title
	Category    string // case-insensitive substring of the category name
	CategoryID  string
	OrganizerID string
	ExcludeID   string // used by related-events to skip the current event
	Page        int
	Limit       int
}

// Search returns one page of events matching q along with the total count
// of matches.
func (r *EventRepo) Search(ctx context.Context, q EventSearchQuery) ([]model.Event, int64, error) {
	where := []string{}
	args := []any{}

	if q.Text != "" {
		where = append(where, "LOWER(e.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Text)+"%")
	}
	if q.Category != "" {
		where = append(where, "LOWER(c.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Category)+"%")
	}
	if q.CategoryID != "" {
		where = append(where, "e.category_id = ?")
		args = append(args, q.CategoryID)
	}
	if q.OrganizerID != "" {
		where = append(where, "e.organizer_id = ?")
		args = append(args, q.OrganizerID)
	}
	if q.ExcludeID != "" {
		where = append(where, "e.id <> ?")
		args = append(args, q.ExcludeID)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*)
		FROM events e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.Limit
	if limit < 1 {
		limit = 6
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	dataSQL := eventSelect + `
		WHERE ` + cond + `
		ORDER BY e.created_at DESC, e.id
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Event, 0, limit)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
