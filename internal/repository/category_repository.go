package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrCategoryExists is returned when a category name is already taken.
var ErrCategoryExists = errors.New("category already exists")

// CategoryRepo provides access to the categories table.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a category with a generated id.
func (r *CategoryRepo) Create(ctx context.Context, name string) (*model.Category, error) {
	c := &model.Category{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO categories (id, name) VALUES (?, ?)`, c.ID, c.Name); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrCategoryExists
		}
		return nil, err
	}
	return c, nil
}

// GetByID returns ErrNotFound when the category does not exist.
func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	if err := r.db.QueryRowContext(ctx, `SELECT id, name FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
