package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CategoryAPI is implemented by repository.CategoryRepo.
type CategoryAPI interface {
	Create(ctx context.Context, name string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
}

// CategoryHandler serves /v1/categories.
type CategoryHandler struct {
	Categories CategoryAPI
}

// NewCategoryHandler panics on a nil store.
func NewCategoryHandler(categories CategoryAPI) *CategoryHandler {
	if categories == nil {
		panic("nil repository passed to NewCategoryHandler")
	}
	return &CategoryHandler{Categories: categories}
}

// List returns all categories ordered by name.
func (h *CategoryHandler) List(c echo.Context) error {
	items, err := h.Categories.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	if items == nil {
		items = []model.Category{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create adds a category.  Names are unique.
func (h *CategoryHandler) Create(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required (max 100 chars)"})
	}
	cat, err := h.Categories.Create(c.Request().Context(), name)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}
