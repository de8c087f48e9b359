package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

var errNoUser = errors.New("missing user_id in context")

// getUserID returns the authenticated caller set by middleware.JWTAuth.
func getUserID(c echo.Context) (string, error) {
	if id := middleware.UserID(c); id != "" {
		return id, nil
	}
	return "", errNoUser
}

// writeError maps the domain error taxonomy onto HTTP responses.  Anything
// outside the taxonomy is logged and reported as a generic 500.
func writeError(c echo.Context, err error) error {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, repository.ErrUnauthorized):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrInvalidArgument):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrInsufficientInventory):
		status, msg = http.StatusConflict, "insufficient tickets"
	case errors.Is(err, repository.ErrDuplicateOrder):
		status, msg = http.StatusConflict, "duplicate order"
	case errors.Is(err, repository.ErrCategoryExists):
		status, msg = http.StatusConflict, "category already exists"
	}
	if status == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	} else {
		c.Logger().Debugf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return c.JSON(status, echo.Map{"error": msg})
}

// pageParams reads ?page and ?limit.  Missing or malformed values become 0
// and the service applies its defaults.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return page, limit
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
