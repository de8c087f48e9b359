package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/service"
)

// RatingAPI is implemented by service.RatingService.
type RatingAPI interface {
	SubmitRating(ctx context.Context, eventID, userID string, value int) (float64, error)
	GetUserRating(ctx context.Context, eventID, userID string) (service.UserRating, error)
}

// RatingHandler serves /v1/events/:id/rating.
type RatingHandler struct {
	Ratings RatingAPI
}

// NewRatingHandler panics on a nil service.
func NewRatingHandler(ratings RatingAPI) *RatingHandler {
	if ratings == nil {
		panic("nil service passed to NewRatingHandler")
	}
	return &RatingHandler{Ratings: ratings}
}

type ratingRequest struct {
	Value int `json:"value"`
}

// Submit stores the caller's rating and returns the new average.
func (h *RatingHandler) Submit(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req ratingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	avg, err := h.Ratings.SubmitRating(c.Request().Context(), c.Param("id"), uid, req.Value)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"averageRating": avg})
}

// Get returns the caller's rating.  value is null when the caller has
// not rated the event.
func (h *RatingHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	r, err := h.Ratings.GetUserRating(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeError(c, err)
	}
	var value *int
	if r.Rated {
		value = &r.Value
	}
	return c.JSON(http.StatusOK, echo.Map{"rated": r.Rated, "value": value})
}
