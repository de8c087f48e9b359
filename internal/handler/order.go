package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// OrderAPI is the listing side of service.OrderService.
type OrderAPI interface {
	ListOrdersByEvent(ctx context.Context, callerID, eventID string) ([]model.OrderItem, error)
	ListOrdersByBuyer(ctx context.Context, buyerID string) ([]model.OrderItem, error)
}

// OrderHandler serves order listings.  Orders are only created by the
// payment webhook.
type OrderHandler struct {
	Orders OrderAPI
}

// NewOrderHandler panics on a nil service.
func NewOrderHandler(orders OrderAPI) *OrderHandler {
	if orders == nil {
		panic("nil service passed to NewOrderHandler")
	}
	return &OrderHandler{Orders: orders}
}

// ListByEvent handles GET /v1/events/:id/orders for the event's organizer.
func (h *OrderHandler) ListByEvent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Orders.ListOrdersByEvent(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMine handles GET /v1/me/orders.
func (h *OrderHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	items, err := h.Orders.ListOrdersByBuyer(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
