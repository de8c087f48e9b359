package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// EventAPI is the subset of service.EventService the handlers use.
type EventAPI interface {
	CreateEvent(ctx context.Context, organizerID string, in model.EventInput) (*model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	UpdateEvent(ctx context.Context, organizerID, eventID string, in model.EventInput) (*model.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	ListEvents(ctx context.Context, query, category string, page, limit int) (service.Page[model.Event], error)
	ListEventsByOrganizer(ctx context.Context, organizerID string, page, limit int) (service.Page[model.Event], error)
	ListRelatedEvents(ctx context.Context, eventID string, page, limit int) (service.Page[model.Event], error)
}

// EventHandler serves the event endpoints.
type EventHandler struct {
	Events EventAPI
}

// NewEventHandler panics on a nil service.
func NewEventHandler(events EventAPI) *EventHandler {
	if events == nil {
		panic("nil service passed to NewEventHandler")
	}
	return &EventHandler{Events: events}
}

func bindEventInput(c echo.Context) (model.EventInput, error) {
	var in model.EventInput
	if err := c.Bind(&in); err != nil {
		return in, err
	}
	return in, nil
}

// Create handles POST /v1/events.  The caller becomes the organizer.
func (h *EventHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	in, err := bindEventInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	ev, err := h.Events.CreateEvent(c.Request().Context(), uid, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ev)
}

// Get handles GET /v1/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	ev, err := h.Events.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// Update handles PUT and PATCH /v1/events/:id.  Both replace the editable
// fields wholesale.
func (h *EventHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	in, err := bindEventInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	ev, err := h.Events.UpdateEvent(c.Request().Context(), uid, c.Param("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// Delete handles DELETE /v1/events/:id.  Only the organizer may delete an
// existing event; deleting an absent one succeeds.
func (h *EventHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	ev, err := h.Events.GetEvent(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.NoContent(http.StatusNoContent)
	case err != nil:
		return writeError(c, err)
	case ev.Organizer.ID != uid:
		return writeError(c, repository.ErrUnauthorized)
	}
	if err := h.Events.DeleteEvent(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/events?query=&category=&page=&limit=.
func (h *EventHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	res, err := h.Events.ListEvents(c.Request().Context(), c.QueryParam("query"), c.QueryParam("category"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListByOrganizer handles GET /v1/organizers/:id/events.
func (h *EventHandler) ListByOrganizer(c echo.Context) error {
	page, limit := pageParams(c)
	res, err := h.Events.ListEventsByOrganizer(c.Request().Context(), c.Param("id"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListMine handles GET /v1/me/events.
func (h *EventHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	page, limit := pageParams(c)
	res, err := h.Events.ListEventsByOrganizer(c.Request().Context(), uid, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListRelated handles GET /v1/events/:id/related.
func (h *EventHandler) ListRelated(c echo.Context) error {
	page, limit := pageParams(c)
	res, err := h.Events.ListRelatedEvents(c.Request().Context(), c.Param("id"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
