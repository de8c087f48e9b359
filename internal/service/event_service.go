// Package service implements the business operations on top of the
// repositories: event inventory, order reconciliation, ratings and
// comments.  Collaborators are consumed through small interfaces so the
// services can be exercised with in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// Default page sizes for listings.
const (
	DefaultListLimit    = 6
	DefaultRelatedLimit = 3
	MaxListLimit        = 100
	MaxPage             = 100000
)

// EventStore is the persistence the event operations need.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, in model.EventInput) (*model.Event, error)
	Delete(ctx context.Context, id string) error
	DecrementTickets(ctx context.Context, id string, qty int) (*model.Event, error)
	Search(ctx context.Context, q repository.EventSearchQuery) ([]model.Event, int64, error)
}

// UserStore resolves users.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// CategoryStore resolves categories.
type CategoryStore interface {
	GetByID(ctx context.Context, id string) (*model.Category, error)
}

// Page is one page of a listing.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func clampLimit(limit, def int) int {
	if limit < 1 {
		return def
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// clampPage keeps (page-1)*limit well inside the OFFSET range.
func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// checkID rejects identities that are not well-formed uuids.
func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed %s id %q", repository.ErrInvalidArgument, kind, id)
	}
	return nil
}

// EventService manages events and their ticket inventory.
type EventService struct {
	events     EventStore
	users      UserStore
	categories CategoryStore
	log        *log.Logger
}

// NewEventService wires an EventService.
func NewEventService(events EventStore, users UserStore, categories CategoryStore, logger *log.Logger) *EventService {
	return &EventService{events: events, users: users, categories: categories, log: logger}
}

func (s *EventService) prepare(ctx context.Context, in *model.EventInput) (*model.Category, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrInvalidArgument, err)
	}
	if in.CategoryID == "" {
		return nil, nil
	}
	cat, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("category %s: %w", in.CategoryID, repository.ErrNotFound)
		}
		return nil, err
	}
	return cat, nil
}

// CreateEvent creates an event owned by organizerID.  The derived fields
// are set here and never taken from the caller: all tickets start
// available, with no ratings and a zero average.
func (s *EventService) CreateEvent(ctx context.Context, organizerID string, in model.EventInput) (*model.Event, error) {
	if err := checkID("organizer", organizerID); err != nil {
		return nil, err
	}
	organizer, err := s.users.GetByID(ctx, organizerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("organizer %s: %w", organizerID, repository.ErrNotFound)
		}
		return nil, err
	}
	cat, err := s.prepare(ctx, &in)
	if err != nil {
		return nil, err
	}

	ev := &model.Event{
		Title:            in.Title,
		Description:      in.Description,
		Location:         in.Location,
		ImageURL:         in.ImageURL,
		URL:              in.URL,
		StartAt:          in.StartAt,
		EndAt:            in.EndAt,
		Price:            in.Price,
		IsFree:           in.IsFree,
		Category:         cat,
		Organizer:        organizer.Ref(),
		TotalTickets:     in.TotalTickets,
		AvailableTickets: in.TotalTickets,
		Ratings:          []model.Rating{},
		AverageRating:    0,
	}
	if err := s.events.Create(ctx, ev); err != nil {
		s.log.Errorf("create event for organizer %s: %v", organizerID, err)
		return nil, err
	}
	s.log.Infof("event %s created by %s with %d tickets", ev.ID, organizerID, ev.TotalTickets)
	return ev, nil
}

// GetEvent returns the event or ErrNotFound.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return s.events.GetByID(ctx, id)
}

// UpdateEvent rewrites the event's editable fields.  Only the organizer
// may edit.  Changing TotalTickets resets AvailableTickets to the new
// total; any other edit leaves inventory alone.
func (s *EventService) UpdateEvent(ctx context.Context, organizerID, eventID string, in model.EventInput) (*model.Event, error) {
	current, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if current.Organizer.ID != organizerID {
		return nil, fmt.Errorf("update event %s: %w", eventID, repository.ErrUnauthorized)
	}
	if _, err := s.prepare(ctx, &in); err != nil {
		return nil, err
	}
	updated, err := s.events.Update(ctx, eventID, in)
	if err != nil {
		s.log.Errorf("update event %s: %v", eventID, err)
		return nil, err
	}
	if updated.TotalTickets != current.TotalTickets {
		s.log.Infof("event %s total changed %d -> %d; availability reset", eventID, current.TotalTickets, updated.TotalTickets)
	}
	return updated, nil
}

// DeleteEvent removes the event.  Deleting an absent event succeeds.
func (s *EventService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.events.Delete(ctx, eventID); err != nil {
		s.log.Errorf("delete event %s: %v", eventID, err)
		return err
	}
	return nil
}

// DecrementTickets takes qty tickets from the event.  It fails with
// ErrInsufficientInventory, leaving the count untouched, when fewer than
// qty remain.
func (s *EventService) DecrementTickets(ctx context.Context, eventID string, qty int) (*model.Event, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", repository.ErrInvalidArgument, qty)
	}
	return s.events.DecrementTickets(ctx, eventID, qty)
}

// ListEvents searches events by title text and category name, newest first.
func (s *EventService) ListEvents(ctx context.Context, query, category string, page, limit int) (Page[model.Event], error) {
	return s.search(ctx, repository.EventSearchQuery{
		Text: query, Category: category, Page: page, Limit: clampLimit(limit, DefaultListLimit),
	})
}

// ListEventsByOrganizer lists the events one organizer created.
func (s *EventService) ListEventsByOrganizer(ctx context.Context, organizerID string, page, limit int) (Page[model.Event], error) {
	return s.search(ctx, repository.EventSearchQuery{
		OrganizerID: organizerID, Page: page, Limit: clampLimit(limit, DefaultListLimit),
	})
}

// ListRelatedEvents lists other events in the same category as eventID.
// An event without a category has no related events.
func (s *EventService) ListRelatedEvents(ctx context.Context, eventID string, page, limit int) (Page[model.Event], error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return Page[model.Event]{}, err
	}
	if ev.Category == nil {
		return Page[model.Event]{Data: []model.Event{}}, nil
	}
	return s.search(ctx, repository.EventSearchQuery{
		CategoryID: ev.Category.ID, ExcludeID: eventID, Page: page, Limit: clampLimit(limit, DefaultRelatedLimit),
	})
}

func (s *EventService) search(ctx context.Context, q repository.EventSearchQuery) (Page[model.Event], error) {
	q.Page = clampPage(q.Page)
	items, total, err := s.events.Search(ctx, q)
	if err != nil {
		return Page[model.Event]{}, err
	}
	if items == nil {
		items = []model.Event{}
	}
	return Page[model.Event]{Data: items, Total: total, TotalPages: totalPages(total, q.Limit)}, nil
}
