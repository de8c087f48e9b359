package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

func quietLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(io.Discard)
	return l
}

type fakeUsers struct{ m map[string]*model.User }

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{m: map[string]*model.User{}}
	for i := range users {
		u := users[i]
		f.m[u.ID] = &u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeCategories struct{ m map[string]*model.Category }

func (f *fakeCategories) GetByID(_ context.Context, id string) (*model.Category, error) {
	c, ok := f.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// fakeEvents is an in-memory EventStore and RatingStore.
type fakeEvents struct {
	mu        sync.Mutex
	m         map[string]*model.Event
	seq       int
	lastQuery repository.EventSearchQuery
}

func newFakeEvents() *fakeEvents { return &fakeEvents{m: map[string]*model.Event{}} }

func cloneEvent(e *model.Event) *model.Event {
	cp := *e
	cp.Ratings = append([]model.Rating{}, e.Ratings...)
	return &cp
}

func (f *fakeEvents) put(e model.Event) *model.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	f.seq++
	e.CreatedAt = time.Unix(int64(f.seq), 0).UTC()
	f.m[e.ID] = cloneEvent(&e)
	return cloneEvent(&e)
}

func (f *fakeEvents) Create(_ context.Context, e *model.Event) error {
	*e = *f.put(*e)
	return nil
}

func (f *fakeEvents) GetByID(_ context.Context, id string) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneEvent(e), nil
}

func (f *fakeEvents) Update(_ context.Context, id string, in model.EventInput) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Title, e.Description, e.Location = in.Title, in.Description, in.Location
	e.ImageURL, e.URL, e.StartAt, e.EndAt = in.ImageURL, in.URL, in.StartAt, in.EndAt
	e.Price, e.IsFree = in.Price, in.IsFree
	if e.TotalTickets != in.TotalTickets {
		e.AvailableTickets = in.TotalTickets
	}
	e.TotalTickets = in.TotalTickets
	return cloneEvent(e), nil
}

func (f *fakeEvents) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, id)
	return nil
}

func (f *fakeEvents) decrementLocked(id string, qty int) (*model.Event, error) {
	if qty <= 0 {
		return nil, repository.ErrInvalidArgument
	}
	e, ok := f.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if e.AvailableTickets < qty {
		return nil, repository.ErrInsufficientInventory
	}
	e.AvailableTickets -= qty
	return cloneEvent(e), nil
}

func (f *fakeEvents) DecrementTickets(_ context.Context, id string, qty int) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decrementLocked(id, qty)
}

func (f *fakeEvents) Search(_ context.Context, q repository.EventSearchQuery) ([]model.Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	var hits []model.Event
	for _, e := range f.m {
		switch {
		case q.OrganizerID != "" && e.Organizer.ID != q.OrganizerID,
			q.ExcludeID != "" && e.ID == q.ExcludeID,
			q.CategoryID != "" && (e.Category == nil || e.Category.ID != q.CategoryID),
			q.Text != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(q.Text)):
			continue
		}
		hits = append(hits, *cloneEvent(e))
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].CreatedAt.After(hits[j].CreatedAt) })
	total := int64(len(hits))
	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * q.Limit
	if start >= len(hits) {
		return nil, total, nil
	}
	end := start + q.Limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[start:end], total, nil
}

func (f *fakeEvents) UpsertRating(_ context.Context, eventID, userID string, value int) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.m[eventID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return e.UpsertRating(userID, value), nil
}

func (f *fakeEvents) GetUserRating(_ context.Context, eventID, userID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.m[eventID]
	if !ok {
		return 0, false, repository.ErrNotFound
	}
	v, rated := e.RatingOf(userID)
	return v, rated, nil
}

// fakeOrders applies the insert and decrement under one lock so either
// both happen or neither does.
type fakeOrders struct {
	events *fakeEvents
	byRef  map[string]*model.Order
}

func newFakeOrders(events *fakeEvents) *fakeOrders {
	return &fakeOrders{events: events, byRef: map[string]*model.Order{}}
}

func (f *fakeOrders) PlaceOrder(_ context.Context, o *model.Order) error {
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	if _, dup := f.byRef[o.PaymentRef]; dup {
		return repository.ErrDuplicateOrder
	}
	if o.EventID != "" {
		if _, err := f.events.decrementLocked(o.EventID, o.Quantity); err != nil {
			return err
		}
	}
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	cp := *o
	f.byRef[o.PaymentRef] = &cp
	return nil
}

func (f *fakeOrders) GetByPaymentRef(_ context.Context, ref string) (*model.Order, error) {
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	o, ok := f.byRef[ref]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) list(match func(*model.Order) bool) []model.OrderItem {
	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	var out []model.OrderItem
	for _, o := range f.byRef {
		if match(o) {
			out = append(out, model.OrderItem{ID: o.ID, TotalAmount: o.TotalAmount, Quantity: o.Quantity, EventID: o.EventID})
		}
	}
	return out
}

func (f *fakeOrders) ListByEvent(_ context.Context, eventID string) ([]model.OrderItem, error) {
	return f.list(func(o *model.Order) bool { return o.EventID == eventID }), nil
}

func (f *fakeOrders) ListByBuyer(_ context.Context, buyerID string) ([]model.OrderItem, error) {
	return f.list(func(o *model.Order) bool { return o.BuyerID == buyerID }), nil
}

type fakeComments struct {
	m map[string]*model.Comment
}

func (f *fakeComments) Create(_ context.Context, eventID, userID, content string) (*model.Comment, error) {
	c := &model.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
		Event:     model.EventRef{ID: eventID},
		User:      model.UserRef{ID: userID},
	}
	f.m[c.ID] = c
	cp := *c
	return &cp, nil
}

func (f *fakeComments) GetByID(_ context.Context, id string) (*model.Comment, error) {
	c, ok := f.m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeComments) ListByEvent(_ context.Context, eventID string) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range f.m {
		if c.Event.ID == eventID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeComments) Delete(_ context.Context, id string) error {
	delete(f.m, id)
	return nil
}

type fakeLineItems struct {
	qty   int
	err   error
	calls int
}

func (f *fakeLineItems) Quantity(context.Context, string) (int, error) {
	f.calls++
	return f.qty, f.err
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []queue.OrderConfirmedEvent
}

func (p *recordingPublisher) PublishOrderConfirmed(_ context.Context, ev queue.OrderConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, ev)
	return nil
}
