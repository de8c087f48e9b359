package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rating limits.  A user holds at most one rating per event.
const (
	MinRating = 1
	MaxRating = 5
)

// Event is a ticketed occasion created by an organizer.  It owns its
// ratings list; AverageRating is always derived from Ratings.
//
// Inventory invariant: 0 <= AvailableTickets <= TotalTickets.
// AvailableTickets only moves through order reconciliation (and the total
// reset performed when an organizer edits TotalTickets).
type Event struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description,omitempty"`
	Location         string              `json:"location,omitempty"`
	ImageURL         string              `json:"imageUrl"`
	URL              string              `json:"url,omitempty"`
	StartAt          time.Time           `json:"startDateTime"`
	EndAt            time.Time           `json:"endDateTime"`
	Price            decimal.NullDecimal `json:"price"`
	IsFree           bool                `json:"isFree"`
	Category         *Category           `json:"category,omitempty"`
	Organizer        UserRef             `json:"organizer"`
	TotalTickets     int                 `json:"totalTickets"`
	AvailableTickets int                 `json:"availableTickets"`
	Ratings          []Rating            `json:"ratings,omitempty"`
	AverageRating    float64             `json:"averageRating"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// Rating is one user's score for an event.
type Rating struct {
	UserID string `json:"user"`
	Value  int    `json:"value"`
}

// UpsertRating replaces the caller's existing rating or appends a new one,
// then recomputes AverageRating.  It returns the new average.
func (e *Event) UpsertRating(userID string, value int) float64 {
	replaced := false
	for i := range e.Ratings {
		if e.Ratings[i].UserID == userID {
			e.Ratings[i].Value = value
			replaced = true
			break
		}
	}
	if !replaced {
		e.Ratings = append(e.Ratings, Rating{UserID: userID, Value: value})
	}
	e.AverageRating = AverageRating(e.Ratings)
	return e.AverageRating
}

// RatingOf returns the user's rating and whether one exists.
func (e *Event) RatingOf(userID string) (int, bool) {
	for _, r := range e.Ratings {
		if r.UserID == userID {
			return r.Value, true
		}
	}
	return 0, false
}

// AverageRating is the arithmetic mean of the values, 0 for an empty list.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	return float64(sum) / float64(len(ratings))
}

// ValidRating reports whether v is inside [MinRating, MaxRating].
func ValidRating(v int) bool { return v >= MinRating && v <= MaxRating }

// EventInput carries the organizer-editable fields of an event.  Derived
// fields (AvailableTickets, Ratings, AverageRating) are deliberately absent
// so callers cannot supply them.
type EventInput struct {
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Location     string              `json:"location"`
	ImageURL     string              `json:"imageUrl"`
	URL          string              `json:"url"`
	StartAt      time.Time           `json:"startDateTime"`
	EndAt        time.Time           `json:"endDateTime"`
	Price        decimal.NullDecimal `json:"price"`
	IsFree       bool                `json:"isFree"`
	CategoryID   string              `json:"categoryId"`
	TotalTickets int                 `json:"totalTickets"`
}

// Normalize trims text fields and clears the price of free events.
func (in *EventInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.URL = strings.TrimSpace(in.URL)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	if in.IsFree {
		in.Price = decimal.NullDecimal{}
	}
}

// Validate checks the field-level rules.  It does not touch storage.
func (in EventInput) Validate() error {
	switch {
	case in.Title == "":
		return errors.New("title is required")
	case in.ImageURL == "":
		return errors.New("imageUrl is required")
	case in.TotalTickets < 0:
		return errors.New("totalTickets must not be negative")
	case in.StartAt.IsZero() || in.EndAt.IsZero():
		return errors.New("startDateTime and endDateTime are required")
	case in.EndAt.Before(in.StartAt):
		return errors.New("endDateTime must not be before startDateTime")
	case !in.IsFree && !in.Price.Valid:
		return errors.New("price is required unless the event is free")
	case in.Price.Valid && in.Price.Decimal.IsNegative():
		return errors.New("price must not be negative")
	}
	return nil
}
