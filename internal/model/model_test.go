package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUpsertRatingReplacesExistingEntry(t *testing.T) {
	e := &Event{}
	assert.Equal(t, 4.0, e.UpsertRating("u1", 4))
	assert.Equal(t, 2.0, e.UpsertRating("u1", 2))
	assert.Equal(t, []Rating{{UserID: "u1", Value: 2}}, e.Ratings)

	assert.Equal(t, 3.5, e.UpsertRating("u2", 5))
	assert.Len(t, e.Ratings, 2)
}

func TestAverageRatingEmpty(t *testing.T) {
	assert.Zero(t, AverageRating(nil))
	assert.InDelta(t, 3.6667, AverageRating([]Rating{{"a", 5}, {"b", 5}, {"c", 1}}), 1e-4)
}

func TestRatingOfDistinguishesAbsence(t *testing.T) {
	e := &Event{Ratings: []Rating{{UserID: "u1", Value: 3}}}
	v, ok := e.RatingOf("u1")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = e.RatingOf("u2")
	assert.False(t, ok)
}

func TestValidRating(t *testing.T) {
	assert.False(t, ValidRating(0))
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(6))
}

func validInput() EventInput {
	start := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)
	return EventInput{
		Title:        "Jazz night",
		ImageURL:     "https://img/jazz.png",
		StartAt:      start,
		EndAt:        start.Add(3 * time.Hour),
		Price:        decimal.NewNullDecimal(decimal.RequireFromString("25.00")),
		TotalTickets: 100,
	}
}

func TestEventInputValidate(t *testing.T) {
	assert.NoError(t, validInput().Validate())

	in := validInput()
	in.TotalTickets = -1
	assert.EqualError(t, in.Validate(), "totalTickets must not be negative")

	in = validInput()
	in.EndAt = in.StartAt.Add(-time.Minute)
	assert.Error(t, in.Validate())

	in = validInput()
	in.Price = decimal.NullDecimal{}
	assert.EqualError(t, in.Validate(), "price is required unless the event is free")
	in.IsFree = true
	assert.NoError(t, in.Validate())
}

func TestNormalizeClearsPriceOfFreeEvents(t *testing.T) {
	in := validInput()
	in.Title = "  Jazz night "
	in.IsFree = true
	in.Normalize()
	assert.Equal(t, "Jazz night", in.Title)
	assert.False(t, in.Price.Valid)
}
