package service

import (
	"context"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// RatingStore persists per-user ratings and the event average together.
type RatingStore interface {
	UpsertRating(ctx context.Context, eventID, userID string, value int) (float64, error)
	GetUserRating(ctx context.Context, eventID, userID string) (int, bool, error)
}

// UserRating is a user's rating of an event.  Rated is false when the user
// has not rated it; Value is then meaningless.
type UserRating struct {
	Value int  `json:"value"`
	Rated bool `json:"rated"`
}

// RatingService aggregates event ratings.
type RatingService struct {
	ratings RatingStore
	users   UserStore
	log     *log.Logger
}

// NewRatingService wires a RatingService.
func NewRatingService(ratings RatingStore, users UserStore, logger *log.Logger) *RatingService {
	return &RatingService{ratings: ratings, users: users, log: logger}
}

// SubmitRating stores value as the user's only rating of the event and
// returns the recomputed average.
func (s *RatingService) SubmitRating(ctx context.Context, eventID, userID string, value int) (float64, error) {
	if !model.ValidRating(value) {
		return 0, fmt.Errorf("%w: rating must be between %d and %d", repository.ErrInvalidArgument, model.MinRating, model.MaxRating)
	}
	if err := checkID("user", userID); err != nil {
		return 0, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return 0, err
	}
	avg, err := s.ratings.UpsertRating(ctx, eventID, userID, value)
	if err != nil {
		return 0, err
	}
	s.log.Debugf("event %s rated %d by %s; average %.2f", eventID, value, userID, avg)
	return avg, nil
}

// GetUserRating returns the user's rating of the event, or Rated=false.
// It fails with ErrNotFound when the event does not exist.
func (s *RatingService) GetUserRating(ctx context.Context, eventID, userID string) (UserRating, error) {
	v, ok, err := s.ratings.GetUserRating(ctx, eventID, userID)
	if err != nil {
		return UserRating{}, err
	}
	return UserRating{Value: v, Rated: ok}, nil
}
