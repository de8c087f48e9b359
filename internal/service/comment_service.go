package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// MaxCommentLength bounds comment content, in bytes.
const MaxCommentLength = 2000

// CommentStore persists comments.
type CommentStore interface {
	Create(ctx context.Context, eventID, userID, content string) (*model.Comment, error)
	GetByID(ctx context.Context, id string) (*model.Comment, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Comment, error)
	Delete(ctx context.Context, id string) error
}

// CommentService manages comments on events.
type CommentService struct {
	comments CommentStore
	events   EventStore
	users    UserStore
	log      *log.Logger
}

// NewCommentService wires a CommentService.
func NewCommentService(comments CommentStore, events EventStore, users UserStore, logger *log.Logger) *CommentService {
	return &CommentService{comments: comments, events: events, users: users, log: logger}
}

// PostComment stores a comment with a server-assigned timestamp.  The
// returned record has the author's name and the event title resolved.
func (s *CommentService) PostComment(ctx context.Context, eventID, userID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", repository.ErrInvalidArgument)
	}
	if len(content) > MaxCommentLength {
		return nil, fmt.Errorf("%w: content exceeds %d bytes", repository.ErrInvalidArgument, MaxCommentLength)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("event %s: %w", eventID, repository.ErrNotFound)
		}
		return nil, err
	}
	c, err := s.comments.Create(ctx, eventID, userID, content)
	if err != nil {
		s.log.Errorf("post comment on %s: %v", eventID, err)
		return nil, err
	}
	return c, nil
}

// ListComments returns the event's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, eventID string) ([]model.Comment, error) {
	items, err := s.comments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Comment{}
	}
	return items, nil
}

// DeleteComment removes a comment.  Only its author may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID string) error {
	c, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.User.ID != userID {
		return fmt.Errorf("delete comment %s: %w", commentID, repository.ErrUnauthorized)
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		s.log.Errorf("delete comment %s: %v", commentID, err)
		return err
	}
	return nil
}
