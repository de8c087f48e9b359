package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CommentAPI is implemented by service.CommentService.
type CommentAPI interface {
	PostComment(ctx context.Context, eventID, userID, content string) (*model.Comment, error)
	ListComments(ctx context.Context, eventID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, commentID, userID string) error
}

// CommentHandler serves event comments.
type CommentHandler struct {
	Comments CommentAPI
}

// NewCommentHandler panics on a nil service.
func NewCommentHandler(comments CommentAPI) *CommentHandler {
	if comments == nil {
		panic("nil service passed to NewCommentHandler")
	}
	return &CommentHandler{Comments: comments}
}

type commentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /v1/events/:id/comments.
func (h *CommentHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid json"})
	}
	cm, err := h.Comments.PostComment(c.Request().Context(), c.Param("id"), uid, req.Content)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cm)
}

// List handles GET /v1/events/:id/comments, newest first.
func (h *CommentHandler) List(c echo.Context) error {
	items, err := h.Comments.ListComments(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Delete handles DELETE /v1/comments/:id.  Only the author may delete.
func (h *CommentHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := h.Comments.DeleteComment(c.Request().Context(), c.Param("id"), uid); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
