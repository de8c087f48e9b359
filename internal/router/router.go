package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/event-ticketing/internal/handler"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Health     echo.HandlerFunc
	Events     *handler.EventHandler
	Ratings    *handler.RatingHandler
	Comments   *handler.CommentHandler
	Orders     *handler.OrderHandler
	Categories *handler.CategoryHandler
	Webhook    *handler.WebhookHandler
}

// RegisterRoutes registers the unauthenticated routes.  cache wraps the
// listing endpoints only; single-event reads carry live ticket counts.
func RegisterRoutes(e *echo.Echo, h Handlers, cache echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.GET("/events", h.Events.List, cache)
	v1.GET("/events/:id", h.Events.Get)
	v1.GET("/events/:id/related", h.Events.ListRelated, cache)
	v1.GET("/organizers/:id/events", h.Events.ListByOrganizer, cache)
	v1.GET("/events/:id/comments", h.Comments.List)
	v1.GET("/categories", h.Categories.List, cache)

	// Authenticated by signature, not by JWT.
	v1.POST("/webhooks/stripe", h.Webhook.Stripe)
}
