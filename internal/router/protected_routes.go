package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/middleware"
)

// RegisterProtected registers the routes that require a valid access
// token.  limiter runs after JWTAuth so buckets can be keyed by user.
func RegisterProtected(e *echo.Echo, h Handlers, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)

	// ---- Events ----
	g.POST("/events", h.Events.Create)
	g.PUT("/events/:id", h.Events.Update)
	g.PATCH("/events/:id", h.Events.Update)
	g.DELETE("/events/:id", h.Events.Delete)
	g.GET("/me/events", h.Events.ListMine)

	// ---- Ratings ----
	g.POST("/events/:id/rating", h.Ratings.Submit)
	g.GET("/events/:id/rating", h.Ratings.Get)

	// ---- Comments ----
	g.POST("/events/:id/comments", h.Comments.Create)
	g.DELETE("/comments/:id", h.Comments.Delete)

	// ---- Orders ----
	g.GET("/events/:id/orders", h.Orders.ListByEvent)
	g.GET("/me/orders", h.Orders.ListMine)

	// ---- Categories ----
	g.POST("/categories", h.Categories.Create)
}
