package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/event-ticketing/internal/handler"
)

// Embedded nil interfaces satisfy the handler dependencies; the requests
// below never reach them.
type (
	nopEvents     struct{ handler.EventAPI }
	nopRatings    struct{ handler.RatingAPI }
	nopComments   struct{ handler.CommentAPI }
	nopOrders     struct{ handler.OrderAPI }
	nopCategories struct{ handler.CategoryAPI }
	nopParser     struct{ handler.NotificationParser }
	nopReconciler struct{ handler.Reconciler }
)

func newServer() *echo.Echo {
	lg := log.New("test")
	lg.SetOutput(io.Discard)
	h := Handlers{
		Health:     handler.Health(nil),
		Events:     handler.NewEventHandler(nopEvents{}),
		Ratings:    handler.NewRatingHandler(nopRatings{}),
		Comments:   handler.NewCommentHandler(nopComments{}),
		Orders:     handler.NewOrderHandler(nopOrders{}),
		Categories: handler.NewCategoryHandler(nopCategories{}),
		Webhook:    handler.NewWebhookHandler(nopParser{}, nopReconciler{}, lg),
	}
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	e := echo.New()
	RegisterRoutes(e, h, pass)
	RegisterProtected(e, h, "secret", pass)
	return e
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	e := newServer()
	cases := []struct {
		method, path string
		code         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/v1/events", http.StatusUnauthorized},
		{http.MethodDelete, "/v1/events/ev-1", http.StatusUnauthorized},
		{http.MethodPost, "/v1/events/ev-1/rating", http.StatusUnauthorized},
		{http.MethodGet, "/v1/me/orders", http.StatusUnauthorized},
		{http.MethodDelete, "/v1/comments/c-1", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.code, rec.Code, "%s %s", tc.method, tc.path)
	}
}
