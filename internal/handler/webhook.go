package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/metrics"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// maxWebhookBody bounds the payload read from the payment collaborator.
const maxWebhookBody = int64(65536)

// NotificationParser verifies and decodes a webhook delivery.
type NotificationParser interface {
	Parse(payload []byte, signature string) (payment.Notification, error)
}

// Reconciler records the order for a completed payment.
type Reconciler interface {
	Reconcile(ctx context.Context, n payment.Notification) (*model.Order, error)
}

// WebhookHandler receives payment notifications.
//
// Responses: 400 when the signature does not verify (nothing is
// processed); 500 on storage failures so the sender retries; 200 for
// everything else, including duplicates and failures a retry cannot fix.
type WebhookHandler struct {
	Parser NotificationParser
	Orders Reconciler
	Log    *log.Logger
}

// NewWebhookHandler panics on nil collaborators.
func NewWebhookHandler(parser NotificationParser, orders Reconciler, logger *log.Logger) *WebhookHandler {
	if parser == nil || orders == nil || logger == nil {
		panic("nil dependency passed to NewWebhookHandler")
	}
	return &WebhookHandler{Parser: parser, Orders: orders, Log: logger}
}

// Stripe handles POST /v1/webhooks/stripe.
func (h *WebhookHandler) Stripe(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "error reading request body"})
	}
	if int64(len(body)) > maxWebhookBody {
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookRejected).Inc()
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "payload too large"})
	}

	n, err := h.Parser.Parse(body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrVerificationFailed) {
			h.Log.Warnf("webhook rejected: %v", err)
			metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookRejected).Inc()
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "signature verification failed"})
		}
		// Signed by the provider but unusable; a redelivery carries the same bytes.
		h.Log.Errorf("webhook payload could not be decoded: %v", err)
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookInvalid).Inc()
		return c.JSON(http.StatusOK, echo.Map{"received": true, "error": "malformed payload"})
	}
	if !n.Completed() {
		h.Log.Debugf("webhook %s of type %s ignored", n.ID, n.Type)
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookIgnored).Inc()
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	order, err := h.Orders.Reconcile(c.Request().Context(), n)
	switch {
	case err == nil:
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookProcessed).Inc()
		return c.JSON(http.StatusOK, echo.Map{"received": true, "orderId": order.ID})
	case errors.Is(err, repository.ErrDuplicateOrder):
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookDuplicate).Inc()
		resp := echo.Map{"received": true, "duplicate": true}
		if order != nil {
			resp["orderId"] = order.ID
		}
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, repository.ErrInsufficientInventory):
		h.Log.Errorf("payment %s could not be fulfilled: %v", n.PaymentRef, err)
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookInsufficient).Inc()
		return c.JSON(http.StatusOK, echo.Map{"received": true, "error": "insufficient tickets"})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrInvalidArgument):
		h.Log.Errorf("payment %s could not be reconciled: %v", n.PaymentRef, err)
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookInvalid).Inc()
		return c.JSON(http.StatusOK, echo.Map{"received": true, "error": "order not recorded"})
	default:
		h.Log.Errorf("payment %s: %v", n.PaymentRef, err)
		metrics.WebhookOutcomes.WithLabelValues(metrics.WebhookError).Inc()
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
