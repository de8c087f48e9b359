package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// LineItemClient reads checkout line items from the payment collaborator's
// REST API.  It is used when a completed checkout carries no quantity.
type LineItemClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewLineItemClient returns a client for baseURL (normally
// https://api.stripe.com).  A nil hc gets a client with a 5s timeout.
func NewLineItemClient(baseURL, apiKey string, hc *http.Client) *LineItemClient {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Second}
	}
	return &LineItemClient{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, http: hc}
}

type lineItemList struct {
	Data []struct {
		Quantity int `json:"quantity"`
	} `json:"data"`
}

// Quantity sums the quantities of the session's line items.
func (c *LineItemClient) Quantity(ctx context.Context, sessionID string) (int, error) {
	endpoint := c.baseURL + "/v1/checkout/sessions/" + url.PathEscape(sessionID) + "/line_items"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("line items: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("line items: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var list lineItemList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return 0, fmt.Errorf("line items: decode: %w", err)
	}
	total := 0
	for _, it := range list.Data {
		total += it.Quantity
	}
	return total, nil
}
