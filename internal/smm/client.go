// Package smm talks to the SMM panel's ordering API. Panels of this kind share
// one wire contract: a form-encoded POST carrying the API key and an action,
// answered with a JSON object whose "order" field signals acceptance.
package smm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jeetlabs/jeetbot/internal/config"
	"github.com/jeetlabs/jeetbot/internal/metrics"
)

type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	log        *slog.Logger
}

// OrderResult is the panel's answer to an order submission. OrderID is empty
// when the panel rejected the order; Raw then holds the response body for
// diagnosis.
type OrderResult struct {
	OrderID string
	Raw     string
}

// Accepted reports whether the panel acknowledged the order with an ID.
func (r *OrderResult) Accepted() bool { return r.OrderID != "" }

func NewClient(cfg config.Config, log *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &Client{
		apiKey: cfg.PanelKey,
		apiURL: strings.TrimRight(cfg.PanelURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// PlaceOrder submits a single order. An error means the request never got a
// usable JSON response (network failure, timeout, non-2xx, garbage body); a
// nil error with Accepted()==false means the panel itself declined the order.
// Orders are never retried.
func (c *Client) PlaceOrder(ctx context.Context, serviceID, link string, quantity int) (*OrderResult, error) {
	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("action", "add")
	form.Set("service", serviceID)
	form.Set("link", link)
	form.Set("quantity", strconv.Itoa(quantity))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.PanelRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("post panel: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		if c.log != nil {
			c.log.Error("panel order failed", "status", resp.StatusCode, "body", truncateBody(rawBody))
		}
		return nil, fmt.Errorf("panel error: status=%d body=%s", resp.StatusCode, truncateBody(rawBody))
	}

	var payload struct {
		Order json.RawMessage `json:"order"`
	}
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return nil, fmt.Errorf("decode panel response: %w (body=%s)", err, truncateBody(rawBody))
	}

	orderID := decodeOrderID(payload.Order)
	if orderID == "" {
		if c.log != nil {
			c.log.Warn("panel declined order", "service", serviceID, "body", truncateBody(rawBody))
		}
		return &OrderResult{Raw: strings.TrimSpace(string(rawBody))}, nil
	}

	return &OrderResult{OrderID: orderID, Raw: strings.TrimSpace(string(rawBody))}, nil
}

// decodeOrderID normalizes the "order" field, which panels return either as a
// JSON number or a string.
func decodeOrderID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return ""
}

func truncateBody(body []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}
