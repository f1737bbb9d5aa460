package anki

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultEndpoint is where AnkiConnect listens by default.
const DefaultEndpoint = "http://127.0.0.1:8765"

// APIError is an error reported by AnkiConnect in the response body.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Client performs AnkiConnect calls: one JSON POST per call.
type Client struct {
	endpoint string
	http     *resty.Client
	logger   *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds each call. Zero keeps the transport default (none).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a Client for endpoint (DefaultEndpoint when empty).
func NewClient(endpoint string, opts ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     resty.New().SetHeader("Content-Type", "application/json"),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type apiResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// Invoke posts payload and returns the result field. A non-null error
// field becomes an *APIError.
func (c *Client) Invoke(ctx context.Context, payload any) (json.RawMessage, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("anki: post: %w", err)
	}

	var body apiResponse
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		return nil, fmt.Errorf("anki: decode response (status %d): %w", res.StatusCode(), err)
	}
	if body.Error != nil && *body.Error != "" {
		return nil, &APIError{Message: *body.Error}
	}

	c.logger.DebugContext(ctx, "anki: call ok", "endpoint", c.endpoint, "status", res.StatusCode())
	return body.Result, nil
}

// Version asks AnkiConnect for its API version.
func (c *Client) Version(ctx context.Context) (int, error) {
	raw, err := c.Invoke(ctx, map[string]any{"action": ActionVersion, "version": APIVersion})
	if err != nil {
		return 0, err
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("anki: decode version: %w", err)
	}
	return v, nil
}
