package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MeticulousHome/meticulous-go/config"
	"github.com/MeticulousHome/meticulous-go/errors"
	"github.com/MeticulousHome/meticulous-go/metric"
	"github.com/MeticulousHome/meticulous-go/types"
)

// defaultTimeout bounds a single request when the configuration does not
// set one.
const defaultTimeout = 10 * time.Second

// Client talks to the machine's REST API. It covers machine control
// actions, shot history retrieval, and update status; the real-time
// event channel lives in the stream package.
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metric.Metrics
}

// ClientOption is a functional option for configuring the Client
type ClientOption func(*Client) error

// WithLogger sets a custom structured logger for the client
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client. The caller owns
// timeout and transport configuration when this option is used.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc != nil {
			c.httpClient = hc
		}
		return nil
	}
}

// WithMetrics enables request metrics using the provided registry.
// Requests, latencies, and actions sent through this client are recorded
// against the registry's core metrics.
func WithMetrics(registry *metric.MetricsRegistry) ClientOption {
	return func(c *Client) error {
		if registry == nil {
			return nil // No metrics
		}
		c.metrics = registry.CoreMetrics()
		return nil
	}
}

// New creates a REST client for the machine described by cfg. A nil cfg
// uses DefaultConfig. The configuration is validated and its host
// normalized before any request is made.
func New(cfg *config.Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.WrapFatal(err, "api", "New", "validate configuration")
	}

	timeout := cfg.Timeout.Std()
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL: cfg.BaseURL(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapFatal(err, "api", "New", "apply option")
		}
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("component", "api")

	return c, nil
}

// BaseURL returns the normalized machine address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// get performs a GET against path and returns the raw response body.
// Non-2xx responses are decoded as the machine's error envelope and
// surfaced as request failures carrying the HTTP status: server-side
// statuses classify as transient, client-side as invalid.
func (c *Client) get(ctx context.Context, operation, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.WrapInvalid(err, "api", operation, "create request")
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Machine request", "operation", operation, "path", path)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordRequest(operation, "error", time.Since(start))
		c.recordError("transport")
		return nil, errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrRequestFailed, err), "api", operation, "reach machine")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordRequest(operation, "error", time.Since(start))
		c.recordError("transport")
		return nil, errors.WrapTransient(fmt.Errorf("%w: %w", errors.ErrRequestFailed, err), "api", operation, "read response")
	}

	c.recordRequest(operation, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Machine rejected request", "operation", operation, "status", resp.StatusCode)
		cause := fmt.Errorf("%w: HTTP %d: %s", errors.ErrRequestFailed, resp.StatusCode, machineError(body, resp.Status))
		if resp.StatusCode >= 500 {
			return nil, errors.WrapTransient(cause, "api", operation, "fetch")
		}
		return nil, errors.WrapInvalid(cause, "api", operation, "fetch")
	}

	return body, nil
}

// getJSON performs a GET and unmarshals the JSON response into out.
func (c *Client) getJSON(ctx context.Context, operation, path string, out any) error {
	body, err := c.get(ctx, operation, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.recordError("parse")
		return errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "api", operation, "decode response")
	}
	return nil
}

// machineError extracts the message from the machine's error envelope,
// falling back to the HTTP status line when the body is not an envelope.
func machineError(body []byte, fallback string) string {
	var apiErr types.APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return apiErr.Error
	}
	return fallback
}

// recordRequest is nil-safe so metrics stay optional.
func (c *Client) recordRequest(operation, status string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordRequest(operation, status)
	c.metrics.RecordRequestDuration(operation, elapsed)
}

// recordError is nil-safe so metrics stay optional.
func (c *Client) recordError(errorType string) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordError("api", errorType)
}
