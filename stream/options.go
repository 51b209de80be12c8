package stream

import (
	"fmt"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/MeticulousHome/meticulous-go/metric"
	"github.com/MeticulousHome/meticulous-go/pkg/throttle"
)

// ClientOption configures a stream Client
type ClientOption func(*Client) error

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics wires the client into a metrics registry
func WithMetrics(registry *metric.MetricsRegistry) ClientOption {
	return func(c *Client) error {
		if registry == nil {
			return nil // No metrics
		}
		c.coreMetrics = registry.CoreMetrics()
		c.sessionMetrics = newStreamMetrics(registry)
		return nil
	}
}

// WithThrottle replaces the configured throttle spec. Useful when the
// Spec is assembled in code rather than loaded from configuration.
func WithThrottle(spec throttle.Spec) ClientOption {
	return func(c *Client) error {
		c.throttleSpec = spec
		return nil
	}
}

// WithDialer sets a custom WebSocket dialer
func WithDialer(dialer *websocket.Dialer) ClientOption {
	return func(c *Client) error {
		if dialer == nil {
			return fmt.Errorf("dialer cannot be nil")
		}
		c.dialer = dialer
		return nil
	}
}

// WithConnectCallback registers a callback invoked after each successful
// connect, on the connecting goroutine.
func WithConnectCallback(fn func()) ClientOption {
	return func(c *Client) error {
		c.onConnect = fn
		return nil
	}
}

// WithDisconnectCallback registers a callback invoked when a session ends.
// The error is nil after a deliberate Disconnect and non-nil when the
// connection was lost.
func WithDisconnectCallback(fn func(error)) ClientOption {
	return func(c *Client) error {
		c.onDisconnect = fn
		return nil
	}
}
