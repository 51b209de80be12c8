package meticulous

import (
	"log/slog"
	"net/http"

	"github.com/MeticulousHome/meticulous-go/api"
	"github.com/MeticulousHome/meticulous-go/metric"
	"github.com/MeticulousHome/meticulous-go/pkg/throttle"
	"github.com/MeticulousHome/meticulous-go/stream"
)

// Callbacks binds typed handlers to machine events. See stream.Callbacks.
type Callbacks = stream.Callbacks

// Options configures a Client. The zero value is usable: no callbacks, no
// throttling, default logger, no metrics.
type Options struct {
	// Callbacks receive real-time events once Connect establishes the
	// channel. Events without a callback are discarded without decoding.
	Callbacks Callbacks

	// Throttle enforces a minimum spacing between deliveries per event
	// kind. When set it takes precedence over any throttle intervals
	// loaded from configuration.
	Throttle throttle.Spec

	// OnConnect is invoked after each successful connect.
	OnConnect func()

	// OnDisconnect is invoked when a session ends: with nil after a
	// deliberate Disconnect, with the read error when the connection was
	// lost.
	OnDisconnect func(error)

	// Logger receives client logs. slog.Default() when nil.
	Logger *slog.Logger

	// Metrics registers Prometheus metrics for both surfaces. Nil leaves
	// metrics disabled.
	Metrics *metric.MetricsRegistry

	// HTTPClient overrides the REST transport, for custom timeouts or
	// instrumentation.
	HTTPClient *http.Client
}

func (o Options) apiOptions() []api.ClientOption {
	var opts []api.ClientOption
	if o.Logger != nil {
		opts = append(opts, api.WithLogger(o.Logger))
	}
	if o.HTTPClient != nil {
		opts = append(opts, api.WithHTTPClient(o.HTTPClient))
	}
	if o.Metrics != nil {
		opts = append(opts, api.WithMetrics(o.Metrics))
	}
	return opts
}

func (o Options) streamOptions() []stream.ClientOption {
	var opts []stream.ClientOption
	if o.Logger != nil {
		opts = append(opts, stream.WithLogger(o.Logger))
	}
	if o.Metrics != nil {
		opts = append(opts, stream.WithMetrics(o.Metrics))
	}
	if !o.Throttle.Empty() {
		opts = append(opts, stream.WithThrottle(o.Throttle))
	}
	if o.OnConnect != nil {
		opts = append(opts, stream.WithConnectCallback(o.OnConnect))
	}
	if o.OnDisconnect != nil {
		opts = append(opts, stream.WithDisconnectCallback(o.OnDisconnect))
	}
	return opts
}
