package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all client-level metrics (not component-specific)
type Metrics struct {
	// Event flow metrics
	EventsReceived  *prometheus.CounterVec
	EventsDelivered *prometheus.CounterVec
	EventsDiscarded *prometheus.CounterVec

	// Outbound action metrics
	ActionsSent *prometheus.CounterVec

	// REST API metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Error tracking
	ErrorsTotal *prometheus.CounterVec

	// Real-time channel metrics
	ConnectionState prometheus.Gauge
	Reconnects      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all client metrics
func NewMetrics() *Metrics {
	return &Metrics{
		// Event flow metrics
		EventsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meticulous",
				Subsystem: "events",
				Name:      "received_total",
				Help:      "Total number of machine events received",
			},
			[]string{"event"},
		),

		EventsDelivered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meticulous",
				Subsystem: "events",
				Name:      "delivered_total",
				Help:      "Total number of machine events delivered to handlers",
			},
			[]string{"event"},
		),

		EventsDiscarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meticulous",
				Subsystem: "events",
				Name:      "discarded_total",
				Help:      "Total number of machine events discarded before delivery",
			},
			[]string{"event", "reason"},
		),

		// Outbound action metrics
		ActionsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meticulous",
				Subsystem: "actions",
				Name:      "sent_total",
				Help:      "Total number of actions sent to the machine",
			},
			[]string{"action"},
		),

		// REST API metrics
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meticulous",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of REST requests by operation and outcome",
			},
			[]string{"operation", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "meticulous",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "REST request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		// Error tracking
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "meticulous",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"component", "type"},
		),

		// Real-time channel metrics
		ConnectionState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "meticulous",
				Subsystem: "stream",
				Name:      "connection_state",
				Help:      "Real-time channel state (0=disconnected, 1=connecting, 2=connected, 3=closing)",
			},
		),

		Reconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "meticulous",
				Subsystem: "stream",
				Name:      "reconnects_total",
				Help:      "Total number of real-time channel reconnections",
			},
		),
	}
}

// RecordEventReceived increments the received counter for an event kind
func (c *Metrics) RecordEventReceived(event string) {
	c.EventsReceived.WithLabelValues(event).Inc()
}

// RecordEventDelivered increments the delivered counter for an event kind
func (c *Metrics) RecordEventDelivered(event string) {
	c.EventsDelivered.WithLabelValues(event).Inc()
}

// RecordEventDiscarded increments the discarded counter for an event kind
func (c *Metrics) RecordEventDiscarded(event, reason string) {
	c.EventsDiscarded.WithLabelValues(event, reason).Inc()
}

// RecordActionSent increments the sent counter for an action
func (c *Metrics) RecordActionSent(action string) {
	c.ActionsSent.WithLabelValues(action).Inc()
}

// RecordRequest increments the REST request counter
func (c *Metrics) RecordRequest(operation, status string) {
	c.RequestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordRequestDuration records REST request time
func (c *Metrics) RecordRequestDuration(operation string, duration time.Duration) {
	c.RequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordError increments error counter
func (c *Metrics) RecordError(component, errorType string) {
	c.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordConnectionState updates the real-time channel state
func (c *Metrics) RecordConnectionState(state int) {
	c.ConnectionState.Set(float64(state))
}

// RecordReconnect increments reconnection counter
func (c *Metrics) RecordReconnect() {
	c.Reconnects.Inc()
}
