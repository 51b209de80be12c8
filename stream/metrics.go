package stream

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MeticulousHome/meticulous-go/metric"
)

// streamMetrics holds the per-client session metrics. Event-level counters
// (received, delivered, discarded) and the connection gauge live in the
// core metric set; this struct adds the frame-level view of one session.
type streamMetrics struct {
	framesTotal       *prometheus.CounterVec
	payloadBytesTotal *prometheus.CounterVec
	emitsTotal        *prometheus.CounterVec
	connectAttempts   prometheus.Counter
	connectFailures   prometheus.Counter
	rtt               prometheus.Histogram
}

// newStreamMetrics builds and registers the session metrics. A nil
// registry yields a nil struct; every record method tolerates that, so
// metrics stay optional.
func newStreamMetrics(registry *metric.MetricsRegistry) *streamMetrics {
	if registry == nil {
		return nil
	}

	m := &streamMetrics{
		framesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meticulous",
			Subsystem: "stream",
			Name:      "frames_total",
			Help:      "Total WebSocket frames by direction",
		}, []string{"direction"}),

		payloadBytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meticulous",
			Subsystem: "stream",
			Name:      "payload_bytes_total",
			Help:      "Total WebSocket payload bytes by direction",
		}, []string{"direction"}),

		emitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meticulous",
			Subsystem: "stream",
			Name:      "emits_total",
			Help:      "Total outbound frames by event name",
		}, []string{"event"}),

		connectAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meticulous",
			Subsystem: "stream",
			Name:      "connect_attempts_total",
			Help:      "Total connection attempts including retries",
		}),

		connectFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meticulous",
			Subsystem: "stream",
			Name:      "connect_failures_total",
			Help:      "Total failed connection attempts",
		}),

		rtt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "meticulous",
			Subsystem: "stream",
			Name:      "rtt_milliseconds",
			Help:      "Ping/pong round-trip time in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}

	// CounterVec metrics
	registry.RegisterCounterVec("stream", "frames", m.framesTotal)
	registry.RegisterCounterVec("stream", "payload_bytes", m.payloadBytesTotal)
	registry.RegisterCounterVec("stream", "emits", m.emitsTotal)

	// Counter metrics
	registry.RegisterCounter("stream", "connect_attempts", m.connectAttempts)
	registry.RegisterCounter("stream", "connect_failures", m.connectFailures)

	// Histogram metrics
	registry.RegisterHistogram("stream", "rtt", m.rtt)

	return m
}

func (m *streamMetrics) recordFrame(direction string, size int) {
	if m == nil {
		return
	}
	m.framesTotal.WithLabelValues(direction).Inc()
	m.payloadBytesTotal.WithLabelValues(direction).Add(float64(size))
}

func (m *streamMetrics) recordEmit(event string) {
	if m == nil {
		return
	}
	m.emitsTotal.WithLabelValues(event).Inc()
}

func (m *streamMetrics) recordConnectAttempt() {
	if m == nil {
		return
	}
	m.connectAttempts.Inc()
}

func (m *streamMetrics) recordConnectFailure() {
	if m == nil {
		return
	}
	m.connectFailures.Inc()
}

func (m *streamMetrics) recordRTT(d time.Duration) {
	if m == nil {
		return
	}
	m.rtt.Observe(float64(d.Milliseconds()))
}
