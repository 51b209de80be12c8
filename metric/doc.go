// Package metric provides Prometheus-based metrics collection for the
// Meticulous machine client.
//
// The package offers a centralized metrics registry managing both core client
// metrics (event flow, action dispatch, REST request latency, connection
// state) and custom component-specific metrics. It includes an optional HTTP
// server exposing metrics in Prometheus format, plus a plain http.Handler for
// applications that already run their own server.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: Client-level metrics automatically registered (Metrics type)
//  2. Component Registry: Extensible registration for component-specific metrics (MetricsRegistrar interface)
//  3. HTTP Exposure: Standalone server or embeddable handler (Server type)
//
// This separates infrastructure concerns (core metrics) from application
// concerns (component-specific metrics) while keeping a single scrape
// endpoint.
//
// # Basic Usage
//
// Setting up metrics collection and an HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("Metrics server error: %v", err)
//	    }
//	}()
//	defer server.Stop()
//
//	// Record core client metrics
//	coreMetrics := registry.CoreMetrics()
//	coreMetrics.RecordEventReceived("sensors")
//	coreMetrics.RecordActionSent("start")
//	coreMetrics.RecordConnectionState(2) // connected
//
// The metrics server exposes Prometheus-formatted metrics at
// http://localhost:9090/metrics and a health check at
// http://localhost:9090/health.
//
// # Embedding in an Existing Server
//
// Applications that already serve HTTP can mount the handler directly:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(0, "", registry)
//	mux.Handle("/metrics", server.Handler())
//
// # Core Metrics
//
// The package automatically registers core client metrics tracking:
//
//   - Event flow: events_received_total, events_delivered_total, events_discarded_total
//   - Outbound actions: actions_sent_total
//   - REST performance: api_requests_total, api_request_duration_seconds
//   - Connection health: stream_connection_state, stream_reconnects_total
//   - Error tracking: errors_total
//
// Access core metrics through the registry:
//
//	coreMetrics := registry.CoreMetrics()
//
//	// Event flow tracking
//	coreMetrics.RecordEventReceived("sensors")
//	coreMetrics.RecordEventDelivered("sensors")
//	coreMetrics.RecordEventDiscarded("sensors", "throttled")
//
//	// Outbound actions
//	coreMetrics.RecordActionSent("tare")
//
//	// REST performance
//	coreMetrics.RecordRequest("GetLastShot", "ok")
//	coreMetrics.RecordRequestDuration("GetLastShot", 35*time.Millisecond)
//
//	// Connection health
//	coreMetrics.RecordConnectionState(2) // 2 = connected
//	coreMetrics.RecordReconnect()
//
//	// Error tracking
//	coreMetrics.RecordError("stream", "decode")
//
// # Component-Specific Metrics
//
// Components can register custom metrics through the registry:
//
//	// Register a counter
//	framesCounter := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "stream_frames_total",
//	    Help: "Total number of frames read from the real-time channel",
//	})
//	err := registry.RegisterCounter("stream", "frames_total", framesCounter)
//
//	// Register a gauge
//	rtt := prometheus.NewGauge(prometheus.GaugeOpts{
//	    Name: "stream_rtt_milliseconds",
//	    Help: "Round-trip time to the machine in milliseconds",
//	})
//	err = registry.RegisterGauge("stream", "rtt", rtt)
//
// Vector metrics work the same way through RegisterCounterVec,
// RegisterGaugeVec and RegisterHistogramVec.
//
// # MetricsRegistrar Interface
//
// Components accept the MetricsRegistrar interface for dependency injection:
//
//	func newStreamMetrics(registrar metric.MetricsRegistrar) error {
//	    counter := prometheus.NewCounter(prometheus.CounterOpts{
//	        Name: "stream_frames_total",
//	        Help: "Total frames read",
//	    })
//	    return registrar.RegisterCounter("stream", "frames_total", counter)
//	}
//
// This enables testing with mock registrars and keeps components decoupled
// from the concrete registry.
//
// # Prometheus Integration
//
// The package uses the official Prometheus Go client library and exposes
// metrics in OpenMetrics format. Configure Prometheus to scrape the endpoint:
//
//	# prometheus.yml
//	scrape_configs:
//	  - job_name: 'meticulous'
//	    static_configs:
//	      - targets: ['localhost:9090']
//	    metrics_path: '/metrics'
//	    scrape_interval: 15s
//
// All core metrics use the namespace "meticulous" and appropriate subsystems:
//   - meticulous_events_received_total{event="..."}
//   - meticulous_api_requests_total{operation="...",status="..."}
//   - meticulous_stream_connection_state
//
// Component-specific metrics use the metric name as provided during
// registration.
//
// # Thread Safety
//
// All registry operations are thread-safe:
//   - Registration methods use mutex protection
//   - Metric recording is lock-free (Prometheus guarantee)
//   - CoreMetrics() returns a thread-safe shared instance
//   - PrometheusRegistry() is safe for concurrent access
//
// # Error Handling
//
// Registration methods return errors for:
//
//   - Duplicate registration: attempting to register the same metric name twice
//   - Prometheus conflicts: internal Prometheus registration failures
//
// Example error handling:
//
//	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test"})
//	err := registry.RegisterCounter("stream", "test", counter)
//	if err != nil {
//	    if errors.IsInvalid(err) {
//	        log.Printf("Metric already registered, skipping")
//	    } else {
//	        log.Fatalf("Failed to register metric: %v", err)
//	    }
//	}
//
// The Server.Start() method returns errors for:
//
//   - Server already running
//   - Nil registry
//   - HTTP server failures (port in use, permission denied)
//
// Start blocks until the server stops and returns nil after a clean
// shutdown via Stop.
package metric
