// Package config provides configuration management for the Meticulous
// machine client.
//
// This package handles loading, validation, and normalization of client
// configuration from YAML files and environment variables.
//
// # Core Components
//
// Config: Main configuration structure containing the machine host, REST
// timeout, real-time channel settings, and metrics exposure.
//
// Loader: Loads configuration with layer merging (base + overrides) and
// environment variable substitution for flexible deployment scenarios.
//
// Duration: YAML-friendly wrapper around time.Duration accepting values
// like "500ms" or "4s".
//
// # Basic Usage
//
// Loading configuration from files with layer merging:
//
//	loader := config.NewLoader()
//	loader.AddLayer("/etc/meticulous/client.yaml")
//	loader.AddLayer("client.override.yaml") // Overrides base
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Or start from defaults and adjust in code:
//
//	cfg := config.DefaultConfig()
//	cfg.Host = "http://meticulous.local:8080"
//
// # Environment Variable Overrides
//
// Configuration values can be overridden using environment variables:
//
//	# Override the machine host
//	export METICULOUS_HOST="http://10.0.0.42:8080"
//
//	# Override the REST timeout
//	export METICULOUS_TIMEOUT="15s"
//
// # Layer Merging
//
// Configuration layers are merged with last-wins semantics:
//
//	base.yaml:
//	  host: http://dev-machine:8080
//	  stream:
//	    connect_retries: 3
//
//	override.yaml:
//	  host: http://prod-machine:8080
//
//	Result:
//	  host: http://prod-machine:8080
//	  stream:
//	    connect_retries: 3
//
// # Host Normalization
//
// Validate normalizes the host so the rest of the client never deals with
// scheme or trailing-slash variants:
//
//	cfg := config.DefaultConfig()
//	cfg.Host = "meticulous.local:8080/"
//	_ = cfg.Validate()
//	cfg.BaseURL()       // "http://meticulous.local:8080"
//	cfg.WebSocketURL()  // "ws://meticulous.local:8080/api/v1/stream"
//
// # Configuration Structure
//
// The main Config struct contains:
//
//	type Config struct {
//	    Host    string        // Machine base URL
//	    Timeout Duration      // REST request timeout
//	    Stream  StreamConfig  // Real-time channel settings
//	    Metrics MetricsConfig // Metrics exposure
//	}
package config
