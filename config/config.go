package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MeticulousHome/meticulous-go/errors"
	"github.com/MeticulousHome/meticulous-go/types"
)

// DefaultHost is the base URL used when no host is configured.
const DefaultHost = "http://localhost:8080"

// Duration wraps time.Duration so YAML values can be written as strings
// like "500ms" or "4s". Plain integers are treated as nanoseconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration formatted like time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(v)
	case int64:
		*d = Duration(v)
	case float64:
		*d = Duration(int64(v))
	default:
		return fmt.Errorf("invalid duration type %T", raw)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config represents the complete client configuration
type Config struct {
	Host    string        `yaml:"host"`              // Machine base URL (e.g., "http://meticulous.local:8080")
	Timeout Duration      `yaml:"timeout,omitempty"` // REST request timeout
	Stream  StreamConfig  `yaml:"stream,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// StreamConfig defines real-time channel settings
type StreamConfig struct {
	Path           string              `yaml:"path,omitempty"`            // Channel endpoint path
	ConnectRetries int                 `yaml:"connect_retries,omitempty"` // Extra attempts after the first failure
	InitialBackoff Duration            `yaml:"initial_backoff,omitempty"` // First delay between attempts
	MaxBackoff     Duration            `yaml:"max_backoff,omitempty"`     // Delay ceiling
	PingInterval   Duration            `yaml:"ping_interval,omitempty"`   // Keepalive ping frequency
	Throttle       map[string]Duration `yaml:"throttle,omitempty"`        // Minimum spacing per event kind
}

// MetricsConfig defines metrics exposure settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// DefaultConfig returns the default client configuration
func DefaultConfig() *Config {
	return &Config{
		Host:    DefaultHost,
		Timeout: Duration(10 * time.Second),
		Stream: StreamConfig{
			Path:           "/api/v1/stream",
			ConnectRetries: 3,
			InitialBackoff: Duration(500 * time.Millisecond),
			MaxBackoff:     Duration(4 * time.Second),
			PingInterval:   Duration(30 * time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Validate checks the config and normalizes the host URL
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.ErrMissingHost
	}

	normalized, err := normalizeHost(c.Host)
	if err != nil {
		return fmt.Errorf("%w: host %q: %v", errors.ErrInvalidConfig, c.Host, err)
	}
	c.Host = normalized

	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout cannot be negative", errors.ErrInvalidConfig)
	}

	if err := c.Stream.validate(); err != nil {
		return err
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("%w: metrics.port %d out of range", errors.ErrInvalidConfig, c.Metrics.Port)
	}

	return nil
}

func (s *StreamConfig) validate() error {
	if s.ConnectRetries < 0 {
		return fmt.Errorf("%w: stream.connect_retries cannot be negative", errors.ErrInvalidConfig)
	}
	if s.InitialBackoff < 0 {
		return fmt.Errorf("%w: stream.initial_backoff cannot be negative", errors.ErrInvalidConfig)
	}
	if s.MaxBackoff != 0 && s.MaxBackoff < s.InitialBackoff {
		return fmt.Errorf("%w: stream.max_backoff is less than stream.initial_backoff", errors.ErrInvalidConfig)
	}
	if s.Path != "" && !strings.HasPrefix(s.Path, "/") {
		return fmt.Errorf("%w: stream.path must start with /", errors.ErrInvalidConfig)
	}

	// Throttle keys must name known event kinds; intervals of zero or less
	// mean no throttling, so they need no range check
	for kind := range s.Throttle {
		if !types.EventKind(kind).Valid() {
			return fmt.Errorf("%w: stream.throttle key %q is not a known event kind", errors.ErrInvalidConfig, kind)
		}
	}

	return nil
}

// normalizeHost ensures the host has an http or https scheme and no
// trailing slash.
func normalizeHost(host string) (string, error) {
	h := strings.TrimSpace(host)
	if !strings.Contains(h, "://") {
		h = "http://" + h
	}

	u, err := url.Parse(h)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host")
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// BaseURL returns the normalized machine base URL
func (c *Config) BaseURL() string {
	return c.Host
}

// WebSocketURL returns the real-time channel URL derived from the host
func (c *Config) WebSocketURL() string {
	u := c.Host
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + c.Stream.Path
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	// Use YAML marshaling/unmarshaling for deep copy
	data, err := yaml.Marshal(c)
	if err != nil {
		// Fallback to shallow copy if marshaling fails
		copied := *c
		return &copied
	}

	var clone Config
	if err := yaml.Unmarshal(data, &clone); err != nil {
		// Fallback to shallow copy if unmarshaling fails
		copied := *c
		return &copied
	}

	return &clone
}

// String returns a YAML representation of the config
func (c *Config) String() string {
	data, _ := yaml.Marshal(c)
	return string(data)
}

// SaveToFile saves the configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: false,
		envPrefix:  "METICULOUS",
	}
}

// AddLayer adds a configuration file layer
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Load each layer and merge using map-based approach
	for _, path := range l.layers {
		rawConfig, err := l.loadRawYAML(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg, err = l.mergeFromMap(cfg, rawConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// Apply environment overrides
	l.applyEnvOverrides(cfg)

	// Validate if enabled
	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadRawYAML loads configuration from a YAML file as a map
func (l *Loader) loadRawYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rawConfig map[string]any
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, err
	}

	return rawConfig, nil
}

// mergeFromMap merges configuration from a raw map, only overriding fields present in the map
func (l *Loader) mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	if override == nil {
		return base, nil
	}

	// Marshal the base config to YAML then to map
	baseYAML, err := yaml.Marshal(base)
	if err != nil {
		return nil, err
	}

	var baseMap map[string]any
	if err := yaml.Unmarshal(baseYAML, &baseMap); err != nil {
		return nil, err
	}

	// Deep merge the maps
	mergedMap := l.deepMergeMaps(baseMap, override)

	// Convert back to Config
	mergedYAML, err := yaml.Marshal(mergedMap)
	if err != nil {
		return nil, err
	}

	var merged Config
	if err := yaml.Unmarshal(mergedYAML, &merged); err != nil {
		return nil, err
	}

	return &merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any)

	// Copy base values
	for k, v := range base {
		result[k] = v
	}

	// Override with values from override map
	for k, v := range override {
		if v == nil {
			continue
		}

		// If both base and override have maps at this key, merge them
		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}

		// Otherwise, override takes precedence
		result[k] = v
	}

	return result
}

// applyEnvOverrides applies environment variable overrides
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := os.Getenv(l.envPrefix + "_HOST"); val != "" {
		cfg.Host = val
	}
	if val := os.Getenv(l.envPrefix + "_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Timeout = Duration(d)
		}
	}
	if val := os.Getenv(l.envPrefix + "_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Port = port
		}
	}
}
