package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, socket, and bind address configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
	SocketPath string `toml:"socket_path"`
	APIBind    string `toml:"api_bind"`
	APIToken   string `toml:"api_token"`
}

// Queue names the durable queue the daemon drains.
type Queue struct {
	Name string `toml:"name"`
}

// Delivery contains configuration for the HTTP hit processor.
type Delivery struct {
	Endpoint         string `toml:"endpoint"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	ContentType      string `toml:"content_type"`
	RetryBaseSeconds int    `toml:"retry_base_seconds"`
	RetryMaxSeconds  int    `toml:"retry_max_seconds"`
}

// Privacy holds the consent state applied when the daemon starts.
type Privacy struct {
	DefaultStatus string `toml:"default_status"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for hitqueue.
//
// Configuration sections by subsystem:
//   - Paths: data/log directories, control socket and API bind address
//   - Queue: logical queue name (one database file per name)
//   - Delivery: endpoint, timeout and retry backoff for HTTP delivery
//   - Privacy: consent state applied at startup
//   - Logging: log format and level
//   - Metrics: Prometheus exposition
type Config struct {
	Paths    Paths    `toml:"paths"`
	Queue    Queue    `toml:"queue"`
	Delivery Delivery `toml:"delivery"`
	Privacy  Privacy  `toml:"privacy"`
	Logging  Logging  `toml:"logging"`
	Metrics  Metrics  `toml:"metrics"`
}

// Load resolves the config file, decodes it over Default and validates the
// result. It also reports the path it used and whether that file existed, so
// callers can say when defaults were applied.
func Load(path string) (*Config, string, bool, error) {
	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// DeliveryTimeout returns the per-request delivery timeout.
func (c *Config) DeliveryTimeout() time.Duration {
	return time.Duration(c.Delivery.TimeoutSeconds) * time.Second
}

// RetryBounds returns the base and maximum retry intervals for failed hits.
func (c *Config) RetryBounds() (base, max time.Duration) {
	return time.Duration(c.Delivery.RetryBaseSeconds) * time.Second,
		time.Duration(c.Delivery.RetryMaxSeconds) * time.Second
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path, creating parent
// directories as needed.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
