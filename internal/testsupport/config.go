package testsupport

import (
	"path/filepath"
	"testing"

	"hitqueue/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The delivery endpoint points at a closed local port unless overridden.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SocketPath = filepath.Join(base, "hitqueue.sock")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Delivery.Endpoint = "http://127.0.0.1:9/collect"
	cfgVal.Delivery.TimeoutSeconds = 2
	cfgVal.Metrics.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithEndpoint overrides the delivery endpoint on the test config.
func WithEndpoint(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Delivery.Endpoint = url
	}
}

// WithRetry sets the retry backoff bounds in seconds.
func WithRetry(baseSeconds, maxSeconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Delivery.RetryBaseSeconds = baseSeconds
		b.cfg.Delivery.RetryMaxSeconds = maxSeconds
	}
}

// WithPrivacy sets the privacy status applied at daemon start.
func WithPrivacy(status string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Privacy.DefaultStatus = status
	}
}

// WithMetrics toggles the metrics endpoint.
func WithMetrics(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Enabled = enabled
	}
}

// WithAPIToken sets the bearer token required by POST /api/hits.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithQueueName overrides the logical queue name.
func WithQueueName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.Name = name
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
