package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"hitqueue/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("HITQUEUE_ENDPOINT", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "hitqueue", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "hitqueue")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.SocketPath != filepath.Join(wantData, "hitqueue.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.Paths.SocketPath)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7491" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Queue.Name != "hits" {
		t.Fatalf("unexpected queue name: %q", cfg.Queue.Name)
	}
	if cfg.Delivery.Endpoint != "" {
		t.Fatalf("expected empty endpoint, got %q", cfg.Delivery.Endpoint)
	}
	if cfg.DeliveryTimeout() != 10*time.Second {
		t.Fatalf("unexpected delivery timeout: %s", cfg.DeliveryTimeout())
	}
	base, max := cfg.RetryBounds()
	if base != 30*time.Second || max != 30*time.Second {
		t.Fatalf("unexpected retry bounds: %s/%s", base, max)
	}
	if cfg.Privacy.DefaultStatus != "unknown" {
		t.Fatalf("unexpected privacy default: %q", cfg.Privacy.DefaultStatus)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("expected metrics enabled by default")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "hitqueue.toml")
	t.Setenv("HITQUEUE_ENDPOINT", "")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Queue struct {
			Name string `toml:"name"`
		} `toml:"queue"`
		Delivery struct {
			Endpoint         string `toml:"endpoint"`
			RetryBaseSeconds int    `toml:"retry_base_seconds"`
			RetryMaxSeconds  int    `toml:"retry_max_seconds"`
		} `toml:"delivery"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Queue.Name = "analytics"
	custom.Delivery.Endpoint = "https://collect.example.com/v1/hits"
	custom.Delivery.RetryBaseSeconds = 5
	custom.Delivery.RetryMaxSeconds = 300
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	if cfg.Queue.Name != "analytics" {
		t.Fatalf("unexpected queue name: %q", cfg.Queue.Name)
	}
	if cfg.Delivery.Endpoint != "https://collect.example.com/v1/hits" {
		t.Fatalf("unexpected endpoint: %q", cfg.Delivery.Endpoint)
	}
	base, max := cfg.RetryBounds()
	if base != 5*time.Second || max != 300*time.Second {
		t.Fatalf("unexpected retry bounds: %s/%s", base, max)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
	if cfg.Delivery.TimeoutSeconds != 10 {
		t.Fatalf("expected default timeout to survive partial file, got %d", cfg.Delivery.TimeoutSeconds)
	}
}

func TestEndpointFallsBackToEnv(t *testing.T) {
	t.Setenv("HITQUEUE_ENDPOINT", " http://localhost:9000/collect ")
	configPath := filepath.Join(t.TempDir(), "missing.toml")

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Delivery.Endpoint != "http://localhost:9000/collect" {
		t.Fatalf("expected endpoint from env, got %q", cfg.Delivery.Endpoint)
	}
}

func TestFileEndpointWinsOverEnv(t *testing.T) {
	t.Setenv("HITQUEUE_ENDPOINT", "http://env.example.com/")
	configPath := filepath.Join(t.TempDir(), "hitqueue.toml")
	content := "[delivery]\nendpoint = \"http://file.example.com/\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Delivery.Endpoint != "http://file.example.com/" {
		t.Fatalf("expected file endpoint, got %q", cfg.Delivery.Endpoint)
	}
}

func TestLoadFindsProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HITQUEUE_ENDPOINT", "")
	workDir := t.TempDir()
	t.Chdir(workDir)
	if err := os.WriteFile("hitqueue.toml", []byte("[queue]\nname = \"local\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "hitqueue.toml" {
		t.Fatalf("expected project config, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Queue.Name != "local" {
		t.Fatalf("unexpected queue name: %q", cfg.Queue.Name)
	}
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := config.ExpandPath("~/queues/../data")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "data") {
		t.Fatalf("unexpected expansion: %q", got)
	}
	if empty, _ := config.ExpandPath(""); empty != "" {
		t.Fatalf("expected empty path to stay empty, got %q", empty)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "hitqueue.toml")
	if err := os.WriteFile(configPath, []byte("[queue\nname = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(contents) != config.SampleConfig() {
		t.Fatal("sample file does not match embedded sample")
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "hitqueue") {
		t.Fatalf("expected data dir to contain hitqueue, got %q", cfg.Paths.DataDir)
	}
	if cfg.Queue.Name != "hits" {
		t.Fatalf("unexpected sample queue name: %q", cfg.Queue.Name)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.SocketPath = filepath.Join(base, "run", "hitqueue.sock")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{"data", "logs", "run"} {
		info, err := os.Stat(filepath.Join(base, dir))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	defaults := config.Default()
	if err := defaults.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"non-http endpoint", func(c *config.Config) { c.Delivery.Endpoint = "ftp://example.com" }},
		{"endpoint without host", func(c *config.Config) { c.Delivery.Endpoint = "http://" }},
		{"zero timeout", func(c *config.Config) { c.Delivery.TimeoutSeconds = 0 }},
		{"negative retry", func(c *config.Config) { c.Delivery.RetryBaseSeconds = -1 }},
		{"zero retry base", func(c *config.Config) { c.Delivery.RetryBaseSeconds = 0; c.Delivery.RetryMaxSeconds = 300 }},
		{"max below base", func(c *config.Config) { c.Delivery.RetryMaxSeconds = 1; c.Delivery.RetryBaseSeconds = 5 }},
		{"bad privacy status", func(c *config.Config) { c.Privacy.DefaultStatus = "maybe" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"bad queue name", func(c *config.Config) { c.Queue.Name = "///" }},
		{"bad api bind", func(c *config.Config) { c.Paths.APIBind = "localhost" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestNormalizeClampsRetryMax(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "hitqueue.toml")
	content := "[delivery]\nretry_base_seconds = 60\nretry_max_seconds = 10\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	base, max := cfg.RetryBounds()
	if base != time.Minute || max != time.Minute {
		t.Fatalf("expected max clamped to base, got %s/%s", base, max)
	}
}

func TestAPITokenFallsBackToEnv(t *testing.T) {
	t.Setenv("HITQUEUE_API_TOKEN", " secret ")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "secret" {
		t.Fatalf("expected api token from env, got %q", cfg.Paths.APIToken)
	}
}
