package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeQueue()
	c.normalizeDelivery()
	c.normalizePrivacy()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) == "" {
		c.Paths.SocketPath = defaultSocketPath
	}
	if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
		return fmt.Errorf("paths.socket_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv(apiTokenEnvVar); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeQueue() {
	c.Queue.Name = strings.TrimSpace(c.Queue.Name)
	if c.Queue.Name == "" {
		c.Queue.Name = defaultQueueName
	}
}

func (c *Config) normalizeDelivery() {
	c.Delivery.Endpoint = strings.TrimSpace(c.Delivery.Endpoint)
	if c.Delivery.Endpoint == "" {
		if value, ok := os.LookupEnv(endpointEnvVar); ok {
			c.Delivery.Endpoint = strings.TrimSpace(value)
		}
	}
	c.Delivery.ContentType = strings.TrimSpace(c.Delivery.ContentType)
	if c.Delivery.ContentType == "" {
		c.Delivery.ContentType = defaultContentType
	}
	if c.Delivery.TimeoutSeconds <= 0 {
		c.Delivery.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Delivery.RetryBaseSeconds < 0 {
		c.Delivery.RetryBaseSeconds = 0
	}
	if c.Delivery.RetryMaxSeconds < c.Delivery.RetryBaseSeconds {
		c.Delivery.RetryMaxSeconds = c.Delivery.RetryBaseSeconds
	}
}

func (c *Config) normalizePrivacy() {
	c.Privacy.DefaultStatus = strings.ToLower(strings.TrimSpace(c.Privacy.DefaultStatus))
	if c.Privacy.DefaultStatus == "" {
		c.Privacy.DefaultStatus = defaultPrivacyStatus
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
