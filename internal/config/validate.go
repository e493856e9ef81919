package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"hitqueue/internal/privacy"
	"hitqueue/internal/textutil"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateDelivery(); err != nil {
		return err
	}
	if err := c.validatePrivacy(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Paths.APIBind != "" {
		if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
			return fmt.Errorf("paths.api_bind must be host:port: %w", err)
		}
	}
	return nil
}

func (c *Config) validateQueue() error {
	if textutil.SanitizeToken(c.Queue.Name) == "unknown" && !strings.EqualFold(c.Queue.Name, "unknown") {
		return fmt.Errorf("queue.name %q must contain letters or digits", c.Queue.Name)
	}
	return nil
}

func (c *Config) validateDelivery() error {
	if c.Delivery.Endpoint != "" {
		parsed, err := url.Parse(c.Delivery.Endpoint)
		if err != nil {
			return fmt.Errorf("delivery.endpoint: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("delivery.endpoint must be an http or https URL, got %q", c.Delivery.Endpoint)
		}
		if parsed.Host == "" {
			return errors.New("delivery.endpoint must include a host")
		}
	}
	if c.Delivery.TimeoutSeconds <= 0 {
		return errors.New("delivery.timeout_seconds must be positive")
	}
	if c.Delivery.RetryBaseSeconds <= 0 {
		return errors.New("delivery.retry_base_seconds must be positive")
	}
	if c.Delivery.RetryMaxSeconds < c.Delivery.RetryBaseSeconds {
		return errors.New("delivery.retry_max_seconds must be >= delivery.retry_base_seconds")
	}
	return nil
}

func (c *Config) validatePrivacy() error {
	if _, err := privacy.Parse(c.Privacy.DefaultStatus); err != nil {
		return fmt.Errorf("privacy.default_status: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
