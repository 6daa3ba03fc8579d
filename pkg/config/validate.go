package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Relay.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("relay: %w", err))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	if err := c.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks RelayConfig for errors.
func (c *RelayConfig) Validate() error {
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil {
			return fmt.Errorf("invalid url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid url scheme: %q", u.Scheme)
		}
	}
	if c.TimeoutSeconds < 0 {
		return errors.New("timeout_seconds must be non-negative")
	}
	if c.Limit < 0 || c.Limit > 50 {
		return errors.New("limit must be between 0 and 50")
	}
	return nil
}

// Validate checks CacheConfig for errors.
func (c *CacheConfig) Validate() error {
	switch c.Backend {
	case "", "sqlite", "redis", "memory", "none":
		// valid
	default:
		return fmt.Errorf("invalid backend: %s (must be sqlite, redis, memory, or none)", c.Backend)
	}
	if c.Backend == "redis" && c.RedisAddr == "" {
		return errors.New("redis backend requires redis_addr")
	}
	if c.TTLMinutes < 0 {
		return errors.New("ttl_minutes must be non-negative")
	}
	return nil
}

// Validate checks PlayerConfig for errors.
func (c *PlayerConfig) Validate() error {
	if c.TickMS < 0 {
		return errors.New("tick_ms must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	switch c.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Format)
	}
	return nil
}
