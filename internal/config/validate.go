package config

import (
	"errors"
	"fmt"

	"subparse/internal/charset"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDecode(); err != nil {
		return err
	}
	if err := c.validateTiming(); err != nil {
		return err
	}
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDecode() error {
	if c.Decode.FallbackEncoding != "" && !charset.Supported(c.Decode.FallbackEncoding) {
		return fmt.Errorf("decode.fallback_encoding: unknown encoding %q", c.Decode.FallbackEncoding)
	}
	return nil
}

func (c *Config) validateTiming() error {
	if c.Timing.MaxDurationMS < 0 {
		return errors.New("timing.max_duration_ms must be zero or positive")
	}
	return nil
}

func (c *Config) validateInput() error {
	if c.Input.ChunkSize <= 0 {
		return errors.New("input.chunk_size must be positive")
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Enabled && c.Store.Path == "" {
		return errors.New("store.path must be set when the store is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
