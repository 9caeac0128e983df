package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Path == "" || c.Server.Path[0] != '/' {
		return fmt.Errorf("server.path must start with '/', got %q", c.Server.Path)
	}
	if c.Server.DefaultRealm == "" {
		return errors.New("server.default_realm is required")
	}
	if c.Server.PingInterval <= 0 {
		return errors.New("server.ping_interval must be positive")
	}
	if c.Server.PingTimeout <= 0 {
		return errors.New("server.ping_timeout must be positive")
	}
	if c.Server.ClassifyTimeout <= 0 {
		return errors.New("server.classify_timeout must be positive")
	}

	if c.Limits.RateCount < 1 {
		return errors.New("limits.rate_count must be >= 1")
	}
	if c.Limits.RateWindow <= 0 {
		return errors.New("limits.rate_window must be positive")
	}
	if c.Limits.MaxTextLen < 1 {
		return errors.New("limits.max_text_len must be >= 1")
	}
	if int64(c.Limits.MaxTextLen) > c.Limits.MaxFrameSize {
		return fmt.Errorf("limits.max_text_len (%d) cannot exceed max_frame_size (%d)",
			c.Limits.MaxTextLen, c.Limits.MaxFrameSize)
	}

	if c.Ops.Port != 0 && (c.Ops.Port < 1 || c.Ops.Port > 65535) {
		return fmt.Errorf("ops.port must be between 1 and 65535, got %d", c.Ops.Port)
	}
	if c.Ops.Port == c.Server.Port {
		return fmt.Errorf("ops.port and server.port cannot both be %d", c.Ops.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}

	return nil
}
