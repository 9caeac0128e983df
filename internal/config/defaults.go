package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8765
	DefaultPath            = "/ws"
	DefaultRealm           = "default"
	DefaultPingInterval    = 20 * time.Second
	DefaultPingTimeout     = 20 * time.Second
	DefaultClassifyTimeout = 5 * time.Second
	DefaultRateCount       = 30
	DefaultRateWindow      = 5 * time.Second
	DefaultMaxTextLen      = 4096
	DefaultMaxFrameSize    = 64 * 1024
	DefaultOpsPort         = 9090
	DefaultMetricsPath     = "/metrics"
	DefaultLogLevel        = "info"
)

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}
	if c.Server.DefaultRealm == "" {
		c.Server.DefaultRealm = DefaultRealm
	}
	if c.Server.PingInterval == 0 {
		c.Server.PingInterval = DefaultPingInterval
	}
	if c.Server.PingTimeout == 0 {
		c.Server.PingTimeout = DefaultPingTimeout
	}
	if c.Server.ClassifyTimeout == 0 {
		c.Server.ClassifyTimeout = DefaultClassifyTimeout
	}

	if c.Limits.RateCount == 0 {
		c.Limits.RateCount = DefaultRateCount
	}
	if c.Limits.RateWindow == 0 {
		c.Limits.RateWindow = DefaultRateWindow
	}
	if c.Limits.MaxTextLen == 0 {
		c.Limits.MaxTextLen = DefaultMaxTextLen
	}
	if c.Limits.MaxFrameSize == 0 {
		c.Limits.MaxFrameSize = DefaultMaxFrameSize
	}

	if c.Ops.Port == 0 {
		c.Ops.Port = DefaultOpsPort
	}
	if c.Ops.Path == "" {
		c.Ops.Path = DefaultMetricsPath
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}
