package config

import "time"

// Config is the root configuration for a bridge instance.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Limits  LimitsConfig  `yaml:"limits"`
	Ops     OpsConfig     `yaml:"ops"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the WebSocket listener settings.
type ServerConfig struct {
	Host string `yaml:"host" env:"SP_BRIDGE_HOST"`
	Port int    `yaml:"port" env:"SP_BRIDGE_PORT"`

	// Path is the single WebSocket endpoint; connections to any other
	// path are closed with code 4404.
	Path string `yaml:"path" env:"SP_BRIDGE_PATH"`

	// DefaultRealm is assigned to plugin connections that announce no
	// realm via header, query parameter, or first frame.
	DefaultRealm string `yaml:"default_realm" env:"SP_BRIDGE_DEFAULT_REALM"`

	PingInterval time.Duration `yaml:"ping_interval" env:"SP_BRIDGE_PING_INTERVAL"`
	PingTimeout  time.Duration `yaml:"ping_timeout" env:"SP_BRIDGE_PING_TIMEOUT"`

	// ClassifyTimeout bounds the first-frame read used for role detection.
	ClassifyTimeout time.Duration `yaml:"classify_timeout" env:"SP_BRIDGE_CLASSIFY_TIMEOUT"`
}

// AuthConfig holds the shared-secret settings.
type AuthConfig struct {
	// Token is the shared bearer secret. Empty means open mode:
	// authentication is skipped entirely.
	Token string `yaml:"token" env:"SP_TOKEN"`
}

// LimitsConfig holds per-connection rate and size limits.
type LimitsConfig struct {
	RateCount  int           `yaml:"rate_count" env:"SP_BRIDGE_RATE_COUNT"`
	RateWindow time.Duration `yaml:"rate_window" env:"SP_BRIDGE_RATE_WINDOW"`

	// MaxTextLen is the soft limit: longer text frames are rejected
	// with bridge.error/text_too_long but the connection stays open.
	MaxTextLen int `yaml:"max_text_len" env:"SP_BRIDGE_MAX_TEXT_LEN"`

	// MaxFrameSize is the transport-level read limit; frames beyond it
	// terminate the connection.
	MaxFrameSize int64 `yaml:"max_frame_size" env:"SP_BRIDGE_MAX_FRAME_SIZE"`
}

// OpsConfig holds the operational HTTP server (health + metrics) settings.
type OpsConfig struct {
	Port int    `yaml:"port" env:"SP_BRIDGE_OPS_PORT"`
	Path string `yaml:"metrics_path" env:"SP_BRIDGE_METRICS_PATH"`
}

// LoggingConfig holds structured-logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" env:"SP_BRIDGE_LOG_LEVEL"` // debug, info, warn, error
}
