package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  host: 127.0.0.1
  port: 9876
  default_realm: anarchy
auth:
  token: hunter2
limits:
  rate_count: 10
  rate_window: 2s
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
	}
	if cfg.Server.Port != 9876 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9876)
	}
	if cfg.Auth.Token != "hunter2" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "hunter2")
	}
	if cfg.Limits.RateWindow != 2*time.Second {
		t.Errorf("Limits.RateWindow = %v, want %v", cfg.Limits.RateWindow, 2*time.Second)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_BRIDGE_TOKEN", "secret123")

	yaml := `
auth:
  token: ${TEST_BRIDGE_TOKEN}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Auth.Token != "secret123" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "secret123")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("SP_TOKEN", "from-env")
	t.Setenv("SP_BRIDGE_PORT", "4321")

	yaml := `
server:
  port: 9876
auth:
  token: from-file
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Auth.Token != "from-env" {
		t.Errorf("Auth.Token = %q, want env override %q", cfg.Auth.Token, "from-env")
	}
	if cfg.Server.Port != 4321 {
		t.Errorf("Server.Port = %d, want env override %d", cfg.Server.Port, 4321)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("SP_BRIDGE_HOST", "10.0.0.5")

	cfg, err := LoadWithDefaults("")
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Host != "10.0.0.5" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "10.0.0.5")
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultPort)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "auth:\n  token: t\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Path != DefaultPath {
		t.Errorf("Server.Path = %q, want default %q", cfg.Server.Path, DefaultPath)
	}
	if cfg.Server.DefaultRealm != DefaultRealm {
		t.Errorf("Server.DefaultRealm = %q, want default %q", cfg.Server.DefaultRealm, DefaultRealm)
	}
	if cfg.Limits.RateCount != DefaultRateCount {
		t.Errorf("Limits.RateCount = %d, want default %d", cfg.Limits.RateCount, DefaultRateCount)
	}
	if cfg.Limits.RateWindow != DefaultRateWindow {
		t.Errorf("Limits.RateWindow = %v, want default %v", cfg.Limits.RateWindow, DefaultRateWindow)
	}
	if cfg.Server.PingInterval != DefaultPingInterval {
		t.Errorf("Server.PingInterval = %v, want default %v", cfg.Server.PingInterval, DefaultPingInterval)
	}
	if cfg.Ops.Port != DefaultOpsPort {
		t.Errorf("Ops.Port = %d, want default %d", cfg.Ops.Port, DefaultOpsPort)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Config{}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "bad path",
			mutate:  func(c *Config) { c.Server.Path = "ws" },
			wantErr: `server.path must start with '/', got "ws"`,
		},
		{
			name:    "missing default realm",
			mutate:  func(c *Config) { c.Server.DefaultRealm = "" },
			wantErr: "server.default_realm is required",
		},
		{
			name:    "zero rate count",
			mutate:  func(c *Config) { c.Limits.RateCount = -1 },
			wantErr: "limits.rate_count must be >= 1",
		},
		{
			name: "text limit exceeds frame limit",
			mutate: func(c *Config) {
				c.Limits.MaxTextLen = 1 << 20
				c.Limits.MaxFrameSize = 4096
			},
			wantErr: "limits.max_text_len (1048576) cannot exceed max_frame_size (4096)",
		},
		{
			name: "ops port collides with server port",
			mutate: func(c *Config) {
				c.Ops.Port = c.Server.Port
			},
			wantErr: "ops.port and server.port cannot both be 8765",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: `logging.level must be one of debug, info, warn, error; got "trace"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}
