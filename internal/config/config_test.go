package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/datahub/internal/core"
)

func TestLoad_FromFile(t *testing.T) {
	content := []byte(`
server:
  host: "127.0.0.1"
  port: 9090

sources:
  strategy: auto
  alpha_vantage:
    api_key: "${TEST_AV_KEY}"

archive:
  type: localfs
  path: "/tmp/datahub/archive"
`)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_AV_KEY", "demo-key")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Sources.Strategy != "auto" {
		t.Errorf("expected auto, got %s", cfg.Sources.Strategy)
	}
	if cfg.Sources.AlphaVantage.APIKey != "demo-key" {
		t.Errorf("expected expanded api key, got %q", cfg.Sources.AlphaVantage.APIKey)
	}
	if cfg.Archive.Type != "localfs" {
		t.Errorf("expected localfs, got %s", cfg.Archive.Type)
	}
	// untouched keys keep their defaults
	if cfg.Sources.AlphaVantage.DailyLimit != 500 {
		t.Errorf("expected default daily limit 500, got %d", cfg.Sources.AlphaVantage.DailyLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATA_SOURCE_STRATEGY", "alpha_vantage")
	t.Setenv("ENABLE_AUTO_FALLBACK", "false")
	t.Setenv("ALPHA_VANTAGE_API_KEY", "env-key")
	t.Setenv("NEWS_SOURCE_PRIORITY", "google_news, alpha_vantage")
	t.Setenv("PROFILE_SOURCE_PRIORITY", "yfinance")
	t.Setenv("ALPHA_VANTAGE_DAILY_LIMIT", "25")
	t.Setenv("REQUEST_TIMEOUT", "10")
	t.Setenv("USER_AGENT", "test-agent")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Sources.Strategy != "alpha_vantage" {
		t.Errorf("strategy = %q", cfg.Sources.Strategy)
	}
	if cfg.Sources.EnableAutoFallback {
		t.Error("expected fallback disabled")
	}
	if cfg.Sources.AlphaVantage.APIKey != "env-key" {
		t.Errorf("api key = %q", cfg.Sources.AlphaVantage.APIKey)
	}
	if cfg.Sources.NewsPriority != "google_news, alpha_vantage" {
		t.Errorf("news priority = %q", cfg.Sources.NewsPriority)
	}
	if cfg.Sources.AlphaVantage.DailyLimit != 25 {
		t.Errorf("daily limit = %d", cfg.Sources.AlphaVantage.DailyLimit)
	}
	if cfg.HTTP.TimeoutSeconds != 10 {
		t.Errorf("timeout = %d", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.HTTP.UserAgent != "test-agent" {
		t.Errorf("user agent = %q", cfg.HTTP.UserAgent)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PROFILE_SOURCE_PRIORITY=alpha_vantage,yfinance\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets the variable for the process; restore it afterwards.
	t.Setenv("PROFILE_SOURCE_PRIORITY", "")
	os.Unsetenv("PROFILE_SOURCE_PRIORITY")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Sources.ProfilePriority != "alpha_vantage,yfinance" {
		t.Errorf("profile priority = %q", cfg.Sources.ProfilePriority)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Sources.Strategy != "free" {
		t.Errorf("expected default strategy free, got %s", cfg.Sources.Strategy)
	}
	if !cfg.Sources.EnableAutoFallback {
		t.Error("expected fallback enabled by default")
	}
	if cfg.HTTP.Timeout().Seconds() != 30 {
		t.Errorf("expected 30s timeout, got %v", cfg.HTTP.Timeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func(mut func(*Config)) Config {
		c := *Defaults()
		mut(&c)
		return c
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr *core.Error
	}{
		{
			name: "valid config",
			cfg:  valid(func(c *Config) {}),
		},
		{
			name:    "invalid port - zero",
			cfg:     valid(func(c *Config) { c.Server.Port = 0 }),
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "invalid port - too high",
			cfg:     valid(func(c *Config) { c.Server.Port = 70000 }),
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "unknown strategy",
			cfg:     valid(func(c *Config) { c.Sources.Strategy = "premium" }),
			wantErr: core.ErrConfigInvalid,
		},
		{
			name: "strategy is case-insensitive",
			cfg:  valid(func(c *Config) { c.Sources.Strategy = "AUTO" }),
		},
		{
			name:    "zero timeout",
			cfg:     valid(func(c *Config) { c.HTTP.TimeoutSeconds = 0 }),
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "negative quota",
			cfg:     valid(func(c *Config) { c.Sources.AlphaVantage.DailyLimit = -1 }),
			wantErr: core.ErrConfigInvalid,
		},
		{
			name:    "s3 without bucket",
			cfg:     valid(func(c *Config) { c.Archive.Type = "s3" }),
			wantErr: core.ErrConfigMissing,
		},
		{
			name:    "unknown archive",
			cfg:     valid(func(c *Config) { c.Archive.Type = "gcs" }),
			wantErr: core.ErrConfigInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
