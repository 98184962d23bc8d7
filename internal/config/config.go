package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/datahub/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Sources SourcesConfig `mapstructure:"sources"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"` // empty disables auth
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// SourcesConfig is the raw provider selection input. Priorities are
// comma-separated provider names; an empty string means "derive from strategy".
type SourcesConfig struct {
	Strategy           string             `mapstructure:"strategy"`
	EnableAutoFallback bool               `mapstructure:"enable_auto_fallback"`
	NewsPriority       string             `mapstructure:"news_priority"`
	ProfilePriority    string             `mapstructure:"profile_priority"`
	CacheMaxItems      int                `mapstructure:"cache_max_items"`
	AlphaVantage       AlphaVantageConfig `mapstructure:"alpha_vantage"`
	Yahoo              EndpointConfig     `mapstructure:"yahoo"`
	GoogleNews         EndpointConfig     `mapstructure:"google_news"`
}

type AlphaVantageConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	DailyLimit     int    `mapstructure:"daily_limit"`
	PerMinuteLimit int    `mapstructure:"per_minute_limit"`
}

// EndpointConfig overrides a free provider's base URL (tests, mirrors).
type EndpointConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type HTTPConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	ProxyUsername  string `mapstructure:"proxy_username"`
	ProxyPassword  string `mapstructure:"proxy_password"`
}

// Timeout returns the request timeout as a duration.
func (h HTTPConfig) Timeout() time.Duration {
	return time.Duration(h.TimeoutSeconds) * time.Second
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "", "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"sources.strategy":                       "DATA_SOURCE_STRATEGY",
	"sources.enable_auto_fallback":           "ENABLE_AUTO_FALLBACK",
	"sources.news_priority":                  "NEWS_SOURCE_PRIORITY",
	"sources.profile_priority":               "PROFILE_SOURCE_PRIORITY",
	"sources.alpha_vantage.api_key":          "ALPHA_VANTAGE_API_KEY",
	"sources.alpha_vantage.daily_limit":      "ALPHA_VANTAGE_DAILY_LIMIT",
	"sources.alpha_vantage.per_minute_limit": "ALPHA_VANTAGE_PER_MINUTE_LIMIT",
	"http.user_agent":                        "USER_AGENT",
	"http.timeout_seconds":                   "REQUEST_TIMEOUT",
	"http.proxy_username":                    "PROXY_USERNAME",
	"http.proxy_password":                    "PROXY_PASSWORD",
	"log.level":                              "LOG_LEVEL",
	"server.api_key":                         "DATAHUB_API_KEY",
}

// Load reads configuration from an optional file plus the environment.
// A .env file in the working directory is applied first without
// overriding variables that are already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("sources.strategy", d.Sources.Strategy)
	v.SetDefault("sources.enable_auto_fallback", d.Sources.EnableAutoFallback)
	v.SetDefault("sources.news_priority", d.Sources.NewsPriority)
	v.SetDefault("sources.profile_priority", d.Sources.ProfilePriority)
	v.SetDefault("sources.cache_max_items", d.Sources.CacheMaxItems)
	v.SetDefault("sources.alpha_vantage.api_key", d.Sources.AlphaVantage.APIKey)
	v.SetDefault("sources.alpha_vantage.base_url", d.Sources.AlphaVantage.BaseURL)
	v.SetDefault("sources.alpha_vantage.daily_limit", d.Sources.AlphaVantage.DailyLimit)
	v.SetDefault("sources.alpha_vantage.per_minute_limit", d.Sources.AlphaVantage.PerMinuteLimit)
	v.SetDefault("sources.yahoo.base_url", d.Sources.Yahoo.BaseURL)
	v.SetDefault("sources.google_news.base_url", d.Sources.GoogleNews.BaseURL)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.timeout_seconds", d.HTTP.TimeoutSeconds)
	v.SetDefault("http.proxy_username", d.HTTP.ProxyUsername)
	v.SetDefault("http.proxy_password", d.HTTP.ProxyPassword)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("archive.path", d.Archive.Path)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Log: LogConfig{
			Level: "info",
		},
		Sources: SourcesConfig{
			Strategy:           string(StrategyFree),
			EnableAutoFallback: true,
			CacheMaxItems:      1024,
			AlphaVantage: AlphaVantageConfig{
				DailyLimit:     500,
				PerMinuteLimit: 5,
			},
		},
		HTTP: HTTPConfig{
			UserAgent:      "DataHub/1.0",
			TimeoutSeconds: 30,
		},
		Archive: ArchiveConfig{
			Path: "data/archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if !Strategy(strings.ToLower(c.Sources.Strategy)).Valid() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("strategy must be one of free, alpha_vantage, auto, got %q", c.Sources.Strategy))
	}

	if c.HTTP.TimeoutSeconds <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("timeout_seconds must be positive, got %d", c.HTTP.TimeoutSeconds))
	}

	if c.Sources.AlphaVantage.DailyLimit < 0 || c.Sources.AlphaVantage.PerMinuteLimit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("alpha_vantage limits cannot be negative"))
	}

	switch c.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive type must be localfs or s3, got %q", c.Archive.Type))
	}

	return nil
}
