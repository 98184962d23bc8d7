package config

import (
	"testing"
	"time"

	"github.com/newthinker/datahub/internal/core"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewSourceSettings_Priorities(t *testing.T) {
	tests := []struct {
		name        string
		cfg         SourcesConfig
		wantNews    []string
		wantProfile []string
	}{
		{
			name:        "free",
			cfg:         SourcesConfig{Strategy: "free", AlphaVantage: AlphaVantageConfig{APIKey: "k"}},
			wantNews:    []string{"google_news"},
			wantProfile: []string{"yfinance"},
		},
		{
			name:        "alpha_vantage with key",
			cfg:         SourcesConfig{Strategy: "alpha_vantage", AlphaVantage: AlphaVantageConfig{APIKey: "k"}},
			wantNews:    []string{"alpha_vantage", "google_news"},
			wantProfile: []string{"alpha_vantage", "yfinance"},
		},
		{
			name:        "alpha_vantage without key",
			cfg:         SourcesConfig{Strategy: "alpha_vantage"},
			wantNews:    []string{"google_news"},
			wantProfile: []string{"yfinance"},
		},
		{
			name:        "auto with key",
			cfg:         SourcesConfig{Strategy: "auto", AlphaVantage: AlphaVantageConfig{APIKey: "k"}},
			wantNews:    []string{"alpha_vantage", "google_news"},
			wantProfile: []string{"alpha_vantage", "yfinance"},
		},
		{
			name: "override wins over strategy",
			cfg: SourcesConfig{
				Strategy:        "auto",
				AlphaVantage:    AlphaVantageConfig{APIKey: "k"},
				NewsPriority:    " google_news ,alpha_vantage,,google_news",
				ProfilePriority: "yfinance",
			},
			wantNews:    []string{"google_news", "alpha_vantage"},
			wantProfile: []string{"yfinance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSourceSettings(tt.cfg, nil)
			assert.Equal(t, tt.wantNews, s.NewsProviderOrder())
			assert.Equal(t, tt.wantProfile, s.ProfileProviderOrder())
		})
	}
}

func TestNewSourceSettings_UnknownStrategy(t *testing.T) {
	obs, logs := observer.New(zap.WarnLevel)
	s := NewSourceSettings(SourcesConfig{Strategy: "premium"}, zap.New(obs))

	assert.Equal(t, StrategyFree, s.Strategy())
	assert.Equal(t, 1, logs.FilterMessage("unknown data source strategy, using free").Len())
}

func TestSourceSettings_OrderIsCopied(t *testing.T) {
	s := NewSourceSettings(SourcesConfig{}, nil)
	order := s.NewsProviderOrder()
	order[0] = "mutated"
	assert.Equal(t, []string{"google_news"}, s.NewsProviderOrder())
}

func TestSourceSettings_IsAvailable(t *testing.T) {
	without := NewSourceSettings(SourcesConfig{}, nil)
	with := NewSourceSettings(SourcesConfig{AlphaVantage: AlphaVantageConfig{APIKey: "k"}}, nil)

	assert.True(t, without.IsAvailable("google_news"))
	assert.True(t, without.IsAvailable("yfinance"))
	assert.False(t, without.IsAvailable("alpha_vantage"))
	assert.True(t, with.IsAvailable("alpha_vantage"))
	assert.False(t, with.IsAvailable("reddit"))
}

func TestSourceSettings_ShouldFallback(t *testing.T) {
	enabled := NewSourceSettings(SourcesConfig{EnableAutoFallback: true, AlphaVantage: AlphaVantageConfig{APIKey: "k"}}, nil)
	disabled := NewSourceSettings(SourcesConfig{EnableAutoFallback: false, AlphaVantage: AlphaVantageConfig{APIKey: "k"}}, nil)
	noKey := NewSourceSettings(SourcesConfig{EnableAutoFallback: true}, nil)

	tests := []struct {
		name     string
		s        *SourceSettings
		provider string
		err      error
		want     bool
	}{
		{"rate limit", enabled, "alpha_vantage", core.ErrRateLimitExceeded, true},
		{"quota", enabled, "alpha_vantage", core.ErrQuotaExceeded, true},
		{"bad key", enabled, "alpha_vantage", core.ErrAPIKeyInvalid, true},
		{"soft error on available source", enabled, "yfinance", core.ErrNotSupported, false},
		{"exception on available source", enabled, "google_news", core.ErrProviderFailed, false},
		{"unavailable source", noKey, "alpha_vantage", core.ErrNoData, true},
		{"disabled", disabled, "alpha_vantage", core.ErrRateLimitExceeded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.ShouldFallback(tt.provider, tt.err))
		})
	}
}

func TestSourceSettings_CacheTTL(t *testing.T) {
	s := NewSourceSettings(SourcesConfig{}, nil)

	assert.Equal(t, time.Hour, s.CacheTTL("alpha_vantage", core.DataNews))
	assert.Equal(t, 6*time.Hour, s.CacheTTL("alpha_vantage", core.DataProfile))
	assert.Equal(t, 15*time.Minute, s.CacheTTL("google_news", core.DataNews))
	assert.Equal(t, 4*time.Hour, s.CacheTTL("yfinance", core.DataProfile))
	assert.Equal(t, DefaultCacheTTL, s.CacheTTL("unknown", core.DataNews))
}

func TestSourceSettings_Snapshot(t *testing.T) {
	s := NewSourceSettings(SourcesConfig{Strategy: "auto", EnableAutoFallback: true, AlphaVantage: AlphaVantageConfig{APIKey: "secret"}}, nil)
	snap := s.Snapshot()

	assert.Equal(t, "auto", snap.Strategy)
	assert.True(t, snap.FallbackEnabled)
	assert.True(t, snap.APIKeysConfigured["alpha_vantage"])
	assert.Equal(t, []string{"alpha_vantage", "yfinance"}, snap.Priorities["profile"])
	assert.True(t, snap.Available["alpha_vantage"])
}
