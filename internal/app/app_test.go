package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/datahub/internal/config"
	"github.com/newthinker/datahub/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceNames(t *testing.T, a *App, cfg config.SourcesConfig) []string {
	t.Helper()
	sources, err := a.Sources(config.NewSourceSettings(cfg, nil))
	require.NoError(t, err)
	var names []string
	for _, s := range sources {
		names = append(names, s.Name())
	}
	return names
}

func TestApp_New(t *testing.T) {
	a, err := New(nil, nil)
	require.NoError(t, err)
	require.NotNil(t, a.Service())
	assert.NotNil(t, a.Metrics(), "metrics enabled by default")
	assert.Equal(t, "free", string(a.Service().Settings().Strategy()))
}

func TestApp_MetricsDisabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Metrics.Enabled = false
	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, a.Metrics())
}

func TestApp_InvalidArchive(t *testing.T) {
	cfg := config.Defaults()
	cfg.Archive.Type = "ftp"
	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestApp_Sources(t *testing.T) {
	a, err := New(config.Defaults(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"google_news", "yfinance"}, sourceNames(t, a, config.SourcesConfig{}))
	assert.Equal(t, []string{"google_news", "yfinance", "alpha_vantage"},
		sourceNames(t, a, config.SourcesConfig{AlphaVantage: config.AlphaVantageConfig{APIKey: "k"}}))
}

func TestApp_Reload(t *testing.T) {
	a, err := New(config.Defaults(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{core.ProviderYahoo}, a.Service().AvailableSources()[core.DataProfile])

	cfg := config.Defaults()
	cfg.Sources.Strategy = "alpha_vantage"
	cfg.Sources.AlphaVantage.APIKey = "k"
	require.NoError(t, a.Reload(cfg))

	assert.Equal(t, "alpha_vantage", string(a.Service().Settings().Strategy()))
	assert.Equal(t, []string{core.ProviderAlphaVantage, core.ProviderYahoo}, a.Service().AvailableSources()[core.DataProfile])
	assert.Equal(t, []string{core.ProviderAlphaVantage, core.ProviderYahoo}, a.Service().Settings().ProfileProviderOrder())
	assert.Same(t, cfg, a.Config())

	assert.Error(t, a.Reload(nil))
}

func TestApp_ProfileEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"price":{"longName":"Apple Inc.","currency":"USD"},"assetProfile":{"sector":"Technology"}}],"error":null}}`))
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.Sources.Yahoo.BaseURL = srv.URL
	a, err := New(cfg, nil)
	require.NoError(t, err)

	p, err := a.Service().GetCompanyProfileUnified(context.Background(), "AAPL", "", false)
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", p.Name)
	assert.Equal(t, core.ProviderYahoo, p.ProviderUsed)
}

func TestApp_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v8/finance/chart/0700.HK" {
			w.Write([]byte(`{"chart":{"result":[{"meta":{"currency":"HKD","regularMarketPrice":300,"chartPreviousClose":290}}],"error":null}}`))
			return
		}
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.Sources.Yahoo.BaseURL = srv.URL
	a, err := New(cfg, nil)
	require.NoError(t, err)

	q, err := a.Quote(context.Background(), "0700.HK")
	require.NoError(t, err)
	assert.Equal(t, 300.0, q.Price)
	assert.Equal(t, core.ExchangeHK, q.Exchange)

	_, err = a.Quote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, core.ErrNoData)
}
