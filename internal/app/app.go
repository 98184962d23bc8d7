package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/newthinker/datahub/internal/compat"
	"github.com/newthinker/datahub/internal/config"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/httpx"
	"github.com/newthinker/datahub/internal/metrics"
	"github.com/newthinker/datahub/internal/source"
	"github.com/newthinker/datahub/internal/source/alphavantage"
	"github.com/newthinker/datahub/internal/source/googlenews"
	"github.com/newthinker/datahub/internal/source/yahoo"
	"github.com/newthinker/datahub/internal/storage/archive"
	"github.com/newthinker/datahub/internal/unified"
	"go.uber.org/zap"
)

// App wires configuration, adapters and the unified service together.
type App struct {
	logger  *zap.Logger
	metrics *metrics.Registry
	http    *httpx.Client
	matrix  *compat.Matrix
	quotes  *yahoo.Client
	service *unified.Service

	mu  sync.RWMutex
	cfg *config.Config
}

// New creates a new App instance
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Defaults()
	}

	a := &App{
		cfg:    cfg,
		logger: logger,
		matrix: compat.Default(),
		http: httpx.New(httpx.Options{
			Timeout:       cfg.HTTP.Timeout(),
			UserAgent:     cfg.HTTP.UserAgent,
			ProxyUsername: cfg.HTTP.ProxyUsername,
			ProxyPassword: cfg.HTTP.ProxyPassword,
		}),
	}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.NewRegistry()
	}
	a.quotes = yahoo.NewClient(a.http, cfg.Sources.Yahoo.BaseURL)

	store, err := archive.Open(cfg.Archive)
	if err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}

	settings := config.NewSourceSettings(cfg.Sources, logger)
	a.service, err = unified.New(settings, a.Sources,
		unified.WithLogger(logger),
		unified.WithMetrics(a.metrics),
		unified.WithRecorder(archive.NewRecorder(store, logger)),
		unified.WithMatrix(a.matrix),
		unified.WithQuotes(a.quotes),
	)
	if err != nil {
		return nil, err
	}

	logger.Info("datahub initialized",
		zap.String("strategy", string(settings.Strategy())),
		zap.Bool("fallback", settings.FallbackEnabled()),
		zap.Strings("news_priority", settings.NewsProviderOrder()),
		zap.Strings("profile_priority", settings.ProfileProviderOrder()),
		zap.Bool("archive", store != nil))
	return a, nil
}

// Sources builds one adapter per provider for settings. The paid
// adapter is only built when its credential is present.
func (a *App) Sources(settings *config.SourceSettings) ([]source.Source, error) {
	cfg := a.Config().Sources
	maxItems := settings.CacheMaxItems()

	news := googlenews.New(googlenews.NewRSSClient(a.http, cfg.GoogleNews.BaseURL), googlenews.Options{
		NewsTTL:  settings.CacheTTL(core.ProviderGoogleNews, core.DataNews),
		MaxItems: maxItems,
		Matrix:   a.matrix,
		Metrics:  a.metrics,
		Logger:   a.logger,
	})

	yf := yahoo.New(a.quotes, yahoo.Options{
		ProfileTTL: settings.CacheTTL(core.ProviderYahoo, core.DataProfile),
		MaxItems:   maxItems,
		Matrix:     a.matrix,
		Metrics:    a.metrics,
		Logger:     a.logger,
	})

	sources := []source.Source{news, yf}

	if settings.IsAvailable(core.ProviderAlphaVantage) {
		limits := settings.AlphaVantageLimits()
		client := alphavantage.NewClient(settings.APIKey(core.ProviderAlphaVantage),
			alphavantage.WithBaseURL(limits.BaseURL),
			alphavantage.WithHTTPClient(a.http),
			alphavantage.WithDailyLimit(limits.DailyLimit),
			alphavantage.WithRateLimit(limits.PerMinuteLimit),
		)
		sources = append(sources, alphavantage.New(client, alphavantage.Options{
			NewsTTL:    settings.CacheTTL(core.ProviderAlphaVantage, core.DataNews),
			ProfileTTL: settings.CacheTTL(core.ProviderAlphaVantage, core.DataProfile),
			MaxItems:   maxItems,
			Matrix:     a.matrix,
			Metrics:    a.metrics,
			Logger:     a.logger,
		}))
	}

	return sources, nil
}

// Reload applies a new configuration's source settings and rebuilds
// every adapter, dropping their caches and quota counters.
func (a *App) Reload(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("reload: nil config")
	}
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	return a.service.Reload(config.NewSourceSettings(cfg.Sources, a.logger))
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Service returns the unified data service.
func (a *App) Service() *unified.Service { return a.service }

// Metrics returns the metrics registry, or nil when metrics are disabled.
func (a *App) Metrics() *metrics.Registry { return a.metrics }

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Quote fetches the latest quote through the market data client.
func (a *App) Quote(ctx context.Context, symbol string) (*core.Quote, error) {
	q, err := a.quotes.FetchQuote(ctx, symbol)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	if q == nil {
		return nil, core.NewError(core.ErrNoData, "no quote for %s", symbol)
	}
	return q, nil
}
