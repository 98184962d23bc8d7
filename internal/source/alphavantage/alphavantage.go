// Package alphavantage is the paid news sentiment and fundamentals adapter.
package alphavantage

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/datahub/internal/cache"
	"github.com/newthinker/datahub/internal/compat"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/metrics"
	"github.com/newthinker/datahub/internal/source"
	"go.uber.org/zap"
)

// Options configures the adapter.
type Options struct {
	NewsTTL    time.Duration
	ProfileTTL time.Duration
	MaxItems   int
	Matrix     *compat.Matrix
	Metrics    *metrics.Registry
	Logger     *zap.Logger
	Now        func() time.Time
}

// AlphaVantage implements source.Source for news and profiles.
type AlphaVantage struct {
	client  *Client
	matrix  *compat.Matrix
	news    *source.Memo[[]core.Article]
	profile *source.Memo[*core.Profile]
	metrics *metrics.Registry
	logger  *zap.Logger
	now     func() time.Time
}

var _ source.Source = (*AlphaVantage)(nil)

// New creates the adapter over client.
func New(client *Client, opts Options) *AlphaVantage {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Matrix == nil {
		opts.Matrix = compat.Default()
	}
	if opts.NewsTTL <= 0 {
		opts.NewsTTL = time.Hour
	}
	if opts.ProfileTTL <= 0 {
		opts.ProfileTTL = 6 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	clock := cache.WithClock(opts.Now)
	a := &AlphaVantage{
		client:  client,
		matrix:  opts.Matrix,
		news:    source.NewMemo[[]core.Article](core.ProviderAlphaVantage, core.DataNews, opts.NewsTTL, opts.MaxItems, opts.Metrics, clock),
		profile: source.NewMemo[*core.Profile](core.ProviderAlphaVantage, core.DataProfile, opts.ProfileTTL, opts.MaxItems, opts.Metrics, clock),
		metrics: opts.Metrics,
		logger:  opts.Logger.Named(core.ProviderAlphaVantage),
		now:     opts.Now,
	}
	a.metrics.SetQuotaRemaining(core.ProviderAlphaVantage, client.Usage().Remaining)
	return a
}

func (a *AlphaVantage) Name() string { return core.ProviderAlphaVantage }

func (a *AlphaVantage) Capabilities() []core.DataType {
	return []core.DataType{core.DataNews, core.DataProfile}
}

// HealthCheck spends one quota call on a GLOBAL_QUOTE for a liquid symbol.
func (a *AlphaVantage) HealthCheck(ctx context.Context) bool {
	if !a.client.HasKey() {
		return false
	}
	root, err := a.client.GlobalQuote(ctx, "AAPL")
	a.afterCall(err)
	if err != nil {
		a.logger.Warn("health check failed", zap.Error(err))
		return false
	}
	return root.Get("Global Quote").Exists()
}

// IsSupported consults the compatibility matrix only; it never spends quota.
func (a *AlphaVantage) IsSupported(symbol string) bool {
	return a.matrix.IsSupported(symbol, core.ProviderAlphaVantage)
}

func (a *AlphaVantage) RateLimitInfo() source.RateLimitInfo {
	u := a.client.Usage()
	return source.RateLimitInfo{
		Provider:        core.ProviderAlphaVantage,
		DailyLimit:      u.DailyLimit,
		Used:            u.Used,
		Remaining:       u.Remaining,
		PerMinuteLimit:  u.PerMinuteLimit,
		ResetTime:       &u.ResetTime,
		TrackingEnabled: true,
	}
}

// GetCompanyNews returns news with sentiment scores. Cached results are
// served without touching the quota.
func (a *AlphaVantage) GetCompanyNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]core.Article, error) {
	avsym, ok := a.matrix.FormatFor(symbol, core.ProviderAlphaVantage)
	if !ok {
		return nil, core.NewError(core.ErrExchangeUnsupported, "%s does not cover %s", core.ProviderAlphaVantage, symbol).
			WithSuggestion("use google_news for this exchange")
	}
	if limit <= 0 {
		limit = 20
	}
	key := fmt.Sprintf("%s|%s|%s|%d", avsym, start.Format(core.DateLayout), end.Format(core.DateLayout), limit)
	return a.news.Do(key, func() ([]core.Article, error) {
		root, err := a.client.NewsSentiment(ctx, avsym, start, end, limit)
		a.afterCall(err)
		if err != nil {
			return nil, err
		}
		return toArticles(root.Get("feed"), symbol, limit, a.now()), nil
	})
}

// GetCompanyProfile returns the company overview with fundamentals.
func (a *AlphaVantage) GetCompanyProfile(ctx context.Context, symbol string, detailed bool) (*core.Profile, error) {
	avsym, ok := a.matrix.FormatFor(symbol, core.ProviderAlphaVantage)
	if !ok {
		return nil, core.NewError(core.ErrExchangeUnsupported, "%s does not cover %s", core.ProviderAlphaVantage, symbol).
			WithSuggestion("use yfinance for this exchange")
	}
	p, err := a.profile.Do(fmt.Sprintf("%s|%t", avsym, detailed), func() (*core.Profile, error) {
		root, err := a.client.Overview(ctx, avsym)
		a.afterCall(err)
		if err != nil {
			return nil, err
		}
		if root.Get("Symbol").String() == "" {
			return nil, core.NewError(core.ErrNoData, "alpha_vantage has no overview for %s", avsym).
				WithSuggestion("use yfinance for this symbol")
		}
		return toProfile(symbol, root, a.now()), nil
	})
	return p.Clone(), err
}

func (a *AlphaVantage) afterCall(err error) {
	u := a.client.Usage()
	a.metrics.SetQuotaRemaining(core.ProviderAlphaVantage, u.Remaining)
	if core.Code(err) == core.ErrQuotaExceeded.Code {
		a.logger.Warn("daily quota exhausted",
			zap.Int("used", u.Used),
			zap.Int("limit", u.DailyLimit))
	}
}
