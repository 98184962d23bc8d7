// Package yahoo is the free market data and company profile adapter
// backed by Yahoo Finance.
package yahoo

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

// Fetcher is the subset of Client the adapter needs.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*core.Quote, error)
	FetchProfile(ctx context.Context, symbol string) (*Summary, error)
}

// Options configures the adapter.
type Options struct {
	ProfileTTL time.Duration
	MaxItems   int
	Matrix     *compat.Matrix
	Metrics    *metrics.Registry
	Logger     *zap.Logger
	Now        func() time.Time
}

// Yahoo implements source.Source for company profiles.
type Yahoo struct {
	client  Fetcher
	matrix  *compat.Matrix
	profile *source.Memo[*core.Profile]
	logger  *zap.Logger
	now     func() time.Time
}

var _ source.Source = (*Yahoo)(nil)

// basicMetrics are reported for every profile; the rest only when detailed.
var basicMetrics = map[string]bool{
	"enterprise_value":   true,
	"shares_outstanding": true,
	"float_shares":       true,
}

// New creates the adapter over client.
func New(client Fetcher, opts Options) *Yahoo {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Matrix == nil {
		opts.Matrix = compat.Default()
	}
	if opts.ProfileTTL <= 0 {
		opts.ProfileTTL = 4 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Yahoo{
		client:  client,
		matrix:  opts.Matrix,
		profile: source.NewMemo[*core.Profile](core.ProviderYahoo, core.DataProfile, opts.ProfileTTL, opts.MaxItems, opts.Metrics, cache.WithClock(opts.Now)),
		logger:  opts.Logger.Named(core.ProviderYahoo),
		now:     opts.Now,
	}
}

func (y *Yahoo) Name() string { return core.ProviderYahoo }

func (y *Yahoo) Capabilities() []core.DataType {
	return []core.DataType{core.DataProfile}
}

// HealthCheck fetches a quote for a liquid symbol.
func (y *Yahoo) HealthCheck(ctx context.Context) bool {
	q, err := y.client.FetchQuote(ctx, "AAPL")
	if err != nil {
		y.logger.Warn("health check failed", zap.Error(err))
		return false
	}
	return q != nil
}

func (y *Yahoo) IsSupported(symbol string) bool {
	return y.matrix.IsSupported(symbol, core.ProviderYahoo)
}

func (y *Yahoo) RateLimitInfo() source.RateLimitInfo {
	return source.RateLimitInfo{
		Provider:       core.ProviderYahoo,
		DailyLimit:     source.Unlimited,
		Used:           0,
		Remaining:      source.Unlimited,
		PerMinuteLimit: 60,
		Free:           true,
	}
}

// GetCompanyNews is not offered by this adapter.
func (y *Yahoo) GetCompanyNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]core.Article, error) {
	return nil, core.NewError(core.ErrNotSupported, "%s does not provide company news", core.ProviderYahoo).
		WithSuggestion("use google_news or alpha_vantage for company news")
}

// GetCompanyProfile returns the company profile. detailed adds valuation,
// profitability and analyst metrics.
func (y *Yahoo) GetCompanyProfile(ctx context.Context, symbol string, detailed bool) (*core.Profile, error) {
	ysym, ok := y.matrix.FormatFor(symbol, core.ProviderYahoo)
	if !ok {
		return nil, core.NewError(core.ErrExchangeUnsupported, "%s does not cover %s", core.ProviderYahoo, symbol)
	}
	key := fmt.Sprintf("%s|%t", ysym, detailed)
	p, err := y.profile.Do(key, func() (*core.Profile, error) {
		return y.fetchProfile(ctx, symbol, ysym, detailed)
	})
	return p.Clone(), err
}

func (y *Yahoo) fetchProfile(ctx context.Context, symbol, ysym string, detailed bool) (*core.Profile, error) {
	s, err := y.client.FetchProfile(ctx, ysym)
	if err != nil {
		return nil, core.WrapError(core.ErrProviderFailed, err)
	}
	if s == nil {
		return nil, core.NewError(core.ErrNoData, "no profile for %s", ysym).
			WithSuggestion("check the symbol and exchange suffix")
	}
	return toProfile(symbol, s, detailed, y.now()), nil
}

func toProfile(symbol string, s *Summary, detailed bool, now time.Time) *core.Profile {
	p := &core.Profile{
		Symbol:         symbol,
		ProviderSymbol: s.Symbol,
		Name:           s.LongName,
		Description:    s.BusinessSummary,
		Country:        s.Country,
		Currency:       s.Currency,
		Exchange:       s.Exchange,
		Industry:       s.Industry,
		Sector:         s.Sector,
		Website:        s.Website,
		Employees:      s.Employees,
		Metrics:        make(map[string]float64),
		DataSource:     core.ProviderYahoo,
		Timestamp:      now,
	}
	if p.Name == "" {
		p.Name = s.ShortName
	}
	if s.ShortName != "" {
		p.Info = map[string]string{"short_name": s.ShortName}
	}
	for name, v := range s.Values {
		if name == "market_cap" {
			mc := v
			p.MarketCap = &mc
			continue
		}
		if detailed || basicMetrics[name] {
			p.Metrics[name] = v
		}
	}
	return p
}
