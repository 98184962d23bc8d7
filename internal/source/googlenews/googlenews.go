// Package googlenews is the free news search adapter backed by Google News RSS.
package googlenews

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/datahub/internal/cache"
	"github.com/newthinker/datahub/internal/compat"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/metrics"
	"github.com/newthinker/datahub/internal/source"
	"go.uber.org/zap"
)

// Pinger is implemented by searchers that support a health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the adapter.
type Options struct {
	NewsTTL  time.Duration
	MaxItems int
	Matrix   *compat.Matrix
	Metrics  *metrics.Registry
	Logger   *zap.Logger
	Now      func() time.Time
}

// GoogleNews implements source.Source for news only.
type GoogleNews struct {
	searcher Searcher
	matrix   *compat.Matrix
	news     *source.Memo[[]core.Article]
	logger   *zap.Logger
}

var _ source.Source = (*GoogleNews)(nil)

// New creates the adapter over searcher.
func New(searcher Searcher, opts Options) *GoogleNews {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Matrix == nil {
		opts.Matrix = compat.Default()
	}
	if opts.NewsTTL <= 0 {
		opts.NewsTTL = 15 * time.Minute
	}
	var cacheOpts []cache.Option
	if opts.Now != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Now))
	}
	return &GoogleNews{
		searcher: searcher,
		matrix:   opts.Matrix,
		news:     source.NewMemo[[]core.Article](core.ProviderGoogleNews, core.DataNews, opts.NewsTTL, opts.MaxItems, opts.Metrics, cacheOpts...),
		logger:   opts.Logger.Named(core.ProviderGoogleNews),
	}
}

func (g *GoogleNews) Name() string { return core.ProviderGoogleNews }

func (g *GoogleNews) Capabilities() []core.DataType {
	return []core.DataType{core.DataNews}
}

// HealthCheck probes the search endpoint when the searcher supports it.
func (g *GoogleNews) HealthCheck(ctx context.Context) bool {
	p, ok := g.searcher.(Pinger)
	if !ok {
		return true
	}
	if err := p.Ping(ctx); err != nil {
		g.logger.Warn("health check failed", zap.Error(err))
		return false
	}
	return true
}

func (g *GoogleNews) IsSupported(symbol string) bool {
	return g.matrix.IsSupported(symbol, core.ProviderGoogleNews)
}

func (g *GoogleNews) RateLimitInfo() source.RateLimitInfo {
	return source.RateLimitInfo{
		Provider:       core.ProviderGoogleNews,
		DailyLimit:     source.Unlimited,
		Used:           0,
		Remaining:      source.Unlimited,
		PerMinuteLimit: source.Unlimited,
		Free:           true,
	}
}

// GetCompanyProfile is not supported by a news search.
func (g *GoogleNews) GetCompanyProfile(ctx context.Context, symbol string, detailed bool) (*core.Profile, error) {
	return nil, core.NewError(core.ErrNotSupported, "%s does not provide company profiles", core.ProviderGoogleNews).
		WithSuggestion("use yfinance or alpha_vantage for company profiles")
}

// GetCompanyNews runs every query variant, merges and dedupes the hits,
// then filters them to the (possibly widened) date window.
func (g *GoogleNews) GetCompanyNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]core.Article, error) {
	if limit <= 0 {
		limit = 20
	}
	key := fmt.Sprintf("%s|%s|%s|%d", symbol, start.Format(core.DateLayout), end.Format(core.DateLayout), limit)
	return g.news.Do(key, func() ([]core.Article, error) {
		return g.fetchNews(ctx, symbol, start, end, limit)
	})
}

func (g *GoogleNews) fetchNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]core.Article, error) {
	w := effectiveWindow(start, end)
	if w.widened {
		g.logger.Info("widened news date window",
			zap.String("symbol", symbol),
			zap.String("from", w.from.Format(core.DateLayout)),
			zap.String("to", w.to.Format(core.DateLayout)))
	}

	queries := buildQueries(symbol)
	perQuery := limit/len(queries) + 3

	var (
		all     []core.Article
		failed  int
		lastErr error
	)
	for _, q := range queries {
		items, err := g.searcher.Search(ctx, SearchRequest{Query: q, Max: perQuery, After: w.from, Before: w.to})
		if err != nil {
			failed++
			lastErr = err
			g.logger.Warn("search failed", zap.String("query", q), zap.Error(err))
			continue
		}
		for _, it := range items {
			all = append(all, toArticle(it, q))
		}
	}
	if failed == len(queries) {
		return nil, core.WrapError(core.ErrProviderFailed, lastErr)
	}

	result := filterByDate(dedupe(all), w, g.logger)
	if len(result) > limit {
		result = result[:limit]
	}
	if result == nil {
		result = []core.Article{}
	}
	return result, nil
}

func toArticle(it FeedItem, query string) core.Article {
	a := core.Article{
		ID:         core.ProviderGoogleNews + "_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(it.Link)).String(),
		Headline:   it.Title,
		Summary:    it.Summary,
		Source:     it.Source,
		URL:        it.Link,
		Related:    query,
		Image:      "",
		Category:   "business",
		DataSource: core.ProviderGoogleNews,
	}
	if it.Published != nil {
		a.Datetime = it.Published.In(time.Local).Format(core.DateTimeLayout)
	}
	if a.Source == "" {
		a.Source = "Google News"
	}
	return a
}
