package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/httpx"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL        = "https://www.alphavantage.co/query"
	DefaultDailyLimit     = 500
	DefaultPerMinuteLimit = 5

	maxNewsLimit = 1000
)

// Client is a quota-aware Alpha Vantage API client. Every dispatched
// request counts against the daily quota, which resets when the local
// date changes.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpx.Client
	now     func() time.Time

	perMinute int
	limiter   *rate.Limiter

	mu         sync.Mutex
	dailyLimit int
	used       int
	day        string
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client
func WithHTTPClient(h *httpx.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// WithClock sets the time source used for quota rollover and rate limiting.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithDailyLimit sets the daily call quota. Zero or less keeps the default.
func WithDailyLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.dailyLimit = n
		}
	}
}

// WithRateLimit sets the per-minute request limit. Zero or less keeps the default.
func WithRateLimit(perMinute int) ClientOption {
	return func(c *Client) {
		if perMinute > 0 {
			c.perMinute = perMinute
		}
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		http:       httpx.New(httpx.Options{}),
		now:        time.Now,
		perMinute:  DefaultPerMinuteLimit,
		dailyLimit: DefaultDailyLimit,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(c.perMinute)), c.perMinute)
	c.day = c.now().Format(core.DateLayout)
	return c
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool { return c.apiKey != "" }

// Usage is a snapshot of the daily quota.
type Usage struct {
	DailyLimit     int
	Used           int
	Remaining      int
	PerMinuteLimit int
	ResetTime      time.Time
}

// Usage returns the current quota state.
func (c *Client) Usage() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.rollover(now)

	y, m, d := now.Date()
	return Usage{
		DailyLimit:     c.dailyLimit,
		Used:           c.used,
		Remaining:      max(0, c.dailyLimit-c.used),
		PerMinuteLimit: c.perMinute,
		ResetTime:      time.Date(y, m, d+1, 0, 0, 0, 0, now.Location()),
	}
}

// rollover resets the counter on a new local date. Caller holds mu.
func (c *Client) rollover(now time.Time) {
	if day := now.Format(core.DateLayout); day != c.day {
		c.day = day
		c.used = 0
	}
}

// reserve takes one call from the daily quota and the per-minute budget.
func (c *Client) reserve() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.rollover(now)

	if c.used >= c.dailyLimit {
		return core.NewError(core.ErrQuotaExceeded, "alpha_vantage daily quota used: %d/%d", c.used, c.dailyLimit).
			WithSuggestion("try again tomorrow or use a free source")
	}
	if !c.limiter.AllowN(now, 1) {
		return core.NewError(core.ErrRateLimitExceeded, "alpha_vantage allows %d requests per minute", c.perMinute).
			WithSuggestion("retry in a minute or use a free source")
	}
	c.used++
	return nil
}

// query performs one quota-counted request and checks the body for the
// provider's error keys, in priority order, before returning the payload.
func (c *Client) query(ctx context.Context, params url.Values) (gjson.Result, error) {
	if c.apiKey == "" {
		return gjson.Result{}, core.NewError(core.ErrAPIKeyInvalid, "alpha_vantage api key not configured").
			WithSuggestion("set ALPHA_VANTAGE_API_KEY")
	}
	if err := c.reserve(); err != nil {
		return gjson.Result{}, err
	}

	params.Set("apikey", c.apiKey)
	body, err := c.http.Get(ctx, c.baseURL, params)
	if err != nil {
		return gjson.Result{}, core.WrapError(core.ErrProviderFailed, err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, core.WrapError(core.ErrProviderFailed, errors.New("invalid json response"))
	}

	root := gjson.ParseBytes(body)
	if msg := root.Get("Error Message"); msg.Exists() {
		if strings.Contains(strings.ToLower(msg.String()), "apikey") {
			return gjson.Result{}, core.NewError(core.ErrAPIKeyInvalid, "%s", msg.String())
		}
		return gjson.Result{}, core.NewError(core.ErrSymbolNotFound, "%s", msg.String())
	}
	for _, key := range []string{"Note", "Information"} {
		if msg := root.Get(key); msg.Exists() {
			return gjson.Result{}, core.NewError(core.ErrRateLimitExceeded, "%s", msg.String()).
				WithSuggestion("retry later or use a free source")
		}
	}
	return root, nil
}

// NewsSentiment fetches the news feed with sentiment scores for ticker.
func (c *Client) NewsSentiment(ctx context.Context, ticker string, start, end time.Time, limit int) (gjson.Result, error) {
	params := url.Values{
		"function": {"NEWS_SENTIMENT"},
		"tickers":  {ticker},
		"limit":    {fmt.Sprint(min(limit, maxNewsLimit))},
		"sort":     {"LATEST"},
	}
	if !start.IsZero() && !end.IsZero() {
		params.Set("time_from", start.Format("20060102")+"T0000")
		params.Set("time_to", end.Format("20060102")+"T2359")
	}
	return c.query(ctx, params)
}

// Overview fetches the company overview for symbol.
func (c *Client) Overview(ctx context.Context, symbol string) (gjson.Result, error) {
	return c.query(ctx, url.Values{"function": {"OVERVIEW"}, "symbol": {symbol}})
}

// GlobalQuote fetches the latest quote for symbol.
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (gjson.Result, error) {
	return c.query(ctx, url.Values{"function": {"GLOBAL_QUOTE"}, "symbol": {symbol}})
}
