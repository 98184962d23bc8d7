package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	summary  *Summary
	quote    *core.Quote
	err      error
	calls    int
	lastSymb string
}

func (s *stubFetcher) FetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	return s.quote, s.err
}

func (s *stubFetcher) FetchProfile(ctx context.Context, symbol string) (*Summary, error) {
	s.calls++
	s.lastSymb = symbol
	return s.summary, s.err
}

func sampleSummary() *Summary {
	emp := int64(161000)
	return &Summary{
		Symbol:    "AAPL",
		LongName:  "Apple Inc.",
		ShortName: "Apple",
		Sector:    "Technology",
		Employees: &emp,
		Values: map[string]float64{
			"market_cap":         3e12,
			"shares_outstanding": 15e9,
			"trailing_pe":        30.5,
		},
	}
}

func TestYahoo_ImplementsSource(t *testing.T) {
	var _ source.Source = (*Yahoo)(nil)
	y := New(&stubFetcher{}, Options{})
	assert.Equal(t, "yfinance", y.Name())
	assert.Equal(t, []core.DataType{core.DataProfile}, y.Capabilities())
	assert.True(t, y.RateLimitInfo().Free)
}

func TestYahoo_Profile_BasicVsDetailed(t *testing.T) {
	f := &stubFetcher{summary: sampleSummary()}
	y := New(f, Options{})

	basic, err := y.GetCompanyProfile(context.Background(), "AAPL", false)
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", basic.Name)
	assert.Equal(t, "yfinance", basic.DataSource)
	require.NotNil(t, basic.MarketCap)
	assert.Equal(t, 3e12, *basic.MarketCap)
	assert.Contains(t, basic.Metrics, "shares_outstanding")
	assert.NotContains(t, basic.Metrics, "trailing_pe")

	detailed, err := y.GetCompanyProfile(context.Background(), "AAPL", true)
	require.NoError(t, err)
	assert.Equal(t, 30.5, detailed.Metrics["trailing_pe"])
}

func TestYahoo_Profile_FormatsSymbol(t *testing.T) {
	f := &stubFetcher{summary: sampleSummary()}
	y := New(f, Options{})

	p, err := y.GetCompanyProfile(context.Background(), "0700", false)
	require.NoError(t, err)
	assert.Equal(t, "0700.HK", f.lastSymb)
	assert.Equal(t, "0700", p.Symbol)
}

func TestYahoo_Profile_Cached(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f := &stubFetcher{summary: sampleSummary()}
	y := New(f, Options{Now: func() time.Time { return now }})

	p1, err := y.GetCompanyProfile(context.Background(), "AAPL", false)
	require.NoError(t, err)
	p1.Name = "mutated"

	p2, err := y.GetCompanyProfile(context.Background(), "AAPL", false)
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls)
	assert.Equal(t, "Apple Inc.", p2.Name, "callers get copies")

	now = now.Add(5 * time.Hour)
	_, err = y.GetCompanyProfile(context.Background(), "AAPL", false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls, "expired after profile ttl")
}

func TestYahoo_Profile_NoData(t *testing.T) {
	f := &stubFetcher{}
	y := New(f, Options{})

	_, err := y.GetCompanyProfile(context.Background(), "ZZZZ", false)
	assert.ErrorIs(t, err, core.ErrNoData)
	assert.Equal(t, core.OutcomeSoft, core.Classify(err))

	_, _ = y.GetCompanyProfile(context.Background(), "ZZZZ", false)
	assert.Equal(t, 1, f.calls, "soft errors are cached")
}

func TestYahoo_Profile_TransportErrorNotCached(t *testing.T) {
	f := &stubFetcher{err: errors.New("connection reset")}
	y := New(f, Options{})

	_, err := y.GetCompanyProfile(context.Background(), "AAPL", false)
	assert.ErrorIs(t, err, core.ErrProviderFailed)
	assert.Equal(t, core.OutcomeException, core.Classify(err))

	_, _ = y.GetCompanyProfile(context.Background(), "AAPL", false)
	assert.Equal(t, 2, f.calls)
}

func TestYahoo_NewsNotSupported(t *testing.T) {
	y := New(&stubFetcher{}, Options{})
	_, err := y.GetCompanyNews(context.Background(), "AAPL", time.Now(), time.Now(), 10)
	assert.ErrorIs(t, err, core.ErrNotSupported)
	assert.NotEmpty(t, core.Suggestion(err))
}

func TestYahoo_HealthCheck(t *testing.T) {
	assert.True(t, New(&stubFetcher{quote: &core.Quote{Symbol: "AAPL", Price: 1}}, Options{}).HealthCheck(context.Background()))
	assert.False(t, New(&stubFetcher{}, Options{}).HealthCheck(context.Background()))
	assert.False(t, New(&stubFetcher{err: errors.New("down")}, Options{}).HealthCheck(context.Background()))
}

func TestYahoo_IsSupported(t *testing.T) {
	y := New(&stubFetcher{}, Options{})
	for _, sym := range []string{"AAPL", "0700.HK", "600519.SS", "000001.SZ", "RY.TO"} {
		assert.True(t, y.IsSupported(sym), sym)
	}
}
