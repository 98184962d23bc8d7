package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/datahub/internal/httpx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartJSON = `{"chart":{"result":[{"meta":{"symbol":"AAPL","currency":"USD","regularMarketPrice":110,"chartPreviousClose":100,"regularMarketVolume":5000,"regularMarketTime":1709280000},
"timestamp":[1709200000,1709286400,1709372800],
"indicators":{"quote":[{"open":[1,2,null],"high":[1.5,2.5,null],"low":[0.5,1.5,null],"close":[1.2,2.2,null],"volume":[100,200,null]}]}}],"error":null}}`

const summaryJSON = `{"quoteSummary":{"result":[{
"price":{"longName":"Apple Inc.","shortName":"Apple","currency":"USD","exchangeName":"NasdaqGS","marketCap":{"raw":3000000000000,"fmt":"3T"}},
"assetProfile":{"country":"United States","industry":"Consumer Electronics","sector":"Technology","website":"https://www.apple.com","longBusinessSummary":"Designs phones.","fullTimeEmployees":161000},
"summaryDetail":{"trailingPE":{"raw":30.5},"beta":{"raw":1.2},"dividendYield":{}},
"defaultKeyStatistics":{"sharesOutstanding":{"raw":15000000000}},
"financialData":{"returnOnEquity":{"raw":1.5}}
}],"error":null}}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(httpx.Wrap(srv.Client(), "test"), srv.URL)
}

func TestToYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL", "AAPL"},
		{"0700.HK", "0700.HK"},
		{"0700", "0700.HK"},
		{"600519.SH", "600519.SS"},
		{"600519", "600519.SS"},
		{"000001.SZ", "000001.SZ"},
		{"RY.TSX", "RY.TO"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, toYahooSymbol(tc.input), tc.input)
	}
}

func TestValidateSymbol(t *testing.T) {
	assert.NoError(t, validateSymbol("AAPL"))
	assert.NoError(t, validateSymbol("0700.HK"))
	assert.Error(t, validateSymbol(""))
	assert.Error(t, validateSymbol("AAPL; DROP"))
	assert.Error(t, validateSymbol(strings.Repeat("A", 21)))
}

func TestClient_FetchQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		w.Write([]byte(chartJSON))
	})

	q, err := c.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 110.0, q.Price)
	assert.Equal(t, 10.0, q.Change)
	assert.InDelta(t, 10.0, q.ChangePercent, 1e-9)
	assert.Equal(t, int64(5000), q.Volume)
	assert.Equal(t, "yfinance", q.Source)
	assert.True(t, q.IsValid())
}

func TestClient_FetchHistory_SkipsMissingBars(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		w.Write([]byte(chartJSON))
	})

	bars, err := c.FetchHistory(context.Background(), "AAPL", time.Now().AddDate(0, 0, -3), time.Now(), "weird")
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 2.2, bars[1].Close)
	assert.Equal(t, int64(200), bars[1].Volume)
	assert.Equal(t, "weird", bars[0].Interval)
}

func TestClient_NoData(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`},
		{"http 404", http.StatusNotFound, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			q, err := c.FetchQuote(context.Background(), "ZZZZ")
			assert.NoError(t, err)
			assert.Nil(t, q)
		})
	}
}

func TestClient_FetchQuote_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err := c.FetchQuote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestClient_FetchProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/0700.HK", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("modules"), "assetProfile")
		w.Write([]byte(summaryJSON))
	})

	s, err := c.FetchProfile(context.Background(), "0700")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "0700.HK", s.Symbol)
	assert.Equal(t, "Apple Inc.", s.LongName)
	assert.Equal(t, "Technology", s.Sector)
	require.NotNil(t, s.Employees)
	assert.Equal(t, int64(161000), *s.Employees)
	assert.Equal(t, 3e12, s.Values["market_cap"])
	assert.Equal(t, 30.5, s.Values["trailing_pe"])
	assert.Equal(t, 1.5, s.Values["return_on_equity"])
	_, ok := s.Values["dividend_yield"]
	assert.False(t, ok, "empty objects are skipped")
}

func TestClient_FetchProfile_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`))
	})
	s, err := c.FetchProfile(context.Background(), "ZZZZ")
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestClient_FetchProfile_OtherError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Unauthorized","description":"Invalid Crumb"}}}`))
	})
	_, err := c.FetchProfile(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid Crumb")
}
