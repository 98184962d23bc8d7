package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/datahub/internal/compat"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/httpx"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	chartPath   = "/v8/finance/chart/"
	summaryPath = "/v10/finance/quoteSummary/"

	summaryModules = "price,assetProfile,summaryDetail,defaultKeyStatistics,financialData"
)

// validSymbol matches stock symbols like AAPL, MSFT, 600519.SS, 0700.HK
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9\-]{1,10}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Summary is the company data returned by the quoteSummary endpoint.
// Numeric fields are keyed by snake_case name and only present when
// Yahoo reports them.
type Summary struct {
	Symbol          string
	LongName        string
	ShortName       string
	Country         string
	Currency        string
	Exchange        string
	Industry        string
	Sector          string
	Website         string
	BusinessSummary string
	Employees       *int64
	Values          map[string]float64
}

// summaryFields maps snake_case names to quoteSummary raw value paths.
var summaryFields = map[string]string{
	"market_cap":            "price.marketCap.raw",
	"enterprise_value":      "defaultKeyStatistics.enterpriseValue.raw",
	"shares_outstanding":    "defaultKeyStatistics.sharesOutstanding.raw",
	"float_shares":          "defaultKeyStatistics.floatShares.raw",
	"trailing_pe":           "summaryDetail.trailingPE.raw",
	"forward_pe":            "summaryDetail.forwardPE.raw",
	"peg_ratio":             "defaultKeyStatistics.pegRatio.raw",
	"price_to_sales":        "summaryDetail.priceToSalesTrailing12Months.raw",
	"price_to_book":         "defaultKeyStatistics.priceToBook.raw",
	"enterprise_to_revenue": "defaultKeyStatistics.enterpriseToRevenue.raw",
	"enterprise_to_ebitda":  "defaultKeyStatistics.enterpriseToEbitda.raw",
	"profit_margins":        "financialData.profitMargins.raw",
	"gross_margins":         "financialData.grossMargins.raw",
	"operating_margins":     "financialData.operatingMargins.raw",
	"return_on_assets":      "financialData.returnOnAssets.raw",
	"return_on_equity":      "financialData.returnOnEquity.raw",
	"total_cash":            "financialData.totalCash.raw",
	"total_debt":            "financialData.totalDebt.raw",
	"debt_to_equity":        "financialData.debtToEquity.raw",
	"current_ratio":         "financialData.currentRatio.raw",
	"quick_ratio":           "financialData.quickRatio.raw",
	"dividend_rate":         "summaryDetail.dividendRate.raw",
	"dividend_yield":        "summaryDetail.dividendYield.raw",
	"payout_ratio":          "summaryDetail.payoutRatio.raw",
	"revenue_growth":        "financialData.revenueGrowth.raw",
	"earnings_growth":       "financialData.earningsGrowth.raw",
	"current_price":         "financialData.currentPrice.raw",
	"target_high_price":     "financialData.targetHighPrice.raw",
	"target_low_price":      "financialData.targetLowPrice.raw",
	"target_mean_price":     "financialData.targetMeanPrice.raw",
	"recommendation_mean":   "financialData.recommendationMean.raw",
	"52_week_low":           "summaryDetail.fiftyTwoWeekLow.raw",
	"52_week_high":          "summaryDetail.fiftyTwoWeekHigh.raw",
	"volume":                "summaryDetail.volume.raw",
	"average_volume":        "summaryDetail.averageVolume10days.raw",
	"beta":                  "summaryDetail.beta.raw",
}

// Client talks to the Yahoo Finance chart and quoteSummary endpoints.
// Every Fetch method returns (nil, nil) when Yahoo has no data.
type Client struct {
	http    *httpx.Client
	baseURL string
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewClient(client *httpx.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// toYahooSymbol converts internal symbol format to Yahoo format
func toYahooSymbol(symbol string) string {
	if f, ok := compat.Default().FormatFor(symbol, core.ProviderYahoo); ok {
		return f
	}
	return strings.ToUpper(symbol)
}

// notFound reports whether err is Yahoo's 404 for an unknown symbol.
func notFound(err error) bool {
	var se *httpx.StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

func (c *Client) chart(ctx context.Context, symbol string, q url.Values) (*chartResult, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	body, err := c.http.Get(ctx, c.baseURL+chartPath+url.PathEscape(toYahooSymbol(symbol)), q)
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching chart: %w", err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Chart.Error != nil {
		if result.Chart.Error.Code == "Not Found" {
			return nil, nil
		}
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}

	if len(result.Chart.Result) == 0 {
		return nil, nil
	}
	return &result.Chart.Result[0], nil
}

// FetchQuote fetches the latest quote.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*core.Quote, error) {
	r, err := c.chart(ctx, symbol, url.Values{"interval": {"1d"}, "range": {"1d"}})
	if err != nil || r == nil {
		return nil, err
	}
	meta := r.Meta

	q := &core.Quote{
		Symbol:    symbol,
		Price:     meta.RegularMarketPrice,
		PrevClose: meta.ChartPreviousClose,
		Volume:    int64(meta.RegularMarketVolume),
		Currency:  meta.Currency,
		Time:      time.Unix(int64(meta.RegularMarketTime), 0),
		Source:    core.ProviderYahoo,
	}
	if _, ex, ok := compat.Parse(symbol); ok {
		q.Exchange = ex
	}
	if q.PrevClose > 0 {
		q.Change = q.Price - q.PrevClose
		q.ChangePercent = q.Change / q.PrevClose * 100
	}
	return q, nil
}

// FetchHistory fetches historical OHLCV data
func (c *Client) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	r, err := c.chart(ctx, symbol, url.Values{
		"interval": {toYahooInterval(interval)},
		"period1":  {strconv.FormatInt(start.Unix(), 10)},
		"period2":  {strconv.FormatInt(end.Unix(), 10)},
	})
	if err != nil || r == nil {
		return nil, err
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, nil
	}

	timestamps := r.Timestamp
	quotes := r.Indicators.Quote[0]

	data := make([]core.OHLCV, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(quotes.Open) || quotes.Open[i] == nil || quotes.High[i] == nil ||
			quotes.Low[i] == nil || quotes.Close[i] == nil {
			continue // Skip missing data
		}
		bar := core.OHLCV{
			Symbol:   symbol,
			Interval: interval,
			Open:     *quotes.Open[i],
			High:     *quotes.High[i],
			Low:      *quotes.Low[i],
			Close:    *quotes.Close[i],
			Time:     time.Unix(int64(ts), 0),
		}
		if i < len(quotes.Volume) && quotes.Volume[i] != nil {
			bar.Volume = int64(*quotes.Volume[i])
		}
		data = append(data, bar)
	}

	return data, nil
}

// FetchProfile fetches company profile and key statistics.
func (c *Client) FetchProfile(ctx context.Context, symbol string) (*Summary, error) {
	if err := validateSymbol(symbol); err != nil {
		return nil, err
	}
	ysym := toYahooSymbol(symbol)
	body, err := c.http.Get(ctx, c.baseURL+summaryPath+url.PathEscape(ysym), url.Values{"modules": {summaryModules}})
	if err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching profile: %w", err)
	}

	root := gjson.ParseBytes(body)
	if e := root.Get("quoteSummary.error"); e.Exists() && e.Type != gjson.Null {
		if e.Get("code").String() == "Not Found" {
			return nil, nil
		}
		return nil, fmt.Errorf("yahoo error: %s", e.Get("description").String())
	}

	r := root.Get("quoteSummary.result.0")
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}

	s := &Summary{
		Symbol:          ysym,
		LongName:        r.Get("price.longName").String(),
		ShortName:       r.Get("price.shortName").String(),
		Currency:        r.Get("price.currency").String(),
		Exchange:        r.Get("price.exchangeName").String(),
		Country:         r.Get("assetProfile.country").String(),
		Industry:        r.Get("assetProfile.industry").String(),
		Sector:          r.Get("assetProfile.sector").String(),
		Website:         r.Get("assetProfile.website").String(),
		BusinessSummary: r.Get("assetProfile.longBusinessSummary").String(),
		Values:          make(map[string]float64),
	}
	if emp := r.Get("assetProfile.fullTimeEmployees"); emp.Exists() && emp.Type == gjson.Number {
		n := emp.Int()
		s.Employees = &n
	}
	for name, path := range summaryFields {
		if v := r.Get(path); v.Exists() && v.Type == gjson.Number {
			s.Values[name] = v.Float()
		}
	}
	if s.LongName == "" && s.ShortName == "" && len(s.Values) == 0 {
		return nil, nil
	}
	return s, nil
}

// Ping checks the chart endpoint answers for a liquid symbol.
func (c *Client) Ping(ctx context.Context) error {
	q, err := c.FetchQuote(ctx, "AAPL")
	if err != nil {
		return err
	}
	if q == nil {
		return fmt.Errorf("no quote for AAPL")
	}
	return nil
}

func toYahooInterval(interval string) string {
	switch interval {
	case "1m", "5m", "15m", "30m", "1h", "1d", "1wk", "1mo":
		return interval
	default:
		return "1d"
	}
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol              string  `json:"symbol"`
	Currency            string  `json:"currency"`
	RegularMarketPrice  float64 `json:"regularMarketPrice"`
	ChartPreviousClose  float64 `json:"chartPreviousClose"`
	RegularMarketVolume int     `json:"regularMarketVolume"`
	RegularMarketTime   int     `json:"regularMarketTime"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int     `json:"volume"`
}
