package alphavantage

import (
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/datahub/internal/core"
	"github.com/tidwall/gjson"
)

const (
	publishedLayout = "20060102T150405"
	sentimentCutoff = 0.15
)

// SentimentLabel maps a provider sentiment score to a three-way label.
func SentimentLabel(score float64) string {
	switch {
	case score > sentimentCutoff:
		return core.SentimentPositive
	case score < -sentimentCutoff:
		return core.SentimentNegative
	default:
		return core.SentimentNeutral
	}
}

// parsePublished reads "YYYYMMDDTHHMMSS", falling back to the date part.
func parsePublished(s string, now time.Time) time.Time {
	if t, err := time.ParseInLocation(publishedLayout, s, time.Local); err == nil {
		return t
	}
	if len(s) >= 8 {
		if t, err := time.ParseInLocation("20060102", s[:8], time.Local); err == nil {
			return t
		}
	}
	return now
}

func articleID(link, title string) string {
	if link != "" {
		if last := path.Base(strings.TrimSuffix(link, "/")); last != "" && last != "." && last != "/" {
			return core.ProviderAlphaVantage + "_" + last
		}
	}
	return core.ProviderAlphaVantage + "_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(title)).String()
}

func toArticles(feed gjson.Result, symbol string, limit int, now time.Time) []core.Article {
	articles := []core.Article{}
	feed.ForEach(func(_, item gjson.Result) bool {
		if len(articles) >= limit {
			return false
		}
		link := item.Get("url").String()
		title := item.Get("title").String()
		a := core.Article{
			ID:             articleID(link, title),
			Headline:       title,
			Summary:        item.Get("summary").String(),
			Source:         item.Get("source").String(),
			URL:            link,
			Datetime:       parsePublished(item.Get("time_published").String(), now).Format(core.DateTimeLayout),
			Related:        symbol,
			Image:          item.Get("banner_image").String(),
			Category:       "business",
			DataSource:     core.ProviderAlphaVantage,
			SentimentLabel: core.SentimentNeutral,
		}
		if a.Source == "" {
			a.Source = "Alpha Vantage"
		}
		if s := item.Get("overall_sentiment_score"); s.Exists() {
			if score, err := strconv.ParseFloat(strings.TrimSpace(s.String()), 64); err == nil {
				a.SentimentScore = &score
				a.SentimentLabel = SentimentLabel(score)
			}
		}
		for _, au := range item.Get("authors").Array() {
			a.Authors = append(a.Authors, au.String())
		}
		for _, tp := range item.Get("topics").Array() {
			if name := tp.Get("topic").String(); name != "" {
				a.Topics = append(a.Topics, name)
			}
		}
		articles = append(articles, a)
		return true
	})
	return articles
}

// overviewMetrics maps OVERVIEW keys to profile metric names.
var overviewMetrics = map[string]string{
	"EBITDA":                     "ebitda",
	"PERatio":                    "pe_ratio",
	"PEGRatio":                   "peg_ratio",
	"BookValue":                  "book_value",
	"DividendPerShare":           "dividend_per_share",
	"DividendYield":              "dividend_yield",
	"EPS":                        "eps",
	"RevenuePerShareTTM":         "revenue_per_share",
	"ProfitMargin":               "profit_margin",
	"OperatingMarginTTM":         "operating_margin",
	"ReturnOnAssetsTTM":          "return_on_assets",
	"ReturnOnEquityTTM":          "return_on_equity",
	"RevenueTTM":                 "revenue",
	"GrossProfitTTM":             "gross_profit",
	"DilutedEPSTTM":              "diluted_eps",
	"QuarterlyEarningsGrowthYOY": "quarterly_earnings_growth",
	"QuarterlyRevenueGrowthYOY":  "quarterly_revenue_growth",
	"AnalystTargetPrice":         "analyst_target_price",
	"TrailingPE":                 "trailing_pe",
	"ForwardPE":                  "forward_pe",
	"PriceToSalesRatioTTM":       "price_to_sales",
	"PriceToBookRatio":           "price_to_book",
	"EVToRevenue":                "ev_to_revenue",
	"EVToEBITDA":                 "ev_to_ebitda",
	"Beta":                       "beta",
	"52WeekHigh":                 "week_52_high",
	"52WeekLow":                  "week_52_low",
	"50DayMovingAverage":         "moving_average_50",
	"200DayMovingAverage":        "moving_average_200",
	"SharesOutstanding":          "shares_outstanding",
}

// safeFloat parses an OVERVIEW value; "None", "-" and "" are absent.
func safeFloat(r gjson.Result) (float64, bool) {
	s := strings.TrimSpace(r.String())
	if !r.Exists() || s == "" || s == "None" || s == "-" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func toProfile(symbol string, data gjson.Result, now time.Time) *core.Profile {
	p := &core.Profile{
		Symbol:         symbol,
		ProviderSymbol: data.Get("Symbol").String(),
		Name:           data.Get("Name").String(),
		Description:    data.Get("Description").String(),
		Country:        data.Get("Country").String(),
		Currency:       data.Get("Currency").String(),
		Exchange:       data.Get("Exchange").String(),
		Industry:       data.Get("Industry").String(),
		Sector:         data.Get("Sector").String(),
		Address:        data.Get("Address").String(),
		Metrics:        make(map[string]float64),
		Info: map[string]string{
			"fiscal_year_end": data.Get("FiscalYearEnd").String(),
			"latest_quarter":  data.Get("LatestQuarter").String(),
		},
		DataSource: core.ProviderAlphaVantage,
		Timestamp:  now,
	}
	if v, ok := safeFloat(data.Get("MarketCapitalization")); ok {
		p.MarketCap = &v
	}
	for key, name := range overviewMetrics {
		if v, ok := safeFloat(data.Get(key)); ok {
			p.Metrics[name] = v
		}
	}
	return p
}
