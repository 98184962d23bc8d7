package core

import (
	"strings"
	"time"
)

// Exchange is a market venue a symbol trades on.
type Exchange string

const (
	ExchangeNASDAQ Exchange = "NASDAQ"
	ExchangeNYSE   Exchange = "NYSE"
	ExchangeHK     Exchange = "HK"
	ExchangeSS     Exchange = "SS" // Shanghai
	ExchangeSZ     Exchange = "SZ" // Shenzhen
	ExchangeTSX    Exchange = "TSX"
)

// Exchanges lists every known venue in a stable order.
func Exchanges() []Exchange {
	return []Exchange{ExchangeNASDAQ, ExchangeNYSE, ExchangeHK, ExchangeSS, ExchangeSZ, ExchangeTSX}
}

// DataType is a logical kind of data a source can serve.
type DataType string

const (
	DataNews    DataType = "news"
	DataProfile DataType = "profile"
)

// Provider names.
const (
	ProviderGoogleNews   = "google_news"
	ProviderYahoo        = "yfinance"
	ProviderAlphaVantage = "alpha_vantage"
)

// DateTimeLayout is the wire format of Article.Datetime.
const DateTimeLayout = "2006-01-02 15:04:05"

// DateLayout is the request date format.
const DateLayout = "2006-01-02"

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Article is a provider-agnostic news item.
type Article struct {
	ID             string   `json:"id"`
	Headline       string   `json:"headline"`
	Summary        string   `json:"summary"`
	Source         string   `json:"source"`
	URL            string   `json:"url"`
	Datetime       string   `json:"datetime"`
	Related        string   `json:"related"`
	Image          string   `json:"image"`
	Category       string   `json:"category"`
	DataSource     string   `json:"data_source"`
	SentimentScore *float64 `json:"sentiment_score,omitempty"`
	SentimentLabel string   `json:"sentiment_label,omitempty"`
	Authors        []string `json:"authors,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	ProviderUsed   string   `json:"provider_used,omitempty"`
}

// PublishedAt parses Datetime. ok is false for undated articles.
func (a Article) PublishedAt() (time.Time, bool) {
	if strings.TrimSpace(a.Datetime) == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateTimeLayout, a.Datetime, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Profile is a normalized company profile. Common fields are typed;
// provider-specific fundamentals live in Metrics keyed by snake_case name.
type Profile struct {
	Symbol         string             `json:"symbol"`
	ProviderSymbol string             `json:"provider_symbol,omitempty"`
	Name           string             `json:"name"`
	Description    string             `json:"description,omitempty"`
	Country        string             `json:"country"`
	Currency       string             `json:"currency"`
	Exchange       string             `json:"exchange"`
	Industry       string             `json:"industry"`
	Sector         string             `json:"sector"`
	Website        string             `json:"website,omitempty"`
	Address        string             `json:"address,omitempty"`
	Employees      *int64             `json:"employees,omitempty"`
	MarketCap      *float64           `json:"market_cap,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
	Info           map[string]string  `json:"info,omitempty"`
	DataSource     string             `json:"data_source"`
	Timestamp      time.Time          `json:"timestamp"`
	ProviderUsed   string             `json:"provider_used,omitempty"`
}

// Clone returns a deep copy so cached profiles are never mutated by callers.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.Employees != nil {
		v := *p.Employees
		c.Employees = &v
	}
	if p.MarketCap != nil {
		v := *p.MarketCap
		c.MarketCap = &v
	}
	if p.Metrics != nil {
		c.Metrics = make(map[string]float64, len(p.Metrics))
		for k, v := range p.Metrics {
			c.Metrics[k] = v
		}
	}
	if p.Info != nil {
		c.Info = make(map[string]string, len(p.Info))
		for k, v := range p.Info {
			c.Info[k] = v
		}
	}
	return &c
}

// Quote represents a real-time price quote
type Quote struct {
	Symbol        string    `json:"symbol"`
	Exchange      Exchange  `json:"exchange,omitempty"`
	Price         float64   `json:"price"`
	PrevClose     float64   `json:"prev_close,omitempty"`
	Change        float64   `json:"change,omitempty"`
	ChangePercent float64   `json:"change_percent,omitempty"`
	Volume        int64     `json:"volume"`
	Currency      string    `json:"currency,omitempty"`
	Time          time.Time `json:"time"`
	Source        string    `json:"source"`
}

// IsValid checks if the quote has required fields
func (q Quote) IsValid() bool {
	return q.Symbol != "" && q.Price > 0
}

// OHLCV represents a candlestick/bar
type OHLCV struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"` // "1m", "5m", "1d"
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Time     time.Time `json:"time"`
}
