package googlenews

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/httpx"
)

// DefaultBaseURL is the Google News RSS search endpoint.
const DefaultBaseURL = "https://news.google.com/rss/search"

// SearchRequest is one search query. Zero After/Before mean unbounded.
type SearchRequest struct {
	Query  string
	Max    int
	After  time.Time
	Before time.Time
}

// FeedItem is one search hit.
type FeedItem struct {
	Title     string
	Summary   string
	Link      string
	Source    string
	Published *time.Time
}

// Searcher runs a news search.
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]FeedItem, error)
}

// RSSClient searches Google News over its RSS endpoint.
type RSSClient struct {
	http     *httpx.Client
	baseURL  string
	language string
	country  string
	strip    *bluemonday.Policy
}

// NewRSSClient creates a client. An empty baseURL uses DefaultBaseURL.
func NewRSSClient(client *httpx.Client, baseURL string) *RSSClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RSSClient{
		http:     client,
		baseURL:  baseURL,
		language: "en",
		country:  "US",
		strip:    bluemonday.StrictPolicy(),
	}
}

// searchQuery appends date operators so the engine narrows results itself.
func searchQuery(req SearchRequest) string {
	q := req.Query
	if !req.After.IsZero() {
		q += " after:" + req.After.Format(core.DateLayout)
	}
	if !req.Before.IsZero() {
		q += " before:" + req.Before.Format(core.DateLayout)
	}
	return q
}

func (c *RSSClient) params(q string) url.Values {
	return url.Values{
		"q":    {q},
		"hl":   {c.language},
		"gl":   {c.country},
		"ceid": {c.country + ":" + c.language},
	}
}

// Search implements Searcher.
func (c *RSSClient) Search(ctx context.Context, req SearchRequest) ([]FeedItem, error) {
	body, err := c.http.Get(ctx, c.baseURL, c.params(searchQuery(req)))
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", req.Query, err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	items := make([]FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		if req.Max > 0 && len(items) >= req.Max {
			break
		}
		title := c.clean(it.Title)
		item := FeedItem{
			Title:     title,
			Summary:   c.clean(it.Description),
			Link:      strings.TrimSpace(it.Link),
			Source:    publisher(title),
			Published: it.PublishedParsed,
		}
		if item.Published == nil {
			item.Published = it.UpdatedParsed
		}
		items = append(items, item)
	}
	return items, nil
}

// Ping fetches a known query and checks the body parses as a feed.
func (c *RSSClient) Ping(ctx context.Context) error {
	body, err := c.http.Get(ctx, c.baseURL, c.params("AAPL"))
	if err != nil {
		return err
	}
	if _, err := gofeed.NewParser().ParseString(string(body)); err != nil {
		return fmt.Errorf("parsing feed: %w", err)
	}
	return nil
}

func (c *RSSClient) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.strip.Sanitize(s)))
}

// publisher extracts the trailing " - Publisher" Google appends to titles.
func publisher(title string) string {
	if i := strings.LastIndex(title, " - "); i > 0 && i+3 < len(title) {
		return strings.TrimSpace(title[i+3:])
	}
	return "Google News"
}
