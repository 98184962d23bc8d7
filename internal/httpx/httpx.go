// Package httpx is the shared outbound HTTP client: proxy-aware, fixed
// timeout, default headers.
package httpx

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout is used when no timeout is given.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

// Options configures a Client.
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	ProxyUsername string
	ProxyPassword string
}

// Client is a small wrapper around http.Client with sane defaults.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
}

// New builds a client honouring HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
// Proxy credentials are injected into proxy URLs that carry none.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	transport := &http.Transport{
		Proxy:                 ProxyWithAuth(http.ProxyFromEnvironment, opts.ProxyUsername, opts.ProxyPassword),
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		HTTP:      &http.Client{Timeout: opts.Timeout, Transport: transport},
		UserAgent: opts.UserAgent,
	}
}

// Wrap adapts an existing http.Client, for tests.
func Wrap(c *http.Client, userAgent string) *Client {
	if c == nil {
		c = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{HTTP: c, UserAgent: userAgent}
}

// ProxyWithAuth wraps a proxy selector so that a chosen proxy URL without
// user info gets username and password. Empty username leaves it as is.
func ProxyWithAuth(base func(*http.Request) (*url.URL, error), username, password string) func(*http.Request) (*url.URL, error) {
	if username == "" {
		return base
	}
	return func(req *http.Request) (*url.URL, error) {
		u, err := base(req)
		if err != nil || u == nil {
			return u, err
		}
		if u.User != nil {
			return u, nil
		}
		withAuth := *u
		withAuth.User = url.UserPassword(username, password)
		return &withAuth, nil
	}
}

// Do sends req bound to ctx with the default headers applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.HTTP.Do(req)
}

// StatusError is returned by Get for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Get fetches rawURL with query and returns the body of a 2xx response.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	return body, nil
}
