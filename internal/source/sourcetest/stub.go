// Package sourcetest provides a scriptable source.Source for tests.
package sourcetest

import (
	"context"
	"sync"
	"time"

	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/source"
)

// Stub is a source.Source whose behaviour is set per field. Nil funcs
// return empty successes.
type Stub struct {
	ID        string
	Caps      []core.DataType
	Healthy   bool
	Supported func(symbol string) bool
	News      func(ctx context.Context, symbol string, start, end time.Time, limit int) ([]core.Article, error)
	Profile   func(ctx context.Context, symbol string, detailed bool) (*core.Profile, error)
	Limits    source.RateLimitInfo

	mu           sync.Mutex
	newsCalls    int
	profileCalls int
}

var _ source.Source = (*Stub)(nil)

// New returns a healthy stub supporting news and profile for every symbol.
func New(name string) *Stub {
	return &Stub{
		ID:      name,
		Caps:    []core.DataType{core.DataNews, core.DataProfile},
		Healthy: true,
	}
}

func (s *Stub) Name() string                  { return s.ID }
func (s *Stub) Capabilities() []core.DataType { return s.Caps }

func (s *Stub) HealthCheck(ctx context.Context) bool { return s.Healthy }

func (s *Stub) GetCompanyNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]core.Article, error) {
	s.mu.Lock()
	s.newsCalls++
	s.mu.Unlock()
	if s.News == nil {
		return []core.Article{}, nil
	}
	return s.News(ctx, symbol, start, end, limit)
}

func (s *Stub) GetCompanyProfile(ctx context.Context, symbol string, detailed bool) (*core.Profile, error) {
	s.mu.Lock()
	s.profileCalls++
	s.mu.Unlock()
	if s.Profile == nil {
		return &core.Profile{Symbol: symbol, DataSource: s.ID}, nil
	}
	return s.Profile(ctx, symbol, detailed)
}

func (s *Stub) IsSupported(symbol string) bool {
	if s.Supported == nil {
		return true
	}
	return s.Supported(symbol)
}

func (s *Stub) RateLimitInfo() source.RateLimitInfo {
	info := s.Limits
	info.Provider = s.ID
	return info
}

// NewsCalls returns how many times GetCompanyNews ran.
func (s *Stub) NewsCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newsCalls
}

// ProfileCalls returns how many times GetCompanyProfile ran.
func (s *Stub) ProfileCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileCalls
}

// Articles builds n dated articles attributed to provider.
func Articles(provider string, n int) []core.Article {
	out := make([]core.Article, n)
	for i := range out {
		out[i] = core.Article{
			ID:         provider + "_" + string(rune('a'+i)),
			Headline:   provider + " headline",
			URL:        "https://example.com/" + provider + "/" + string(rune('a'+i)),
			Datetime:   "2024-03-01 09:00:00",
			Category:   "business",
			DataSource: provider,
		}
	}
	return out
}

// Fail returns a news func that always fails with err.
func Fail(err error) func(context.Context, string, time.Time, time.Time, int) ([]core.Article, error) {
	return func(context.Context, string, time.Time, time.Time, int) ([]core.Article, error) {
		return nil, err
	}
}
