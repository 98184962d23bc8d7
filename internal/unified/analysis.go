package unified

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/datahub/internal/compat"
	"github.com/newthinker/datahub/internal/core"
	"golang.org/x/sync/errgroup"
	"go.uber.org/zap"
)

// DefaultAnalysisDays is the news window used when Analyze gets none.
const DefaultAnalysisDays = 7

// Analysis combines everything known about one symbol. Each part is
// fetched independently; a failing part leaves an entry in Errors.
type Analysis struct {
	Symbol    string         `json:"symbol"`
	News      []core.Article `json:"news"`
	Profile   *core.Profile  `json:"profile,omitempty"`
	Quote     *core.Quote    `json:"quote,omitempty"`
	Compat    compat.Report  `json:"compatibility"`
	Errors    map[string]any `json:"errors,omitempty"`
	Timestamp time.Time      `json:"timestamp"`

	mu sync.Mutex
}

func (a *Analysis) fail(part string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Errors == nil {
		a.Errors = make(map[string]any)
	}
	if env, ok := err.(*ErrorEnvelope); ok {
		a.Errors[part] = env
		return
	}
	a.Errors[part] = err.Error()
}

// Analyze fetches news for the last days, the profile, the compatibility
// report and, when configured, a quote. The parts run concurrently and
// none cancels another.
func (s *Service) Analyze(ctx context.Context, symbol string, days int) *Analysis {
	if days <= 0 {
		days = DefaultAnalysisDays
	}
	now := s.now()
	start := now.AddDate(0, 0, -days)

	a := &Analysis{
		Symbol:    symbol,
		News:      []core.Article{},
		Compat:    s.matrix.Report(symbol),
		Timestamp: now,
	}

	var g errgroup.Group
	g.Go(func() error {
		news, err := s.GetCompanyNewsUnified(ctx, symbol, start, now, AutoSource, 10)
		if err != nil {
			a.fail("news", err)
			return nil
		}
		a.News = news
		return nil
	})
	g.Go(func() error {
		p, err := s.GetCompanyProfileUnified(ctx, symbol, AutoSource, true)
		if err != nil {
			a.fail("profile", err)
			return nil
		}
		a.Profile = p
		return nil
	})
	if s.quotes != nil {
		g.Go(func() error {
			q, err := s.fetchQuote(ctx, symbol)
			if err != nil {
				a.fail("quote", err)
				return nil
			}
			a.Quote = q
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("analysis complete",
		zap.String("symbol", symbol),
		zap.Int("news", len(a.News)),
		zap.Bool("profile", a.Profile != nil),
		zap.Int("errors", len(a.Errors)))
	return a
}

func (s *Service) fetchQuote(ctx context.Context, symbol string) (q *core.Quote, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("quote panicked: %v", r)
		}
	}()
	q, err = s.quotes.FetchQuote(ctx, symbol)
	if err == nil && q == nil {
		err = core.NewError(core.ErrNoData, "no quote for %s", symbol)
	}
	return q, err
}
