// Package unified answers news and profile requests by walking the
// configured providers in order until one succeeds.
package unified

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/datahub/internal/compat"
	"github.com/newthinker/datahub/internal/config"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/metrics"
	"github.com/newthinker/datahub/internal/source"
	"github.com/newthinker/datahub/internal/storage/archive"
	"go.uber.org/zap"
)

// AutoSource requests automatic provider selection.
const AutoSource = "auto"

// Factory builds fresh provider adapters for a settings snapshot.
type Factory func(settings *config.SourceSettings) ([]source.Source, error)

// QuoteFetcher supplies latest quotes for Analyze.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*core.Quote, error)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Service) { s.metrics = r }
}

// WithRecorder archives successful results.
func WithRecorder(r *archive.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithMatrix overrides the compatibility matrix used for reports.
func WithMatrix(m *compat.Matrix) Option {
	return func(s *Service) {
		if m != nil {
			s.matrix = m
		}
	}
}

// WithQuotes enables the quote part of Analyze.
func WithQuotes(q QuoteFetcher) Option {
	return func(s *Service) { s.quotes = q }
}

// Service is the unified data service. It is safe for concurrent use;
// Reload swaps the settings and every adapter atomically.
type Service struct {
	mu       sync.RWMutex
	settings *config.SourceSettings
	registry *source.Registry

	factory  Factory
	matrix   *compat.Matrix
	quotes   QuoteFetcher
	recorder *archive.Recorder
	metrics  *metrics.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// New builds the service and its adapters from settings.
func New(settings *config.SourceSettings, factory Factory, opts ...Option) (*Service, error) {
	s := &Service{
		factory: factory,
		matrix:  compat.Default(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("unified")

	reg, err := s.build(settings)
	if err != nil {
		return nil, err
	}
	s.settings = settings
	s.registry = reg
	return s, nil
}

func (s *Service) build(settings *config.SourceSettings) (*source.Registry, error) {
	if settings == nil {
		return nil, core.NewError(core.ErrConfigMissing, "source settings required")
	}
	sources, err := s.factory(settings)
	if err != nil {
		return nil, fmt.Errorf("building sources: %w", err)
	}
	reg := source.NewRegistry()
	for _, src := range sources {
		reg.Register(src)
	}
	return reg, nil
}

// Reload discards every adapter and rebuilds them from settings.
func (s *Service) Reload(settings *config.SourceSettings) error {
	reg, err := s.build(settings)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.settings = settings
	s.registry = reg
	s.mu.Unlock()

	s.logger.Info("data sources reloaded",
		zap.String("strategy", string(settings.Strategy())),
		zap.Strings("sources", reg.Names()))
	return nil
}

func (s *Service) current() (*config.SourceSettings, *source.Registry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.registry
}

// Settings returns the active settings snapshot.
func (s *Service) Settings() *config.SourceSettings {
	settings, _ := s.current()
	return settings
}

// Matrix returns the compatibility matrix.
func (s *Service) Matrix() *compat.Matrix { return s.matrix }

// candidates resolves the ordered provider list for one request.
func (s *Service) candidates(settings *config.SourceSettings, reg *source.Registry, dt core.DataType, requested string) []string {
	if requested != "" && requested != AutoSource {
		if _, ok := reg.Get(requested); ok {
			return []string{requested}
		}
		s.logger.Warn("requested source not registered, using automatic selection",
			zap.String("source", requested),
			zap.String("data_type", string(dt)))
	}

	order := settings.ProviderOrder(dt)
	for _, name := range order {
		if _, ok := reg.Get(name); ok {
			return order
		}
	}
	fallback := config.DefaultProvider(dt)
	s.logger.Warn("no configured source registered, using default",
		zap.String("data_type", string(dt)),
		zap.Strings("configured", order),
		zap.String("default", fallback))
	return []string{fallback}
}

type request struct {
	dataType  core.DataType
	symbol    string
	requested string
}

// dispatch walks the candidates strictly in order. Only a non-empty
// success stops the walk; every error advances to the next candidate.
// ShouldFallback decides how loudly the advance is logged.
func dispatch[T any](ctx context.Context, s *Service, req request, fetch func(source.Source) (T, error), isEmpty func(T) bool) (T, string, error) {
	settings, reg := s.current()
	candidates := s.candidates(settings, reg, req.dataType, req.requested)
	dt := string(req.dataType)

	var (
		zero      T
		attempted []string
		lastErr   error
		emptyVal  T
		emptyFrom string
	)
	for _, name := range candidates {
		src, ok := reg.Get(name)
		if !ok {
			s.logger.Debug("source not registered, skipping", zap.String("source", name))
			continue
		}
		if !src.IsSupported(req.symbol) {
			s.logger.Debug("symbol not supported by source, skipping",
				zap.String("source", name),
				zap.String("symbol", req.symbol))
			s.metrics.RecordFallback(dt, name, "unsupported")
			continue
		}
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		attempted = append(attempted, name)
		s.logger.Info("dispatching request",
			zap.String("source", name),
			zap.String("data_type", dt),
			zap.String("symbol", req.symbol))

		start := time.Now()
		v, err := safeCall(src, fetch)
		outcome := core.Classify(err)
		s.metrics.RecordProviderCall(name, dt, string(outcome), time.Since(start).Seconds())

		if err == nil {
			if isEmpty == nil || !isEmpty(v) {
				return v, name, nil
			}
			if emptyFrom == "" {
				emptyVal, emptyFrom = v, name
			}
			s.logger.Info("source returned no results, trying next",
				zap.String("source", name),
				zap.String("symbol", req.symbol))
			continue
		}

		lastErr = err
		if outcome == core.OutcomeException {
			s.logger.Error("source failed",
				zap.String("source", name),
				zap.String("symbol", req.symbol),
				zap.Error(err))
		}
		if settings.ShouldFallback(name, err) {
			s.logger.Warn("falling back to next source",
				zap.String("source", name),
				zap.String("code", core.Code(err)),
				zap.Error(err))
			s.metrics.RecordFallback(dt, name, "policy")
		} else {
			s.logger.Info("source could not serve request, trying next",
				zap.String("source", name),
				zap.String("code", core.Code(err)),
				zap.Error(err))
			s.metrics.RecordFallback(dt, name, "advance")
		}
	}

	if emptyFrom != "" {
		return emptyVal, emptyFrom, nil
	}
	s.metrics.RecordExhausted(dt)
	return zero, "", newEnvelope(req.symbol, req.dataType, candidates, attempted, lastErr)
}

// safeCall turns a panicking adapter into an API_ERROR.
func safeCall[T any](src source.Source, fetch func(source.Source) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.WrapError(core.ErrProviderFailed, fmt.Errorf("%s panicked: %v", src.Name(), r))
		}
	}()
	return fetch(src)
}

// GetCompanyNewsUnified returns news for symbol from the first provider
// that has any. requested names a provider explicitly; "" or "auto" selects
// automatically. Exhaustion yields an *ErrorEnvelope.
func (s *Service) GetCompanyNewsUnified(ctx context.Context, symbol string, start, end time.Time, requested string, limit int) ([]core.Article, error) {
	req := request{dataType: core.DataNews, symbol: symbol, requested: requested}
	articles, provider, err := dispatch(ctx, s, req,
		func(src source.Source) ([]core.Article, error) {
			return src.GetCompanyNews(ctx, symbol, start, end, limit)
		},
		func(a []core.Article) bool { return len(a) == 0 })
	if err != nil {
		return nil, err
	}

	out := make([]core.Article, len(articles))
	for i, a := range articles {
		a.ProviderUsed = provider
		out[i] = a
	}
	if len(out) > 0 {
		s.recorder.Record(ctx, core.DataNews, symbol, provider, out)
	}
	return out, nil
}

// GetCompanyProfileUnified returns the company profile from the first
// provider that has one.
func (s *Service) GetCompanyProfileUnified(ctx context.Context, symbol, requested string, detailed bool) (*core.Profile, error) {
	req := request{dataType: core.DataProfile, symbol: symbol, requested: requested}
	p, provider, err := dispatch(ctx, s, req,
		func(src source.Source) (*core.Profile, error) {
			p, err := src.GetCompanyProfile(ctx, symbol, detailed)
			if err == nil && p == nil {
				return nil, core.NewError(core.ErrNoData, "%s returned no profile for %s", src.Name(), symbol)
			}
			return p, err
		}, nil)
	if err != nil {
		return nil, err
	}

	out := p.Clone()
	out.ProviderUsed = provider
	s.recorder.Record(ctx, core.DataProfile, symbol, provider, out)
	return out, nil
}
