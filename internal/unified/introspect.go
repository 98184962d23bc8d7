package unified

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/datahub/internal/config"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/source"
	"go.uber.org/zap"
)

// Health states reported per source.
const (
	StateHealthy   = "healthy"
	StateUnhealthy = "unhealthy"
)

// HealthReport is the result of probing every registered source.
type HealthReport struct {
	Sources   map[string]string `json:"sources"`
	Settings  config.Snapshot   `json:"settings"`
	Timestamp time.Time         `json:"timestamp"`
}

// Healthy reports whether every source answered its probe.
func (h HealthReport) Healthy() bool {
	for _, state := range h.Sources {
		if state != StateHealthy {
			return false
		}
	}
	return true
}

// SourceStatus describes one registered source.
type SourceStatus struct {
	Healthy      bool                 `json:"healthy"`
	RateLimit    source.RateLimitInfo `json:"rate_limit"`
	Capabilities []core.DataType      `json:"capabilities"`
	Error        string               `json:"error,omitempty"`
}

// probe runs one health check, converting a panic into an error.
func probe(ctx context.Context, src source.Source) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return src.HealthCheck(ctx), nil
}

// HealthCheck probes every registered source in name order.
func (s *Service) HealthCheck(ctx context.Context) HealthReport {
	settings, reg := s.current()
	report := HealthReport{
		Sources:   make(map[string]string),
		Settings:  settings.Snapshot(),
		Timestamp: s.now(),
	}
	for _, src := range reg.GetAll() {
		ok, err := probe(ctx, src)
		switch {
		case err != nil:
			report.Sources[src.Name()] = "error: " + err.Error()
			s.logger.Error("health check panicked", zap.String("source", src.Name()), zap.Error(err))
		case ok:
			report.Sources[src.Name()] = StateHealthy
		default:
			report.Sources[src.Name()] = StateUnhealthy
		}
	}
	return report
}

// Status reports health, rate limits and capabilities per source.
func (s *Service) Status(ctx context.Context) map[string]SourceStatus {
	_, reg := s.current()
	out := make(map[string]SourceStatus)
	for _, src := range reg.GetAll() {
		ok, err := probe(ctx, src)
		st := SourceStatus{
			Healthy:      ok && err == nil,
			RateLimit:    src.RateLimitInfo(),
			Capabilities: src.Capabilities(),
		}
		if err != nil {
			st.Error = err.Error()
		}
		out[src.Name()] = st
	}
	return out
}

// AvailableSources lists registered sources per data type they can serve.
func (s *Service) AvailableSources() map[core.DataType][]string {
	_, reg := s.current()
	out := map[core.DataType][]string{
		core.DataNews:    {},
		core.DataProfile: {},
	}
	for _, src := range reg.GetAll() {
		for dt := range out {
			if source.Supports(src, dt) {
				out[dt] = append(out[dt], src.Name())
			}
		}
	}
	return out
}
