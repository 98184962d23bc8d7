// Package source defines the uniform provider adapter contract.
package source

import (
	"context"
	"time"

	"github.com/newthinker/datahub/internal/core"
)

// Unlimited marks a rate-limit field with no bound.
const Unlimited = -1

// RateLimitInfo is a point-in-time view of a provider's throttling state.
type RateLimitInfo struct {
	Provider        string     `json:"provider"`
	DailyLimit      int        `json:"daily_limit"`
	Used            int        `json:"used"`
	Remaining       int        `json:"remaining"`
	PerMinuteLimit  int        `json:"per_minute_limit"`
	ResetTime       *time.Time `json:"reset_time,omitempty"`
	TrackingEnabled bool       `json:"tracking_enabled"`
	Free            bool       `json:"is_free"`
}

// Source is implemented by every provider adapter.
//
// Expected failures come back as *core.Error values: soft codes when the
// provider cannot help with this request, hard codes for throttling and
// credentials, API_ERROR for transport or parse failures. An empty result
// with a nil error is a legitimate "nothing found".
type Source interface {
	Name() string
	Capabilities() []core.DataType

	HealthCheck(ctx context.Context) bool
	GetCompanyNews(ctx context.Context, symbol string, start, end time.Time, limit int) ([]core.Article, error)
	GetCompanyProfile(ctx context.Context, symbol string, detailed bool) (*core.Profile, error)

	IsSupported(symbol string) bool
	RateLimitInfo() RateLimitInfo
}

// Supports reports whether s lists dt among its capabilities.
func Supports(s Source, dt core.DataType) bool {
	for _, c := range s.Capabilities() {
		if c == dt {
			return true
		}
	}
	return false
}
