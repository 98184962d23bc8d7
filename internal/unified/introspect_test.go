package unified

import (
	"context"
	"testing"

	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/source"
	"github.com/newthinker/datahub/internal/source/sourcetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panickySource struct{ *sourcetest.Stub }

func (panickySource) HealthCheck(ctx context.Context) bool { panic("probe exploded") }

func TestHealthCheck(t *testing.T) {
	up, down := sourcetest.New("up"), sourcetest.New("down")
	down.Healthy = false
	boom := panickySource{sourcetest.New("boom")}
	svc := newService(t, settingsFor(t, "up", true), nil, up, down, boom)

	report := svc.HealthCheck(context.Background())
	assert.Equal(t, StateHealthy, report.Sources["up"])
	assert.Equal(t, StateUnhealthy, report.Sources["down"])
	assert.Equal(t, "error: probe exploded", report.Sources["boom"])
	assert.False(t, report.Healthy())
	assert.Equal(t, "free", report.Settings.Strategy)
}

func TestStatus(t *testing.T) {
	news := sourcetest.New("news_only")
	news.Caps = []core.DataType{core.DataNews}
	news.Limits = source.RateLimitInfo{DailyLimit: 500, Remaining: 499, Used: 1, TrackingEnabled: true}
	svc := newService(t, settingsFor(t, "news_only", true), nil, news)

	status := svc.Status(context.Background())
	require.Contains(t, status, "news_only")
	st := status["news_only"]
	assert.True(t, st.Healthy)
	assert.Equal(t, 499, st.RateLimit.Remaining)
	assert.Equal(t, "news_only", st.RateLimit.Provider)
	assert.Equal(t, []core.DataType{core.DataNews}, st.Capabilities)
}

func TestAvailableSources(t *testing.T) {
	both := sourcetest.New("both")
	newsOnly := sourcetest.New("news_only")
	newsOnly.Caps = []core.DataType{core.DataNews}
	svc := newService(t, settingsFor(t, "both", true), nil, both, newsOnly)

	got := svc.AvailableSources()
	assert.Equal(t, []string{"both", "news_only"}, got[core.DataNews])
	assert.Equal(t, []string{"both"}, got[core.DataProfile])
}
