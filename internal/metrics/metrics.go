package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics. A nil *Registry is valid and
// records nothing.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Provider metrics
	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	fallbacks        *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	quotaRemaining   *prometheus.GaugeVec
	exhausted        *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	r.providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datahub_provider_requests_total",
			Help: "Provider calls by outcome",
		},
		[]string{"provider", "data_type", "outcome"},
	)
	r.providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datahub_provider_request_duration_seconds",
			Help:    "Provider call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "data_type"},
	)
	r.fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datahub_fallbacks_total",
			Help: "Moves to the next provider after a failed call",
		},
		[]string{"data_type", "provider", "reason"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datahub_cache_lookups_total",
			Help: "Provider cache lookups by result",
		},
		[]string{"provider", "data_type", "result"},
	)
	r.quotaRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "datahub_quota_remaining",
			Help: "Remaining daily calls for quota-limited providers",
		},
		[]string{"provider"},
	)
	r.exhausted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datahub_all_sources_failed_total",
			Help: "Unified requests where every candidate provider failed",
		},
		[]string{"data_type"},
	)

	reg.MustRegister(r.providerRequests)
	reg.MustRegister(r.providerLatency)
	reg.MustRegister(r.fallbacks)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.quotaRemaining)
	reg.MustRegister(r.exhausted)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	if r == nil {
		return
	}
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Dec()
}

// RecordProviderCall records one provider call and its outcome.
func (r *Registry) RecordProviderCall(provider, dataType, outcome string, duration float64) {
	if r == nil {
		return
	}
	r.providerRequests.WithLabelValues(provider, dataType, outcome).Inc()
	r.providerLatency.WithLabelValues(provider, dataType).Observe(duration)
}

// RecordFallback records advancing past provider. reason is "policy" when
// the fallback policy asked for it and "advance" otherwise.
func (r *Registry) RecordFallback(dataType, provider, reason string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(dataType, provider, reason).Inc()
}

// RecordCacheLookup records a cache hit or miss.
func (r *Registry) RecordCacheLookup(provider, dataType string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(provider, dataType, result).Inc()
}

// SetQuotaRemaining sets the remaining daily calls for provider.
func (r *Registry) SetQuotaRemaining(provider string, remaining int) {
	if r == nil {
		return
	}
	r.quotaRemaining.WithLabelValues(provider).Set(float64(remaining))
}

// RecordExhausted records a unified request that no provider could serve.
func (r *Registry) RecordExhausted(dataType string) {
	if r == nil {
		return
	}
	r.exhausted.WithLabelValues(dataType).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
