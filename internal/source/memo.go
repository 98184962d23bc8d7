package source

import (
	"time"

	"github.com/newthinker/datahub/internal/cache"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/metrics"
)

type memoEntry[V any] struct {
	value V
	err   error
}

// Memo caches one provider's results for one data type. Successes and
// soft errors are remembered; hard errors and transport failures are not,
// so the next call retries them.
type Memo[V any] struct {
	provider string
	dataType core.DataType
	ttl      time.Duration
	cache    *cache.Cache[string, memoEntry[V]]
	metrics  *metrics.Registry
}

// NewMemo creates a memo. reg may be nil.
func NewMemo[V any](provider string, dt core.DataType, ttl time.Duration, maxItems int, reg *metrics.Registry, opts ...cache.Option) *Memo[V] {
	return &Memo[V]{
		provider: provider,
		dataType: dt,
		ttl:      ttl,
		cache:    cache.New[string, memoEntry[V]](maxItems, opts...),
		metrics:  reg,
	}
}

// Do returns the cached outcome for key or calls fetch and caches it.
// Concurrent misses for the same key each call fetch; the last write wins.
func (m *Memo[V]) Do(key string, fetch func() (V, error)) (V, error) {
	if e, ok := m.cache.Get(key); ok {
		m.metrics.RecordCacheLookup(m.provider, string(m.dataType), true)
		return e.value, e.err
	}
	m.metrics.RecordCacheLookup(m.provider, string(m.dataType), false)

	v, err := fetch()
	switch core.Classify(err) {
	case core.OutcomeSuccess, core.OutcomeSoft:
		m.cache.Set(key, memoEntry[V]{value: v, err: err}, m.ttl)
	}
	return v, err
}

// TTL returns the freshness window.
func (m *Memo[V]) TTL() time.Duration { return m.ttl }

// Len returns the number of cached outcomes.
func (m *Memo[V]) Len() int { return m.cache.Len() }
