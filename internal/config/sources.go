package config

import (
	"strings"
	"time"

	"github.com/newthinker/datahub/internal/core"
	"go.uber.org/zap"
)

// Strategy selects which providers are preferred.
type Strategy string

const (
	StrategyFree         Strategy = "free"
	StrategyAlphaVantage Strategy = "alpha_vantage"
	StrategyAuto         Strategy = "auto"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyFree, StrategyAlphaVantage, StrategyAuto:
		return true
	}
	return false
}

// DefaultCacheTTL applies to any (provider, data type) pair without an entry.
const DefaultCacheTTL = 15 * time.Minute

var cacheTTLs = map[string]map[core.DataType]time.Duration{
	core.ProviderAlphaVantage: {core.DataNews: time.Hour, core.DataProfile: 6 * time.Hour},
	core.ProviderGoogleNews:   {core.DataNews: 15 * time.Minute, core.DataProfile: 15 * time.Minute},
	core.ProviderYahoo:        {core.DataNews: 15 * time.Minute, core.DataProfile: 4 * time.Hour},
}

// Providers that need a credential to be usable.
var keyedProviders = map[string]bool{
	core.ProviderAlphaVantage: true,
}

// Providers usable without a credential.
var freeProviders = map[string]bool{
	core.ProviderGoogleNews: true,
	core.ProviderYahoo:      true,
}

// DefaultProvider is the free provider used for a data type when nothing
// configured for it is registered.
func DefaultProvider(dt core.DataType) string {
	if dt == core.DataProfile {
		return core.ProviderYahoo
	}
	return core.ProviderGoogleNews
}

// SourceSettings is an immutable snapshot of provider selection policy.
// It is the only place that decides provider order, availability and
// fallback eligibility.
type SourceSettings struct {
	strategy        Strategy
	fallbackEnabled bool
	apiKeys         map[string]string
	priorities      map[core.DataType][]string
	limits          AlphaVantageConfig
	cacheMaxItems   int
}

// NewSourceSettings resolves a snapshot from raw config. An unknown strategy
// is logged and treated as free.
func NewSourceSettings(cfg SourcesConfig, logger *zap.Logger) *SourceSettings {
	if logger == nil {
		logger = zap.NewNop()
	}

	strategy := Strategy(strings.ToLower(strings.TrimSpace(cfg.Strategy)))
	if strategy == "" {
		strategy = StrategyFree
	}
	if !strategy.Valid() {
		logger.Warn("unknown data source strategy, using free",
			zap.String("strategy", cfg.Strategy))
		strategy = StrategyFree
	}

	s := &SourceSettings{
		strategy:        strategy,
		fallbackEnabled: cfg.EnableAutoFallback,
		apiKeys: map[string]string{
			core.ProviderAlphaVantage: strings.TrimSpace(cfg.AlphaVantage.APIKey),
		},
		limits:        cfg.AlphaVantage,
		cacheMaxItems: cfg.CacheMaxItems,
	}

	news := []string{core.ProviderGoogleNews}
	profile := []string{core.ProviderYahoo}
	if (strategy == StrategyAlphaVantage || strategy == StrategyAuto) && s.apiKeys[core.ProviderAlphaVantage] != "" {
		news = []string{core.ProviderAlphaVantage, core.ProviderGoogleNews}
		profile = []string{core.ProviderAlphaVantage, core.ProviderYahoo}
	}
	if override := ParsePriority(cfg.NewsPriority); len(override) > 0 {
		news = override
	}
	if override := ParsePriority(cfg.ProfilePriority); len(override) > 0 {
		profile = override
	}
	s.priorities = map[core.DataType][]string{
		core.DataNews:    news,
		core.DataProfile: profile,
	}

	return s
}

// ParsePriority splits a comma-separated provider list, dropping blanks
// and repeats while keeping order.
func ParsePriority(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Strategy returns the resolved strategy.
func (s *SourceSettings) Strategy() Strategy { return s.strategy }

// FallbackEnabled reports whether automatic fallback is on.
func (s *SourceSettings) FallbackEnabled() bool { return s.fallbackEnabled }

// ProviderOrder returns the ordered provider list for a data type.
func (s *SourceSettings) ProviderOrder(dt core.DataType) []string {
	order := s.priorities[dt]
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// NewsProviderOrder returns the ordered provider list for news.
func (s *SourceSettings) NewsProviderOrder() []string {
	return s.ProviderOrder(core.DataNews)
}

// ProfileProviderOrder returns the ordered provider list for profiles.
func (s *SourceSettings) ProfileProviderOrder() []string {
	return s.ProviderOrder(core.DataProfile)
}

// APIKey returns the credential configured for provider, or "".
func (s *SourceSettings) APIKey(provider string) string {
	return s.apiKeys[provider]
}

// IsAvailable reports whether provider can be used. Free providers always
// can; keyed providers need their credential; unknown names cannot.
func (s *SourceSettings) IsAvailable(provider string) bool {
	if freeProviders[provider] {
		return true
	}
	if keyedProviders[provider] {
		return s.apiKeys[provider] != ""
	}
	return false
}

// ShouldFallback reports whether a failure from provider is a reason to
// move on to the next provider: fallback must be enabled and either the
// failure is a hard error or the provider is unavailable.
func (s *SourceSettings) ShouldFallback(provider string, err error) bool {
	if !s.fallbackEnabled {
		return false
	}
	if core.Classify(err) == core.OutcomeHard {
		return true
	}
	return !s.IsAvailable(provider)
}

// CacheTTL returns how long a provider's results for a data type stay fresh.
func (s *SourceSettings) CacheTTL(provider string, dt core.DataType) time.Duration {
	if byType, ok := cacheTTLs[provider]; ok {
		if ttl, ok := byType[dt]; ok {
			return ttl
		}
	}
	return DefaultCacheTTL
}

// AlphaVantageLimits returns the paid provider's quota settings.
func (s *SourceSettings) AlphaVantageLimits() AlphaVantageConfig {
	return s.limits
}

// CacheMaxItems bounds each provider cache.
func (s *SourceSettings) CacheMaxItems() int {
	return s.cacheMaxItems
}

// Snapshot is the serializable view of the settings. Credentials are
// reported only as present or absent.
type Snapshot struct {
	Strategy          string              `json:"strategy"`
	FallbackEnabled   bool                `json:"fallback_enabled"`
	APIKeysConfigured map[string]bool     `json:"api_keys_configured"`
	Priorities        map[string][]string `json:"source_priorities"`
	Available         map[string]bool     `json:"available_sources"`
}

// Snapshot returns a serializable copy of the settings.
func (s *SourceSettings) Snapshot() Snapshot {
	snap := Snapshot{
		Strategy:          string(s.strategy),
		FallbackEnabled:   s.fallbackEnabled,
		APIKeysConfigured: make(map[string]bool, len(s.apiKeys)),
		Priorities:        make(map[string][]string, len(s.priorities)),
		Available:         make(map[string]bool),
	}
	for p, k := range s.apiKeys {
		snap.APIKeysConfigured[p] = k != ""
	}
	for dt := range s.priorities {
		snap.Priorities[string(dt)] = s.ProviderOrder(dt)
	}
	for _, p := range []string{core.ProviderAlphaVantage, core.ProviderGoogleNews, core.ProviderYahoo} {
		snap.Available[p] = s.IsAvailable(p)
	}
	return snap
}
