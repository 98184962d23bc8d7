// Package compat holds the static provider x exchange support table and
// the per-provider symbol spellings.
package compat

import (
	"strings"

	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/symbol"
)

// Entry describes how one provider handles the known exchanges.
type Entry struct {
	Provider string
	// RequiresExchange is false for providers that work from the raw text
	// of a symbol (search engines) and so accept unrecognized venues.
	RequiresExchange bool
	Supported        map[core.Exchange]bool
	// Formats maps an exchange to a template where {base} is replaced with
	// the base code. A missing template means the base code is used as is.
	Formats map[core.Exchange]string
}

// Matrix is a read-only compatibility table.
type Matrix struct {
	entries map[string]Entry
	order   []string
}

// suffixes maps a symbol suffix to its exchange. SH and TO are accepted
// aliases for Shanghai and Toronto.
var suffixes = map[string]core.Exchange{
	"HK":     core.ExchangeHK,
	"SS":     core.ExchangeSS,
	"SH":     core.ExchangeSS,
	"SZ":     core.ExchangeSZ,
	"TO":     core.ExchangeTSX,
	"TSX":    core.ExchangeTSX,
	"NYSE":   core.ExchangeNYSE,
	"NASDAQ": core.ExchangeNASDAQ,
}

func all(v bool) map[core.Exchange]bool {
	m := make(map[core.Exchange]bool)
	for _, e := range core.Exchanges() {
		m[e] = v
	}
	return m
}

// DefaultEntries is the built-in table for the three bundled providers.
func DefaultEntries() []Entry {
	av := all(true)
	av[core.ExchangeHK] = false

	return []Entry{
		{
			Provider:         core.ProviderYahoo,
			RequiresExchange: true,
			Supported:        all(true),
			Formats: map[core.Exchange]string{
				core.ExchangeHK:  "{base}.HK",
				core.ExchangeSS:  "{base}.SS",
				core.ExchangeSZ:  "{base}.SZ",
				core.ExchangeTSX: "{base}.TO",
			},
		},
		{
			Provider:         core.ProviderGoogleNews,
			RequiresExchange: false,
			Supported:        all(true),
		},
		{
			Provider:         core.ProviderAlphaVantage,
			RequiresExchange: true,
			Supported:        av,
			Formats: map[core.Exchange]string{
				core.ExchangeTSX: "{base}.TRT",
				core.ExchangeSS:  "{base}.SHH",
				core.ExchangeSZ:  "{base}.SHZ",
			},
		},
	}
}

// New builds a matrix from entries. Provider order is preserved.
func New(entries ...Entry) *Matrix {
	m := &Matrix{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if _, dup := m.entries[e.Provider]; !dup {
			m.order = append(m.order, e.Provider)
		}
		m.entries[e.Provider] = e
	}
	return m
}

// Default returns the matrix for the bundled providers.
func Default() *Matrix {
	return New(DefaultEntries()...)
}

// Parse splits a symbol into its base code and exchange. ok is false when
// the venue cannot be determined: an unknown suffix, or a bare 6-digit
// code whose prefix matches neither Shanghai nor Shenzhen. Other bare
// symbols default to NASDAQ.
func Parse(sym string) (base string, exchange core.Exchange, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(sym))

	if i := strings.LastIndex(s, "."); i >= 0 {
		b, suffix := s[:i], s[i+1:]
		if ex, found := suffixes[suffix]; found {
			return b, ex, true
		}
		return s, "", false
	}

	if symbol.IsDigits(s) {
		switch len(s) {
		case 4:
			return s, core.ExchangeHK, true
		case 6:
			switch {
			case strings.HasPrefix(s, "60"):
				return s, core.ExchangeSS, true
			case strings.HasPrefix(s, "00"), strings.HasPrefix(s, "30"):
				return s, core.ExchangeSZ, true
			}
			return s, "", false
		}
	}

	return s, core.ExchangeNASDAQ, true
}

// Providers returns the providers known to the matrix in table order.
func (m *Matrix) Providers() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Entry returns the table row for provider.
func (m *Matrix) Entry(provider string) (Entry, bool) {
	e, ok := m.entries[provider]
	return e, ok
}

// IsSupported reports whether provider can serve sym.
func (m *Matrix) IsSupported(sym, provider string) bool {
	e, found := m.entries[provider]
	if !found {
		return false
	}
	_, ex, ok := Parse(sym)
	if !ok {
		return !e.RequiresExchange
	}
	return e.Supported[ex]
}

// FormatFor returns sym spelled the way provider expects it. ok is false
// when provider does not support the symbol; callers must not dispatch then.
func (m *Matrix) FormatFor(sym, provider string) (string, bool) {
	if !m.IsSupported(sym, provider) {
		return "", false
	}
	base, ex, parsed := Parse(sym)
	if !parsed {
		return strings.ToUpper(strings.TrimSpace(sym)), true
	}
	tmpl, found := m.entries[provider].Formats[ex]
	if !found {
		return base, true
	}
	return strings.ReplaceAll(tmpl, "{base}", base), true
}

// SupportedProviders lists the providers able to serve sym in table order.
func (m *Matrix) SupportedProviders(sym string) []string {
	var out []string
	for _, p := range m.order {
		if m.IsSupported(sym, p) {
			out = append(out, p)
		}
	}
	return out
}

// Table returns the declared support flag for every (provider, exchange) pair.
func (m *Matrix) Table() map[string]map[core.Exchange]bool {
	out := make(map[string]map[core.Exchange]bool, len(m.entries))
	for p, e := range m.entries {
		row := make(map[core.Exchange]bool, len(e.Supported))
		for ex, v := range e.Supported {
			row[ex] = v
		}
		out[p] = row
	}
	return out
}
