package compat

import (
	"fmt"

	"github.com/newthinker/datahub/internal/core"
)

// UnknownExchange is reported when a symbol's venue cannot be determined.
const UnknownExchange = "UNKNOWN"

// Report summarizes how each provider handles a symbol.
type Report struct {
	OriginalSymbol     string            `json:"original_symbol"`
	BaseSymbol         string            `json:"base_symbol"`
	Exchange           string            `json:"exchange"`
	SupportedProviders []string          `json:"supported_providers"`
	Formats            map[string]string `json:"formats"`
	Recommendations    []string          `json:"recommendations"`
}

// Report builds a compatibility report for sym.
func (m *Matrix) Report(sym string) Report {
	base, ex, ok := Parse(sym)
	exchange := UnknownExchange
	if ok {
		exchange = string(ex)
	}

	r := Report{
		OriginalSymbol:     sym,
		BaseSymbol:         base,
		Exchange:           exchange,
		SupportedProviders: m.SupportedProviders(sym),
		Formats:            make(map[string]string),
	}
	if r.SupportedProviders == nil {
		r.SupportedProviders = []string{}
	}

	supported := make(map[string]bool, len(r.SupportedProviders))
	for _, p := range r.SupportedProviders {
		supported[p] = true
		if f, fok := m.FormatFor(sym, p); fok {
			r.Formats[p] = f
		}
	}

	if supported[core.ProviderYahoo] {
		r.Recommendations = append(r.Recommendations,
			fmt.Sprintf("use %s as %q for market data and company profile", core.ProviderYahoo, r.Formats[core.ProviderYahoo]))
	}
	if _, known := m.entries[core.ProviderAlphaVantage]; known {
		if supported[core.ProviderAlphaVantage] {
			r.Recommendations = append(r.Recommendations,
				fmt.Sprintf("use %s as %q for sentiment news and detailed fundamentals", core.ProviderAlphaVantage, r.Formats[core.ProviderAlphaVantage]))
		} else {
			r.Recommendations = append(r.Recommendations,
				fmt.Sprintf("%s does not cover this exchange, use another source", core.ProviderAlphaVantage))
		}
	}
	if supported[core.ProviderGoogleNews] {
		switch ex {
		case core.ExchangeHK, core.ExchangeSS, core.ExchangeSZ:
			r.Recommendations = append(r.Recommendations,
				"news search may return mixed results, filter by company name")
		default:
			r.Recommendations = append(r.Recommendations,
				fmt.Sprintf("use %s for related news", core.ProviderGoogleNews))
		}
	}
	return r
}
