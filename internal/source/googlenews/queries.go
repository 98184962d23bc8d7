package googlenews

import (
	"strings"
)

// maxQueries bounds how many search variants run per request.
const maxQueries = 4

// buildQueries returns exchange-aware search variants. HK and mainland
// symbols use quoted exact-match forms to keep unrelated numeric hits out.
func buildQueries(symbol string) []string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	base := sym
	if i := strings.LastIndex(sym, "."); i > 0 {
		base = sym[:i]
	}

	var queries []string
	switch {
	case strings.HasSuffix(sym, ".HK"):
		queries = []string{
			`"` + sym + `" stock Hong Kong`,
			`"` + base + `.HK" earnings`,
			`"` + sym + `" HKEX`,
			base + " HK stock news",
			"Hong Kong stock " + base,
		}
	case strings.HasSuffix(sym, ".SS"), strings.HasSuffix(sym, ".SZ"):
		queries = []string{
			`"` + sym + `" stock Shanghai`,
			`"` + sym + `" stock Shenzhen`,
			`"` + sym + `" A股`,
			sym + " 股票",
		}
	default:
		queries = []string{
			`"` + sym + `" stock`,
			`"` + sym + `" earnings`,
			`"` + sym + `" news`,
			sym + " stock market",
		}
	}

	if len(queries) > maxQueries {
		queries = queries[:maxQueries]
	}
	return queries
}
