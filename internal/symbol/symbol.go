// Package symbol canonicalizes raw ticker strings.
package symbol

import (
	"strings"
)

// Exchange suffixes appended to bare numeric codes.
const (
	SuffixHK = ".HK"
	SuffixSS = ".SS"
	SuffixSZ = ".SZ"
)

// Normalize converts a raw ticker into its exchange-qualified form.
// "0700" -> "0700.HK", "600519" -> "600519.SS", "000001" -> "000001.SZ", " aapl " -> "AAPL".
//
// Inference from a bare numeric code is best-effort: a 6-digit code with a
// prefix other than 60, 00 or 30 is returned bare rather than guessed.
func Normalize(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !IsDigits(s) {
		return s
	}

	switch len(s) {
	case 4:
		return s + SuffixHK
	case 6:
		switch {
		case strings.HasPrefix(s, "60"):
			return s + SuffixSS
		case strings.HasPrefix(s, "00"), strings.HasPrefix(s, "30"):
			return s + SuffixSZ
		}
	}
	return s
}

// IsDigits reports whether s is non-empty and all ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
