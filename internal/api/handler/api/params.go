// internal/api/handler/api/params.go
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/datahub/internal/api/response"
	"github.com/newthinker/datahub/internal/core"
	"github.com/newthinker/datahub/internal/symbol"
	"github.com/newthinker/datahub/internal/unified"
)

// Request defaults.
const (
	DefaultNewsDays  = 7
	DefaultNewsLimit = 10
	MaxNewsLimit     = 100
)

// symbolParam returns the normalized symbol query parameter.
func symbolParam(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("symbol"))
	if raw == "" {
		return "", core.NewError(core.ErrInvalidRequest, "symbol is required").
			WithSuggestion("pass ?symbol=AAPL, 0700.HK or 600519")
	}
	return symbol.Normalize(raw), nil
}

func dateParam(r *http.Request, key string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	t, err := time.ParseInLocation(core.DateLayout, v, time.Local)
	if err != nil {
		return time.Time{}, core.NewError(core.ErrInvalidRequest, "%s must be YYYY-MM-DD, got %q", key, v)
	}
	return t, nil
}

func intParam(r *http.Request, key string, def, max int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, core.NewError(core.ErrInvalidRequest, "%s must be a positive integer, got %q", key, v)
	}
	if max > 0 && n > max {
		n = max
	}
	return n, nil
}

func boolParam(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func sourceParam(r *http.Request) string {
	if s := strings.TrimSpace(r.URL.Query().Get("source")); s != "" {
		return strings.ToLower(s)
	}
	return unified.AutoSource
}

// writeError renders err. Exhaustion envelopes are rendered as data, a
// singleton list for list endpoints and the object itself otherwise.
func writeError(w http.ResponseWriter, err error, asList bool) {
	var env *unified.ErrorEnvelope
	if errors.As(err, &env) {
		if asList {
			response.JSON(w, http.StatusBadGateway, []*unified.ErrorEnvelope{env})
			return
		}
		response.JSON(w, http.StatusBadGateway, env)
		return
	}
	response.Error(w, response.StatusFor(err), err)
}
