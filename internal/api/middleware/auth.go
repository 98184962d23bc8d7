package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/newthinker/datahub/internal/api/response"
	"github.com/newthinker/datahub/internal/core"
)

// APIKeyAuth returns middleware that validates X-API-Key header.
// If apiKey is empty, authentication is disabled.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth if no key configured
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get("X-API-Key")
			if providedKey == "" {
				providedKey = r.URL.Query().Get("api_key")
			}
			if providedKey == "" {
				response.Error(w, http.StatusUnauthorized,
					core.NewError(core.ErrUnauthorized, "api key required").WithSuggestion("send the X-API-Key header"))
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				response.Error(w, http.StatusUnauthorized,
					core.NewError(core.ErrUnauthorized, "api key invalid"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
