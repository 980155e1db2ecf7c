// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/ycliang/portfolio-performance-engine/internal/api/response"
)

// APIKeyMiddleware guards internal maintenance endpoints with a shared
// secret. The expected key comes from the INTERNAL_API_KEY environment
// variable; clients send it in the X-API-Key header. When no key is
// configured, all requests are rejected.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("INTERNAL_API_KEY")
		if expected == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "API key not configured")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
