package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ycliang/portfolio-performance-engine/internal/api/middleware"
)

func protectedHandler() (http.Handler, *bool) {
	reached := false
	handler := middleware.APIKeyMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))
	return handler, &reached
}

// TestAPIKeyMiddleware tests the shared-secret guard on internal
// endpoints.
//
// WHY: Internal endpoints mutate cached market data; an unconfigured
// key must fail closed, never open.
func TestAPIKeyMiddleware(t *testing.T) {
	t.Run("rejects when no key is configured", func(t *testing.T) {
		t.Setenv("INTERNAL_API_KEY", "")

		handler, reached := protectedHandler()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/internal/refresh-rates", nil)
		req.Header.Set("X-API-Key", "anything")

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
		if *reached {
			t.Error("Expected the handler not to run")
		}
	})

	t.Run("rejects a missing key", func(t *testing.T) {
		t.Setenv("INTERNAL_API_KEY", "secret")

		handler, reached := protectedHandler()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/internal/refresh-rates", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
		if *reached {
			t.Error("Expected the handler not to run")
		}
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		t.Setenv("INTERNAL_API_KEY", "secret")

		handler, reached := protectedHandler()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/internal/refresh-rates", nil)
		req.Header.Set("X-API-Key", "wrong")

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
		if *reached {
			t.Error("Expected the handler not to run")
		}
	})

	t.Run("accepts the configured key", func(t *testing.T) {
		t.Setenv("INTERNAL_API_KEY", "secret")

		handler, reached := protectedHandler()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/internal/refresh-rates", nil)
		req.Header.Set("X-API-Key", "secret")

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", rec.Code)
		}
		if !*reached {
			t.Error("Expected the handler to run")
		}
	})
}
