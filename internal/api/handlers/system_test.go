package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ycliang/portfolio-performance-engine/internal/api/handlers"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
	"github.com/ycliang/portfolio-performance-engine/internal/testutil"
	"github.com/ycliang/portfolio-performance-engine/internal/version"
)

// TestSystemHandler_Health tests the health endpoint against a live and
// a closed database handle.
func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy database answers 200", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := handlers.NewSystemHandler(service.NewSystemService(db))

		rec := httptest.NewRecorder()
		handler.Health(rec, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var body handlers.HealthResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if body.Status != "healthy" || body.Database != "connected" {
			t.Errorf("Expected healthy/connected, got %+v", body)
		}
	})

	t.Run("closed database answers 503", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		db.Close()
		handler := handlers.NewSystemHandler(service.NewSystemService(db))

		rec := httptest.NewRecorder()
		handler.Health(rec, httptest.NewRequest(http.MethodGet, "/api/system/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d", rec.Code)
		}
	})
}

// TestSystemHandler_Version tests the version endpoint.
func TestSystemHandler_Version(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := handlers.NewSystemHandler(service.NewSystemService(db))

	rec := httptest.NewRecorder()
	handler.Version(rec, httptest.NewRequest(http.MethodGet, "/api/system/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var info model.VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.Version != version.Version {
		t.Errorf("Expected version %s, got %s", version.Version, info.Version)
	}
	if info.GoVersion == "" {
		t.Error("Expected a Go version")
	}
}
