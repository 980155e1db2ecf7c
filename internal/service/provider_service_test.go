package service_test

import (
	"errors"
	"testing"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
	"github.com/ycliang/portfolio-performance-engine/internal/secrets"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
	"github.com/ycliang/portfolio-performance-engine/internal/testutil"
)

const testFernetKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="

// TestProviderConfigService tests encrypted provider token storage.
//
// WHY: Tokens must never reach the database in plaintext, and an
// unconfigured encryption key disables storage instead of silently
// writing unencrypted values.
func TestProviderConfigService(t *testing.T) {
	t.Run("round-trips a token through encryption", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		box, err := secrets.NewBox(testFernetKey)
		if err != nil {
			t.Fatalf("NewBox() returned unexpected error: %v", err)
		}
		repo := repository.NewProviderConfigRepository(db)
		svc := service.NewProviderConfigService(repo, box)

		if err := svc.SaveToken(model.SourceYahoo, "secret-token", true); err != nil {
			t.Fatalf("SaveToken() returned unexpected error: %v", err)
		}

		// The stored value is ciphertext.
		config, err := svc.GetConfig(model.SourceYahoo)
		if err != nil {
			t.Fatalf("GetConfig() returned unexpected error: %v", err)
		}
		if config.APIToken == "secret-token" {
			t.Error("Expected the stored token to be encrypted")
		}
		if !config.Enabled {
			t.Error("Expected the provider to be enabled")
		}

		token, err := svc.GetToken(model.SourceYahoo)
		if err != nil {
			t.Fatalf("GetToken() returned unexpected error: %v", err)
		}
		if token != "secret-token" {
			t.Errorf("Expected round-trip, got %q", token)
		}
	})

	t.Run("saving again replaces the stored token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		box, err := secrets.NewBox(testFernetKey)
		if err != nil {
			t.Fatalf("NewBox() returned unexpected error: %v", err)
		}
		svc := service.NewProviderConfigService(repository.NewProviderConfigRepository(db), box)

		if err := svc.SaveToken(model.SourceYahoo, "old-token", true); err != nil {
			t.Fatalf("SaveToken() returned unexpected error: %v", err)
		}
		if err := svc.SaveToken(model.SourceYahoo, "new-token", false); err != nil {
			t.Fatalf("SaveToken() returned unexpected error: %v", err)
		}

		token, err := svc.GetToken(model.SourceYahoo)
		if err != nil {
			t.Fatalf("GetToken() returned unexpected error: %v", err)
		}
		if token != "new-token" {
			t.Errorf("Expected new-token, got %q", token)
		}
	})

	t.Run("nil box disables token storage", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := service.NewProviderConfigService(repository.NewProviderConfigRepository(db), nil)

		if err := svc.SaveToken(model.SourceYahoo, "secret-token", true); !errors.Is(err, apperrors.ErrMissingRequiredField) {
			t.Errorf("Expected ErrMissingRequiredField, got: %v", err)
		}
		if _, err := svc.GetToken(model.SourceYahoo); !errors.Is(err, apperrors.ErrProviderConfigNotFound) {
			t.Errorf("Expected ErrProviderConfigNotFound, got: %v", err)
		}
	})

	t.Run("unknown provider is not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		box, err := secrets.NewBox(testFernetKey)
		if err != nil {
			t.Fatalf("NewBox() returned unexpected error: %v", err)
		}
		svc := service.NewProviderConfigService(repository.NewProviderConfigRepository(db), box)

		if _, err := svc.GetToken(model.SourceYahoo); !errors.Is(err, apperrors.ErrProviderConfigNotFound) {
			t.Errorf("Expected ErrProviderConfigNotFound, got: %v", err)
		}
	})
}
