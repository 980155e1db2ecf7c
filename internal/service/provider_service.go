package service

import (
	"github.com/google/uuid"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
	"github.com/ycliang/portfolio-performance-engine/internal/secrets"
)

// ProviderConfigService manages stored market-data provider settings.
// API tokens are fernet-encrypted before they reach the repository.
type ProviderConfigService struct {
	configRepo *repository.ProviderConfigRepository
	box        *secrets.Box
}

// NewProviderConfigService creates a new ProviderConfigService. box may
// be nil when no encryption key is configured, which disables token
// storage.
func NewProviderConfigService(configRepo *repository.ProviderConfigRepository, box *secrets.Box) *ProviderConfigService {
	return &ProviderConfigService{configRepo: configRepo, box: box}
}

// SaveToken encrypts and stores a provider API token.
func (s *ProviderConfigService) SaveToken(provider model.PriceSource, token string, enabled bool) error {
	if s.box == nil {
		return apperrors.ErrMissingRequiredField
	}
	encrypted, err := s.box.Encrypt(token)
	if err != nil {
		return err
	}
	return s.configRepo.Upsert(model.ProviderConfig{
		ID:       uuid.New().String(),
		Provider: provider,
		APIToken: encrypted,
		Enabled:  enabled,
	})
}

// GetToken retrieves and decrypts a provider API token.
func (s *ProviderConfigService) GetToken(provider model.PriceSource) (string, error) {
	if s.box == nil {
		return "", apperrors.ErrProviderConfigNotFound
	}
	config, err := s.configRepo.Get(provider)
	if err != nil {
		return "", err
	}
	return s.box.Decrypt(config.APIToken)
}

// GetConfig retrieves provider settings without decrypting the token.
func (s *ProviderConfigService) GetConfig(provider model.PriceSource) (model.ProviderConfig, error) {
	return s.configRepo.Get(provider)
}
