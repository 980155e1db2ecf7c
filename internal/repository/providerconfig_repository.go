package repository

import (
	"database/sql"
	"fmt"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// ProviderConfigRepository provides data access for the provider_config
// table. Tokens are stored already encrypted; this layer never sees
// plaintext.
type ProviderConfigRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewProviderConfigRepository creates a new ProviderConfigRepository with the provided database connection.
func NewProviderConfigRepository(db *sql.DB) *ProviderConfigRepository {
	return &ProviderConfigRepository{db: db}
}

func (r *ProviderConfigRepository) WithTx(tx *sql.Tx) *ProviderConfigRepository {
	return &ProviderConfigRepository{db: r.db, tx: tx}
}

func (r *ProviderConfigRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Get retrieves the configuration for a provider.
func (r *ProviderConfigRepository) Get(provider model.PriceSource) (model.ProviderConfig, error) {
	query := `
		SELECT id, provider, api_token, enabled, updated_at
		FROM provider_config
		WHERE provider = ?
	`
	rows, err := r.getQuerier().Query(query, string(provider))
	if err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to query provider_config table: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return model.ProviderConfig{}, fmt.Errorf("error iterating provider_config table: %w", err)
		}
		return model.ProviderConfig{}, apperrors.ErrProviderConfigNotFound
	}

	var c model.ProviderConfig
	var providerName string
	var updatedAt sql.NullString
	if err := rows.Scan(&c.ID, &providerName, &c.APIToken, &c.Enabled, &updatedAt); err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to scan provider_config results: %w", err)
	}
	c.Provider = model.PriceSource(providerName)
	if updatedAt.Valid {
		if parsed, err := ParseTime(updatedAt.String); err == nil {
			c.UpdatedAt = parsed
		}
	}
	return c, nil
}

// Upsert writes provider configuration, replacing any previous row for
// the same provider.
func (r *ProviderConfigRepository) Upsert(c model.ProviderConfig) error {
	query := `
		INSERT INTO provider_config (id, provider, api_token, enabled, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (provider) DO UPDATE SET
			api_token = excluded.api_token,
			enabled = excluded.enabled,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.getQuerier().Exec(query, c.ID, string(c.Provider), c.APIToken, c.Enabled); err != nil {
		return fmt.Errorf("failed to upsert provider_config row: %w", err)
	}
	return nil
}
