package model

import "time"

// ProviderConfig stores per-provider settings. APIToken is kept
// fernet-encrypted at rest; the repository hands it out still encrypted
// and the secrets box decrypts at point of use.
type ProviderConfig struct {
	ID        string      `json:"id"`
	Provider  PriceSource `json:"provider"`
	APIToken  string      `json:"-"`
	Enabled   bool        `json:"enabled"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
