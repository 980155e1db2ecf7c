package model

import "time"

// Portfolio represents a portfolio from the database. Identity fields
// (ID, UserID) are immutable; name and currencies are metadata.
type Portfolio struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	BaseCurrency string    `json:"baseCurrency"`
	HomeCurrency string    `json:"homeCurrency"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// PortfolioFilter for querying portfolios
type PortfolioFilter struct {
	UserID string
}
