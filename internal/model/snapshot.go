package model

import "time"

// TransactionPortfolioSnapshot captures portfolio valuation in home
// currency immediately before and after a cash-flow-bearing transaction.
// One row per transaction; recomputed whenever the transaction or
// anything affecting valuation before it changes, deleted with the
// transaction.
type TransactionPortfolioSnapshot struct {
	ID            string    `json:"id"`
	PortfolioID   string    `json:"portfolioId"`
	TransactionID string    `json:"transactionId"`
	Date          time.Time `json:"date"`
	ValueBefore   float64   `json:"valueBefore"`
	ValueAfter    float64   `json:"valueAfter"`
	CalculatedAt  time.Time `json:"calculatedAt,omitempty"`
}
