package model

import "time"

// StockSplit records a share split for a symbol on a market. Splits are
// global (not per-user) and retroactively reinterpret every transaction
// for the symbol dated before EffectiveDate. Transaction rows themselves
// are never rewritten.
type StockSplit struct {
	ID            string    `json:"id"`
	Symbol        string    `json:"symbol"`
	Market        Market    `json:"market"`
	EffectiveDate time.Time `json:"effectiveDate"`
	Ratio         float64   `json:"ratio"` // 4 means 1 share becomes 4
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// AdjustedTransaction is a read-side view of a transaction with split
// adjustment applied. Raw fields stay available so the adjustment is
// always recomputable and therefore idempotent.
type AdjustedTransaction struct {
	StockTransaction
	AdjustedShares float64 `json:"adjustedShares"`
	AdjustedPrice  float64 `json:"adjustedPrice"`
	SplitRatio     float64 `json:"splitRatioApplied"` // cumulative; 1 when no split applies
}
