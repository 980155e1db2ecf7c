package model_test

import (
	"testing"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// TestStockTransaction_EffectiveRate tests the conversion-rate decision
// ladder: implicit 1 on zero-FX markets, stored rate when present,
// otherwise unresolved.
//
// WHY: Every home-currency figure in the system goes through this one
// method; the unresolved case is what triggers FX auto-fill.
func TestStockTransaction_EffectiveRate(t *testing.T) {
	rate := 1.27

	t.Run("zero-FX market implies rate 1", func(t *testing.T) {
		tx := model.StockTransaction{Market: model.MarketUS}
		got, ok := tx.EffectiveRate("USD")
		if !ok || got != 1 {
			t.Errorf("Expected (1, true), got (%v, %v)", got, ok)
		}
	})

	t.Run("stored rate wins on foreign markets", func(t *testing.T) {
		tx := model.StockTransaction{Market: model.MarketUK, ExchangeRate: &rate}
		got, ok := tx.EffectiveRate("USD")
		if !ok || got != 1.27 {
			t.Errorf("Expected (1.27, true), got (%v, %v)", got, ok)
		}
	})

	t.Run("foreign market without a rate is unresolved", func(t *testing.T) {
		tx := model.StockTransaction{Market: model.MarketUK}
		if _, ok := tx.EffectiveRate("USD"); ok {
			t.Error("Expected no effective rate")
		}
	})

	t.Run("non-positive stored rate is unresolved", func(t *testing.T) {
		zero := 0.0
		tx := model.StockTransaction{Market: model.MarketUK, ExchangeRate: &zero}
		if _, ok := tx.EffectiveRate("USD"); ok {
			t.Error("Expected no effective rate for a zero rate")
		}
	})
}

// TestStockTransaction_IsCashFlow tests external cash-flow
// classification.
//
// WHY: Only externally funded buys and sells move money across the
// portfolio boundary; everything else must stay out of Dietz, TWR and
// XIRR series.
func TestStockTransaction_IsCashFlow(t *testing.T) {
	cases := []struct {
		name     string
		txType   model.TransactionType
		external bool
		want     bool
	}{
		{"externally funded buy", model.TransactionBuy, true, true},
		{"externally funded sell", model.TransactionSell, true, true},
		{"internally funded buy", model.TransactionBuy, false, false},
		{"split row", model.TransactionSplit, true, false},
		{"adjustment row", model.TransactionAdjustment, true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := model.StockTransaction{Type: tc.txType, ExternallyFunded: tc.external}
			if got := tx.IsCashFlow(); got != tc.want {
				t.Errorf("IsCashFlow() = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestStockTransaction_SignedCashFlowHome tests sign conventions for
// the period cash-flow series.
func TestStockTransaction_SignedCashFlowHome(t *testing.T) {
	buy := model.StockTransaction{
		Type:          model.TransactionBuy,
		Shares:        10,
		PricePerShare: 100,
		Fees:          5,
		Market:        model.MarketUS,
	}
	got, ok := buy.SignedCashFlowHome("USD")
	if !ok || got != 1005 {
		t.Errorf("Expected (1005, true), got (%v, %v)", got, ok)
	}

	sell := buy
	sell.Type = model.TransactionSell
	got, ok = sell.SignedCashFlowHome("USD")
	if !ok || got != -1005 {
		t.Errorf("Expected (-1005, true), got (%v, %v)", got, ok)
	}
}

// TestMissingPrice_DedupKey tests the missing-input dedup rule.
//
// WHY: The same unresolved ticker reported from several portfolios
// must collapse to one actionable entry regardless of letter case.
func TestMissingPrice_DedupKey(t *testing.T) {
	date := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	a := model.MissingPrice{Ticker: "AAPL", Type: model.MissingYearEndPrice, Date: date}
	b := model.MissingPrice{Ticker: "aapl", Type: model.MissingYearEndPrice, Date: date}
	if a.DedupKey() != b.DedupKey() {
		t.Error("Expected case-insensitive ticker keys to match")
	}

	c := model.MissingPrice{Ticker: "AAPL", Type: model.MissingYearStartPrice, Date: date}
	if a.DedupKey() == c.DedupKey() {
		t.Error("Expected different types to produce different keys")
	}

	d := a
	d.Date = date.AddDate(0, 0, -1)
	if a.DedupKey() == d.DedupKey() {
		t.Error("Expected different dates to produce different keys")
	}
}
