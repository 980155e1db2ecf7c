package model

import "time"

// TransactionType classifies a stock transaction.
type TransactionType string

const (
	TransactionBuy        TransactionType = "BUY"
	TransactionSell       TransactionType = "SELL"
	TransactionSplit      TransactionType = "SPLIT"
	TransactionAdjustment TransactionType = "ADJUSTMENT"
)

// StockTransaction represents a single stock transaction for a portfolio.
// Raw fields (Shares, PricePerShare) are never mutated after creation;
// split-adjusted views are derived on read from the split list.
//
// ExchangeRate is nil when the rate still needs resolution through the
// transaction-date FX cache. A nil rate on a zero-FX market means an
// implicit rate of 1.
type StockTransaction struct {
	ID               string          `json:"id"`
	PortfolioID      string          `json:"portfolioId"`
	Date             time.Time       `json:"date"`
	Ticker           string          `json:"ticker"`
	Type             TransactionType `json:"type"`
	Shares           float64         `json:"shares"`
	PricePerShare    float64         `json:"pricePerShare"`
	Fees             float64         `json:"fees"`
	Market           Market          `json:"market"`
	ExchangeRate     *float64        `json:"exchangeRate,omitempty"`
	ExternallyFunded bool            `json:"externallyFunded"`
	Deleted          bool            `json:"-"`
	CreatedAt        time.Time       `json:"createdAt,omitempty"`
}

// TotalCostSource returns the transaction cost in the market's trading
// currency: shares * price + fees. Splits never change this value.
func (t StockTransaction) TotalCostSource() float64 {
	return t.Shares*t.PricePerShare + t.Fees
}

// TotalCostHome returns the cost converted to the home currency. The
// second return value is false when no exchange rate is stored and the
// market is not a zero-FX market for the given home currency.
func (t StockTransaction) TotalCostHome(homeCurrency string) (float64, bool) {
	rate, ok := t.EffectiveRate(homeCurrency)
	if !ok {
		return 0, false
	}
	return t.TotalCostSource() * rate, true
}

// EffectiveRate returns the exchange rate to apply for home-currency
// conversion: the stored rate if present, an implicit 1 on zero-FX
// markets, otherwise no rate.
func (t StockTransaction) EffectiveRate(homeCurrency string) (float64, bool) {
	if t.Market.IsZeroFX(homeCurrency) {
		return 1, true
	}
	if t.ExchangeRate != nil && *t.ExchangeRate > 0 {
		return *t.ExchangeRate, true
	}
	return 0, false
}

// IsCashFlow reports whether the transaction represents an external
// cash-flow event: money entering or leaving the portfolio, as opposed
// to an internal rebalance or a derived bookkeeping row.
func (t StockTransaction) IsCashFlow() bool {
	if t.Type != TransactionBuy && t.Type != TransactionSell {
		return false
	}
	return t.ExternallyFunded
}

// SignedCashFlowHome returns the signed home-currency cash flow for the
// transaction: positive for inflows (buys funded externally), negative
// for outflows (sells withdrawing funds). ok is false when FX is
// unresolved.
func (t StockTransaction) SignedCashFlowHome(homeCurrency string) (float64, bool) {
	cost, ok := t.TotalCostHome(homeCurrency)
	if !ok {
		return 0, false
	}
	if t.Type == TransactionSell {
		return -cost, true
	}
	return cost, true
}

// TransactionFilter narrows range queries over stock transactions.
type TransactionFilter struct {
	PortfolioID  string
	Ticker       string
	From         time.Time // zero value = unbounded
	To           time.Time // zero value = unbounded
	CashFlowOnly bool
}
