package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// PortfolioBuilder provides a fluent interface for creating test portfolios.
//
// Example usage:
//
//	// Simple creation with defaults
//	portfolio := testutil.NewPortfolio().Build(t, db)
//
//	// Customized portfolio
//	portfolio := testutil.NewPortfolio().
//	    WithUserID(userID).
//	    WithHomeCurrency("TWD").
//	    Build(t, db)
type PortfolioBuilder struct {
	ID           string
	UserID       string
	Name         string
	BaseCurrency string
	HomeCurrency string
}

// NewPortfolio creates a PortfolioBuilder with sensible defaults.
func NewPortfolio() *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:           MakeID(),
		UserID:       MakeID(),
		Name:         "Test Portfolio",
		BaseCurrency: "USD",
		HomeCurrency: "USD",
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// WithUserID sets the owning user.
func (b *PortfolioBuilder) WithUserID(userID string) *PortfolioBuilder {
	b.UserID = userID
	return b
}

// WithName sets a custom name.
func (b *PortfolioBuilder) WithName(name string) *PortfolioBuilder {
	b.Name = name
	return b
}

// WithBaseCurrency sets the base currency.
func (b *PortfolioBuilder) WithBaseCurrency(currency string) *PortfolioBuilder {
	b.BaseCurrency = currency
	return b
}

// WithHomeCurrency sets the home currency.
func (b *PortfolioBuilder) WithHomeCurrency(currency string) *PortfolioBuilder {
	b.HomeCurrency = currency
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, user_id, name, base_currency, home_currency)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.UserID, b.Name, b.BaseCurrency, b.HomeCurrency)
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:           b.ID,
		UserID:       b.UserID,
		Name:         b.Name,
		BaseCurrency: b.BaseCurrency,
		HomeCurrency: b.HomeCurrency,
	}
}

// TransactionBuilder provides a fluent interface for creating test
// stock transactions.
//
// Example usage:
//
//	tx := testutil.NewTransaction(portfolio.ID).
//	    WithTicker("AAPL").
//	    WithDate("2024-03-15").
//	    WithShares(10).
//	    ExternallyFunded().
//	    Build(t, db)
type TransactionBuilder struct {
	ID               string
	PortfolioID      string
	Date             string
	Ticker           string
	Type             model.TransactionType
	Shares           float64
	PricePerShare    float64
	Fees             float64
	Market           model.Market
	ExchangeRate     *float64
	IsExternalFunded bool
	Deleted          bool
}

// NewTransaction creates a TransactionBuilder with sensible defaults: a
// US-market buy of 10 shares at 100.
func NewTransaction(portfolioID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:            MakeID(),
		PortfolioID:   portfolioID,
		Date:          "2024-01-15",
		Ticker:        "AAPL",
		Type:          model.TransactionBuy,
		Shares:        10,
		PricePerShare: 100,
		Market:        model.MarketUS,
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithDate sets the transaction date (YYYY-MM-DD).
func (b *TransactionBuilder) WithDate(date string) *TransactionBuilder {
	b.Date = date
	return b
}

// WithTicker sets the ticker symbol.
func (b *TransactionBuilder) WithTicker(ticker string) *TransactionBuilder {
	b.Ticker = ticker
	return b
}

// WithType sets the transaction type.
func (b *TransactionBuilder) WithType(txType model.TransactionType) *TransactionBuilder {
	b.Type = txType
	return b
}

// WithShares sets the share count.
func (b *TransactionBuilder) WithShares(shares float64) *TransactionBuilder {
	b.Shares = shares
	return b
}

// WithPrice sets the per-share price.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.PricePerShare = price
	return b
}

// WithFees sets the transaction fees.
func (b *TransactionBuilder) WithFees(fees float64) *TransactionBuilder {
	b.Fees = fees
	return b
}

// WithMarket sets the market.
func (b *TransactionBuilder) WithMarket(market model.Market) *TransactionBuilder {
	b.Market = market
	return b
}

// WithExchangeRate sets a stored exchange rate.
func (b *TransactionBuilder) WithExchangeRate(rate float64) *TransactionBuilder {
	b.ExchangeRate = &rate
	return b
}

// ExternallyFunded marks the transaction as an external cash-flow event.
func (b *TransactionBuilder) ExternallyFunded() *TransactionBuilder {
	b.IsExternalFunded = true
	return b
}

// SoftDeleted marks the transaction as deleted.
func (b *TransactionBuilder) SoftDeleted() *TransactionBuilder {
	b.Deleted = true
	return b
}

// Build creates the transaction in the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.StockTransaction {
	t.Helper()

	query := `
		INSERT INTO stock_transaction
			(id, portfolio_id, date, ticker, type, shares, price_per_share, fees, market, exchange_rate, externally_funded, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.PortfolioID, b.Date, b.Ticker, string(b.Type),
		b.Shares, b.PricePerShare, b.Fees, string(b.Market),
		b.ExchangeRate, b.IsExternalFunded, b.Deleted,
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	date, err := time.Parse("2006-01-02", b.Date)
	if err != nil {
		t.Fatalf("Invalid test transaction date %q: %v", b.Date, err)
	}

	return model.StockTransaction{
		ID:               b.ID,
		PortfolioID:      b.PortfolioID,
		Date:             date,
		Ticker:           b.Ticker,
		Type:             b.Type,
		Shares:           b.Shares,
		PricePerShare:    b.PricePerShare,
		Fees:             b.Fees,
		Market:           b.Market,
		ExchangeRate:     b.ExchangeRate,
		ExternallyFunded: b.IsExternalFunded,
		Deleted:          b.Deleted,
	}
}

// SplitBuilder provides a fluent interface for creating test stock splits.
type SplitBuilder struct {
	ID            string
	Symbol        string
	Market        model.Market
	EffectiveDate string
	Ratio         float64
}

// NewSplit creates a SplitBuilder with sensible defaults: a 1-to-4
// split of AAPL on the US market.
func NewSplit() *SplitBuilder {
	return &SplitBuilder{
		ID:            MakeID(),
		Symbol:        "AAPL",
		Market:        model.MarketUS,
		EffectiveDate: "2024-06-01",
		Ratio:         4,
	}
}

// WithSymbol sets the symbol.
func (b *SplitBuilder) WithSymbol(symbol string) *SplitBuilder {
	b.Symbol = symbol
	return b
}

// WithMarket sets the market.
func (b *SplitBuilder) WithMarket(market model.Market) *SplitBuilder {
	b.Market = market
	return b
}

// WithEffectiveDate sets the effective date (YYYY-MM-DD).
func (b *SplitBuilder) WithEffectiveDate(date string) *SplitBuilder {
	b.EffectiveDate = date
	return b
}

// WithRatio sets the split ratio.
func (b *SplitBuilder) WithRatio(ratio float64) *SplitBuilder {
	b.Ratio = ratio
	return b
}

// Build creates the split in the database and returns it.
func (b *SplitBuilder) Build(t *testing.T, db *sql.DB) model.StockSplit {
	t.Helper()

	query := `
		INSERT INTO stock_split (id, symbol, market, effective_date, ratio)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Symbol, string(b.Market), b.EffectiveDate, b.Ratio)
	if err != nil {
		t.Fatalf("Failed to create test split: %v", err)
	}

	effectiveDate, err := time.Parse("2006-01-02", b.EffectiveDate)
	if err != nil {
		t.Fatalf("Invalid test split date %q: %v", b.EffectiveDate, err)
	}

	return model.StockSplit{
		ID:            b.ID,
		Symbol:        b.Symbol,
		Market:        b.Market,
		EffectiveDate: effectiveDate,
		Ratio:         b.Ratio,
	}
}
