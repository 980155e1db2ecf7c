package model

import (
	"strings"
	"time"
)

// MissingPriceType labels what kind of input could not be resolved.
type MissingPriceType string

const (
	MissingYearStartPrice MissingPriceType = "YEAR_START_PRICE"
	MissingYearEndPrice   MissingPriceType = "YEAR_END_PRICE"
	MissingExchangeRate   MissingPriceType = "EXCHANGE_RATE"
)

// MissingPrice identifies one unresolved input of a performance
// calculation: which ticker (or currency pair), which kind of value, and
// for which date. Missing inputs are reported, never raised as errors.
type MissingPrice struct {
	Ticker string           `json:"ticker"`
	Type   MissingPriceType `json:"type"`
	Date   time.Time        `json:"date"`
}

// DedupKey collapses case-insensitively equal missing-price entries:
// "AAPL"/"YearEnd" and "aapl"/"yearend" on the same date are one entry.
func (m MissingPrice) DedupKey() string {
	return strings.ToUpper(m.Ticker) + "|" + strings.ToUpper(string(m.Type)) + "|" + m.Date.Format("2006-01-02")
}

// MissingRate identifies a transaction whose cash flow was excluded from
// an XIRR series because its exchange rate could not be auto-filled.
type MissingRate struct {
	TransactionID string    `json:"transactionId"`
	Ticker        string    `json:"ticker"`
	CurrencyPair  string    `json:"currencyPair"`
	Date          time.Time `json:"date"`
}

// YearPerformance is the result of a per-portfolio year calculation.
// Returns are fractional (0.125 = 12.5%); a nil return means the value
// is undefined for the inputs (zero or negative denominator).
//
// IsComplete is false when any required price or rate was unresolved;
// the MissingPrices list then tells the caller what to supply manually.
type YearPerformance struct {
	PortfolioID   string         `json:"portfolioId"`
	Year          int            `json:"year"`
	StartValue    float64        `json:"startValue"`
	EndValue      float64        `json:"endValue"`
	NetCashFlow   float64        `json:"netCashFlow"`
	ModifiedDietz *float64       `json:"modifiedDietz"`
	TimeWeighted  *float64       `json:"timeWeighted"`
	IsComplete    bool           `json:"isComplete"`
	MissingPrices []MissingPrice `json:"missingPrices"`
}

// AggregatePerformance combines per-currency return series across all of
// a user's portfolios. Portfolios sharing a home currency contribute to
// one combined series.
type AggregatePerformance struct {
	Year          int                         `json:"year"`
	ByCurrency    map[string]*YearPerformance `json:"byCurrency"`
	MissingPrices []MissingPrice              `json:"missingPrices"`
	IsComplete    bool                        `json:"isComplete"`
}

// XIRRResult reports the internal rate of return over a portfolio's
// dated cash flows, alongside the transactions excluded because FX
// auto-fill failed.
type XIRRResult struct {
	PortfolioID          string        `json:"portfolioId"`
	AsOf                 time.Time     `json:"asOf"`
	Rate                 *float64      `json:"rate"` // annualized, fractional
	CashFlowCount        int           `json:"cashFlowCount"`
	MissingExchangeRates []MissingRate `json:"missingExchangeRates"`
}
