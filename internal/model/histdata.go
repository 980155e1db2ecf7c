package model

import "time"

// HistoricalDataType distinguishes the two kinds of year-end cache rows.
type HistoricalDataType string

const (
	DataTypeStockPrice   HistoricalDataType = "STOCK_PRICE"
	DataTypeExchangeRate HistoricalDataType = "EXCHANGE_RATE"
)

// PriceSource identifies where a cached value was obtained from.
type PriceSource string

const (
	SourceStooq  PriceSource = "STOOQ"
	SourceTWSE   PriceSource = "TWSE"
	SourceYahoo  PriceSource = "YAHOO"
	SourceManual PriceSource = "MANUAL"
)

// HistoricalYearEndData is an append-only cache row for a year-end stock
// price or exchange rate. Once a (dataType, ticker, year) key exists it
// is never overwritten through the service write path.
//
// ActualDate is the trading day the value was observed on (last trading
// day on or before Dec 31), kept separate from the requested year so
// staleness is explicit to callers.
type HistoricalYearEndData struct {
	ID         string             `json:"id"`
	DataType   HistoricalDataType `json:"dataType"`
	Ticker     string             `json:"ticker"` // symbol, or currency pair like "USD/TWD"
	Year       int                `json:"year"`
	Value      float64            `json:"value"`
	Currency   string             `json:"currency"`
	ActualDate time.Time          `json:"actualDate"`
	Source     PriceSource        `json:"source"`
	FetchedAt  time.Time          `json:"fetchedAt"`
}

// HistoricalExchangeRate is the transaction-date variant of the cache,
// keyed by the exact requested date instead of a year. Same immutability
// contract as HistoricalYearEndData.
type HistoricalExchangeRate struct {
	ID            string      `json:"id"`
	CurrencyPair  string      `json:"currencyPair"` // "FROM/TO"
	RequestedDate time.Time   `json:"requestedDate"`
	Rate          float64     `json:"rate"`
	ActualDate    time.Time   `json:"actualDate"`
	Source        PriceSource `json:"source"`
	FetchedAt     time.Time   `json:"fetchedAt"`
}

// Resolution is the two-case result of a cache lookup: either a resolved
// value with its provenance, or an unresolved marker the caller must
// surface as a missing input. It exists so "still needs auto-fill" is a
// type, not a nil convention.
type Resolution struct {
	Resolved   bool        `json:"resolved"`
	Value      float64     `json:"value,omitempty"`
	ActualDate time.Time   `json:"actualDate,omitempty"`
	Source     PriceSource `json:"source,omitempty"`
	FromCache  bool        `json:"fromCache,omitempty"`
}

// ResolvedValue builds a successful Resolution.
func ResolvedValue(value float64, actualDate time.Time, source PriceSource, fromCache bool) Resolution {
	return Resolution{
		Resolved:   true,
		Value:      value,
		ActualDate: actualDate,
		Source:     source,
		FromCache:  fromCache,
	}
}

// UnresolvedValue builds the unresolved marker.
func UnresolvedValue() Resolution {
	return Resolution{}
}

// CurrencyPair formats a from/to currency pair the way cache rows key it.
func CurrencyPair(from, to string) string {
	return from + "/" + to
}
