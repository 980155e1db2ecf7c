// Package marketdata contains the historical market-data provider
// contracts and the HTTP clients implementing them (Stooq, TWSE, Yahoo
// Finance). Providers deliver a single historical price or rate for a
// ticker and date, or fail; callers treat every failure except
// cancellation as "unresolved".
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// ErrNotFound indicates the provider has no data for the requested
// ticker/date. Transient provider errors (timeout, rate limit) are
// reported as ordinary errors; the cache layer treats both the same.
var ErrNotFound = errors.New("market data not found")

// PricePoint is a single historical price observation. ActualDate is
// the trading day the price belongs to, which may be earlier than the
// requested date when markets were closed.
type PricePoint struct {
	Price      float64
	Currency   string
	ActualDate time.Time
}

// RatePoint is a single historical exchange-rate observation.
type RatePoint struct {
	Rate       float64
	ActualDate time.Time
}

// PriceProvider delivers historical stock prices.
type PriceProvider interface {
	// GetYearEndPrice returns the closing price on the last trading day
	// on or before Dec 31 of the given year.
	GetYearEndPrice(ctx context.Context, ticker string, year int) (PricePoint, error)

	// GetPriceOnDate returns the closing price on the nearest trading
	// day on or before the given date.
	GetPriceOnDate(ctx context.Context, ticker string, date time.Time) (PricePoint, error)

	// Source identifies the provider for cache provenance.
	Source() model.PriceSource
}

// FXProvider delivers historical exchange rates.
type FXProvider interface {
	// GetExchangeRate returns the from->to rate on the nearest trading
	// day on or before the given date.
	GetExchangeRate(ctx context.Context, from, to string, date time.Time) (RatePoint, error)

	Source() model.PriceSource
}

// Router selects the price provider for an instrument by market, the
// tagged-variant dispatch that replaces string sniffing at call sites.
// EU-listed individual prices have no automatic provider: Stooq does
// not cover Euronext and Yahoo coverage is spotty, so they fall back to
// Yahoo when available and otherwise require manual entry.
type Router struct {
	TWSE  PriceProvider
	Stooq PriceProvider
	Yahoo PriceProvider
}

// PriceProviderFor returns the provider responsible for the market, or
// false when the market has no automatic provider configured.
func (r Router) PriceProviderFor(market model.Market) (PriceProvider, bool) {
	switch market {
	case model.MarketTW:
		if r.TWSE != nil {
			return r.TWSE, true
		}
	case model.MarketEU:
		if r.Yahoo != nil {
			return r.Yahoo, true
		}
	default:
		if r.Stooq != nil {
			return r.Stooq, true
		}
	}
	return nil, false
}
