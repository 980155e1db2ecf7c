package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/marketdata"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
)

// FakePriceProvider is a configurable in-memory PriceProvider. Prices
// are keyed by ticker; lookups for unknown tickers return
// marketdata.ErrNotFound. Calls counts requests so tests can assert the
// cache short-circuits repeat lookups.
type FakePriceProvider struct {
	mu       sync.Mutex
	Prices   map[string]marketdata.PricePoint
	Err      error
	SourceID model.PriceSource
	Calls    int
}

// NewFakePriceProvider creates an empty FakePriceProvider reporting the
// given source.
func NewFakePriceProvider(source model.PriceSource) *FakePriceProvider {
	return &FakePriceProvider{
		Prices:   make(map[string]marketdata.PricePoint),
		SourceID: source,
	}
}

// SetPrice registers a price for a ticker.
func (f *FakePriceProvider) SetPrice(ticker string, point marketdata.PricePoint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prices[ticker] = point
}

// CallCount returns the number of lookups served.
func (f *FakePriceProvider) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

func (f *FakePriceProvider) lookup(ctx context.Context, ticker string) (marketdata.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return marketdata.PricePoint{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++

	if f.Err != nil {
		return marketdata.PricePoint{}, f.Err
	}
	point, ok := f.Prices[ticker]
	if !ok {
		return marketdata.PricePoint{}, marketdata.ErrNotFound
	}
	return point, nil
}

func (f *FakePriceProvider) GetYearEndPrice(ctx context.Context, ticker string, _ int) (marketdata.PricePoint, error) {
	return f.lookup(ctx, ticker)
}

func (f *FakePriceProvider) GetPriceOnDate(ctx context.Context, ticker string, _ time.Time) (marketdata.PricePoint, error) {
	return f.lookup(ctx, ticker)
}

func (f *FakePriceProvider) Source() model.PriceSource {
	return f.SourceID
}

// FakeFXProvider is a configurable in-memory FXProvider keyed by
// currency pair ("FROM/TO").
type FakeFXProvider struct {
	mu       sync.Mutex
	Rates    map[string]marketdata.RatePoint
	Err      error
	SourceID model.PriceSource
	Calls    int
}

// NewFakeFXProvider creates an empty FakeFXProvider reporting the given
// source.
func NewFakeFXProvider(source model.PriceSource) *FakeFXProvider {
	return &FakeFXProvider{
		Rates:    make(map[string]marketdata.RatePoint),
		SourceID: source,
	}
}

// SetRate registers a rate for a currency pair.
func (f *FakeFXProvider) SetRate(from, to string, point marketdata.RatePoint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Rates[model.CurrencyPair(from, to)] = point
}

// CallCount returns the number of lookups served.
func (f *FakeFXProvider) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

func (f *FakeFXProvider) GetExchangeRate(ctx context.Context, from, to string, _ time.Time) (marketdata.RatePoint, error) {
	if err := ctx.Err(); err != nil {
		return marketdata.RatePoint{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++

	if f.Err != nil {
		return marketdata.RatePoint{}, f.Err
	}
	point, ok := f.Rates[model.CurrencyPair(from, to)]
	if !ok {
		return marketdata.RatePoint{}, marketdata.ErrNotFound
	}
	return point, nil
}

func (f *FakeFXProvider) Source() model.PriceSource {
	return f.SourceID
}
