package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/marketdata"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
)

// HistoricalDataService orchestrates the lazily-populated, immutable
// market-data caches: look up the store, fall back to the provider for
// the instrument class, persist on success, and report everything else
// as unresolved. Provider and transport failures never escape this
// boundary as errors; only storage failures and cancellation do.
type HistoricalDataService struct {
	yearEndRepo *repository.YearEndDataRepository
	fxRateRepo  *repository.FXRateCacheRepository
	providers   marketdata.Router
	fxProvider  marketdata.FXProvider
}

// NewHistoricalDataService creates a new HistoricalDataService with the
// provided repositories and provider clients.
func NewHistoricalDataService(
	yearEndRepo *repository.YearEndDataRepository,
	fxRateRepo *repository.FXRateCacheRepository,
	providers marketdata.Router,
	fxProvider marketdata.FXProvider,
) *HistoricalDataService {
	return &HistoricalDataService{
		yearEndRepo: yearEndRepo,
		fxRateRepo:  fxRateRepo,
		providers:   providers,
		fxProvider:  fxProvider,
	}
}

// GetOrFetchYearEndPrice resolves the closing price for a ticker on the
// last trading day of the given year: cache first, then the provider
// for the ticker's market. EU individual prices have no automatic
// provider and stay unresolved until entered manually.
func (s *HistoricalDataService) GetOrFetchYearEndPrice(ctx context.Context, ticker string, market model.Market, year int) (model.Resolution, error) {
	cached, err := s.yearEndRepo.Get(model.DataTypeStockPrice, ticker, year)
	if err == nil {
		return model.ResolvedValue(cached.Value, cached.ActualDate, cached.Source, true), nil
	}
	if !errors.Is(err, apperrors.ErrCacheEntryNotFound) {
		return model.UnresolvedValue(), err
	}

	provider, ok := s.providers.PriceProviderFor(market)
	if !ok {
		return model.UnresolvedValue(), nil
	}

	point, err := provider.GetYearEndPrice(ctx, ticker, year)
	if err != nil {
		if ctx.Err() != nil {
			return model.UnresolvedValue(), ctx.Err()
		}
		log.Printf("year-end price fetch failed for %s/%d via %s: %v", ticker, year, provider.Source(), err)
		return model.UnresolvedValue(), nil
	}

	currency := point.Currency
	if currency == "" {
		currency = market.Currency()
	}
	return s.persistYearEnd(model.HistoricalYearEndData{
		ID:         uuid.New().String(),
		DataType:   model.DataTypeStockPrice,
		Ticker:     ticker,
		Year:       year,
		Value:      point.Price,
		Currency:   currency,
		ActualDate: point.ActualDate,
		Source:     provider.Source(),
	})
}

// GetOrFetchYearEndRate resolves the from->to exchange rate on the last
// trading day of the given year through the year-end cache.
func (s *HistoricalDataService) GetOrFetchYearEndRate(ctx context.Context, from, to string, year int) (model.Resolution, error) {
	if from == to {
		return model.ResolvedValue(1, time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC), model.SourceManual, false), nil
	}

	pair := model.CurrencyPair(from, to)
	cached, err := s.yearEndRepo.Get(model.DataTypeExchangeRate, pair, year)
	if err == nil {
		if cached.Value <= 0 {
			// A non-positive stored rate is indistinguishable from
			// "not configured"; treat it as absent.
			return model.UnresolvedValue(), nil
		}
		return model.ResolvedValue(cached.Value, cached.ActualDate, cached.Source, true), nil
	}
	if !errors.Is(err, apperrors.ErrCacheEntryNotFound) {
		return model.UnresolvedValue(), err
	}

	point, err := s.fxProvider.GetExchangeRate(ctx, from, to, time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		if ctx.Err() != nil {
			return model.UnresolvedValue(), ctx.Err()
		}
		log.Printf("year-end rate fetch failed for %s/%d via %s: %v", pair, year, s.fxProvider.Source(), err)
		return model.UnresolvedValue(), nil
	}

	return s.persistYearEnd(model.HistoricalYearEndData{
		ID:         uuid.New().String(),
		DataType:   model.DataTypeExchangeRate,
		Ticker:     pair,
		Year:       year,
		Value:      point.Rate,
		Currency:   to,
		ActualDate: point.ActualDate,
		Source:     s.fxProvider.Source(),
	})
}

// GetOrFetchTransactionRate resolves the from->to exchange rate for an
// exact requested date through the transaction-date cache.
func (s *HistoricalDataService) GetOrFetchTransactionRate(ctx context.Context, from, to string, date time.Time) (model.Resolution, error) {
	if from == to {
		return model.ResolvedValue(1, date, model.SourceManual, false), nil
	}

	pair := model.CurrencyPair(from, to)
	cached, err := s.fxRateRepo.Get(pair, date)
	if err == nil {
		if cached.Rate <= 0 {
			return model.UnresolvedValue(), nil
		}
		return model.ResolvedValue(cached.Rate, cached.ActualDate, cached.Source, true), nil
	}
	if !errors.Is(err, apperrors.ErrCacheEntryNotFound) {
		return model.UnresolvedValue(), err
	}

	point, err := s.fxProvider.GetExchangeRate(ctx, from, to, date)
	if err != nil {
		if ctx.Err() != nil {
			return model.UnresolvedValue(), ctx.Err()
		}
		log.Printf("transaction-date rate fetch failed for %s@%s via %s: %v",
			pair, date.Format("2006-01-02"), s.fxProvider.Source(), err)
		return model.UnresolvedValue(), nil
	}
	if point.Rate <= 0 {
		return model.UnresolvedValue(), nil
	}

	stored, inserted, err := s.fxRateRepo.InsertOrGet(model.HistoricalExchangeRate{
		ID:            uuid.New().String(),
		CurrencyPair:  pair,
		RequestedDate: date,
		Rate:          point.Rate,
		ActualDate:    point.ActualDate,
		Source:        s.fxProvider.Source(),
	})
	if err != nil {
		return model.UnresolvedValue(), err
	}
	return model.ResolvedValue(stored.Rate, stored.ActualDate, stored.Source, !inserted), nil
}

// SaveManualYearEndPrice records a manually-entered year-end price.
// Fails with apperrors.ErrCacheEntryExists when the key is already
// populated: cache rows are immutable once written.
func (s *HistoricalDataService) SaveManualYearEndPrice(ticker, currency string, year int, value float64, actualDate time.Time) (model.HistoricalYearEndData, error) {
	if value <= 0 {
		return model.HistoricalYearEndData{}, apperrors.ErrInvalidRate
	}
	entry := model.HistoricalYearEndData{
		ID:         uuid.New().String(),
		DataType:   model.DataTypeStockPrice,
		Ticker:     ticker,
		Year:       year,
		Value:      value,
		Currency:   currency,
		ActualDate: actualDate,
		Source:     model.SourceManual,
	}
	if err := s.yearEndRepo.Add(entry); err != nil {
		return model.HistoricalYearEndData{}, err
	}
	return entry, nil
}

// SaveManualYearEndRate records a manually-entered year-end exchange rate.
func (s *HistoricalDataService) SaveManualYearEndRate(from, to string, year int, value float64, actualDate time.Time) (model.HistoricalYearEndData, error) {
	if value <= 0 {
		return model.HistoricalYearEndData{}, apperrors.ErrInvalidRate
	}
	entry := model.HistoricalYearEndData{
		ID:         uuid.New().String(),
		DataType:   model.DataTypeExchangeRate,
		Ticker:     model.CurrencyPair(from, to),
		Year:       year,
		Value:      value,
		Currency:   to,
		ActualDate: actualDate,
		Source:     model.SourceManual,
	}
	if err := s.yearEndRepo.Add(entry); err != nil {
		return model.HistoricalYearEndData{}, err
	}
	return entry, nil
}

// SaveManualTransactionRate records a manually-entered transaction-date
// exchange rate. Same immutability guard as the year-end path.
func (s *HistoricalDataService) SaveManualTransactionRate(from, to string, date time.Time, rate float64, actualDate time.Time) (model.HistoricalExchangeRate, error) {
	if rate <= 0 {
		return model.HistoricalExchangeRate{}, apperrors.ErrInvalidRate
	}
	entry := model.HistoricalExchangeRate{
		ID:            uuid.New().String(),
		CurrencyPair:  model.CurrencyPair(from, to),
		RequestedDate: date,
		Rate:          rate,
		ActualDate:    actualDate,
		Source:        model.SourceManual,
	}
	if err := s.fxRateRepo.Add(entry); err != nil {
		return model.HistoricalExchangeRate{}, err
	}
	return entry, nil
}

// persistYearEnd stores a freshly fetched year-end value, tolerating a
// concurrent writer having populated the key first.
func (s *HistoricalDataService) persistYearEnd(entry model.HistoricalYearEndData) (model.Resolution, error) {
	stored, inserted, err := s.yearEndRepo.InsertOrGet(entry)
	if err != nil {
		return model.UnresolvedValue(), err
	}
	return model.ResolvedValue(stored.Value, stored.ActualDate, stored.Source, !inserted), nil
}
