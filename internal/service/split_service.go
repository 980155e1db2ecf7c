package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
)

// SplitService manages stock-split registrations and computes
// split-adjusted views of transactions. Adjustment is always recomputed
// from raw fields and the current split list, never accumulated in
// place, so re-applying it is a no-op.
type SplitService struct {
	splitRepo *repository.SplitRepository
}

// NewSplitService creates a new SplitService with the provided repository.
func NewSplitService(splitRepo *repository.SplitRepository) *SplitService {
	return &SplitService{splitRepo: splitRepo}
}

// AdjustTransaction computes the split-adjusted view of one transaction
// given the ordered split list for its symbol/market. A split effective
// on or after the transaction date applies (a split dated exactly on
// the transaction date treats the transaction as pre-split); the
// cumulative ratio is the product of all applicable ratios.
//
// Adjusted shares = shares × ratio, adjusted price = price / ratio, so
// TotalCostSource is unchanged.
func AdjustTransaction(tx model.StockTransaction, splits []model.StockSplit) model.AdjustedTransaction {
	ratio := 1.0
	txDay := dateOnly(tx.Date)
	for _, split := range splits {
		if split.Ratio <= 0 {
			continue
		}
		if !dateOnly(split.EffectiveDate).Before(txDay) {
			ratio *= split.Ratio
		}
	}

	return model.AdjustedTransaction{
		StockTransaction: tx,
		AdjustedShares:   tx.Shares * ratio,
		AdjustedPrice:    tx.PricePerShare / ratio,
		SplitRatio:       ratio,
	}
}

// AdjustTransactions computes split-adjusted views for a batch of
// transactions, loading each symbol's split list once.
func (s *SplitService) AdjustTransactions(transactions []model.StockTransaction) ([]model.AdjustedTransaction, error) {
	type symbolKey struct {
		ticker string
		market model.Market
	}
	splitsBySymbol := make(map[symbolKey][]model.StockSplit)

	adjusted := make([]model.AdjustedTransaction, len(transactions))
	for i, tx := range transactions {
		key := symbolKey{ticker: normalizeSymbol(tx.Ticker), market: tx.Market}
		splits, ok := splitsBySymbol[key]
		if !ok {
			var err error
			splits, err = s.splitRepo.GetSplitsForSymbol(tx.Ticker, tx.Market)
			if err != nil {
				return nil, err
			}
			splitsBySymbol[key] = splits
		}
		adjusted[i] = AdjustTransaction(tx, splits)
	}
	return adjusted, nil
}

// GetSplits returns every registered split.
func (s *SplitService) GetSplits() ([]model.StockSplit, error) {
	return s.splitRepo.GetSplits()
}

// RegisterSplit validates and stores a new split. Existing transaction
// rows are not touched; every later computation reinterprets them
// through the new split list.
func (s *SplitService) RegisterSplit(symbol string, market model.Market, effectiveDate time.Time, ratio float64) (model.StockSplit, error) {
	if ratio <= 0 {
		return model.StockSplit{}, apperrors.ErrInvalidSplitRatio
	}
	if symbol == "" {
		return model.StockSplit{}, apperrors.ErrInvalidTicker
	}
	split := model.StockSplit{
		ID:            uuid.New().String(),
		Symbol:        normalizeSymbol(symbol),
		Market:        market,
		EffectiveDate: effectiveDate,
		Ratio:         ratio,
	}
	if err := s.splitRepo.CreateSplit(split); err != nil {
		return model.StockSplit{}, err
	}
	return split, nil
}

// DeleteSplit removes a split registration.
func (s *SplitService) DeleteSplit(id string) error {
	return s.splitRepo.DeleteSplit(id)
}
