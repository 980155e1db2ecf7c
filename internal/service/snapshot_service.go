package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
)

// SnapshotService records portfolio valuations immediately before and
// after each external cash-flow event. These snapshots are the sole
// input to time-weighted sub-period chaining; the return calculator
// never recomputes portfolio value itself.
//
// Valuations use the last trade price known for each holding on or
// before the snapshot date, converted at the transaction's effective
// exchange rate. This keeps snapshot writes independent of provider
// availability.
type SnapshotService struct {
	snapshotRepo    *repository.SnapshotRepository
	transactionRepo *repository.TransactionRepository
	portfolioRepo   *repository.PortfolioRepository
	splitService    *SplitService
}

// NewSnapshotService creates a new SnapshotService with the provided dependencies.
func NewSnapshotService(
	snapshotRepo *repository.SnapshotRepository,
	transactionRepo *repository.TransactionRepository,
	portfolioRepo *repository.PortfolioRepository,
	splitService *SplitService,
) *SnapshotService {
	return &SnapshotService{
		snapshotRepo:    snapshotRepo,
		transactionRepo: transactionRepo,
		portfolioRepo:   portfolioRepo,
		splitService:    splitService,
	}
}

// Upsert recomputes and stores the snapshot for a transaction:
// valueBefore from all transactions strictly before its date,
// valueAfter additionally including the transaction itself. Any
// existing snapshot for the transaction is overwritten.
func (s *SnapshotService) Upsert(portfolioID, transactionID string) (model.TransactionPortfolioSnapshot, error) {
	portfolio, err := s.portfolioRepo.GetPortfolio(portfolioID)
	if err != nil {
		return model.TransactionPortfolioSnapshot{}, err
	}
	tx, err := s.transactionRepo.GetTransaction(transactionID)
	if err != nil {
		return model.TransactionPortfolioSnapshot{}, err
	}
	if tx.PortfolioID != portfolioID {
		return model.TransactionPortfolioSnapshot{}, apperrors.ErrTransactionNotFound
	}

	all, err := s.transactionRepo.GetTransactions(model.TransactionFilter{PortfolioID: portfolioID})
	if err != nil {
		return model.TransactionPortfolioSnapshot{}, err
	}

	txDay := dateOnly(tx.Date)
	before := make([]model.StockTransaction, 0, len(all))
	for _, t := range all {
		if dateOnly(t.Date).Before(txDay) {
			before = append(before, t)
		}
	}

	valueBefore, err := s.valuationOf(before, portfolio.HomeCurrency)
	if err != nil {
		return model.TransactionPortfolioSnapshot{}, err
	}
	valueAfter, err := s.valuationOf(append(before, tx), portfolio.HomeCurrency)
	if err != nil {
		return model.TransactionPortfolioSnapshot{}, err
	}

	snapshot := model.TransactionPortfolioSnapshot{
		ID:            uuid.New().String(),
		PortfolioID:   portfolioID,
		TransactionID: transactionID,
		Date:          txDay,
		ValueBefore:   round2(valueBefore),
		ValueAfter:    round2(valueAfter),
	}
	if err := s.snapshotRepo.Upsert(snapshot); err != nil {
		return model.TransactionPortfolioSnapshot{}, err
	}
	return snapshot, nil
}

// RecomputeFrom re-runs Upsert for every cash-flow transaction dated on
// or after from. Backdated writes change the holdings behind every
// later snapshot, so their valuations must be rebuilt from the changed
// date onward. Returns the number of snapshots recomputed.
func (s *SnapshotService) RecomputeFrom(portfolioID string, from time.Time) (int, error) {
	transactions, err := s.transactionRepo.GetTransactions(model.TransactionFilter{
		PortfolioID:  portfolioID,
		From:         from,
		CashFlowOnly: true,
	})
	if err != nil {
		return 0, err
	}

	recomputed := 0
	for _, tx := range transactions {
		if _, err := s.Upsert(portfolioID, tx.ID); err != nil {
			return recomputed, err
		}
		recomputed++
	}
	return recomputed, nil
}

// Delete removes the snapshot for a transaction. Later snapshots whose
// valuations included the transaction are rebuilt by the caller via
// RecomputeFrom.
func (s *SnapshotService) Delete(portfolioID, transactionID string) error {
	snapshot, err := s.snapshotRepo.GetByTransaction(transactionID)
	if err != nil {
		return err
	}
	if snapshot.PortfolioID != portfolioID {
		return apperrors.ErrSnapshotNotFound
	}
	return s.snapshotRepo.DeleteByTransaction(transactionID)
}

// Backfill idempotently creates snapshots for every cash-flow
// transaction in [from, to] that lacks one. Returns the number of
// snapshots created.
func (s *SnapshotService) Backfill(portfolioID string, from, to time.Time) (int, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return 0, apperrors.ErrInvalidDateRange
	}

	transactions, err := s.transactionRepo.GetTransactions(model.TransactionFilter{
		PortfolioID:  portfolioID,
		From:         from,
		To:           to,
		CashFlowOnly: true,
	})
	if err != nil {
		return 0, err
	}

	created := 0
	for _, tx := range transactions {
		_, err := s.snapshotRepo.GetByTransaction(tx.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return created, err
		}
		if _, err := s.Upsert(portfolioID, tx.ID); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// GetSnapshots returns the portfolio's snapshots in [from, to], ordered
// by date ascending with ties broken by transaction id.
func (s *SnapshotService) GetSnapshots(portfolioID string, from, to time.Time) ([]model.TransactionPortfolioSnapshot, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, apperrors.ErrInvalidDateRange
	}
	return s.snapshotRepo.GetRange(portfolioID, from, to)
}

// ValuationAt computes the portfolio's home-currency value from all
// transactions dated on or before the given date.
func (s *SnapshotService) ValuationAt(portfolioID string, date time.Time) (float64, error) {
	portfolio, err := s.portfolioRepo.GetPortfolio(portfolioID)
	if err != nil {
		return 0, err
	}
	transactions, err := s.transactionRepo.GetTransactions(model.TransactionFilter{
		PortfolioID: portfolioID,
		To:          date,
	})
	if err != nil {
		return 0, err
	}
	value, err := s.valuationOf(transactions, portfolio.HomeCurrency)
	if err != nil {
		return 0, err
	}
	return round2(value), nil
}

// valuationOf prices current holdings with the most recent trade price
// seen per ticker, in home currency. Holdings and prices come from the
// split-adjusted view so a later-registered split does not distort
// history.
func (s *SnapshotService) valuationOf(transactions []model.StockTransaction, homeCurrency string) (float64, error) {
	adjusted, err := s.splitService.AdjustTransactions(transactions)
	if err != nil {
		return 0, err
	}

	type position struct {
		shares    float64
		lastPrice float64
		lastRate  float64
	}
	positions := make(map[string]*position)

	for _, tx := range adjusted {
		if tx.Type != model.TransactionBuy && tx.Type != model.TransactionSell {
			continue
		}
		key := normalizeSymbol(tx.Ticker)
		pos, ok := positions[key]
		if !ok {
			pos = &position{lastRate: 1}
			positions[key] = pos
		}
		switch tx.Type {
		case model.TransactionBuy:
			pos.shares += tx.AdjustedShares
		case model.TransactionSell:
			pos.shares -= tx.AdjustedShares
		}
		pos.lastPrice = tx.AdjustedPrice
		if rate, ok := tx.EffectiveRate(homeCurrency); ok {
			pos.lastRate = rate
		}
	}

	total := 0.0
	for _, pos := range positions {
		if pos.shares <= 0 {
			continue
		}
		total += pos.shares * pos.lastPrice * pos.lastRate
	}
	return total, nil
}
