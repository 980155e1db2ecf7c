package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
)

// TransactionService handles stock-transaction business logic. Writes
// keep the snapshot table consistent: creating a cash-flow transaction
// records its snapshot, deleting one removes it, and either write
// rebuilds every later snapshot whose valuation it changed.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	portfolioRepo   *repository.PortfolioRepository
	snapshotService *SnapshotService
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	portfolioRepo *repository.PortfolioRepository,
	snapshotService *SnapshotService,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		portfolioRepo:   portfolioRepo,
		snapshotService: snapshotService,
	}
}

// GetTransactions returns the portfolio's non-deleted transactions in
// [from, to], ordered by date then id.
func (s *TransactionService) GetTransactions(userID, portfolioID string, from, to time.Time) ([]model.StockTransaction, error) {
	if _, err := s.ownedPortfolio(userID, portfolioID); err != nil {
		return nil, err
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, apperrors.ErrInvalidDateRange
	}
	return s.transactionRepo.GetTransactions(model.TransactionFilter{
		PortfolioID: portfolioID,
		From:        from,
		To:          to,
	})
}

// CreateTransaction validates and stores a new stock transaction and,
// for external cash-flow events, records its portfolio snapshot.
func (s *TransactionService) CreateTransaction(userID string, tx model.StockTransaction) (model.StockTransaction, error) {
	if _, err := s.ownedPortfolio(userID, tx.PortfolioID); err != nil {
		return model.StockTransaction{}, err
	}
	if tx.Ticker == "" {
		return model.StockTransaction{}, apperrors.ErrInvalidTicker
	}
	if tx.Shares < 0 || tx.PricePerShare < 0 || tx.Fees < 0 {
		return model.StockTransaction{}, apperrors.ErrNegativeAmount
	}
	if tx.ExchangeRate != nil && *tx.ExchangeRate <= 0 {
		return model.StockTransaction{}, apperrors.ErrInvalidRate
	}

	tx.ID = uuid.New().String()
	tx.Ticker = normalizeSymbol(tx.Ticker)
	tx.Date = dateOnly(tx.Date)
	if err := s.transactionRepo.CreateTransaction(tx); err != nil {
		return model.StockTransaction{}, err
	}

	// The new transaction enters the holdings behind every cash-flow
	// snapshot dated on or after it, its own included when it is one.
	if _, err := s.snapshotService.RecomputeFrom(tx.PortfolioID, tx.Date); err != nil {
		return model.StockTransaction{}, err
	}
	return tx, nil
}

// DeleteTransaction soft-deletes a transaction and removes its snapshot.
func (s *TransactionService) DeleteTransaction(userID, portfolioID, transactionID string) error {
	if _, err := s.ownedPortfolio(userID, portfolioID); err != nil {
		return err
	}
	tx, err := s.transactionRepo.GetTransaction(transactionID)
	if err != nil {
		return err
	}
	if tx.PortfolioID != portfolioID {
		return apperrors.ErrTransactionNotFound
	}
	if err := s.transactionRepo.SoftDeleteTransaction(transactionID); err != nil {
		return err
	}
	if err := s.snapshotService.Delete(portfolioID, transactionID); err != nil &&
		!errors.Is(err, apperrors.ErrSnapshotNotFound) {
		return err
	}
	// Later snapshots still count the deleted holding; rebuild them.
	if _, err := s.snapshotService.RecomputeFrom(portfolioID, tx.Date); err != nil {
		return err
	}
	return nil
}

func (s *TransactionService) ownedPortfolio(userID, portfolioID string) (model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetPortfolio(portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}
	if portfolio.UserID != userID {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	return portfolio, nil
}
