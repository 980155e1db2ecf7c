package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/ycliang/portfolio-performance-engine/internal/marketdata"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
)

// MakeID generates a unique identifier for testing.
func MakeID() string {
	return uuid.New().String()
}

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)

	return service.NewPortfolioService(portfolioRepo)
}

func NewTestSplitService(t *testing.T, db *sql.DB) *service.SplitService {
	t.Helper()

	splitRepo := repository.NewSplitRepository(db)

	return service.NewSplitService(splitRepo)
}

func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()

	snapshotRepo := repository.NewSnapshotRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)

	return service.NewSnapshotService(
		snapshotRepo,
		transactionRepo,
		portfolioRepo,
		NewTestSplitService(t, db),
	)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)

	return service.NewTransactionService(
		transactionRepo,
		portfolioRepo,
		NewTestSnapshotService(t, db),
	)
}

// NewTestHistoricalDataService wires the cache service against fake
// providers. Pass nil for a provider slot to leave it unconfigured.
func NewTestHistoricalDataService(t *testing.T, db *sql.DB, providers marketdata.Router, fxProvider marketdata.FXProvider) *service.HistoricalDataService {
	t.Helper()

	yearEndRepo := repository.NewYearEndDataRepository(db)
	fxRateRepo := repository.NewFXRateCacheRepository(db)

	return service.NewHistoricalDataService(yearEndRepo, fxRateRepo, providers, fxProvider)
}

func NewTestPerformanceService(t *testing.T, db *sql.DB, histService *service.HistoricalDataService) *service.PerformanceService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewPerformanceService(
		portfolioRepo,
		transactionRepo,
		NewTestSplitService(t, db),
		histService,
		NewTestSnapshotService(t, db),
	)
}
