package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/testutil"
)

// TestTransactionService_CreateTransaction tests transaction creation
// and its snapshot side effect.
//
// WHY: Snapshots only stay consistent if every external cash flow gets
// one at write time; internal trades must not.
func TestTransactionService_CreateTransaction(t *testing.T) {
	t.Run("cash flow creates its snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)
		snapshots := testutil.NewTestSnapshotService(t, db)

		created, err := svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:      portfolio.ID,
			Date:             day("2024-03-01"),
			Ticker:           "aapl",
			Type:             model.TransactionBuy,
			Shares:           10,
			PricePerShare:    100,
			Market:           model.MarketUS,
			ExternallyFunded: true,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if created.Ticker != "AAPL" {
			t.Errorf("Expected normalized ticker AAPL, got %s", created.Ticker)
		}

		stored, err := snapshots.GetSnapshots(portfolio.ID, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("Expected one snapshot, got %d", len(stored))
		}
		if stored[0].ValueBefore != 0 || stored[0].ValueAfter != 1000 {
			t.Errorf("Expected snapshot 0 -> 1000, got %v -> %v", stored[0].ValueBefore, stored[0].ValueAfter)
		}
	})

	t.Run("internal trade creates no snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)
		snapshots := testutil.NewTestSnapshotService(t, db)

		_, err := svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:   portfolio.ID,
			Date:          day("2024-03-01"),
			Ticker:        "AAPL",
			Type:          model.TransactionBuy,
			Shares:        10,
			PricePerShare: 100,
			Market:        model.MarketUS,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		stored, err := snapshots.GetSnapshots(portfolio.ID, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("Expected no snapshots, got %d", len(stored))
		}
	})

	t.Run("backdated create rebuilds later snapshots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)
		snapshots := testutil.NewTestSnapshotService(t, db)

		march, err := svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:      portfolio.ID,
			Date:             day("2024-03-01"),
			Ticker:           "MSFT",
			Type:             model.TransactionBuy,
			Shares:           10,
			PricePerShare:    100,
			Market:           model.MarketUS,
			ExternallyFunded: true,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		// A January buy arrives after the March one already has its
		// snapshot. The March valuation must pick up the new holding.
		_, err = svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:      portfolio.ID,
			Date:             day("2024-01-15"),
			Ticker:           "AAPL",
			Type:             model.TransactionBuy,
			Shares:           10,
			PricePerShare:    100,
			Market:           model.MarketUS,
			ExternallyFunded: true,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		stored, err := snapshots.GetSnapshots(portfolio.ID, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
		}
		if len(stored) != 2 {
			t.Fatalf("Expected two snapshots, got %d", len(stored))
		}
		for _, snapshot := range stored {
			if snapshot.TransactionID != march.ID {
				continue
			}
			if snapshot.ValueBefore != 1000 || snapshot.ValueAfter != 2000 {
				t.Errorf("Expected March snapshot 1000 -> 2000 after backdated create, got %v -> %v",
					snapshot.ValueBefore, snapshot.ValueAfter)
			}
		}
	})

	t.Run("backdated internal trade rebuilds later snapshots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)
		snapshots := testutil.NewTestSnapshotService(t, db)

		march, err := svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:      portfolio.ID,
			Date:             day("2024-03-01"),
			Ticker:           "MSFT",
			Type:             model.TransactionBuy,
			Shares:           10,
			PricePerShare:    100,
			Market:           model.MarketUS,
			ExternallyFunded: true,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		_, err = svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:   portfolio.ID,
			Date:          day("2024-01-15"),
			Ticker:        "AAPL",
			Type:          model.TransactionBuy,
			Shares:        5,
			PricePerShare: 200,
			Market:        model.MarketUS,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		stored, err := snapshots.GetSnapshots(portfolio.ID, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("Expected one snapshot, got %d", len(stored))
		}
		if stored[0].TransactionID != march.ID {
			t.Fatalf("Expected the March snapshot, got transaction %s", stored[0].TransactionID)
		}
		if stored[0].ValueBefore != 1000 || stored[0].ValueAfter != 2000 {
			t.Errorf("Expected March snapshot 1000 -> 2000 after backdated internal trade, got %v -> %v",
				stored[0].ValueBefore, stored[0].ValueAfter)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)

		base := model.StockTransaction{
			PortfolioID:   portfolio.ID,
			Date:          day("2024-03-01"),
			Ticker:        "AAPL",
			Type:          model.TransactionBuy,
			Shares:        10,
			PricePerShare: 100,
			Market:        model.MarketUS,
		}

		noTicker := base
		noTicker.Ticker = ""
		if _, err := svc.CreateTransaction(portfolio.UserID, noTicker); !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Expected ErrInvalidTicker, got: %v", err)
		}

		negative := base
		negative.Shares = -1
		if _, err := svc.CreateTransaction(portfolio.UserID, negative); !errors.Is(err, apperrors.ErrNegativeAmount) {
			t.Errorf("Expected ErrNegativeAmount, got: %v", err)
		}

		badRate := base
		rate := 0.0
		badRate.ExchangeRate = &rate
		if _, err := svc.CreateTransaction(portfolio.UserID, badRate); !errors.Is(err, apperrors.ErrInvalidRate) {
			t.Errorf("Expected ErrInvalidRate, got: %v", err)
		}
	})

	t.Run("portfolio of another user is not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)

		_, err := svc.CreateTransaction(testutil.MakeID(), model.StockTransaction{
			PortfolioID:   portfolio.ID,
			Date:          day("2024-03-01"),
			Ticker:        "AAPL",
			Type:          model.TransactionBuy,
			Shares:        10,
			PricePerShare: 100,
			Market:        model.MarketUS,
		})
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got: %v", err)
		}
	})
}

// TestTransactionService_DeleteTransaction tests soft deletion and the
// snapshot cleanup that goes with it.
//
// WHY: A deleted cash flow that leaves its snapshot behind poisons
// every later TWR; a non-cash-flow delete must tolerate having no
// snapshot to remove.
func TestTransactionService_DeleteTransaction(t *testing.T) {
	t.Run("soft-deletes and removes the snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)
		snapshots := testutil.NewTestSnapshotService(t, db)

		created, err := svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:      portfolio.ID,
			Date:             day("2024-03-01"),
			Ticker:           "AAPL",
			Type:             model.TransactionBuy,
			Shares:           10,
			PricePerShare:    100,
			Market:           model.MarketUS,
			ExternallyFunded: true,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		if err := svc.DeleteTransaction(portfolio.UserID, portfolio.ID, created.ID); err != nil {
			t.Fatalf("DeleteTransaction() returned unexpected error: %v", err)
		}

		remaining, err := svc.GetTransactions(portfolio.UserID, portfolio.ID, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("Expected deleted transaction hidden from reads, got %d", len(remaining))
		}

		stored, err := snapshots.GetSnapshots(portfolio.ID, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
		}
		if len(stored) != 0 {
			t.Errorf("Expected snapshot removed, got %d", len(stored))
		}
	})

	t.Run("deleting an earlier transaction rebuilds later snapshots", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)
		snapshots := testutil.NewTestSnapshotService(t, db)

		january, err := svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:      portfolio.ID,
			Date:             day("2024-01-15"),
			Ticker:           "AAPL",
			Type:             model.TransactionBuy,
			Shares:           10,
			PricePerShare:    100,
			Market:           model.MarketUS,
			ExternallyFunded: true,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		march, err := svc.CreateTransaction(portfolio.UserID, model.StockTransaction{
			PortfolioID:      portfolio.ID,
			Date:             day("2024-03-01"),
			Ticker:           "MSFT",
			Type:             model.TransactionBuy,
			Shares:           10,
			PricePerShare:    100,
			Market:           model.MarketUS,
			ExternallyFunded: true,
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		if err := svc.DeleteTransaction(portfolio.UserID, portfolio.ID, january.ID); err != nil {
			t.Fatalf("DeleteTransaction() returned unexpected error: %v", err)
		}

		stored, err := snapshots.GetSnapshots(portfolio.ID, time.Time{}, time.Time{})
		if err != nil {
			t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
		}
		if len(stored) != 1 {
			t.Fatalf("Expected one snapshot, got %d", len(stored))
		}
		if stored[0].TransactionID != march.ID {
			t.Fatalf("Expected the March snapshot, got transaction %s", stored[0].TransactionID)
		}
		if stored[0].ValueBefore != 0 || stored[0].ValueAfter != 1000 {
			t.Errorf("Expected March snapshot 0 -> 1000 after delete, got %v -> %v",
				stored[0].ValueBefore, stored[0].ValueAfter)
		}
	})

	t.Run("tolerates a transaction without a snapshot", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		tx := testutil.NewTransaction(portfolio.ID).Build(t, db) // not externally funded
		svc := testutil.NewTestTransactionService(t, db)

		if err := svc.DeleteTransaction(portfolio.UserID, portfolio.ID, tx.ID); err != nil {
			t.Errorf("DeleteTransaction() returned unexpected error: %v", err)
		}
	})

	t.Run("transaction of another portfolio is not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		mine := testutil.NewPortfolio().WithUserID(userID).Build(t, db)
		other := testutil.NewPortfolio().WithUserID(userID).Build(t, db)
		foreign := testutil.NewTransaction(other.ID).Build(t, db)
		svc := testutil.NewTestTransactionService(t, db)

		if err := svc.DeleteTransaction(userID, mine.ID, foreign.ID); !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("Expected ErrTransactionNotFound, got: %v", err)
		}
	})
}
