package service

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
)

// RefreshService pre-resolves transaction-date exchange rates for
// transactions still lacking one, so first-time performance requests
// find the cache warm. It runs from the scheduler, never from a user
// request; performance calculations themselves have no background
// component.
//
// Provider fetches run with bounded parallelism. Unlike a request-scoped
// unit of work, the job owns the pooled *sql.DB handle, which is safe
// for concurrent use.
type RefreshService struct {
	transactionRepo *repository.TransactionRepository
	portfolioRepo   *repository.PortfolioRepository
	histService     *HistoricalDataService
}

// NewRefreshService creates a new RefreshService with the provided dependencies.
func NewRefreshService(
	transactionRepo *repository.TransactionRepository,
	portfolioRepo *repository.PortfolioRepository,
	histService *HistoricalDataService,
) *RefreshService {
	return &RefreshService{
		transactionRepo: transactionRepo,
		portfolioRepo:   portfolioRepo,
		histService:     histService,
	}
}

// RefreshMissingRates resolves the exchange rate for every buy/sell
// transaction that has none stored. Unresolvable rates are left for
// manual entry; only storage failures and cancellation abort the run.
// Returns the number of transactions updated.
func (s *RefreshService) RefreshMissingRates(ctx context.Context) (int, error) {
	transactions, err := s.transactionRepo.GetMissingRateTransactions()
	if err != nil {
		return 0, err
	}
	if len(transactions) == 0 {
		return 0, nil
	}

	portfolios, err := s.portfolioRepo.GetPortfolios(model.PortfolioFilter{})
	if err != nil {
		return 0, err
	}
	homeCurrency := make(map[string]string, len(portfolios))
	for _, p := range portfolios {
		homeCurrency[p.ID] = p.HomeCurrency
	}

	var mu sync.Mutex
	updated := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, tx := range transactions {
		tx := tx
		home, ok := homeCurrency[tx.PortfolioID]
		if !ok || tx.Market.IsZeroFX(home) {
			continue
		}

		g.Go(func() error {
			resolution, err := s.histService.GetOrFetchTransactionRate(ctx, tx.Market.Currency(), home, tx.Date)
			if err != nil {
				return err
			}
			if !resolution.Resolved {
				return nil
			}
			if err := s.transactionRepo.UpdateExchangeRate(tx.ID, resolution.Value); err != nil {
				return err
			}
			mu.Lock()
			updated++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return updated, err
	}
	log.Printf("FX refresh: resolved %d of %d missing rates", updated, len(transactions))
	return updated, nil
}
