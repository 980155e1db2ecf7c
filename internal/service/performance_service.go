package service

import (
	"context"
	"sort"
	"time"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
	"github.com/ycliang/portfolio-performance-engine/internal/returns"
)

// PerformanceService assembles per-portfolio and cross-portfolio
// performance: it gathers transactions, applies split adjustment,
// resolves prices and rates through the historical caches, and invokes
// the return calculators. Unresolved inputs never fail a calculation;
// they are collected into a deduplicated missing-input list so the
// caller can supply manual values and retry.
//
// All data access within one calculation is strictly sequential: the
// request-scoped store handle is not safe for concurrent use inside a
// logical unit of work.
type PerformanceService struct {
	portfolioRepo   *repository.PortfolioRepository
	transactionRepo *repository.TransactionRepository
	splitService    *SplitService
	histService     *HistoricalDataService
	snapshotService *SnapshotService
}

// NewPerformanceService creates a new PerformanceService with the provided dependencies.
func NewPerformanceService(
	portfolioRepo *repository.PortfolioRepository,
	transactionRepo *repository.TransactionRepository,
	splitService *SplitService,
	histService *HistoricalDataService,
	snapshotService *SnapshotService,
) *PerformanceService {
	return &PerformanceService{
		portfolioRepo:   portfolioRepo,
		transactionRepo: transactionRepo,
		splitService:    splitService,
		histService:     histService,
		snapshotService: snapshotService,
	}
}

// missingSet accumulates missing-input entries deduplicated on the
// case-insensitive (ticker, type, date) key.
type missingSet struct {
	entries map[string]model.MissingPrice
}

func newMissingSet() *missingSet {
	return &missingSet{entries: make(map[string]model.MissingPrice)}
}

func (m *missingSet) add(entry model.MissingPrice) {
	key := entry.DedupKey()
	if _, exists := m.entries[key]; !exists {
		m.entries[key] = entry
	}
}

// list returns the entries sorted by ticker, type, date for stable output.
func (m *missingSet) list() []model.MissingPrice {
	out := make([]model.MissingPrice, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DedupKey() < out[j].DedupKey()
	})
	return out
}

// CalculateYearPerformance computes the portfolio's return for a
// calendar year: Modified Dietz over the cash-flow series and
// time-weighted return over the snapshot series. When any year-end
// price or exchange rate cannot be resolved the result carries
// IsComplete=false and the unresolved inputs, not an error.
func (s *PerformanceService) CalculateYearPerformance(ctx context.Context, userID, portfolioID string, year int) (model.YearPerformance, error) {
	portfolio, err := s.ownedPortfolio(userID, portfolioID)
	if err != nil {
		return model.YearPerformance{}, err
	}

	periodStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	transactions, err := s.transactionRepo.GetTransactions(model.TransactionFilter{
		PortfolioID: portfolioID,
		To:          periodEnd,
	})
	if err != nil {
		return model.YearPerformance{}, err
	}
	adjusted, err := s.splitService.AdjustTransactions(transactions)
	if err != nil {
		return model.YearPerformance{}, err
	}

	missing := newMissingSet()

	startValue, err := s.holdingsValue(ctx, portfolio, adjusted, year-1, model.MissingYearStartPrice, missing)
	if err != nil {
		return model.YearPerformance{}, err
	}
	endValue, err := s.holdingsValue(ctx, portfolio, adjusted, year, model.MissingYearEndPrice, missing)
	if err != nil {
		return model.YearPerformance{}, err
	}

	flows, err := s.cashFlowSeries(ctx, portfolio, adjusted, periodStart, periodEnd, missing)
	if err != nil {
		return model.YearPerformance{}, err
	}

	result := model.YearPerformance{
		PortfolioID: portfolioID,
		Year:        year,
		StartValue:  round2(startValue),
		EndValue:    round2(endValue),
	}
	for _, f := range flows {
		result.NetCashFlow += f.Amount
	}
	result.NetCashFlow = round2(result.NetCashFlow)

	if dietz, ok := returns.ModifiedDietz(startValue, endValue, periodStart, periodEnd, flows); ok {
		result.ModifiedDietz = &dietz
	}

	twr, err := s.timeWeighted(portfolioID, startValue, endValue, periodStart, periodEnd, len(flows))
	if err != nil {
		return model.YearPerformance{}, err
	}
	result.TimeWeighted = twr

	result.MissingPrices = missing.list()
	result.IsComplete = len(result.MissingPrices) == 0
	return result, nil
}

// CalculateAggregatePerformance computes combined returns across all of
// the user's portfolios. Portfolios sharing a home currency contribute
// to one combined cash-flow and valuation series; missing-input lists
// are unioned with the same dedup rule as the per-portfolio path.
func (s *PerformanceService) CalculateAggregatePerformance(ctx context.Context, userID string, year int) (model.AggregatePerformance, error) {
	portfolios, err := s.portfolioRepo.GetPortfolios(model.PortfolioFilter{UserID: userID})
	if err != nil {
		return model.AggregatePerformance{}, err
	}

	periodStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	type group struct {
		startValue float64
		endValue   float64
		flows      []returns.CashFlow
		snapshots  []returns.ValuationSnapshot
	}
	groups := make(map[string]*group)
	missing := newMissingSet()

	for _, portfolio := range portfolios {
		transactions, err := s.transactionRepo.GetTransactions(model.TransactionFilter{
			PortfolioID: portfolio.ID,
			To:          periodEnd,
		})
		if err != nil {
			return model.AggregatePerformance{}, err
		}
		adjusted, err := s.splitService.AdjustTransactions(transactions)
		if err != nil {
			return model.AggregatePerformance{}, err
		}

		g, ok := groups[portfolio.HomeCurrency]
		if !ok {
			g = &group{}
			groups[portfolio.HomeCurrency] = g
		}

		startValue, err := s.holdingsValue(ctx, portfolio, adjusted, year-1, model.MissingYearStartPrice, missing)
		if err != nil {
			return model.AggregatePerformance{}, err
		}
		endValue, err := s.holdingsValue(ctx, portfolio, adjusted, year, model.MissingYearEndPrice, missing)
		if err != nil {
			return model.AggregatePerformance{}, err
		}
		flows, err := s.cashFlowSeries(ctx, portfolio, adjusted, periodStart, periodEnd, missing)
		if err != nil {
			return model.AggregatePerformance{}, err
		}

		g.startValue += startValue
		g.endValue += endValue
		g.flows = append(g.flows, flows...)

		snapshots, err := s.snapshotService.GetSnapshots(portfolio.ID, periodStart, periodEnd)
		if err != nil {
			return model.AggregatePerformance{}, err
		}
		for _, snap := range snapshots {
			g.snapshots = append(g.snapshots, returns.ValuationSnapshot{
				Date:        snap.Date,
				ValueBefore: snap.ValueBefore,
				ValueAfter:  snap.ValueAfter,
			})
		}
	}

	result := model.AggregatePerformance{
		Year:       year,
		ByCurrency: make(map[string]*model.YearPerformance),
	}
	for currency, g := range groups {
		sort.Slice(g.flows, func(i, j int) bool { return g.flows[i].Date.Before(g.flows[j].Date) })
		sort.Slice(g.snapshots, func(i, j int) bool { return g.snapshots[i].Date.Before(g.snapshots[j].Date) })

		perf := &model.YearPerformance{
			Year:       year,
			StartValue: round2(g.startValue),
			EndValue:   round2(g.endValue),
		}
		for _, f := range g.flows {
			perf.NetCashFlow += f.Amount
		}
		perf.NetCashFlow = round2(perf.NetCashFlow)

		if dietz, ok := returns.ModifiedDietz(g.startValue, g.endValue, periodStart, periodEnd, g.flows); ok {
			perf.ModifiedDietz = &dietz
		}
		if len(g.flows) == 0 {
			if twr, ok := returns.TimeWeighted(g.startValue, g.endValue, nil); ok {
				perf.TimeWeighted = &twr
			}
		} else if len(g.snapshots) > 0 {
			if twr, ok := returns.TimeWeighted(g.startValue, g.endValue, g.snapshots); ok {
				perf.TimeWeighted = &twr
			}
		}
		result.ByCurrency[currency] = perf
	}

	result.MissingPrices = missing.list()
	result.IsComplete = len(result.MissingPrices) == 0
	return result, nil
}

// CalculateXIRR computes the internal rate of return over the
// portfolio's cash flows up to asOf. Transactions missing an exchange
// rate are auto-filled through the transaction-date cache; when
// auto-fill fails the transaction's flow is excluded from the series
// and reported, never raised as an error.
func (s *PerformanceService) CalculateXIRR(ctx context.Context, userID, portfolioID string, asOf time.Time) (model.XIRRResult, error) {
	portfolio, err := s.ownedPortfolio(userID, portfolioID)
	if err != nil {
		return model.XIRRResult{}, err
	}

	transactions, err := s.transactionRepo.GetTransactions(model.TransactionFilter{
		PortfolioID: portfolioID,
		To:          asOf,
	})
	if err != nil {
		return model.XIRRResult{}, err
	}
	adjusted, err := s.splitService.AdjustTransactions(transactions)
	if err != nil {
		return model.XIRRResult{}, err
	}

	result := model.XIRRResult{
		PortfolioID:          portfolioID,
		AsOf:                 dateOnly(asOf),
		MissingExchangeRates: []model.MissingRate{},
	}

	var flows []returns.CashFlow
	for _, tx := range adjusted {
		if !tx.IsCashFlow() {
			continue
		}

		rate, ok := tx.EffectiveRate(portfolio.HomeCurrency)
		if !ok {
			rate, ok, err = s.autoFillRate(ctx, tx.StockTransaction, portfolio.HomeCurrency)
			if err != nil {
				return model.XIRRResult{}, err
			}
			if !ok {
				result.MissingExchangeRates = append(result.MissingExchangeRates, model.MissingRate{
					TransactionID: tx.ID,
					Ticker:        tx.Ticker,
					CurrencyPair:  model.CurrencyPair(tx.Market.Currency(), portfolio.HomeCurrency),
					Date:          dateOnly(tx.Date),
				})
				continue
			}
		}

		amount := tx.TotalCostSource() * rate
		if tx.Type == model.TransactionBuy {
			amount = -amount // invested money is negative in IRR convention
		}
		flows = append(flows, returns.CashFlow{Date: tx.Date, Amount: amount})
	}
	result.CashFlowCount = len(flows)

	terminal, err := s.snapshotService.ValuationAt(portfolioID, asOf)
	if err != nil {
		return model.XIRRResult{}, err
	}
	if terminal > 0 {
		flows = append(flows, returns.CashFlow{Date: asOf, Amount: terminal})
	}

	if rate, ok := returns.XIRR(flows); ok {
		result.Rate = &rate
	}
	return result, nil
}

// autoFillRate resolves a transaction's missing exchange rate through
// the transaction-date cache and, on success, stores it back on the
// transaction row so later reads skip resolution.
func (s *PerformanceService) autoFillRate(ctx context.Context, tx model.StockTransaction, homeCurrency string) (float64, bool, error) {
	resolution, err := s.histService.GetOrFetchTransactionRate(ctx, tx.Market.Currency(), homeCurrency, tx.Date)
	if err != nil {
		return 0, false, err
	}
	if !resolution.Resolved {
		return 0, false, nil
	}
	if err := s.transactionRepo.UpdateExchangeRate(tx.ID, resolution.Value); err != nil {
		return 0, false, err
	}
	return resolution.Value, true, nil
}

// holdingsValue values the holdings implied by transactions dated on or
// before Dec 31 of the given year, at that year's year-end prices and
// exchange rates. Unresolved inputs contribute nothing to the value and
// are recorded in the missing set.
func (s *PerformanceService) holdingsValue(ctx context.Context, portfolio model.Portfolio, adjusted []model.AdjustedTransaction, year int, priceType model.MissingPriceType, missing *missingSet) (float64, error) {
	cutoff := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	type holding struct {
		shares float64
		market model.Market
	}
	holdings := make(map[string]*holding)
	for _, tx := range adjusted {
		if dateOnly(tx.Date).After(cutoff) {
			continue
		}
		if tx.Type != model.TransactionBuy && tx.Type != model.TransactionSell {
			continue
		}
		key := normalizeSymbol(tx.Ticker)
		h, ok := holdings[key]
		if !ok {
			h = &holding{market: tx.Market}
			holdings[key] = h
		}
		if tx.Type == model.TransactionBuy {
			h.shares += tx.AdjustedShares
		} else {
			h.shares -= tx.AdjustedShares
		}
	}

	total := 0.0
	tickers := make([]string, 0, len(holdings))
	for ticker := range holdings {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	for _, ticker := range tickers {
		h := holdings[ticker]
		if h.shares <= 0 {
			continue
		}

		price, err := s.histService.GetOrFetchYearEndPrice(ctx, ticker, h.market, year)
		if err != nil {
			return 0, err
		}
		if !price.Resolved {
			missing.add(model.MissingPrice{Ticker: ticker, Type: priceType, Date: cutoff})
			continue
		}

		rate := 1.0
		if !h.market.IsZeroFX(portfolio.HomeCurrency) {
			resolution, err := s.histService.GetOrFetchYearEndRate(ctx, h.market.Currency(), portfolio.HomeCurrency, year)
			if err != nil {
				return 0, err
			}
			if !resolution.Resolved {
				missing.add(model.MissingPrice{
					Ticker: model.CurrencyPair(h.market.Currency(), portfolio.HomeCurrency),
					Type:   model.MissingExchangeRate,
					Date:   cutoff,
				})
				continue
			}
			rate = resolution.Value
		}

		total += h.shares * price.Value * rate
	}
	return total, nil
}

// cashFlowSeries builds the signed home-currency cash-flow series for
// external flows in [periodStart, periodEnd]. Transactions whose FX
// cannot be auto-filled are recorded as missing and skipped.
func (s *PerformanceService) cashFlowSeries(ctx context.Context, portfolio model.Portfolio, adjusted []model.AdjustedTransaction, periodStart, periodEnd time.Time, missing *missingSet) ([]returns.CashFlow, error) {
	var flows []returns.CashFlow
	for _, tx := range adjusted {
		day := dateOnly(tx.Date)
		if day.Before(dateOnly(periodStart)) || day.After(dateOnly(periodEnd)) {
			continue
		}
		if !tx.IsCashFlow() {
			continue
		}

		rate, ok := tx.EffectiveRate(portfolio.HomeCurrency)
		if !ok {
			var err error
			rate, ok, err = s.autoFillRate(ctx, tx.StockTransaction, portfolio.HomeCurrency)
			if err != nil {
				return nil, err
			}
			if !ok {
				missing.add(model.MissingPrice{
					Ticker: model.CurrencyPair(tx.Market.Currency(), portfolio.HomeCurrency),
					Type:   model.MissingExchangeRate,
					Date:   day,
				})
				continue
			}
		}

		amount := tx.TotalCostSource() * rate
		if tx.Type == model.TransactionSell {
			amount = -amount
		}
		flows = append(flows, returns.CashFlow{Date: day, Amount: amount})
	}
	return flows, nil
}

// timeWeighted chains sub-period returns over the year's snapshots.
// With no cash flows the calculation degenerates to a simple return;
// with cash flows but no snapshots TWR is undefined and stays nil.
func (s *PerformanceService) timeWeighted(portfolioID string, startValue, endValue float64, periodStart, periodEnd time.Time, flowCount int) (*float64, error) {
	if flowCount == 0 {
		if twr, ok := returns.TimeWeighted(startValue, endValue, nil); ok {
			return &twr, nil
		}
		return nil, nil
	}

	snapshots, err := s.snapshotService.GetSnapshots(portfolioID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}

	series := make([]returns.ValuationSnapshot, len(snapshots))
	for i, snap := range snapshots {
		series[i] = returns.ValuationSnapshot{
			Date:        snap.Date,
			ValueBefore: snap.ValueBefore,
			ValueAfter:  snap.ValueAfter,
		}
	}
	if twr, ok := returns.TimeWeighted(startValue, endValue, series); ok {
		return &twr, nil
	}
	return nil, nil
}

// ownedPortfolio loads a portfolio and verifies ownership. A portfolio
// owned by a different user is reported as not found, not as forbidden.
func (s *PerformanceService) ownedPortfolio(userID, portfolioID string) (model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetPortfolio(portfolioID)
	if err != nil {
		return model.Portfolio{}, err
	}
	if portfolio.UserID != userID {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	return portfolio, nil
}
