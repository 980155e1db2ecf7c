package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ycliang/portfolio-performance-engine/internal/apperrors"
	"github.com/ycliang/portfolio-performance-engine/internal/marketdata"
	"github.com/ycliang/portfolio-performance-engine/internal/model"
	"github.com/ycliang/portfolio-performance-engine/internal/testutil"
)

// TestPerformanceService_CalculateYearPerformance tests the year
// calculation end to end: transactions in, resolved prices through the
// cache layer, Modified Dietz out.
//
// WHY: This is the orchestration path users actually hit; it must wire
// split adjustment, cache resolution and the return kernels together
// and degrade to a missing-input report instead of failing.
func TestPerformanceService_CalculateYearPerformance(t *testing.T) {
	ctx := context.Background()

	t.Run("single deposit year", func(t *testing.T) {
		// Setup: 1000 USD deposited on Jan 2, worth 1100 at year end.
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithDate("2023-01-02").
			WithTicker("AAPL").
			WithShares(10).
			WithPrice(100).
			ExternallyFunded().
			Build(t, db)

		stooq := testutil.NewFakePriceProvider(model.SourceStooq)
		stooq.SetPrice("AAPL", marketdata.PricePoint{Price: 110, Currency: "USD", ActualDate: day("2023-12-29")})
		fx := testutil.NewFakeFXProvider(model.SourceStooq)
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{Stooq: stooq}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		// Execute
		perf, err := svc.CalculateYearPerformance(ctx, portfolio.UserID, portfolio.ID, 2023)
		if err != nil {
			t.Fatalf("CalculateYearPerformance() returned unexpected error: %v", err)
		}

		// Assert
		if !perf.IsComplete {
			t.Fatalf("Expected complete result, missing: %+v", perf.MissingPrices)
		}
		if perf.StartValue != 0 {
			t.Errorf("Expected start value 0, got %v", perf.StartValue)
		}
		if perf.EndValue != 1100 {
			t.Errorf("Expected end value 1100, got %v", perf.EndValue)
		}
		if perf.NetCashFlow != 1000 {
			t.Errorf("Expected net cash flow 1000, got %v", perf.NetCashFlow)
		}
		if perf.ModifiedDietz == nil {
			t.Fatal("Expected a Modified Dietz return")
		}
		// Gain of 100 over a day-weighted deposit of ~997: just over 10%.
		if *perf.ModifiedDietz <= 0.10 || *perf.ModifiedDietz >= 0.11 {
			t.Errorf("Expected Dietz return just above 10%%, got %v", *perf.ModifiedDietz)
		}
		// Flows exist but no snapshots were recorded: TWR is undefined.
		if perf.TimeWeighted != nil {
			t.Errorf("Expected nil time-weighted return, got %v", *perf.TimeWeighted)
		}
	})

	t.Run("unresolvable price yields incomplete result, not error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithDate("2023-01-02").
			ExternallyFunded().
			Build(t, db)

		stooq := testutil.NewFakePriceProvider(model.SourceStooq) // no prices configured
		fx := testutil.NewFakeFXProvider(model.SourceStooq)
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{Stooq: stooq}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		perf, err := svc.CalculateYearPerformance(ctx, portfolio.UserID, portfolio.ID, 2023)
		if err != nil {
			t.Fatalf("CalculateYearPerformance() returned unexpected error: %v", err)
		}

		if perf.IsComplete {
			t.Error("Expected incomplete result")
		}
		if len(perf.MissingPrices) != 1 {
			t.Fatalf("Expected exactly one missing entry, got %+v", perf.MissingPrices)
		}
		entry := perf.MissingPrices[0]
		if entry.Ticker != "AAPL" || entry.Type != model.MissingYearEndPrice {
			t.Errorf("Expected AAPL year-end price entry, got %+v", entry)
		}
		if got := entry.Date.Format("2006-01-02"); got != "2023-12-31" {
			t.Errorf("Expected missing date 2023-12-31, got %s", got)
		}
	})

	t.Run("sold-out position is not valued", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithDate("2023-02-01").
			WithShares(10).
			ExternallyFunded().
			Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithDate("2023-08-01").
			WithType(model.TransactionSell).
			WithShares(10).
			WithPrice(120).
			ExternallyFunded().
			Build(t, db)

		// No prices configured: if the closed position were valued, the
		// result would come back incomplete.
		stooq := testutil.NewFakePriceProvider(model.SourceStooq)
		fx := testutil.NewFakeFXProvider(model.SourceStooq)
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{Stooq: stooq}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		perf, err := svc.CalculateYearPerformance(ctx, portfolio.UserID, portfolio.ID, 2023)
		if err != nil {
			t.Fatalf("CalculateYearPerformance() returned unexpected error: %v", err)
		}

		if !perf.IsComplete {
			t.Errorf("Expected complete result for a closed position, missing: %+v", perf.MissingPrices)
		}
		if perf.EndValue != 0 {
			t.Errorf("Expected end value 0, got %v", perf.EndValue)
		}
		// Deposit 1000 in, withdrawal 1200 out.
		if perf.NetCashFlow != -200 {
			t.Errorf("Expected net cash flow -200, got %v", perf.NetCashFlow)
		}
	})

	t.Run("portfolio of another user is not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)

		stooq := testutil.NewFakePriceProvider(model.SourceStooq)
		fx := testutil.NewFakeFXProvider(model.SourceStooq)
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{Stooq: stooq}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		_, err := svc.CalculateYearPerformance(ctx, testutil.MakeID(), portfolio.ID, 2023)
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Errorf("Expected ErrPortfolioNotFound, got: %v", err)
		}
	})
}

// TestPerformanceService_CalculateAggregatePerformance tests the
// cross-portfolio aggregation grouped by home currency.
//
// WHY: Aggregation must combine same-currency portfolios into one
// series, keep different currencies apart, and union missing-input
// lists with the per-portfolio dedup rule.
func TestPerformanceService_CalculateAggregatePerformance(t *testing.T) {
	ctx := context.Background()

	t.Run("groups portfolios by home currency", func(t *testing.T) {
		// Setup: two USD portfolios and one EUR portfolio, one user.
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		usd1 := testutil.NewPortfolio().WithUserID(userID).Build(t, db)
		usd2 := testutil.NewPortfolio().WithUserID(userID).Build(t, db)
		eur := testutil.NewPortfolio().WithUserID(userID).
			WithBaseCurrency("EUR").WithHomeCurrency("EUR").Build(t, db)

		testutil.NewTransaction(usd1.ID).
			WithDate("2023-01-02").WithShares(10).WithPrice(100).
			ExternallyFunded().Build(t, db)
		testutil.NewTransaction(usd2.ID).
			WithDate("2023-03-01").WithShares(5).WithPrice(100).
			ExternallyFunded().Build(t, db)
		testutil.NewTransaction(eur.ID).
			WithDate("2023-02-01").
			WithTicker("ASML.AS").WithMarket(model.MarketEU).
			WithShares(2).WithPrice(600).
			ExternallyFunded().Build(t, db)

		stooq := testutil.NewFakePriceProvider(model.SourceStooq)
		stooq.SetPrice("AAPL", marketdata.PricePoint{Price: 110, Currency: "USD", ActualDate: day("2023-12-29")})
		fx := testutil.NewFakeFXProvider(model.SourceStooq)
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{Stooq: stooq}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		// Execute
		agg, err := svc.CalculateAggregatePerformance(ctx, userID, 2023)
		if err != nil {
			t.Fatalf("CalculateAggregatePerformance() returned unexpected error: %v", err)
		}

		// Assert: the USD group combines both portfolios.
		usdPerf, ok := agg.ByCurrency["USD"]
		if !ok {
			t.Fatalf("Expected a USD group, got currencies %v", len(agg.ByCurrency))
		}
		if usdPerf.EndValue != 1650 {
			t.Errorf("Expected combined USD end value 1650, got %v", usdPerf.EndValue)
		}
		if usdPerf.NetCashFlow != 1500 {
			t.Errorf("Expected combined USD net cash flow 1500, got %v", usdPerf.NetCashFlow)
		}
		if usdPerf.ModifiedDietz == nil {
			t.Error("Expected a Modified Dietz return for the USD group")
		}

		// The EUR portfolio trades on a market with no automatic price
		// provider, so the aggregate is incomplete with one entry.
		if _, ok := agg.ByCurrency["EUR"]; !ok {
			t.Fatal("Expected a EUR group")
		}
		if agg.IsComplete {
			t.Error("Expected incomplete aggregate")
		}
		if len(agg.MissingPrices) != 1 {
			t.Fatalf("Expected exactly one missing entry, got %+v", agg.MissingPrices)
		}
		if agg.MissingPrices[0].Ticker != "ASML.AS" {
			t.Errorf("Expected ASML.AS missing entry, got %+v", agg.MissingPrices[0])
		}
	})

	t.Run("missing entries dedup across portfolios", func(t *testing.T) {
		// Two portfolios hold the same unpriced ticker; the union must
		// report it once.
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		a := testutil.NewPortfolio().WithUserID(userID).Build(t, db)
		b := testutil.NewPortfolio().WithUserID(userID).Build(t, db)

		testutil.NewTransaction(a.ID).WithDate("2023-01-02").WithTicker("AAPL").ExternallyFunded().Build(t, db)
		testutil.NewTransaction(b.ID).WithDate("2023-03-01").WithTicker("aapl").ExternallyFunded().Build(t, db)

		stooq := testutil.NewFakePriceProvider(model.SourceStooq)
		fx := testutil.NewFakeFXProvider(model.SourceStooq)
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{Stooq: stooq}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		agg, err := svc.CalculateAggregatePerformance(ctx, userID, 2023)
		if err != nil {
			t.Fatalf("CalculateAggregatePerformance() returned unexpected error: %v", err)
		}

		if len(agg.MissingPrices) != 1 {
			t.Errorf("Expected case-insensitive dedup to a single entry, got %+v", agg.MissingPrices)
		}
	})
}

// TestPerformanceService_CalculateXIRR tests the money-weighted return
// path, including the exchange-rate auto-fill write-back.
//
// WHY: XIRR is the one calculation that mutates state (persisting
// auto-filled rates); both the happy path and the degraded
// missing-rate path must be exact.
func TestPerformanceService_CalculateXIRR(t *testing.T) {
	ctx := context.Background()

	t.Run("auto-fills missing exchange rate and persists it", func(t *testing.T) {
		// Setup: a UK buy with no stored rate in a USD portfolio.
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithDate("2023-06-01").
			WithTicker("VOD.L").WithMarket(model.MarketUK).
			WithShares(100).WithPrice(4).
			ExternallyFunded().Build(t, db)

		fx := testutil.NewFakeFXProvider(model.SourceStooq)
		fx.SetRate("GBP", "USD", marketdata.RatePoint{Rate: 1.25, ActualDate: day("2023-06-01")})
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		// Execute
		result, err := svc.CalculateXIRR(ctx, portfolio.UserID, portfolio.ID, day("2023-12-31"))
		if err != nil {
			t.Fatalf("CalculateXIRR() returned unexpected error: %v", err)
		}

		// Assert: invest 500 USD, terminal value 500 USD, rate ~0.
		if len(result.MissingExchangeRates) != 0 {
			t.Fatalf("Expected no missing rates, got %+v", result.MissingExchangeRates)
		}
		if result.CashFlowCount != 1 {
			t.Errorf("Expected 1 cash flow, got %d", result.CashFlowCount)
		}
		if result.Rate == nil {
			t.Fatal("Expected an XIRR rate")
		}
		if math.Abs(*result.Rate) > 1e-4 {
			t.Errorf("Expected rate near zero, got %v", *result.Rate)
		}
		if fx.CallCount() != 1 {
			t.Errorf("Expected one provider call, got %d", fx.CallCount())
		}

		// The resolved rate is written back to the transaction row, so a
		// repeat calculation needs no provider at all.
		if _, err := svc.CalculateXIRR(ctx, portfolio.UserID, portfolio.ID, day("2023-12-31")); err != nil {
			t.Fatalf("CalculateXIRR() returned unexpected error: %v", err)
		}
		if fx.CallCount() != 1 {
			t.Errorf("Expected no further provider calls, got %d", fx.CallCount())
		}
	})

	t.Run("unresolvable rate excludes the flow and reports it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		tx := testutil.NewTransaction(portfolio.ID).
			WithDate("2023-06-01").
			WithTicker("VOD.L").WithMarket(model.MarketUK).
			WithShares(100).WithPrice(4).
			ExternallyFunded().Build(t, db)

		fx := testutil.NewFakeFXProvider(model.SourceStooq) // no rates configured
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		result, err := svc.CalculateXIRR(ctx, portfolio.UserID, portfolio.ID, day("2023-12-31"))
		if err != nil {
			t.Fatalf("CalculateXIRR() returned unexpected error: %v", err)
		}

		if result.CashFlowCount != 0 {
			t.Errorf("Expected 0 usable cash flows, got %d", result.CashFlowCount)
		}
		if result.Rate != nil {
			t.Errorf("Expected nil rate, got %v", *result.Rate)
		}
		if len(result.MissingExchangeRates) != 1 {
			t.Fatalf("Expected one missing rate, got %+v", result.MissingExchangeRates)
		}
		missing := result.MissingExchangeRates[0]
		if missing.TransactionID != tx.ID {
			t.Errorf("Expected transaction %s, got %s", tx.ID, missing.TransactionID)
		}
		if missing.CurrencyPair != "GBP/USD" {
			t.Errorf("Expected pair GBP/USD, got %s", missing.CurrencyPair)
		}
	})

	t.Run("spread buys against a grown terminal value", func(t *testing.T) {
		// Setup: 1000 on Jan 1 and 1000 on Jul 1 2023, holdings priced at
		// 120 per share by the as-of date.
		db := testutil.SetupTestDB(t)
		portfolio := testutil.NewPortfolio().Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithDate("2023-01-01").WithShares(10).WithPrice(100).
			ExternallyFunded().Build(t, db)
		testutil.NewTransaction(portfolio.ID).
			WithDate("2023-07-01").WithShares(10).WithPrice(100).
			ExternallyFunded().Build(t, db)
		// A minimal non-flow trade carries the latest market price.
		testutil.NewTransaction(portfolio.ID).
			WithDate("2023-12-30").WithShares(0.0001).WithPrice(120).
			Build(t, db)

		fx := testutil.NewFakeFXProvider(model.SourceStooq)
		histService := testutil.NewTestHistoricalDataService(t, db, marketdata.Router{}, fx)
		svc := testutil.NewTestPerformanceService(t, db, histService)

		result, err := svc.CalculateXIRR(ctx, portfolio.UserID, portfolio.ID, day("2023-12-31"))
		if err != nil {
			t.Fatalf("CalculateXIRR() returned unexpected error: %v", err)
		}

		if result.CashFlowCount != 2 {
			t.Errorf("Expected 2 cash flows, got %d", result.CashFlowCount)
		}
		if result.Rate == nil {
			t.Fatal("Expected an XIRR rate")
		}
		// 2000 in, ~2400 out with the second leg held half a year: the
		// annualized rate lands well above the simple 20%.
		if *result.Rate < 0.20 || *result.Rate > 0.40 {
			t.Errorf("Expected rate in (0.20, 0.40), got %v", *result.Rate)
		}
	})
}
