package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ycliang/portfolio-performance-engine/internal/api/handlers"
	custommiddleware "github.com/ycliang/portfolio-performance-engine/internal/api/middleware"
	"github.com/ycliang/portfolio-performance-engine/internal/config"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System      *service.SystemService
	Portfolio   *service.PortfolioService
	Transaction *service.TransactionService
	Snapshot    *service.SnapshotService
	Split       *service.SplitService
	HistData    *service.HistoricalDataService
	Performance *service.PerformanceService
	Provider    *service.ProviderConfigService
	Refresh     *service.RefreshService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svcs Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svcs.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		// Portfolio-scoped routes require a user identity
		r.Route("/portfolio", func(r chi.Router) {
			r.Use(custommiddleware.UserIDMiddleware)

			portfolioHandler := handlers.NewPortfolioHandler(svcs.Portfolio)
			transactionHandler := handlers.NewTransactionHandler(svcs.Transaction, svcs.Snapshot, svcs.Portfolio)
			performanceHandler := handlers.NewPerformanceHandler(svcs.Performance)

			r.Get("/", portfolioHandler.Portfolios)
			r.Post("/", portfolioHandler.CreatePortfolio)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)

				r.Get("/", portfolioHandler.GetPortfolio)
				r.Put("/", portfolioHandler.UpdatePortfolio)

				r.Get("/transactions", transactionHandler.TransactionsPerPortfolio)
				r.Post("/transactions", transactionHandler.CreateTransaction)
				r.Delete("/transactions/{transactionId}", transactionHandler.DeleteTransaction)

				r.Get("/snapshots", transactionHandler.Snapshots)
				r.Post("/snapshots/backfill", transactionHandler.BackfillSnapshots)

				r.Get("/performance", performanceHandler.YearPerformance)
				r.Get("/xirr", performanceHandler.XIRR)
			})
		})

		r.Route("/performance", func(r chi.Router) {
			r.Use(custommiddleware.UserIDMiddleware)

			performanceHandler := handlers.NewPerformanceHandler(svcs.Performance)
			r.Get("/aggregate", performanceHandler.AggregatePerformance)
		})

		// Splits are a global registry, not per-user data
		r.Route("/split", func(r chi.Router) {
			splitHandler := handlers.NewSplitHandler(svcs.Split)
			r.Get("/", splitHandler.Splits)
			r.Post("/", splitHandler.CreateSplit)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Delete("/", splitHandler.DeleteSplit)
			})
		})

		r.Route("/marketdata", func(r chi.Router) {
			marketDataHandler := handlers.NewMarketDataHandler(svcs.HistData, svcs.Provider)
			r.Get("/year-end-price", marketDataHandler.YearEndPrice)
			r.Get("/year-end-rate", marketDataHandler.YearEndRate)
			r.Get("/transaction-rate", marketDataHandler.TransactionRate)
			r.Post("/year-end-price", marketDataHandler.SaveYearEndPrice)
			r.Post("/year-end-rate", marketDataHandler.SaveYearEndRate)
			r.Post("/transaction-rate", marketDataHandler.SaveTransactionRate)
		})

		// Internal maintenance endpoints
		r.Route("/internal", func(r chi.Router) {
			r.Use(custommiddleware.APIKeyMiddleware)

			marketDataHandler := handlers.NewMarketDataHandler(svcs.HistData, svcs.Provider)
			refreshHandler := handlers.NewRefreshHandler(svcs.Refresh)
			r.Post("/provider-token", marketDataHandler.SaveProviderToken)
			r.Post("/refresh-rates", refreshHandler.RefreshRates)
		})
	})

	return r
}
