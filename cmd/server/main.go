package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ycliang/portfolio-performance-engine/internal/api"
	"github.com/ycliang/portfolio-performance-engine/internal/config"
	"github.com/ycliang/portfolio-performance-engine/internal/database"
	"github.com/ycliang/portfolio-performance-engine/internal/marketdata"
	"github.com/ycliang/portfolio-performance-engine/internal/repository"
	"github.com/ycliang/portfolio-performance-engine/internal/secrets"
	"github.com/ycliang/portfolio-performance-engine/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	splitRepo := repository.NewSplitRepository(db)
	yearEndRepo := repository.NewYearEndDataRepository(db)
	fxRateRepo := repository.NewFXRateCacheRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	providerConfigRepo := repository.NewProviderConfigRepository(db)

	// Market data provider clients
	stooq := marketdata.NewStooqClient()
	providers := marketdata.Router{
		TWSE:  marketdata.NewTWSEClient(),
		Stooq: stooq,
		Yahoo: marketdata.NewYahooClient(),
	}

	// Provider token encryption is optional; without a key the
	// provider-token endpoint is disabled.
	var box *secrets.Box
	if cfg.Security.FernetKey != "" {
		box, err = secrets.NewBox(cfg.Security.FernetKey)
		if err != nil {
			log.Fatalf("Failed to load fernet key: %v", err)
		}
	}

	// Create services
	systemService := service.NewSystemService(db)
	portfolioService := service.NewPortfolioService(portfolioRepo)
	splitService := service.NewSplitService(splitRepo)
	histDataService := service.NewHistoricalDataService(yearEndRepo, fxRateRepo, providers, stooq)
	snapshotService := service.NewSnapshotService(snapshotRepo, transactionRepo, portfolioRepo, splitService)
	transactionService := service.NewTransactionService(transactionRepo, portfolioRepo, snapshotService)
	performanceService := service.NewPerformanceService(
		portfolioRepo,
		transactionRepo,
		splitService,
		histDataService,
		snapshotService,
	)
	providerConfigService := service.NewProviderConfigService(providerConfigRepo, box)
	refreshService := service.NewRefreshService(transactionRepo, portfolioRepo, histDataService)

	// Nightly FX refresh pre-warms the transaction-date rate cache
	var scheduler *cron.Cron
	if cfg.Scheduler.RefreshEnabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Scheduler.RefreshCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			if _, err := refreshService.RefreshMissingRates(ctx); err != nil {
				log.Printf("FX refresh job failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to schedule FX refresh job: %v", err)
		}
		scheduler.Start()
		log.Printf("FX refresh job scheduled: %s", cfg.Scheduler.RefreshCron)
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:      systemService,
		Portfolio:   portfolioService,
		Transaction: transactionService,
		Snapshot:    snapshotService,
		Split:       splitService,
		HistData:    histDataService,
		Performance: performanceService,
		Provider:    providerConfigService,
		Refresh:     refreshService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
