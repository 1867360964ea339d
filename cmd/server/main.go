package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/finbooks/finbooks/internal/adapter/fx"
	httpAdapter "github.com/finbooks/finbooks/internal/adapter/http"
	"github.com/finbooks/finbooks/internal/adapter/http/handler"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	postgresRepo "github.com/finbooks/finbooks/internal/adapter/repository/postgres"
	redisRepo "github.com/finbooks/finbooks/internal/adapter/repository/redis"
	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/infrastructure/config"
	"github.com/finbooks/finbooks/internal/infrastructure/logging"
	"github.com/finbooks/finbooks/internal/infrastructure/metrics"
	"github.com/finbooks/finbooks/internal/infrastructure/postgres"
	"github.com/finbooks/finbooks/internal/infrastructure/redis"
	"github.com/finbooks/finbooks/internal/usecase"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	logger.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	txRepo := postgresRepo.NewTransactionRepository(pool)
	chartRepo := postgresRepo.NewChartRepository(pool)
	closeRepo := postgresRepo.NewCloseRepository(pool)
	entityRepo := postgresRepo.NewEntityRepository(pool)
	intercompanyRepo := postgresRepo.NewIntercompanyRepository(pool)
	rateRepo := postgresRepo.NewRateRepository(pool)
	accrualRepo := postgresRepo.NewAccrualRepository(pool)
	documentRepo := postgresRepo.NewDocumentRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	locker := postgresRepo.NewAdvisoryLocker(pool, logger)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	postingUC := usecase.NewPostingUseCase(txManager, entryRepo, txRepo, documentRepo, cache, idGen, cfg.ConfidenceThreshold)
	ledgerUC := usecase.NewLedgerUseCase(txManager, entryRepo, chartRepo, cache, idGen)
	duplicateUC := usecase.NewDuplicateUseCase(entryRepo)
	fxUC := usecase.NewFXUseCase(rateRepo, idGen, logger, cfg.FXBatchSize, cfg.FXBatchDelay)
	fxUC.RegisterProvider(fx.NewECBProvider(nil, cfg.FXProviderURL))
	consolidationUC := usecase.NewConsolidationUseCase(txManager, entityRepo, intercompanyRepo, entryRepo, fxUC, idGen)
	accrualUC := usecase.NewAccrualUseCase(accrualRepo, postingUC, idGen)

	closeUC := usecase.NewCloseUseCase(txManager, closeRepo, entryRepo, chartRepo, idGen, locker, logger)
	registerCloseEngines(closeUC, accrualUC, ledgerUC, entryRepo)

	// Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PostingHandler:       handler.NewPostingHandler(postingUC),
		LedgerHandler:        handler.NewLedgerHandler(ledgerUC, duplicateUC),
		CloseHandler:         handler.NewCloseHandler(closeUC),
		ConsolidationHandler: handler.NewConsolidationHandler(consolidationUC),
		FXHandler:            handler.NewFXHandler(fxUC),
		AccrualHandler:       handler.NewAccrualHandler(accrualUC),
		HealthHandler:        handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:     idempotencyStore,
		LoggingMiddleware:    middleware.NewLoggingMiddleware(logger),
		MetricsMiddleware:    middleware.NewMetricsMiddleware(appMetrics),
		SyncRateLimiter:      middleware.NewRateLimiter(cfg.FXSyncRPS, int(cfg.FXSyncRPS)+1),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		logger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// registerCloseEngines binds an automation engine to every task type the
// close checklist can execute without a human.
func registerCloseEngines(closeUC *usecase.CloseUseCase, accrualUC *usecase.AccrualUseCase, ledgerUC *usecase.LedgerUseCase, entryRepo usecase.EntryRepository) {
	closeUC.RegisterEngine(domain.TaskTypeAccrual, usecase.NewAccrualEngine(accrualUC))
	closeUC.RegisterEngine(domain.TaskTypePrepayment, usecase.NewPrepaymentEngine(accrualUC))
	closeUC.RegisterEngine(domain.TaskTypeReconciliation, usecase.NewReconciliationEngine(ledgerUC, entryRepo))
	closeUC.RegisterEngine(domain.TaskTypeValidation, usecase.NewValidationEngine(entryRepo))
	closeUC.RegisterEngine(domain.TaskTypeReport, usecase.NewReportEngine(entryRepo))
}
