package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finbooks/finbooks/internal/adapter/http/handler"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	"github.com/finbooks/finbooks/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PostingHandler       *handler.PostingHandler
	LedgerHandler        *handler.LedgerHandler
	CloseHandler         *handler.CloseHandler
	ConsolidationHandler *handler.ConsolidationHandler
	FXHandler            *handler.FXHandler
	AccrualHandler       *handler.AccrualHandler
	HealthHandler        *handler.HealthHandler
	IdempotencyStore     usecase.IdempotencyStore
	LoggingMiddleware    *middleware.LoggingMiddleware
	MetricsMiddleware    *middleware.MetricsMiddleware
	SyncRateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware.Wrap)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1; every route is tenant-scoped
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Tenant)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Transactions and ledger entries
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", cfg.PostingHandler.PostTransaction)
		})
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", cfg.LedgerHandler.ListEntries)
			r.Get("/{id}", cfg.LedgerHandler.GetEntry)
			r.Get("/{id}/duplicates", cfg.LedgerHandler.DetectDuplicates)
			r.Post("/reconcile", cfg.LedgerHandler.Reconcile)
		})

		// Chart of accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.LedgerHandler.CreateChartAccount)
			r.Get("/", cfg.LedgerHandler.ListChartAccounts)
			r.Post("/seed", cfg.LedgerHandler.SeedChartAccounts)
			r.Get("/{code}/balance", cfg.LedgerHandler.GetBalance)
		})

		// Documents
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.PostingHandler.CreateDocument)
			r.Get("/{id}", cfg.PostingHandler.GetDocument)
			r.Post("/{id}/post", cfg.PostingHandler.PostDocument)
		})

		// Period closes
		r.Route("/closes", func(r chi.Router) {
			r.Post("/", cfg.CloseHandler.Create)
			r.Get("/{id}", cfg.CloseHandler.Get)
			r.Post("/{id}/start", cfg.CloseHandler.Start)
			r.Post("/{id}/lock", cfg.CloseHandler.Lock)
			r.Post("/{id}/complete", cfg.CloseHandler.Complete)
			r.Post("/{id}/reopen", cfg.CloseHandler.Reopen)
			r.Get("/{id}/tasks", cfg.CloseHandler.ListTasks)
			r.Post("/{id}/tasks/run", cfg.CloseHandler.ExecuteTasks)
			r.Post("/{id}/tasks/{taskID}/complete", cfg.CloseHandler.CompleteTask)
			r.Post("/{id}/tasks/{taskID}/skip", cfg.CloseHandler.SkipTask)
			r.Post("/{id}/variances/check", cfg.CloseHandler.CheckVariances)
			r.Get("/{id}/variances", cfg.CloseHandler.ListVariances)
		})

		// Entities and consolidation
		r.Route("/entities", func(r chi.Router) {
			r.Post("/", cfg.ConsolidationHandler.CreateEntity)
			r.Get("/hierarchy", cfg.ConsolidationHandler.GetHierarchy)
			r.Get("/{id}", cfg.ConsolidationHandler.GetEntity)
		})
		r.Route("/consolidation", func(r chi.Router) {
			r.Post("/intercompany", cfg.ConsolidationHandler.CreateIntercompany)
			r.Get("/profit-loss", cfg.ConsolidationHandler.GetProfitLoss)
			r.Get("/balance-sheet", cfg.ConsolidationHandler.GetBalanceSheet)
			r.Post("/remeasure", cfg.ConsolidationHandler.Remeasure)
		})

		// Exchange rates
		r.Route("/rates", func(r chi.Router) {
			r.Get("/", cfg.FXHandler.GetRate)
			r.Post("/manual", cfg.FXHandler.EnterManualRate)
			if cfg.SyncRateLimiter != nil {
				r.With(cfg.SyncRateLimiter.Limit).Post("/sync", cfg.FXHandler.SyncRates)
			} else {
				r.Post("/sync", cfg.FXHandler.SyncRates)
			}
		})

		// Accruals and prepayments
		r.Route("/accruals", func(r chi.Router) {
			r.Post("/", cfg.AccrualHandler.CreateAccrual)
			r.Post("/post", cfg.AccrualHandler.PostPending)
			r.Post("/reverse", cfg.AccrualHandler.ReversePosted)
		})
		r.Route("/prepayments", func(r chi.Router) {
			r.Post("/", cfg.AccrualHandler.CreatePrepayment)
			r.Post("/amortize", cfg.AccrualHandler.Amortize)
		})
	})

	return r
}
