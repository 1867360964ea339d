package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Posting metrics
	EntriesPosted      prometheus.Counter
	DocumentsPosted    prometheus.Counter
	PostingErrors      *prometheus.CounterVec
	TransactionAmounts prometheus.Histogram

	// Period close metrics
	ClosesCreated   prometheus.Counter
	ClosesCompleted prometheus.Counter
	TasksExecuted   *prometheus.CounterVec
	TasksBlocked    *prometheus.CounterVec
	VarianceAlerts  *prometheus.CounterVec

	// FX metrics
	RateFetches    *prometheus.CounterVec
	RateCacheHits  prometheus.Counter
	RateSyncFailed prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		EntriesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbooks_entries_posted_total",
			Help: "Total number of ledger entries posted",
		}),
		DocumentsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbooks_documents_posted_total",
			Help: "Total number of documents posted to the ledger",
		}),
		PostingErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbooks_posting_errors_total",
				Help: "Total number of posting errors by type",
			},
			[]string{"error_type"},
		),
		TransactionAmounts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "finbooks_transaction_amount",
			Help:    "Posted transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		ClosesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbooks_period_closes_created_total",
			Help: "Total number of period closes created",
		}),
		ClosesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbooks_period_closes_completed_total",
			Help: "Total number of period closes completed",
		}),
		TasksExecuted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbooks_close_tasks_executed_total",
				Help: "Total number of close tasks executed by type",
			},
			[]string{"task_type"},
		),
		TasksBlocked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbooks_close_tasks_blocked_total",
				Help: "Total number of close tasks blocked by type",
			},
			[]string{"task_type"},
		),
		VarianceAlerts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbooks_variance_alerts_total",
				Help: "Total number of variance alerts raised by severity",
			},
			[]string{"severity"},
		),

		RateFetches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbooks_rate_fetches_total",
				Help: "Total number of exchange rate provider fetches by outcome",
			},
			[]string{"provider", "outcome"},
		),
		RateCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbooks_rate_cache_hits_total",
			Help: "Total number of exchange rate cache hits",
		}),
		RateSyncFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbooks_rate_sync_failed_total",
			Help: "Total number of failed pair-days during rate sync",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbooks_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finbooks_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finbooks_rate_limit_hits_total",
				Help: "Total number of rate limited requests",
			},
			[]string{"path"},
		),
	}
}
