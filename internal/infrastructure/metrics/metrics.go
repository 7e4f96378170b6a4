package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loan lifecycle metrics
	LoansCreated     prometheus.Counter
	LoansFunded      prometheus.Counter
	LoansBoughtOut   prometheus.Counter
	LoansClosed      prometheus.Counter
	LoansRepaid      prometheus.Counter
	LoansSeized      prometheus.Counter
	LoanErrors       *prometheus.CounterVec
	OperationSeconds *prometheus.HistogramVec

	// Fee metrics
	FeesCollected *prometheus.CounterVec
	FeesWithdrawn *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishErrors   prometheus.Counter

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Loan lifecycle metrics
		LoansCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "nftlend_loans_created_total",
			Help: "Total number of loans created",
		}),
		LoansFunded: factory.NewCounter(prometheus.CounterOpts{
			Name: "nftlend_loans_funded_total",
			Help: "Total number of first-time loan fundings",
		}),
		LoansBoughtOut: factory.NewCounter(prometheus.CounterOpts{
			Name: "nftlend_loans_bought_out_total",
			Help: "Total number of lender buyouts",
		}),
		LoansClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "nftlend_loans_closed_total",
			Help: "Total number of loans closed by the borrower before funding",
		}),
		LoansRepaid: factory.NewCounter(prometheus.CounterOpts{
			Name: "nftlend_loans_repaid_total",
			Help: "Total number of loans repaid",
		}),
		LoansSeized: factory.NewCounter(prometheus.CounterOpts{
			Name: "nftlend_loans_seized_total",
			Help: "Total number of loans seized by lenders",
		}),
		LoanErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_loan_errors_total",
				Help: "Total number of rejected lifecycle operations by kind",
			},
			[]string{"operation", "kind"},
		),
		OperationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nftlend_operation_duration_seconds",
				Help:    "Duration of lifecycle operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		// Fee metrics
		FeesCollected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_origination_fees_collected_total",
				Help: "Origination fees collected, in whole base units, by asset",
			},
			[]string{"asset"},
		),
		FeesWithdrawn: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_origination_fees_withdrawn_total",
				Help: "Origination fee withdrawals by asset",
			},
			[]string{"asset"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nftlend_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "nftlend_event_publish_errors_total",
			Help: "Total outbox publish failures",
		}),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		// Audit metrics
		AuditLogsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nftlend_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
