package http

import (
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bengbengle/nft-lend/internal/adapter/http/handler"
	"github.com/bengbengle/nft-lend/internal/adapter/http/middleware"
	"github.com/bengbengle/nft-lend/internal/infrastructure/auth"
	"github.com/bengbengle/nft-lend/internal/infrastructure/metrics"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LoanHandler     *handler.LoanHandler
	ProtocolHandler *handler.ProtocolHandler
	HealthHandler   *handler.HealthHandler
	AuthHandler     *handler.AuthHandler

	// SandboxHandler is nil when sandbox assets are disabled.
	SandboxHandler *handler.SandboxHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	JWTManager  *auth.JWTManager
	AuthEnabled bool

	// Registry is the custody address; requests may not act as it.
	Registry common.Address

	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CallerAuth(cfg.JWTManager, cfg.AuthEnabled, cfg.Registry, cfg.Metrics))

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.Get("/", cfg.LoanHandler.List)
			r.Get("/{id}", cfg.LoanHandler.Get)
			r.Get("/{id}/owed", cfg.LoanHandler.Owed)
			r.Get("/{id}/events", cfg.LoanHandler.Events)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireMutate)
				r.Post("/", cfg.LoanHandler.Create)
				r.Post("/{id}/lend", cfg.LoanHandler.Lend)
				r.Post("/{id}/close", cfg.LoanHandler.Close)
				r.Post("/{id}/repay", cfg.LoanHandler.Repay)
				r.Post("/{id}/seize", cfg.LoanHandler.Seize)
			})
		})

		// Protocol parameters and fees
		r.Route("/protocol", func(r chi.Router) {
			r.Get("/", cfg.ProtocolHandler.Params)
			r.Get("/fees/{asset}", cfg.ProtocolHandler.Fees)
			r.Get("/audit", cfg.ProtocolHandler.AuditLogs)
			r.Get("/events", cfg.ProtocolHandler.Events)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireMutate)
				r.Put("/fee-rate", cfg.ProtocolHandler.UpdateFeeRate)
				r.Put("/improvement-rate", cfg.ProtocolHandler.UpdateImprovementRate)
				r.Post("/fees/withdraw", cfg.ProtocolHandler.WithdrawFees)
			})
		})

		if cfg.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Get("/me", cfg.AuthHandler.Me)
				// Anyone can mint a token for any address, so only sandboxes
				// expose this.
				if cfg.SandboxHandler != nil {
					r.Post("/token", cfg.AuthHandler.IssueToken)
				}
			})
		}

		if cfg.SandboxHandler != nil {
			r.Route("/sandbox", func(r chi.Router) {
				r.Get("/assets", cfg.SandboxHandler.List)
				r.Get("/{asset}/balance/{owner}", cfg.SandboxHandler.Balance)
				r.Get("/{asset}/owner/{tokenId}", cfg.SandboxHandler.Owner)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireMutate)
					r.Post("/fungible", cfg.SandboxHandler.DeployFungible)
					r.Post("/nonfungible", cfg.SandboxHandler.DeployNonFungible)
					r.Post("/{asset}/mint", cfg.SandboxHandler.Mint)
					r.Post("/{asset}/approve", cfg.SandboxHandler.Approve)
				})
			})
		}
	})

	return r
}
