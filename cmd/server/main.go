package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/bengbengle/nft-lend/internal/adapter/http"
	"github.com/bengbengle/nft-lend/internal/adapter/http/handler"
	"github.com/bengbengle/nft-lend/internal/adapter/http/middleware"
	"github.com/bengbengle/nft-lend/internal/adapter/repository/memory"
	postgresRepo "github.com/bengbengle/nft-lend/internal/adapter/repository/postgres"
	redisRepo "github.com/bengbengle/nft-lend/internal/adapter/repository/redis"
	"github.com/bengbengle/nft-lend/internal/infrastructure/auth"
	"github.com/bengbengle/nft-lend/internal/infrastructure/config"
	"github.com/bengbengle/nft-lend/internal/infrastructure/eventpublisher"
	"github.com/bengbengle/nft-lend/internal/infrastructure/logger"
	"github.com/bengbengle/nft-lend/internal/infrastructure/metrics"
	"github.com/bengbengle/nft-lend/internal/infrastructure/postgres"
	"github.com/bengbengle/nft-lend/internal/infrastructure/redis"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

func main() {
	// Bootstrap logger until configuration is loaded
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server failed")
	}
}

// app is the wired registry service.
type app struct {
	router      http.Handler
	relay       *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	ledger      *memory.Ledger
	closers     []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires every component. Redis and the Postgres event archive are
// only connected when configured.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegisterer(reg)

	registry := cfg.Registry()
	a.ledger = memory.NewLedger(registry, cfg.Params())
	idGen := memory.NewULIDGenerator()

	loanUC := usecase.NewLoanUseCase(usecase.LoanDependencies{
		TxManager:     a.ledger.TxManager,
		LoanRepo:      a.ledger.Loans,
		FeeRepo:       a.ledger.Fees,
		ParamsRepo:    a.ledger.Params,
		OutboxRepo:    a.ledger.Outbox,
		BorrowTickets: a.ledger.BorrowTickets,
		LendTickets:   a.ledger.LendTickets,
		Assets:        a.ledger.Assets,
		IDGen:         idGen,
		Metrics:       m,
		Registry:      registry,
	})
	protocolUC := usecase.NewProtocolUseCase(
		a.ledger.TxManager,
		a.ledger.Params,
		a.ledger.Fees,
		a.ledger.Outbox,
		a.ledger.Audit,
		a.ledger.Assets,
		nil,
		idGen,
		m,
		registry,
	)

	checks := map[string]handler.Pinger{}
	var publishers eventpublisher.MultiPublisher
	publishers = append(publishers, eventpublisher.NewLogPublisher(logger))

	if cfg.EventArchiveURL != "" {
		if err := postgres.RunMigrations(cfg.EventArchiveURL, logger); err != nil {
			return nil, fmt.Errorf("migrate event archive: %w", err)
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL: cfg.EventArchiveURL,
			MaxConns:    cfg.EventArchiveMaxConns,
			MinConns:    cfg.EventArchiveMinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect event archive: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		checks["postgres"] = pool.Ping
		publishers = append(publishers, postgresRepo.NewEventArchive(pool, postgresRepo.NewRetrier(logger, postgresRepo.WithMaxRetries(cfg.EventArchiveRetries)), cfg.EventArchiveTimeout))
		logger.Info().Msg("event archive enabled")
	}

	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		checks["redis"] = pingRedis(client)
		idempotencyStore = redisRepo.NewIdempotencyStore(client, m)
		logger.Info().Msg("idempotency keys enabled")
	}

	a.relay = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: a.ledger.Outbox,
		Publisher:  publishers,
		Logger:     logger,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	var sandboxHandler *handler.SandboxHandler
	if cfg.SandboxEnabled {
		sandboxHandler = handler.NewSandboxHandler(a.ledger.Assets)
		logger.Warn().Msg("sandbox assets enabled")
	}

	var authHandler *handler.AuthHandler
	if jwtManager != nil {
		authHandler = handler.NewAuthHandler(jwtManager, registry)
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	}

	a.router = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LoanHandler:      handler.NewLoanHandler(loanUC),
		ProtocolHandler:  handler.NewProtocolHandler(protocolUC),
		HealthHandler:    handler.NewHealthHandler(checks),
		AuthHandler:      authHandler,
		SandboxHandler:   sandboxHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.rateLimiter,
		JWTManager:       jwtManager,
		AuthEnabled:      cfg.AuthEnabled,
		Registry:         registry,
		Logger:           logger,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	return a, nil
}

func pingRedis(client *goredis.Client) handler.Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// run serves HTTP and the outbox relay until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	go func() {
		if err := a.relay.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("outbox relay stopped")
		}
	}()
	if a.rateLimiter != nil {
		go cleanupLimiters(workerCtx, a.rateLimiter, time.Hour)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.HTTPPort).
			Str("registry", cfg.Registry().Hex()).
			Bool("auth_enabled", cfg.AuthEnabled).
			Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.CleanupLimiters()
		}
	}
}
