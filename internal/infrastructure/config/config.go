package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Registry
	RegistryAddress         string `env:"REGISTRY_ADDRESS"          envDefault:"0x00000000000000000000000000000000000a11ce"`
	ManagerAddress          string `env:"MANAGER_ADDRESS"           envDefault:"0x000000000000000000000000000000000000b055"`
	OriginationFeeRate      uint64 `env:"ORIGINATION_FEE_RATE"      envDefault:"10"`
	RequiredImprovementRate uint64 `env:"REQUIRED_IMPROVEMENT_RATE" envDefault:"10"`
	SandboxEnabled          bool   `env:"SANDBOX_ENABLED"           envDefault:"true"`

	// Event archive (optional - leave empty to disable)
	EventArchiveURL      string        `env:"EVENT_ARCHIVE_URL"       envDefault:""`
	EventArchiveMaxConns int           `env:"EVENT_ARCHIVE_MAX_CONNS" envDefault:"10"`
	EventArchiveMinConns int           `env:"EVENT_ARCHIVE_MIN_CONNS" envDefault:"1"`
	EventArchiveTimeout  time.Duration `env:"EVENT_ARCHIVE_TIMEOUT"   envDefault:"30s"`
	EventArchiveRetries  int           `env:"EVENT_ARCHIVE_RETRIES"   envDefault:"3"`

	// Outbox relay
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE"    envDefault:"100"`
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"1s"`
	OutboxRetention    time.Duration `env:"OUTBOX_RETENTION"     envDefault:"168h"`

	// Redis (optional - leave empty to disable idempotency keys)
	RedisURL string `env:"REDIS_URL" envDefault:""`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"30s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Rate limiting
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"50"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Idempotency
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	// Authentication (optional - leave empty to disable)
	JWTSecret     string        `env:"JWT_SECRET"       envDefault:""`
	JWTExpiration time.Duration `env:"JWT_EXPIRATION"   envDefault:"24h"`
	AuthEnabled   bool          `env:"AUTH_ENABLED"     envDefault:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	registry, err := domain.ParseNonZeroAddress(c.RegistryAddress)
	if err != nil {
		return fmt.Errorf("REGISTRY_ADDRESS: %w", err)
	}
	manager, err := domain.ParseNonZeroAddress(c.ManagerAddress)
	if err != nil {
		return fmt.Errorf("MANAGER_ADDRESS: %w", err)
	}
	if manager == registry {
		return fmt.Errorf("MANAGER_ADDRESS: must differ from REGISTRY_ADDRESS")
	}
	if err := domain.ValidateOriginationFeeRate(uint256.NewInt(c.OriginationFeeRate)); err != nil {
		return fmt.Errorf("ORIGINATION_FEE_RATE: %w", err)
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	return nil
}

// Registry returns the registry custody address.
func (c *Config) Registry() common.Address {
	return common.HexToAddress(c.RegistryAddress)
}

// Params returns the launch protocol parameters.
func (c *Config) Params() domain.Params {
	return domain.Params{
		Manager:                 common.HexToAddress(c.ManagerAddress),
		OriginationFeeRate:      uint256.NewInt(c.OriginationFeeRate),
		RequiredImprovementRate: c.RequiredImprovementRate,
	}
}
