package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// SQLSTATE codes after which an archive insert is worth repeating.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrAdminShutdown        = "57P01"
	pgErrCannotConnectNow     = "57P03"
)

// DefaultArchiveRetries bounds how often one event insert is repeated.
const DefaultArchiveRetries = 3

// Retrier repeats loan_events inserts that failed for transient reasons:
// lock conflicts, a restarting server, or a connection lost before the
// statement reached it. Anything else is returned on the first attempt so
// the outbox relay keeps the event for its next poll.
type Retrier struct {
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          zerolog.Logger
}

// RetrierOption tunes a Retrier.
type RetrierOption func(*Retrier)

// WithMaxRetries caps the number of repeats after the first attempt.
func WithMaxRetries(n int) RetrierOption {
	return func(r *Retrier) {
		if n >= 0 {
			r.maxRetries = uint64(n)
		}
	}
}

// WithBackoff sets the first and the largest wait between attempts.
func WithBackoff(initial, max time.Duration) RetrierOption {
	return func(r *Retrier) {
		r.initialInterval = initial
		r.maxInterval = max
	}
}

// NewRetrier creates a Retrier logging to logger.
func NewRetrier(logger zerolog.Logger, opts ...RetrierOption) *Retrier {
	r := &Retrier{
		maxRetries:      DefaultArchiveRetries,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     time.Second,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retry runs insert for the event eventID until it succeeds, fails with a
// non-transient error, runs out of retries or ctx is done.
func (r *Retrier) Retry(ctx context.Context, eventID string, insert func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.initialInterval
	policy.MaxInterval = r.maxInterval
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := insert()
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn().
			Err(err).
			Str("event_id", eventID).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("archive insert failed, retrying")
	}

	return backoff.RetryNotify(operation, backoff.WithMaxRetries(backoff.WithContext(policy, ctx), r.maxRetries), notify)
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure, pgErrAdminShutdown, pgErrCannotConnectNow:
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
