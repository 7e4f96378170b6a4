package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bengbengle/nft-lend/internal/domain"
)

const insertLoanEvent = `
INSERT INTO loan_events (id, aggregate_type, aggregate_id, event_type, payload, created_at, archived_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// EventArchive appends published outbox events to the loan_events table.
// Publishing the same event twice is a no-op, so relay retries are safe.
type EventArchive struct {
	db      execer
	retrier *Retrier
	timeout time.Duration
	now     func() time.Time
}

// NewEventArchive creates an EventArchive backed by pool.
func NewEventArchive(pool *pgxpool.Pool, retrier *Retrier, timeout time.Duration) *EventArchive {
	return newEventArchive(pool, retrier, timeout)
}

func newEventArchive(db execer, retrier *Retrier, timeout time.Duration) *EventArchive {
	return &EventArchive{
		db:      db,
		retrier: retrier,
		timeout: timeout,
		now:     time.Now,
	}
}

// Publish implements eventpublisher.Publisher.
func (a *EventArchive) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload for event %s: %w", event.ID, err)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	archivedAt := a.now().UTC()
	insert := func() error {
		_, err := a.db.Exec(ctx, insertLoanEvent,
			event.ID,
			event.AggregateType,
			event.AggregateID,
			event.EventType,
			payload,
			event.CreatedAt.UTC(),
			archivedAt,
		)
		return err
	}

	if a.retrier == nil {
		err = insert()
	} else {
		err = a.retrier.Retry(ctx, event.ID, insert)
	}
	if err != nil {
		return fmt.Errorf("archive event %s: %w", event.ID, err)
	}
	return nil
}
