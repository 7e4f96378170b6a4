package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	state  *State
	events []*domain.OutboxEvent
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(state *State) *OutboxRepository {
	return &OutboxRepository{state: state}
}

// Create appends an event within a transaction.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return r.state.writeTx(ctx, tx, func(t *Tx) error {
		n := len(r.events)
		stored := *event
		r.events = append(r.events, &stored)
		t.onRollback(func() { r.events = r.events[:n] })
		return nil
	})
}

// GetUnpublished retrieves unpublished events in creation order.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	events := make([]*domain.OutboxEvent, 0)
	err := r.state.read(ctx, func() {
		for _, e := range r.events {
			if len(events) >= limit {
				return
			}
			if !e.Published {
				events = append(events, copyEvent(e))
			}
		}
	})
	return events, err
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return r.state.write(ctx, func(_ context.Context, t *Tx) error {
		for _, e := range r.events {
			if e.ID != id {
				continue
			}
			prev := *e
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
			t.onRollback(func() { *e = prev })
			return nil
		}
		return fmt.Errorf("outbox event %s not found", id)
	})
}

// GetByAggregate retrieves events for a specific aggregate.
func (r *OutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	events := make([]*domain.OutboxEvent, 0)
	err := r.state.read(ctx, func() {
		skipped := 0
		for _, e := range r.events {
			if e.AggregateType != aggregateType || e.AggregateID != aggregateID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if len(events) >= limit {
				return
			}
			events = append(events, copyEvent(e))
		}
	})
	return events, err
}

// DeletePublished drops events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	return r.state.write(ctx, func(_ context.Context, t *Tx) error {
		prev := r.events
		kept := make([]*domain.OutboxEvent, 0, len(prev))
		for _, e := range prev {
			if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
				continue
			}
			kept = append(kept, e)
		}
		r.events = kept
		t.onRollback(func() { r.events = prev })
		return nil
	})
}

func copyEvent(e *domain.OutboxEvent) *domain.OutboxEvent {
	c := *e
	if e.PublishedAt != nil {
		at := *e.PublishedAt
		c.PublishedAt = &at
	}
	return &c
}
