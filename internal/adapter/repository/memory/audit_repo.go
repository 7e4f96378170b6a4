package memory

import (
	"context"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	state *State
	logs  []*domain.AuditLog
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(state *State) *AuditRepository {
	return &AuditRepository{state: state}
}

// CreateTx records an audit row within a transaction.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return r.state.writeTx(ctx, tx, func(t *Tx) error {
		n := len(r.logs)
		stored := *log
		r.logs = append(r.logs, &stored)
		t.onRollback(func() { r.logs = r.logs[:n] })
		return nil
	})
}

// List returns audit rows matching filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	logs := make([]*domain.AuditLog, 0)
	err := r.state.read(ctx, func() {
		skipped := 0
		for i := len(r.logs) - 1; i >= 0; i-- {
			l := r.logs[i]
			if !filter.Matches(l) {
				continue
			}
			if skipped < filter.Offset {
				skipped++
				continue
			}
			if filter.Limit > 0 && len(logs) >= filter.Limit {
				return
			}
			c := *l
			logs = append(logs, &c)
		}
	})
	return logs, err
}
