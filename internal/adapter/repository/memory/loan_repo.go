package memory

import (
	"context"
	"sort"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	state *State
	loans map[domain.LoanID]*domain.Loan
	last  domain.LoanID
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(state *State) *LoanRepository {
	return &LoanRepository{
		state: state,
		loans: make(map[domain.LoanID]*domain.Loan),
	}
}

// NextID reserves the next id. A rolled back reservation is released.
func (r *LoanRepository) NextID(ctx context.Context, tx usecase.Transaction) (domain.LoanID, error) {
	var id domain.LoanID
	err := r.state.writeTx(ctx, tx, func(t *Tx) error {
		prev := r.last
		r.last++
		id = r.last
		t.onRollback(func() { r.last = prev })
		return nil
	})
	return id, err
}

// Create stores a new loan.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	return r.state.writeTx(ctx, tx, func(t *Tx) error {
		if _, ok := r.loans[loan.ID]; ok {
			return domain.ErrInvalidLoanID
		}
		r.loans[loan.ID] = loan.Clone()
		id := loan.ID
		t.onRollback(func() { delete(r.loans, id) })
		return nil
	})
}

// GetByID returns a copy of a loan.
func (r *LoanRepository) GetByID(ctx context.Context, id domain.LoanID) (*domain.Loan, error) {
	var loan *domain.Loan
	if err := r.state.read(ctx, func() { loan = r.loans[id].Clone() }); err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}
	return loan, nil
}

// GetByIDForUpdate returns a copy of a loan inside tx.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id domain.LoanID) (*domain.Loan, error) {
	var loan *domain.Loan
	err := r.state.writeTx(ctx, tx, func(*Tx) error {
		loan = r.loans[id].Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}
	return loan, nil
}

// Update replaces a stored loan.
func (r *LoanRepository) Update(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	return r.state.writeTx(ctx, tx, func(t *Tx) error {
		prev, ok := r.loans[loan.ID]
		if !ok {
			return domain.ErrLoanNotFound
		}
		r.loans[loan.ID] = loan.Clone()
		id := loan.ID
		t.onRollback(func() { r.loans[id] = prev })
		return nil
	})
}

// List returns loans ordered by id.
func (r *LoanRepository) List(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	err := r.state.read(ctx, func() {
		ids := make([]domain.LoanID, 0, len(r.loans))
		for id := range r.loans {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		if offset >= len(ids) {
			return
		}
		ids = ids[offset:]
		if len(ids) > limit {
			ids = ids[:limit]
		}
		for _, id := range ids {
			loans = append(loans, r.loans[id].Clone())
		}
	})
	if err != nil {
		return nil, err
	}
	if loans == nil {
		loans = []*domain.Loan{}
	}
	return loans, nil
}
