package memory

import (
	"context"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// ParamsRepository implements usecase.ParamsRepository.
type ParamsRepository struct {
	state  *State
	params domain.Params
}

// NewParamsRepository creates a ParamsRepository holding initial.
func NewParamsRepository(state *State, initial domain.Params) *ParamsRepository {
	return &ParamsRepository{state: state, params: initial.Clone()}
}

// Get returns the current parameters.
func (r *ParamsRepository) Get(ctx context.Context) (domain.Params, error) {
	var params domain.Params
	err := r.state.read(ctx, func() { params = r.params.Clone() })
	return params, err
}

// Update replaces the parameters.
func (r *ParamsRepository) Update(ctx context.Context, tx usecase.Transaction, params domain.Params) error {
	return r.state.writeTx(ctx, tx, func(t *Tx) error {
		prev := r.params
		r.params = params.Clone()
		t.onRollback(func() { r.params = prev })
		return nil
	})
}
