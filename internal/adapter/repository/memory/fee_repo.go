package memory

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// FeeLedgerRepository implements usecase.FeeLedgerRepository.
type FeeLedgerRepository struct {
	state    *State
	balances map[common.Address]*uint256.Int
}

// NewFeeLedgerRepository creates a new FeeLedgerRepository.
func NewFeeLedgerRepository(state *State) *FeeLedgerRepository {
	return &FeeLedgerRepository{
		state:    state,
		balances: make(map[common.Address]*uint256.Int),
	}
}

// Balance returns the collected fees for asset.
func (r *FeeLedgerRepository) Balance(ctx context.Context, asset common.Address) (*uint256.Int, error) {
	balance := new(uint256.Int)
	err := r.state.read(ctx, func() {
		if b, ok := r.balances[asset]; ok {
			balance.Set(b)
		}
	})
	return balance, err
}

// Add credits amount to the asset balance.
func (r *FeeLedgerRepository) Add(ctx context.Context, tx usecase.Transaction, asset common.Address, amount *uint256.Int) error {
	return r.state.writeTx(ctx, tx, func(t *Tx) error {
		next, overflow := new(uint256.Int).AddOverflow(r.get(asset), amount)
		if overflow {
			return domain.ErrArithmeticOverflow
		}
		r.set(t, asset, next)
		return nil
	})
}

// Sub debits amount from the asset balance.
func (r *FeeLedgerRepository) Sub(ctx context.Context, tx usecase.Transaction, asset common.Address, amount *uint256.Int) error {
	return r.state.writeTx(ctx, tx, func(t *Tx) error {
		prev := r.get(asset)
		if amount.Gt(prev) {
			return fmt.Errorf("%w: requested %s, available %s", domain.ErrInsufficientFees, amount.Dec(), prev.Dec())
		}
		r.set(t, asset, new(uint256.Int).Sub(prev, amount))
		return nil
	})
}

func (r *FeeLedgerRepository) get(asset common.Address) *uint256.Int {
	if b, ok := r.balances[asset]; ok {
		return b
	}
	return new(uint256.Int)
}

func (r *FeeLedgerRepository) set(t *Tx, asset common.Address, next *uint256.Int) {
	prev, had := r.balances[asset]
	r.balances[asset] = next
	t.onRollback(func() {
		if had {
			r.balances[asset] = prev
		} else {
			delete(r.balances, asset)
		}
	})
}
