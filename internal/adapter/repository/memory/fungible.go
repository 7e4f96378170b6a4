package memory

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/domain"
)

// FungibleHook runs after a fungible transfer has moved balances, inside the
// same transaction. Returning an error reverts the transfer.
type FungibleHook func(ctx context.Context, from, to common.Address, amount *uint256.Int) error

// FungibleToken is a sandbox fungible asset with balances and allowances.
type FungibleToken struct {
	state      *State
	address    common.Address
	name       string
	symbol     string
	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int
	supply     *uint256.Int
	hook       FungibleHook
}

// NewFungibleToken creates an empty token deployed at address.
func NewFungibleToken(state *State, address common.Address, name, symbol string) *FungibleToken {
	return &FungibleToken{
		state:      state,
		address:    address,
		name:       name,
		symbol:     symbol,
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
		supply:     new(uint256.Int),
	}
}

// Address returns the token address.
func (f *FungibleToken) Address() common.Address { return f.address }

// Name returns the token name.
func (f *FungibleToken) Name() string { return f.name }

// Symbol returns the token symbol.
func (f *FungibleToken) Symbol() string { return f.symbol }

// SetTransferHook installs hook, replacing any previous one. A nil hook
// removes it.
func (f *FungibleToken) SetTransferHook(hook FungibleHook) {
	f.hook = hook
}

// Mint credits amount to to.
func (f *FungibleToken) Mint(ctx context.Context, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return domain.ErrZeroAddressNotAllowed
	}
	return f.state.write(ctx, func(_ context.Context, tx *Tx) error {
		supply, overflow := new(uint256.Int).AddOverflow(f.supply, amount)
		if overflow {
			return domain.ErrArithmeticOverflow
		}
		prevSupply := f.supply
		f.supply = supply
		tx.onRollback(func() { f.supply = prevSupply })
		f.credit(tx, to, amount)
		return nil
	})
}

// Approve sets the allowance of spender over owner's balance.
func (f *FungibleToken) Approve(ctx context.Context, owner, spender common.Address, amount *uint256.Int) error {
	return f.state.write(ctx, func(_ context.Context, tx *Tx) error {
		f.setAllowance(tx, owner, spender, amount.Clone())
		return nil
	})
}

// Allowance returns what spender may still move from owner.
func (f *FungibleToken) Allowance(ctx context.Context, owner, spender common.Address) (*uint256.Int, error) {
	allowance := new(uint256.Int)
	err := f.state.read(ctx, func() { allowance.Set(f.allowance(owner, spender)) })
	return allowance, err
}

// BalanceOf returns the balance of owner.
func (f *FungibleToken) BalanceOf(ctx context.Context, owner common.Address) (*uint256.Int, error) {
	balance := new(uint256.Int)
	err := f.state.read(ctx, func() { balance.Set(f.balance(owner)) })
	return balance, err
}

// TotalSupply returns the minted supply.
func (f *FungibleToken) TotalSupply(ctx context.Context) (*uint256.Int, error) {
	supply := new(uint256.Int)
	err := f.state.read(ctx, func() { supply.Set(f.supply) })
	return supply, err
}

// Transfer moves amount out of from's own balance.
func (f *FungibleToken) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	return f.state.write(ctx, func(ctx context.Context, tx *Tx) error {
		return f.move(ctx, tx, from, to, amount)
	})
}

// TransferFrom moves amount from from to to on behalf of operator, spending
// allowance unless operator is from. A maximal allowance is never spent.
func (f *FungibleToken) TransferFrom(ctx context.Context, operator, from, to common.Address, amount *uint256.Int) error {
	return f.state.write(ctx, func(ctx context.Context, tx *Tx) error {
		if operator != from {
			allowance := f.allowance(from, operator)
			if allowance.Lt(amount) {
				return fmt.Errorf("%w: %s may move %s of %s, requested %s",
					domain.ErrInsufficientAllowance, operator.Hex(), allowance.Dec(), from.Hex(), amount.Dec())
			}
			if !isMax(allowance) {
				f.setAllowance(tx, from, operator, new(uint256.Int).Sub(allowance, amount))
			}
		}
		return f.move(ctx, tx, from, to, amount)
	})
}

func (f *FungibleToken) move(ctx context.Context, tx *Tx, from, to common.Address, amount *uint256.Int) error {
	if to == (common.Address{}) {
		return domain.ErrZeroAddressNotAllowed
	}
	balance := f.balance(from)
	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s, requested %s", domain.ErrInsufficientBalance, from.Hex(), balance.Dec(), amount.Dec())
	}
	f.setBalance(tx, from, new(uint256.Int).Sub(balance, amount))
	f.credit(tx, to, amount)

	if f.hook != nil {
		return f.hook(ctx, from, to, amount.Clone())
	}
	return nil
}

func (f *FungibleToken) credit(tx *Tx, to common.Address, amount *uint256.Int) {
	f.setBalance(tx, to, new(uint256.Int).Add(f.balance(to), amount))
}

func (f *FungibleToken) balance(owner common.Address) *uint256.Int {
	if b, ok := f.balances[owner]; ok {
		return b
	}
	return new(uint256.Int)
}

func (f *FungibleToken) setBalance(tx *Tx, owner common.Address, next *uint256.Int) {
	prev, had := f.balances[owner]
	f.balances[owner] = next
	tx.onRollback(func() {
		if had {
			f.balances[owner] = prev
		} else {
			delete(f.balances, owner)
		}
	})
}

func (f *FungibleToken) allowance(owner, spender common.Address) *uint256.Int {
	if a, ok := f.allowances[owner][spender]; ok {
		return a
	}
	return new(uint256.Int)
}

func (f *FungibleToken) setAllowance(tx *Tx, owner, spender common.Address, next *uint256.Int) {
	spenders, ok := f.allowances[owner]
	if !ok {
		spenders = make(map[common.Address]*uint256.Int)
		f.allowances[owner] = spenders
	}
	prev, had := spenders[spender]
	spenders[spender] = next
	tx.onRollback(func() {
		if had {
			spenders[spender] = prev
		} else {
			delete(spenders, spender)
		}
	})
}

func isMax(v *uint256.Int) bool {
	return v.Eq(new(uint256.Int).SetAllOne())
}
