package memory

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/domain"
)

// NonFungibleHook runs after a token has changed hands, inside the same
// transaction. Returning an error reverts the transfer.
type NonFungibleHook func(ctx context.Context, from, to common.Address, tokenID *uint256.Int) error

// NonFungibleToken is a sandbox collateral asset.
type NonFungibleToken struct {
	state     *State
	address   common.Address
	name      string
	symbol    string
	owners    map[uint256.Int]common.Address
	approvals map[uint256.Int]common.Address
	operators map[common.Address]map[common.Address]bool
	hook      NonFungibleHook
}

// NewNonFungibleToken creates an empty collection deployed at address.
func NewNonFungibleToken(state *State, address common.Address, name, symbol string) *NonFungibleToken {
	return &NonFungibleToken{
		state:     state,
		address:   address,
		name:      name,
		symbol:    symbol,
		owners:    make(map[uint256.Int]common.Address),
		approvals: make(map[uint256.Int]common.Address),
		operators: make(map[common.Address]map[common.Address]bool),
	}
}

// Address returns the collection address.
func (n *NonFungibleToken) Address() common.Address { return n.address }

// Name returns the collection name.
func (n *NonFungibleToken) Name() string { return n.name }

// Symbol returns the collection symbol.
func (n *NonFungibleToken) Symbol() string { return n.symbol }

// SetTransferHook installs hook. A nil hook removes it.
func (n *NonFungibleToken) SetTransferHook(hook NonFungibleHook) {
	n.hook = hook
}

// Mint creates tokenID owned by to.
func (n *NonFungibleToken) Mint(ctx context.Context, to common.Address, tokenID *uint256.Int) error {
	if to == (common.Address{}) {
		return domain.ErrZeroAddressNotAllowed
	}
	key := *tokenID
	return n.state.write(ctx, func(_ context.Context, tx *Tx) error {
		if _, ok := n.owners[key]; ok {
			return fmt.Errorf("%w: %s #%s", domain.ErrTokenExists, n.symbol, tokenID.Dec())
		}
		n.owners[key] = to
		tx.onRollback(func() { delete(n.owners, key) })
		return nil
	})
}

// OwnerOf returns the owner of tokenID.
func (n *NonFungibleToken) OwnerOf(ctx context.Context, tokenID *uint256.Int) (common.Address, error) {
	var (
		owner common.Address
		ok    bool
	)
	if err := n.state.read(ctx, func() { owner, ok = n.owners[*tokenID] }); err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s #%s", domain.ErrTokenNotFound, n.symbol, tokenID.Dec())
	}
	return owner, nil
}

// GetApproved returns the address approved for tokenID, if any.
func (n *NonFungibleToken) GetApproved(ctx context.Context, tokenID *uint256.Int) (common.Address, error) {
	var approved common.Address
	err := n.state.read(ctx, func() { approved = n.approvals[*tokenID] })
	return approved, err
}

// IsApprovedForAll reports whether operator may move every token of owner.
func (n *NonFungibleToken) IsApprovedForAll(ctx context.Context, owner, operator common.Address) (bool, error) {
	var approved bool
	err := n.state.read(ctx, func() { approved = n.operators[owner][operator] })
	return approved, err
}

// Approve lets spender move tokenID. owner must own the token or be an
// approved operator of its owner.
func (n *NonFungibleToken) Approve(ctx context.Context, owner, spender common.Address, tokenID *uint256.Int) error {
	key := *tokenID
	return n.state.write(ctx, func(_ context.Context, tx *Tx) error {
		holder, ok := n.owners[key]
		if !ok {
			return fmt.Errorf("%w: %s #%s", domain.ErrTokenNotFound, n.symbol, tokenID.Dec())
		}
		if holder != owner && !n.operators[holder][owner] {
			return fmt.Errorf("%w: %s may not approve %s #%s", domain.ErrNotOwnerNorApproved, owner.Hex(), n.symbol, tokenID.Dec())
		}
		n.setApproval(tx, key, spender)
		return nil
	})
}

// SetApprovalForAll grants or revokes operator over every token of owner.
func (n *NonFungibleToken) SetApprovalForAll(ctx context.Context, owner, operator common.Address, approved bool) error {
	return n.state.write(ctx, func(_ context.Context, tx *Tx) error {
		ops, ok := n.operators[owner]
		if !ok {
			ops = make(map[common.Address]bool)
			n.operators[owner] = ops
		}
		prev, had := ops[operator]
		ops[operator] = approved
		tx.onRollback(func() {
			if had {
				ops[operator] = prev
			} else {
				delete(ops, operator)
			}
		})
		return nil
	})
}

// TransferFrom moves tokenID from from to to. operator must be the owner, the
// approved address or an approved operator. The approval is cleared.
func (n *NonFungibleToken) TransferFrom(ctx context.Context, operator, from, to common.Address, tokenID *uint256.Int) error {
	if to == (common.Address{}) {
		return domain.ErrZeroAddressNotAllowed
	}
	key := *tokenID
	return n.state.write(ctx, func(ctx context.Context, tx *Tx) error {
		owner, ok := n.owners[key]
		if !ok {
			return fmt.Errorf("%w: %s #%s", domain.ErrTokenNotFound, n.symbol, tokenID.Dec())
		}
		if owner != from {
			return fmt.Errorf("%w: %s does not own %s #%s", domain.ErrNotOwnerNorApproved, from.Hex(), n.symbol, tokenID.Dec())
		}
		if operator != owner && n.approvals[key] != operator && !n.operators[owner][operator] {
			return fmt.Errorf("%w: %s may not move %s #%s", domain.ErrNotOwnerNorApproved, operator.Hex(), n.symbol, tokenID.Dec())
		}

		n.setApproval(tx, key, common.Address{})
		n.owners[key] = to
		tx.onRollback(func() { n.owners[key] = owner })

		if n.hook != nil {
			return n.hook(ctx, from, to, tokenID.Clone())
		}
		return nil
	})
}

func (n *NonFungibleToken) setApproval(tx *Tx, key uint256.Int, spender common.Address) {
	prev, had := n.approvals[key]
	if spender == (common.Address{}) {
		delete(n.approvals, key)
	} else {
		n.approvals[key] = spender
	}
	tx.onRollback(func() {
		if had {
			n.approvals[key] = prev
		} else {
			delete(n.approvals, key)
		}
	})
}
