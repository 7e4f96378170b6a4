package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bengbengle/nft-lend/internal/domain"
)

// Ticket is a capability-token registry keyed by loan id. Only the
// facilitator may mint tickets or move them on behalf of holders; holders
// may move their own tickets with TransferFrom.
type Ticket struct {
	state       *State
	name        string
	address     common.Address
	facilitator common.Address
	owners      map[domain.LoanID]common.Address
}

// NewTicket creates a ticket registry deployed at address.
func NewTicket(state *State, name string, address, facilitator common.Address) *Ticket {
	return &Ticket{
		state:       state,
		name:        name,
		address:     address,
		facilitator: facilitator,
		owners:      make(map[domain.LoanID]common.Address),
	}
}

// Name returns the registry name.
func (t *Ticket) Name() string {
	return t.name
}

// Address returns the registry address.
func (t *Ticket) Address() common.Address {
	return t.address
}

// Mint issues ticket id to to.
func (t *Ticket) Mint(ctx context.Context, operator, to common.Address, id domain.LoanID) error {
	if operator != t.facilitator {
		return fmt.Errorf("%s: mint: %w", t.name, domain.ErrUnauthorized)
	}
	if to == (common.Address{}) {
		return fmt.Errorf("%s: mint: %w", t.name, domain.ErrZeroAddressNotAllowed)
	}
	return t.state.write(ctx, func(_ context.Context, tx *Tx) error {
		if _, ok := t.owners[id]; ok {
			return fmt.Errorf("%s: ticket %d: %w", t.name, id, domain.ErrTicketExists)
		}
		t.owners[id] = to
		tx.onRollback(func() { delete(t.owners, id) })
		return nil
	})
}

// Transfer moves ticket id from from to to on behalf of the facilitator.
func (t *Ticket) Transfer(ctx context.Context, operator, from, to common.Address, id domain.LoanID) error {
	if operator != t.facilitator {
		return fmt.Errorf("%s: transfer: %w", t.name, domain.ErrUnauthorized)
	}
	return t.move(ctx, from, to, id)
}

// TransferFrom lets the current holder move its own ticket.
func (t *Ticket) TransferFrom(ctx context.Context, holder, to common.Address, id domain.LoanID) error {
	return t.move(ctx, holder, to, id)
}

// OwnerOf returns the holder of ticket id.
func (t *Ticket) OwnerOf(ctx context.Context, id domain.LoanID) (common.Address, error) {
	var (
		owner common.Address
		ok    bool
	)
	if err := t.state.read(ctx, func() { owner, ok = t.owners[id] }); err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, fmt.Errorf("%s: ticket %d: %w", t.name, id, domain.ErrTicketNotFound)
	}
	return owner, nil
}

// Tickets returns the ids held by owner in ascending order.
func (t *Ticket) Tickets(ctx context.Context, owner common.Address) ([]domain.LoanID, error) {
	var ids []domain.LoanID
	err := t.state.read(ctx, func() {
		for id, holder := range t.owners {
			if holder == owner {
				ids = append(ids, id)
			}
		}
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, err
}

func (t *Ticket) move(ctx context.Context, from, to common.Address, id domain.LoanID) error {
	if to == (common.Address{}) {
		return fmt.Errorf("%s: transfer: %w", t.name, domain.ErrZeroAddressNotAllowed)
	}
	return t.state.write(ctx, func(_ context.Context, tx *Tx) error {
		owner, ok := t.owners[id]
		if !ok {
			return fmt.Errorf("%s: ticket %d: %w", t.name, id, domain.ErrTicketNotFound)
		}
		if owner != from {
			return fmt.Errorf("%s: ticket %d not held by %s: %w", t.name, id, from.Hex(), domain.ErrUnauthorized)
		}
		t.owners[id] = to
		tx.onRollback(func() { t.owners[id] = owner })
		return nil
	})
}
