package memory

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/bengbengle/nft-lend/internal/domain"
)

// Ledger wires every in-memory component onto one State.
type Ledger struct {
	State         *State
	TxManager     *TxManager
	Loans         *LoanRepository
	Fees          *FeeLedgerRepository
	Params        *ParamsRepository
	Outbox        *OutboxRepository
	Audit         *AuditRepository
	Assets        *Assets
	BorrowTickets *Ticket
	LendTickets   *Ticket
	Registry      common.Address
}

// NewLedger builds an empty ledger for the registry at registry. Ticket
// registries are deployed first, so their addresses are stable for a given
// registry address.
func NewLedger(registry common.Address, params domain.Params) *Ledger {
	state := NewState()
	assets := NewAssets(state, registry)

	return &Ledger{
		State:         state,
		TxManager:     NewTxManager(state),
		Loans:         NewLoanRepository(state),
		Fees:          NewFeeLedgerRepository(state),
		Params:        NewParamsRepository(state, params),
		Outbox:        NewOutboxRepository(state),
		Audit:         NewAuditRepository(state),
		Assets:        assets,
		BorrowTickets: NewTicket(state, "Borrow", assets.NextAddress(), registry),
		LendTickets:   NewTicket(state, "Lend", assets.NextAddress(), registry),
		Registry:      registry,
	}
}
