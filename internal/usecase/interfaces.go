package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/domain"
)

// LoanRepository defines data access for loans.
type LoanRepository interface {
	// NextID reserves the next loan id inside tx.
	NextID(ctx context.Context, tx Transaction) (domain.LoanID, error)
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id domain.LoanID) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id domain.LoanID) (*domain.Loan, error)
	Update(ctx context.Context, tx Transaction, loan *domain.Loan) error
	List(ctx context.Context, limit, offset int) ([]*domain.Loan, error)
}

// FeeLedgerRepository tracks origination fees held per denomination asset.
type FeeLedgerRepository interface {
	Balance(ctx context.Context, asset common.Address) (*uint256.Int, error)
	Add(ctx context.Context, tx Transaction, asset common.Address, amount *uint256.Int) error
	// Sub fails with domain.ErrInsufficientFees when amount exceeds the balance.
	Sub(ctx context.Context, tx Transaction, asset common.Address, amount *uint256.Int) error
}

// ParamsRepository stores the manager-controlled protocol parameters.
type ParamsRepository interface {
	Get(ctx context.Context) (domain.Params, error)
	Update(ctx context.Context, tx Transaction, params domain.Params) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// TicketAuthority is a capability-token registry mapping loan ids to holders.
// Only the registry address may mint or transfer.
type TicketAuthority interface {
	Address() common.Address
	Mint(ctx context.Context, operator, to common.Address, id domain.LoanID) error
	Transfer(ctx context.Context, operator, from, to common.Address, id domain.LoanID) error
	OwnerOf(ctx context.Context, id domain.LoanID) (common.Address, error)
}

// FungibleAsset is a denomination asset. Implementations may call back into
// the registry from inside a transfer.
type FungibleAsset interface {
	Address() common.Address
	TransferFrom(ctx context.Context, operator, from, to common.Address, amount *uint256.Int) error
	Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error
	BalanceOf(ctx context.Context, owner common.Address) (*uint256.Int, error)
}

// NonFungibleAsset is a collateral asset. Implementations may call back into
// the registry from inside a transfer.
type NonFungibleAsset interface {
	Address() common.Address
	OwnerOf(ctx context.Context, tokenID *uint256.Int) (common.Address, error)
	TransferFrom(ctx context.Context, operator, from, to common.Address, tokenID *uint256.Int) error
	Approve(ctx context.Context, owner, spender common.Address, tokenID *uint256.Int) error
}

// AssetRegistry resolves asset contracts by address.
type AssetRegistry interface {
	Fungible(ctx context.Context, addr common.Address) (FungibleAsset, error)
	NonFungible(ctx context.Context, addr common.Address) (NonFungibleAsset, error)
}

// Transaction represents a unit of work. Nested transactions roll back to
// their own savepoint only.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle. Begin returns a context
// carrying the transaction; calls that begin again with that context open a
// nested transaction instead of blocking.
type TransactionManager interface {
	Begin(ctx context.Context) (context.Context, Transaction, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyPending is the stored value of a key whose first request is
// still in flight.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not succeed so it can be retried.
	Release(ctx context.Context, key string) error
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
