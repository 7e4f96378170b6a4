package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// FakeLoanRepository is a func-field implementation of LoanRepository.
type FakeLoanRepository struct {
	mu    sync.RWMutex
	loans map[domain.LoanID]*domain.Loan
	next  domain.LoanID

	NextIDFunc           func(ctx context.Context, tx usecase.Transaction) (domain.LoanID, error)
	CreateFunc           func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	GetByIDFunc          func(ctx context.Context, id domain.LoanID) (*domain.Loan, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id domain.LoanID) (*domain.Loan, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	ListFunc             func(ctx context.Context, limit, offset int) ([]*domain.Loan, error)
}

func NewFakeLoanRepository() *FakeLoanRepository {
	return &FakeLoanRepository{
		loans: make(map[domain.LoanID]*domain.Loan),
	}
}

// Put stores loan directly, bypassing transactions.
func (m *FakeLoanRepository) Put(loan *domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan.Clone()
	if loan.ID > m.next {
		m.next = loan.ID
	}
}

func (m *FakeLoanRepository) NextID(ctx context.Context, tx usecase.Transaction) (domain.LoanID, error) {
	if m.NextIDFunc != nil {
		return m.NextIDFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return m.next, nil
}

func (m *FakeLoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan.Clone()
	return nil
}

func (m *FakeLoanRepository) GetByID(ctx context.Context, id domain.LoanID) (*domain.Loan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.loans[id]; ok {
		return loan.Clone(), nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *FakeLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id domain.LoanID) (*domain.Loan, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *FakeLoanRepository) Update(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.ID]; !ok {
		return domain.ErrLoanNotFound
	}
	m.loans[loan.ID] = loan.Clone()
	return nil
}

func (m *FakeLoanRepository) List(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var loans []*domain.Loan
	for _, loan := range m.loans {
		loans = append(loans, loan.Clone())
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	if offset >= len(loans) {
		return []*domain.Loan{}, nil
	}
	loans = loans[offset:]
	if len(loans) > limit {
		loans = loans[:limit]
	}
	return loans, nil
}

// FakeFeeLedgerRepository is a func-field implementation of FeeLedgerRepository.
type FakeFeeLedgerRepository struct {
	mu       sync.Mutex
	balances map[common.Address]*uint256.Int

	AddFunc func(ctx context.Context, tx usecase.Transaction, asset common.Address, amount *uint256.Int) error
	SubFunc func(ctx context.Context, tx usecase.Transaction, asset common.Address, amount *uint256.Int) error
}

func NewFakeFeeLedgerRepository() *FakeFeeLedgerRepository {
	return &FakeFeeLedgerRepository{
		balances: make(map[common.Address]*uint256.Int),
	}
}

func (m *FakeFeeLedgerRepository) Balance(ctx context.Context, asset common.Address) (*uint256.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.balances[asset]; ok {
		return b.Clone(), nil
	}
	return new(uint256.Int), nil
}

func (m *FakeFeeLedgerRepository) Add(ctx context.Context, tx usecase.Transaction, asset common.Address, amount *uint256.Int) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, tx, asset, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[asset]
	if !ok {
		b = new(uint256.Int)
	}
	m.balances[asset] = new(uint256.Int).Add(b, amount)
	return nil
}

func (m *FakeFeeLedgerRepository) Sub(ctx context.Context, tx usecase.Transaction, asset common.Address, amount *uint256.Int) error {
	if m.SubFunc != nil {
		return m.SubFunc(ctx, tx, asset, amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[asset]
	if !ok || b.Lt(amount) {
		return domain.ErrInsufficientFees
	}
	m.balances[asset] = new(uint256.Int).Sub(b, amount)
	return nil
}

// FakeParamsRepository is a func-field implementation of ParamsRepository.
type FakeParamsRepository struct {
	mu     sync.Mutex
	params domain.Params

	GetFunc    func(ctx context.Context) (domain.Params, error)
	UpdateFunc func(ctx context.Context, tx usecase.Transaction, params domain.Params) error
}

func NewFakeParamsRepository(params domain.Params) *FakeParamsRepository {
	return &FakeParamsRepository{params: params.Clone()}
}

func (m *FakeParamsRepository) Get(ctx context.Context) (domain.Params, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.Clone(), nil
}

func (m *FakeParamsRepository) Update(ctx context.Context, tx usecase.Transaction, params domain.Params) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, params)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params = params.Clone()
	return nil
}

// FakeOutboxRepository is a func-field implementation of OutboxRepository.
type FakeOutboxRepository struct {
	mu     sync.Mutex
	Events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewFakeOutboxRepository() *FakeOutboxRepository {
	return &FakeOutboxRepository{}
}

func (m *FakeOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

func (m *FakeOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *FakeOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return fmt.Errorf("outbox event %s not found", id)
}

func (m *FakeOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range m.Events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	if offset >= len(out) {
		return []*domain.OutboxEvent{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *FakeOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Events[:0]
	for _, e := range m.Events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.Events = kept
	return nil
}

// EventTypes returns the recorded event types in order.
func (m *FakeOutboxRepository) EventTypes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.EventType)
	}
	return types
}

// FakeAuditRepository is a func-field implementation of AuditRepository.
type FakeAuditRepository struct {
	mu   sync.Mutex
	Logs []*domain.AuditLog

	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
}

func NewFakeAuditRepository() *FakeAuditRepository {
	return &FakeAuditRepository{}
}

func (m *FakeAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, log)
	return nil
}

func (m *FakeAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AuditLog
	for _, l := range m.Logs {
		if filter.Matches(l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// FakeTransactionManager is a func-field implementation of TransactionManager.
type FakeTransactionManager struct {
	BeginFunc func(ctx context.Context) (context.Context, usecase.Transaction, error)

	mu        sync.Mutex
	Begins    int
	Commits   int
	Rollbacks int
}

func NewFakeTransactionManager() *FakeTransactionManager {
	return &FakeTransactionManager{}
}

func (m *FakeTransactionManager) Begin(ctx context.Context) (context.Context, usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.mu.Lock()
	m.Begins++
	m.mu.Unlock()
	return ctx, &FakeTransaction{manager: m}, nil
}

// FakeTransaction is a func-field implementation of Transaction.
type FakeTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	manager *FakeTransactionManager
	done    bool
}

func (m *FakeTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	if m.manager != nil && !m.done {
		m.manager.mu.Lock()
		m.manager.Commits++
		m.manager.mu.Unlock()
	}
	m.done = true
	return nil
}

func (m *FakeTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if m.manager != nil && !m.done {
		m.manager.mu.Lock()
		m.manager.Rollbacks++
		m.manager.mu.Unlock()
	}
	m.done = true
	return nil
}

// FakeIDGenerator is a func-field implementation of IDGenerator.
type FakeIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewFakeIDGenerator() *FakeIDGenerator {
	return &FakeIDGenerator{}
}

func (m *FakeIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%d", m.counter)
}

// FakeClock is a settable Clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
