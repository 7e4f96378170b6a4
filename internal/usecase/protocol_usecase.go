package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/infrastructure/metrics"
)

// ProtocolUseCase handles manager-only configuration and fee withdrawal.
type ProtocolUseCase struct {
	txManager  TransactionManager
	paramsRepo ParamsRepository
	feeRepo    FeeLedgerRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	assets     AssetRegistry
	clock      Clock
	idGen      IDGenerator
	metrics    *metrics.Metrics
	registry   common.Address
}

// NewProtocolUseCase creates a new ProtocolUseCase. auditRepo and metrics
// may be nil.
func NewProtocolUseCase(
	txManager TransactionManager,
	paramsRepo ParamsRepository,
	feeRepo FeeLedgerRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	assets AssetRegistry,
	clock Clock,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	registry common.Address,
) *ProtocolUseCase {
	if clock == nil {
		clock = SystemClock{}
	}

	return &ProtocolUseCase{
		txManager:  txManager,
		paramsRepo: paramsRepo,
		feeRepo:    feeRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		assets:     assets,
		clock:      clock,
		idGen:      idGen,
		metrics:    metrics,
		registry:   registry,
	}
}

// Params returns the current protocol parameters.
func (uc *ProtocolUseCase) Params(ctx context.Context) (domain.Params, error) {
	return uc.paramsRepo.Get(ctx)
}

// OriginationFees returns the withdrawable fee balance of asset.
func (uc *ProtocolUseCase) OriginationFees(ctx context.Context, asset common.Address) (*uint256.Int, error) {
	return uc.feeRepo.Balance(ctx, asset)
}

// UpdateFeeRateInput represents a new origination fee rate.
type UpdateFeeRateInput struct {
	Caller common.Address
	Rate   *uint256.Int
}

// UpdateOriginationFeeRate sets the origination fee rate, capped at
// domain.MaxOriginationFeeRate.
func (uc *ProtocolUseCase) UpdateOriginationFeeRate(ctx context.Context, input UpdateFeeRateInput) (params domain.Params, err error) {
	start := time.Now()
	defer func() { uc.observe(OpUpdateFeeRate, start, err) }()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	txCtx, tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return params, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	before, err := uc.requireManager(txCtx, input.Caller)
	if err != nil {
		return params, err
	}
	if err := domain.ValidateOriginationFeeRate(input.Rate); err != nil {
		return params, err
	}

	params = before.Clone()
	params.OriginationFeeRate = input.Rate.Clone()
	if err := uc.paramsRepo.Update(txCtx, tx, params); err != nil {
		return params, err
	}

	payload := domain.MarshalState(domain.FeeRateUpdatedEvent{
		Previous: before.OriginationFeeRate.Dec(),
		Rate:     params.OriginationFeeRate.Dec(),
	})
	if err := uc.record(txCtx, tx, input.Caller, domain.EventTypeFeeRateUpdated, domain.AuditActionUpdateFeeRate, before, params, payload); err != nil {
		return params, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return params, err
	}

	return params, nil
}

// UpdateImprovementRateInput represents a new buyout improvement threshold.
type UpdateImprovementRateInput struct {
	Caller common.Address
	Rate   uint64
}

// UpdateRequiredImprovementRate sets the buyout improvement threshold in
// percent.
func (uc *ProtocolUseCase) UpdateRequiredImprovementRate(ctx context.Context, input UpdateImprovementRateInput) (params domain.Params, err error) {
	start := time.Now()
	defer func() { uc.observe(OpUpdateImprovementRate, start, err) }()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	txCtx, tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return params, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	before, err := uc.requireManager(txCtx, input.Caller)
	if err != nil {
		return params, err
	}

	params = before.Clone()
	params.RequiredImprovementRate = input.Rate
	if err := uc.paramsRepo.Update(txCtx, tx, params); err != nil {
		return params, err
	}

	payload := domain.MarshalState(domain.ImprovementRateUpdatedEvent{
		Previous: before.RequiredImprovementRate,
		Rate:     params.RequiredImprovementRate,
	})
	if err := uc.record(txCtx, tx, input.Caller, domain.EventTypeImprovementRateUpdated, domain.AuditActionUpdateImprovementRate, before, params, payload); err != nil {
		return params, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return params, err
	}

	return params, nil
}

// WithdrawFeesInput represents a manager withdrawal of origination fees.
type WithdrawFeesInput struct {
	Caller common.Address
	Asset  common.Address
	Amount *uint256.Int
	To     common.Address
}

// WithdrawOriginationFees sends collected fees of one asset to input.To.
func (uc *ProtocolUseCase) WithdrawOriginationFees(ctx context.Context, input WithdrawFeesInput) (err error) {
	start := time.Now()
	defer func() { uc.observe(OpWithdrawFees, start, err) }()

	if input.Amount == nil {
		return fmt.Errorf("%w: amount is required", domain.ErrInvalidParameter)
	}
	if input.To == (common.Address{}) {
		return fmt.Errorf("%w: destination is the zero address", domain.ErrInvalidParameter)
	}
	if err := checkParties(uc.registry, input.Caller, input.To); err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	txCtx, tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	params, err := uc.requireManager(txCtx, input.Caller)
	if err != nil {
		return err
	}

	balance, err := uc.feeRepo.Balance(txCtx, input.Asset)
	if err != nil {
		return err
	}
	if err := uc.feeRepo.Sub(txCtx, tx, input.Asset, input.Amount); err != nil {
		return err
	}

	asset, err := uc.assets.Fungible(txCtx, input.Asset)
	if err != nil {
		return rejected(err)
	}
	if err := asset.Transfer(txCtx, uc.registry, input.To, input.Amount); err != nil {
		return rejected(err)
	}

	payload := domain.MarshalState(domain.OriginationFeesWithdrawnEvent{
		Asset:  input.Asset.Hex(),
		Amount: input.Amount.Dec(),
		To:     input.To.Hex(),
	})
	after := domain.FeeBalance{Asset: input.Asset, Amount: new(uint256.Int).Sub(balance, input.Amount)}
	before := domain.FeeBalance{Asset: input.Asset, Amount: balance}
	if err := uc.record(txCtx, tx, params.Manager, domain.EventTypeOriginationFeesWithdrawn, domain.AuditActionWithdrawFees, feeState(before), feeState(after), payload); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if uc.metrics != nil {
		if amount, ok := feeUnits(input.Amount); ok {
			uc.metrics.FeesWithdrawn.WithLabelValues(input.Asset.Hex()).Add(amount)
		}
	}

	return nil
}

// ListAuditLogs returns manager audit rows matching filter.
func (uc *ProtocolUseCase) ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if uc.auditRepo == nil {
		return []*domain.AuditLog{}, nil
	}
	filter.Limit, filter.Offset, _ = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.auditRepo.List(ctx, filter)
}

// ProtocolEvents lists protocol-level outbox events.
func (uc *ProtocolUseCase) ProtocolEvents(ctx context.Context, limit, offset int) ([]*domain.OutboxEvent, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeProtocol, uc.registry.Hex(), limit, offset)
}

func (uc *ProtocolUseCase) requireManager(ctx context.Context, caller common.Address) (domain.Params, error) {
	params, err := uc.paramsRepo.Get(ctx)
	if err != nil {
		return params, err
	}
	if caller == uc.registry || params.Manager != caller {
		return params, domain.ErrUnauthorized
	}
	return params, nil
}

// record writes the outbox event and, when configured, the audit row.
func (uc *ProtocolUseCase) record(
	ctx context.Context,
	tx Transaction,
	actor common.Address,
	eventType string,
	action domain.AuditAction,
	before, after any,
	payload map[string]any,
) error {
	now := uc.clock.Now()

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   uc.registry.Hex(),
		AggregateType: domain.AggregateTypeProtocol,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	}
	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return err
	}

	if uc.auditRepo == nil {
		return nil
	}

	auditLog := &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		Actor:        actor.Hex(),
		Action:       string(action),
		ResourceType: domain.AggregateTypeProtocol,
		ResourceID:   uc.registry.Hex(),
		BeforeState:  domain.MarshalState(paramsState(before)),
		AfterState:   domain.MarshalState(paramsState(after)),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	}
	if err := uc.auditRepo.CreateTx(ctx, tx, auditLog); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.AuditLogsCreated.WithLabelValues(auditLog.Action, auditLog.Status).Inc()
	}
	return nil
}

func (uc *ProtocolUseCase) observe(op string, start time.Time, err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.OperationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.metrics.LoanErrors.WithLabelValues(op, domain.ErrorKind(err)).Inc()
	}
}

// paramsState renders params with decimal strings so audit rows stay exact.
func paramsState(v any) any {
	p, ok := v.(domain.Params)
	if !ok {
		return v
	}
	return map[string]any{
		"manager":                   p.Manager.Hex(),
		"origination_fee_rate":      p.OriginationFeeRate.Dec(),
		"required_improvement_rate": p.RequiredImprovementRate,
	}
}

func feeState(b domain.FeeBalance) map[string]any {
	return map[string]any{
		"asset":  b.Asset.Hex(),
		"amount": b.Amount.Dec(),
	}
}
