package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/infrastructure/metrics"
)

// LoanDependencies wires the collaborators of LoanUseCase.
type LoanDependencies struct {
	TxManager     TransactionManager
	LoanRepo      LoanRepository
	FeeRepo       FeeLedgerRepository
	ParamsRepo    ParamsRepository
	OutboxRepo    OutboxRepository
	BorrowTickets TicketAuthority
	LendTickets   TicketAuthority
	Assets        AssetRegistry
	Clock         Clock
	IDGen         IDGenerator
	Metrics       *metrics.Metrics

	// Registry is the address the registry acts as: it holds collateral and
	// fees and is the only party allowed to mint or move tickets.
	Registry common.Address
}

// LoanUseCase implements the loan lifecycle.
type LoanUseCase struct {
	txManager     TransactionManager
	loanRepo      LoanRepository
	feeRepo       FeeLedgerRepository
	paramsRepo    ParamsRepository
	outboxRepo    OutboxRepository
	borrowTickets TicketAuthority
	lendTickets   TicketAuthority
	assets        AssetRegistry
	clock         Clock
	idGen         IDGenerator
	metrics       *metrics.Metrics
	registry      common.Address
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(deps LoanDependencies) *LoanUseCase {
	clock := deps.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &LoanUseCase{
		txManager:     deps.TxManager,
		loanRepo:      deps.LoanRepo,
		feeRepo:       deps.FeeRepo,
		paramsRepo:    deps.ParamsRepo,
		outboxRepo:    deps.OutboxRepo,
		borrowTickets: deps.BorrowTickets,
		lendTickets:   deps.LendTickets,
		assets:        deps.Assets,
		clock:         clock,
		idGen:         deps.IDGen,
		metrics:       deps.Metrics,
		registry:      deps.Registry,
	}
}

// Registry returns the custody address of the registry.
func (uc *LoanUseCase) Registry() common.Address {
	return uc.registry
}

// CreateLoanInput represents input for creating a loan.
type CreateLoanInput struct {
	Caller              common.Address
	CollateralContract  common.Address
	CollateralTokenID   *uint256.Int
	DenominationAsset   common.Address
	Principal           *uint256.Int
	Rate                *uint256.Int
	DurationSeconds     uint64
	Recipient           common.Address
	AllowAmountIncrease bool
}

// CreateLoan locks the collateral and opens an unfunded loan. The Borrow
// ticket is minted to input.Recipient.
func (uc *LoanUseCase) CreateLoan(ctx context.Context, input CreateLoanInput) (loan *domain.Loan, err error) {
	start := time.Now()
	defer func() { uc.observe(OpCreateLoan, start, err) }()

	terms := domain.NewTerms(input.Principal, input.Rate, input.DurationSeconds)
	if err := domain.ValidateTerms(terms); err != nil {
		return nil, err
	}
	if input.CollateralTokenID == nil {
		return nil, fmt.Errorf("%w: collateral token id is required", domain.ErrInvalidParameter)
	}
	if input.Recipient == (common.Address{}) {
		return nil, fmt.Errorf("%w: recipient is the zero address", domain.ErrInvalidParameter)
	}
	if err := checkParties(uc.registry, input.Caller, input.Recipient); err != nil {
		return nil, err
	}
	if input.CollateralContract == uc.borrowTickets.Address() || input.CollateralContract == uc.lendTickets.Address() {
		return nil, fmt.Errorf("%w: tickets cannot be used as collateral", domain.ErrInvalidParameter)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	txCtx, tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	collateral, err := uc.assets.NonFungible(txCtx, input.CollateralContract)
	if err != nil {
		return nil, fmt.Errorf("%w: collateral: %w", domain.ErrInvalidParameter, err)
	}
	if _, err := uc.assets.Fungible(txCtx, input.DenominationAsset); err != nil {
		return nil, fmt.Errorf("%w: denomination: %w", domain.ErrInvalidParameter, err)
	}

	id, err := uc.loanRepo.NextID(txCtx, tx)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	loan = &domain.Loan{
		ID: id,
		Collateral: domain.Collateral{
			Contract: input.CollateralContract,
			TokenID:  input.CollateralTokenID.Clone(),
		},
		DenominationAsset:    input.DenominationAsset,
		Principal:            terms.Principal,
		Rate:                 terms.Rate,
		DurationSeconds:      terms.DurationSeconds,
		AccruedInterest:      new(uint256.Int),
		LastAccrualTimestamp: now,
		AllowAmountIncrease:  input.AllowAmountIncrease,
	}

	if err := uc.loanRepo.Create(txCtx, tx, loan); err != nil {
		return nil, err
	}
	if err := uc.borrowTickets.Mint(txCtx, uc.registry, input.Recipient, id); err != nil {
		return nil, err
	}

	// Collateral moves last; the asset may call back into the registry.
	if err := collateral.TransferFrom(txCtx, uc.registry, input.Caller, uc.registry, input.CollateralTokenID); err != nil {
		return nil, rejected(err)
	}

	payload := domain.MarshalState(domain.LoanCreatedEvent{
		LoanID:              uint64(id),
		Borrower:            input.Recipient.Hex(),
		CollateralContract:  input.CollateralContract.Hex(),
		CollateralTokenID:   input.CollateralTokenID.Dec(),
		DenominationAsset:   input.DenominationAsset.Hex(),
		Principal:           loan.Principal.Dec(),
		Rate:                loan.Rate.Dec(),
		DurationSeconds:     loan.DurationSeconds,
		AllowAmountIncrease: loan.AllowAmountIncrease,
	})
	if err := uc.emit(txCtx, tx, id, domain.EventTypeLoanCreated, payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansCreated.Inc()
	}

	return loan, nil
}

// LendInput represents an offer to fund or buy out a loan.
type LendInput struct {
	Caller          common.Address
	LoanID          domain.LoanID
	Principal       *uint256.Int
	Rate            *uint256.Int
	DurationSeconds uint64
	Recipient       common.Address
}

// LendResult describes the money movements of a successful lend.
type LendResult struct {
	Loan           *domain.Loan
	Buyout         bool
	OriginationFee *uint256.Int
	BorrowerPayout *uint256.Int
	PreviousLender common.Address
	LenderPayout   *uint256.Int
}

// Lend funds an unfunded loan or buys out the current lender with better
// terms. All transfers of one call succeed or fail together.
func (uc *LoanUseCase) Lend(ctx context.Context, input LendInput) (result *LendResult, err error) {
	start := time.Now()
	defer func() { uc.observe(OpLend, start, err) }()

	if input.Principal == nil || input.Rate == nil {
		return nil, fmt.Errorf("%w: principal and rate are required", domain.ErrInvalidParameter)
	}
	if input.Recipient == (common.Address{}) {
		return nil, fmt.Errorf("%w: recipient is the zero address", domain.ErrInvalidParameter)
	}
	if err := checkParties(uc.registry, input.Caller, input.Recipient); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	txCtx, tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.Closed {
		return nil, domain.ErrLoanClosed
	}

	params, err := uc.paramsRepo.Get(txCtx)
	if err != nil {
		return nil, err
	}
	policy := domain.BuyoutPolicy{RequiredImprovementRate: params.RequiredImprovementRate}
	current := loan.Terms()
	offer := domain.NewTerms(input.Principal, input.Rate, input.DurationSeconds)

	if err := policy.CheckTerms(current, offer); err != nil {
		return nil, err
	}
	if !loan.AllowAmountIncrease && !offer.Principal.Eq(current.Principal) {
		return nil, fmt.Errorf("%w: principal must stay %s", domain.ErrAmountIncreaseNotAllowed, current.Principal.Dec())
	}

	denomination, err := uc.assets.Fungible(txCtx, loan.DenominationAsset)
	if err != nil {
		return nil, rejected(err)
	}
	borrower, err := uc.borrowTickets.OwnerOf(txCtx, loan.ID)
	if err != nil {
		return nil, err
	}

	if loan.Funded() {
		if err := policy.CheckImprovement(current, offer); err != nil {
			return nil, err
		}
		result, err = uc.buyout(txCtx, tx, loan, offer, input, params, denomination, borrower)
	} else {
		result, err = uc.fund(txCtx, tx, loan, offer, input, params, denomination, borrower)
	}
	if err != nil {
		return nil, err
	}

	payload := domain.LoanLentEvent{
		LoanID:          uint64(loan.ID),
		Buyout:          result.Buyout,
		Lender:          input.Recipient.Hex(),
		Principal:       loan.Principal.Dec(),
		Rate:            loan.Rate.Dec(),
		DurationSeconds: loan.DurationSeconds,
		OriginationFee:  result.OriginationFee.Dec(),
		BorrowerPayout:  result.BorrowerPayout.Dec(),
		AccruedInterest: loan.AccruedInterest.Dec(),
	}
	if result.Buyout {
		payload.PreviousLender = result.PreviousLender.Hex()
		payload.LenderPayout = result.LenderPayout.Dec()
	}
	if err := uc.emit(txCtx, tx, loan.ID, domain.EventTypeLoanLent, domain.MarshalState(payload)); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		if result.Buyout {
			uc.metrics.LoansBoughtOut.Inc()
		} else {
			uc.metrics.LoansFunded.Inc()
		}
		if fee, ok := feeUnits(result.OriginationFee); ok {
			uc.metrics.FeesCollected.WithLabelValues(loan.DenominationAsset.Hex()).Add(fee)
		}
	}

	return result, nil
}

func (uc *LoanUseCase) fund(
	ctx context.Context,
	tx Transaction,
	loan *domain.Loan,
	offer domain.Terms,
	input LendInput,
	params domain.Params,
	denomination FungibleAsset,
	borrower common.Address,
) (*LendResult, error) {
	fee, err := domain.OriginationFee(offer.Principal, params.OriginationFeeRate)
	if err != nil {
		return nil, err
	}
	payout := new(uint256.Int).Sub(offer.Principal, fee)

	loan.Lender = input.Recipient
	loan.Checkpoint(new(uint256.Int), offer, uc.now())
	if err := uc.loanRepo.Update(ctx, tx, loan); err != nil {
		return nil, err
	}
	if err := uc.feeRepo.Add(ctx, tx, loan.DenominationAsset, fee); err != nil {
		return nil, err
	}
	if err := uc.lendTickets.Mint(ctx, uc.registry, input.Recipient, loan.ID); err != nil {
		return nil, err
	}

	if err := denomination.TransferFrom(ctx, uc.registry, input.Caller, uc.registry, offer.Principal); err != nil {
		return nil, rejected(err)
	}
	if err := denomination.Transfer(ctx, uc.registry, borrower, payout); err != nil {
		return nil, rejected(err)
	}

	return &LendResult{
		Loan:           loan,
		OriginationFee: fee,
		BorrowerPayout: payout,
		LenderPayout:   new(uint256.Int),
	}, nil
}

func (uc *LoanUseCase) buyout(
	ctx context.Context,
	tx Transaction,
	loan *domain.Loan,
	offer domain.Terms,
	input LendInput,
	params domain.Params,
	denomination FungibleAsset,
	borrower common.Address,
) (*LendResult, error) {
	now := uc.now()

	accrued, err := loan.InterestOwed(now)
	if err != nil {
		return nil, err
	}
	previous, err := uc.lendTickets.OwnerOf(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	increment := new(uint256.Int).Sub(offer.Principal, loan.Principal)
	fee, err := domain.OriginationFee(increment, params.OriginationFeeRate)
	if err != nil {
		return nil, err
	}
	payout := new(uint256.Int).Sub(increment, fee)

	lenderPayout, overflow := new(uint256.Int).AddOverflow(loan.Principal, accrued)
	if overflow {
		return nil, domain.ErrArithmeticOverflow
	}

	loan.Lender = input.Recipient
	loan.Checkpoint(accrued, offer, now)
	if err := uc.loanRepo.Update(ctx, tx, loan); err != nil {
		return nil, err
	}
	if err := uc.feeRepo.Add(ctx, tx, loan.DenominationAsset, fee); err != nil {
		return nil, err
	}
	if err := uc.lendTickets.Transfer(ctx, uc.registry, previous, input.Recipient, loan.ID); err != nil {
		return nil, err
	}

	if !increment.IsZero() {
		if err := denomination.TransferFrom(ctx, uc.registry, input.Caller, uc.registry, increment); err != nil {
			return nil, rejected(err)
		}
		if err := denomination.Transfer(ctx, uc.registry, borrower, payout); err != nil {
			return nil, rejected(err)
		}
	}
	if err := denomination.TransferFrom(ctx, uc.registry, input.Caller, previous, lenderPayout); err != nil {
		return nil, rejected(err)
	}

	return &LendResult{
		Loan:           loan,
		Buyout:         true,
		OriginationFee: fee,
		BorrowerPayout: payout,
		PreviousLender: previous,
		LenderPayout:   lenderPayout,
	}, nil
}

// CloseLoanInput represents a borrower cancelling an unfunded loan.
type CloseLoanInput struct {
	Caller   common.Address
	LoanID   domain.LoanID
	ReturnTo common.Address
}

// CloseLoan returns the collateral of a never-funded loan to input.ReturnTo.
func (uc *LoanUseCase) CloseLoan(ctx context.Context, input CloseLoanInput) (loan *domain.Loan, err error) {
	start := time.Now()
	defer func() { uc.observe(OpCloseLoan, start, err) }()

	if input.ReturnTo == (common.Address{}) {
		return nil, fmt.Errorf("%w: returnTo is the zero address", domain.ErrInvalidParameter)
	}
	if err := checkParties(uc.registry, input.Caller, input.ReturnTo); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	txCtx, tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err = uc.loanRepo.GetByIDForUpdate(txCtx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}
	if err := uc.requireHolder(txCtx, uc.borrowTickets, loan.ID, input.Caller); err != nil {
		return nil, err
	}
	if loan.Closed {
		return nil, domain.ErrLoanClosed
	}
	if loan.Funded() {
		return nil, domain.ErrHasLender
	}

	loan.Closed = true
	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return nil, err
	}
	if err := uc.releaseCollateral(txCtx, loan, input.ReturnTo); err != nil {
		return nil, err
	}

	payload := domain.MarshalState(domain.LoanClosedEvent{LoanID: uint64(loan.ID), ReturnTo: input.ReturnTo.Hex()})
	if err := uc.emit(txCtx, tx, loan.ID, domain.EventTypeLoanClosed, payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansClosed.Inc()
	}

	return loan, nil
}

// RepayInput represents anyone repaying a funded loan.
type RepayInput struct {
	Caller common.Address
	LoanID domain.LoanID
}

// RepayResult describes a repayment.
type RepayResult struct {
	Loan     *domain.Loan
	Lender   common.Address
	Borrower common.Address
	Interest *uint256.Int
	Total    *uint256.Int
}

// RepayAndCloseLoan pays principal plus interest to the Lend-ticket holder
// and returns the collateral to the Borrow-ticket holder.
func (uc *LoanUseCase) RepayAndCloseLoan(ctx context.Context, input RepayInput) (result *RepayResult, err error) {
	start := time.Now()
	defer func() { uc.observe(OpRepayAndCloseLoan, start, err) }()

	if err := checkParties(uc.registry, input.Caller); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	txCtx, tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err := uc.loanRepo.GetByIDForUpdate(txCtx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.Closed {
		return nil, domain.ErrLoanClosed
	}
	if !loan.Funded() {
		return nil, domain.ErrNotFunded
	}

	now := uc.now()
	interest, err := loan.InterestOwed(now)
	if err != nil {
		return nil, err
	}
	total, overflow := new(uint256.Int).AddOverflow(loan.Principal, interest)
	if overflow {
		return nil, domain.ErrArithmeticOverflow
	}

	lender, err := uc.lendTickets.OwnerOf(txCtx, loan.ID)
	if err != nil {
		return nil, err
	}
	borrower, err := uc.borrowTickets.OwnerOf(txCtx, loan.ID)
	if err != nil {
		return nil, err
	}
	denomination, err := uc.assets.Fungible(txCtx, loan.DenominationAsset)
	if err != nil {
		return nil, rejected(err)
	}

	loan.Checkpoint(interest, loan.Terms(), now)
	loan.Closed = true
	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return nil, err
	}

	if err := denomination.TransferFrom(txCtx, uc.registry, input.Caller, lender, total); err != nil {
		return nil, rejected(err)
	}
	if err := uc.releaseCollateral(txCtx, loan, borrower); err != nil {
		return nil, err
	}

	payload := domain.MarshalState(domain.LoanRepaidEvent{
		LoanID:   uint64(loan.ID),
		Payer:    input.Caller.Hex(),
		Lender:   lender.Hex(),
		Borrower: borrower.Hex(),
		Interest: interest.Dec(),
		Total:    total.Dec(),
	})
	if err := uc.emit(txCtx, tx, loan.ID, domain.EventTypeLoanRepaid, payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansRepaid.Inc()
	}

	loan.Lender = lender
	return &RepayResult{Loan: loan, Lender: lender, Borrower: borrower, Interest: interest, Total: total}, nil
}

// SeizeInput represents a lender claiming the collateral of a late loan.
type SeizeInput struct {
	Caller common.Address
	LoanID domain.LoanID
	To     common.Address
}

// Seize sends the collateral of a matured, unpaid loan to input.To.
func (uc *LoanUseCase) Seize(ctx context.Context, input SeizeInput) (loan *domain.Loan, err error) {
	start := time.Now()
	defer func() { uc.observe(OpSeize, start, err) }()

	if input.To == (common.Address{}) {
		return nil, fmt.Errorf("%w: destination is the zero address", domain.ErrInvalidParameter)
	}
	if err := checkParties(uc.registry, input.Caller, input.To); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	txCtx, tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	loan, err = uc.loanRepo.GetByIDForUpdate(txCtx, tx, input.LoanID)
	if err != nil {
		return nil, err
	}
	if !loan.Funded() {
		return nil, domain.ErrUnauthorized
	}
	if err := uc.requireHolder(txCtx, uc.lendTickets, loan.ID, input.Caller); err != nil {
		return nil, err
	}
	if loan.Closed {
		return nil, domain.ErrLoanClosed
	}
	if !loan.IsLate(uc.now()) {
		return nil, fmt.Errorf("%w: matures at %d", domain.ErrNotLate, loan.MaturesAt())
	}

	loan.Closed = true
	if err := uc.loanRepo.Update(txCtx, tx, loan); err != nil {
		return nil, err
	}
	if err := uc.releaseCollateral(txCtx, loan, input.To); err != nil {
		return nil, err
	}

	payload := domain.MarshalState(domain.LoanSeizedEvent{
		LoanID: uint64(loan.ID),
		Lender: input.Caller.Hex(),
		To:     input.To.Hex(),
	})
	if err := uc.emit(txCtx, tx, loan.ID, domain.EventTypeLoanSeized, payload); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansSeized.Inc()
	}

	loan.Lender = input.Caller
	return loan, nil
}

// LoanInfo returns the loan record with Lender set to the current Lend-ticket
// holder.
func (uc *LoanUseCase) LoanInfo(ctx context.Context, id domain.LoanID) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.withLender(ctx, loan)
}

// ListLoansInput represents input for listing loans.
type ListLoansInput struct {
	Limit  int
	Offset int
}

// ListLoans lists loans ordered by id.
func (uc *LoanUseCase) ListLoans(ctx context.Context, input ListLoansInput) ([]*domain.Loan, error) {
	limit, offset, err := domain.ValidatePagination(input.Limit, input.Offset)
	if err != nil {
		return nil, err
	}

	loans, err := uc.loanRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i, loan := range loans {
		if loans[i], err = uc.withLender(ctx, loan); err != nil {
			return nil, err
		}
	}
	return loans, nil
}

// Owed is a snapshot of what a loan owes at a point in time.
type Owed struct {
	LoanID   domain.LoanID
	At       uint64
	Interest *uint256.Int
	Total    *uint256.Int
	LoanEnd  uint64
}

// AmountOwed returns interest and total owed now. Both are zero for closed
// and unfunded loans.
func (uc *LoanUseCase) AmountOwed(ctx context.Context, id domain.LoanID) (*Owed, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	owed := &Owed{
		LoanID:   id,
		At:       now,
		Interest: new(uint256.Int),
		Total:    new(uint256.Int),
		LoanEnd:  loan.MaturesAt(),
	}
	if loan.Closed || !loan.Funded() {
		return owed, nil
	}

	if owed.Interest, err = loan.InterestOwed(now); err != nil {
		return nil, err
	}
	if owed.Total, err = loan.TotalOwed(now); err != nil {
		return nil, err
	}
	return owed, nil
}

// LoanEvents lists the outbox events recorded for a loan.
func (uc *LoanUseCase) LoanEvents(ctx context.Context, id domain.LoanID, limit, offset int) ([]*domain.OutboxEvent, error) {
	if _, err := uc.loanRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	limit, offset, err := domain.ValidatePagination(limit, offset)
	if err != nil {
		return nil, err
	}
	return uc.outboxRepo.GetByAggregate(ctx, domain.AggregateTypeLoan, loanAggregateID(id), limit, offset)
}

func (uc *LoanUseCase) withLender(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	if !loan.Funded() {
		return loan, nil
	}
	holder, err := uc.lendTickets.OwnerOf(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	loan.Lender = holder
	return loan, nil
}

func (uc *LoanUseCase) requireHolder(ctx context.Context, tickets TicketAuthority, id domain.LoanID, caller common.Address) error {
	holder, err := tickets.OwnerOf(ctx, id)
	if err != nil {
		return err
	}
	if holder != caller {
		return domain.ErrUnauthorized
	}
	return nil
}

func (uc *LoanUseCase) releaseCollateral(ctx context.Context, loan *domain.Loan, to common.Address) error {
	collateral, err := uc.assets.NonFungible(ctx, loan.Collateral.Contract)
	if err != nil {
		return rejected(err)
	}
	if err := collateral.TransferFrom(ctx, uc.registry, uc.registry, to, loan.Collateral.TokenID); err != nil {
		return rejected(err)
	}
	return nil
}

func (uc *LoanUseCase) emit(ctx context.Context, tx Transaction, id domain.LoanID, eventType string, payload map[string]any) error {
	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   loanAggregateID(id),
		AggregateType: domain.AggregateTypeLoan,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     uc.clock.Now(),
		Published:     false,
	})
}

func (uc *LoanUseCase) now() uint64 {
	return unixSeconds(uc.clock.Now())
}

func (uc *LoanUseCase) observe(op string, start time.Time, err error) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.OperationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		uc.metrics.LoanErrors.WithLabelValues(op, domain.ErrorKind(err)).Inc()
	}
}

func loanAggregateID(id domain.LoanID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func unixSeconds(t time.Time) uint64 {
	if t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix())
}

// checkParties keeps the registry out of caller-supplied roles. Every asset
// move uses the registry as operator, so a call made as the registry would
// move its custody without approval.
func checkParties(registry, caller common.Address, destinations ...common.Address) error {
	if caller == registry {
		return fmt.Errorf("%w: caller is the registry", domain.ErrUnauthorized)
	}
	for _, to := range destinations {
		if to == registry {
			return fmt.Errorf("%w: destination is the registry", domain.ErrInvalidParameter)
		}
	}
	return nil
}

// rejected wraps an asset failure. The cause stays visible to errors.Is so a
// lifecycle error raised by a re-entrant call is not masked.
func rejected(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrTransferRejected, err)
}

// feeUnits converts a fee to float64 for counters, rounding past 2^53.
func feeUnits(fee *uint256.Int) (float64, bool) {
	if fee == nil || fee.IsZero() {
		return 0, false
	}
	return fee.Float64(), true
}
