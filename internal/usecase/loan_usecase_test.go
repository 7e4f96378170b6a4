package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/mock/gomock"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
	"github.com/bengbengle/nft-lend/internal/usecase/mocks"
)

var (
	registryAddr      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	managerAddr       = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	borrowTicketsAddr = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	lendTicketsAddr   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	collectionAddr    = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	tokenAddr         = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	borrowerAddr      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	lenderAddr        = common.HexToAddress("0x000000000000000000000000000000000000a11c")
	lender2Addr       = common.HexToAddress("0x000000000000000000000000000000000000ca01")
	strangerAddr      = common.HexToAddress("0x000000000000000000000000000000000000dead")
)

var epoch = time.Unix(1_700_000_000, 0).UTC()

func wei(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

type loanFixture struct {
	loans   *mocks.FakeLoanRepository
	fees    *mocks.FakeFeeLedgerRepository
	params  *mocks.FakeParamsRepository
	outbox  *mocks.FakeOutboxRepository
	txMgr   *mocks.FakeTransactionManager
	clock   *mocks.FakeClock
	borrow  *mocks.MockTicketAuthority
	lend    *mocks.MockTicketAuthority
	assets  *mocks.MockAssetRegistry
	nft     *mocks.MockNonFungibleAsset
	token   *mocks.MockFungibleAsset
	useCase *usecase.LoanUseCase
}

func newLoanFixture(t *testing.T) *loanFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &loanFixture{
		loans:  mocks.NewFakeLoanRepository(),
		fees:   mocks.NewFakeFeeLedgerRepository(),
		params: mocks.NewFakeParamsRepository(domain.DefaultParams(managerAddr)),
		outbox: mocks.NewFakeOutboxRepository(),
		txMgr:  mocks.NewFakeTransactionManager(),
		clock:  mocks.NewFakeClock(epoch),
		borrow: mocks.NewMockTicketAuthority(ctrl),
		lend:   mocks.NewMockTicketAuthority(ctrl),
		assets: mocks.NewMockAssetRegistry(ctrl),
		nft:    mocks.NewMockNonFungibleAsset(ctrl),
		token:  mocks.NewMockFungibleAsset(ctrl),
	}
	f.borrow.EXPECT().Address().Return(borrowTicketsAddr).AnyTimes()
	f.lend.EXPECT().Address().Return(lendTicketsAddr).AnyTimes()

	f.useCase = usecase.NewLoanUseCase(usecase.LoanDependencies{
		TxManager:     f.txMgr,
		LoanRepo:      f.loans,
		FeeRepo:       f.fees,
		ParamsRepo:    f.params,
		OutboxRepo:    f.outbox,
		BorrowTickets: f.borrow,
		LendTickets:   f.lend,
		Assets:        f.assets,
		Clock:         f.clock,
		IDGen:         mocks.NewFakeIDGenerator(),
		Registry:      registryAddr,
	})
	return f
}

func (f *loanFixture) now() uint64 {
	return uint64(f.clock.Now().Unix())
}

// openLoan stores an unfunded loan with 1e18 principal, rate 100 and a
// 30 day duration.
func (f *loanFixture) openLoan(id domain.LoanID, allowIncrease bool) *domain.Loan {
	loan := &domain.Loan{
		ID:                   id,
		Collateral:           domain.Collateral{Contract: collectionAddr, TokenID: uint256.NewInt(7)},
		DenominationAsset:    tokenAddr,
		Principal:            wei("1000000000000000000"),
		Rate:                 uint256.NewInt(100),
		DurationSeconds:      30 * 86400,
		AccruedInterest:      new(uint256.Int),
		LastAccrualTimestamp: f.now(),
		AllowAmountIncrease:  allowIncrease,
	}
	f.loans.Put(loan)
	return loan
}

func (f *loanFixture) fundedLoan(id domain.LoanID, allowIncrease bool) *domain.Loan {
	loan := f.openLoan(id, allowIncrease)
	loan.Lender = lenderAddr
	f.loans.Put(loan)
	return loan
}

func TestLoanUseCase_CreateLoan(t *testing.T) {
	validInput := func() usecase.CreateLoanInput {
		return usecase.CreateLoanInput{
			Caller:             borrowerAddr,
			CollateralContract: collectionAddr,
			CollateralTokenID:  uint256.NewInt(7),
			DenominationAsset:  tokenAddr,
			Principal:          wei("1000000000000000000"),
			Rate:               uint256.NewInt(100),
			DurationSeconds:    86400,
			Recipient:          borrowerAddr,
		}
	}

	tests := []struct {
		name       string
		input      func() usecase.CreateLoanInput
		setupMocks func(f *loanFixture)
		errorType  error
	}{
		{
			name:  "locks collateral and mints borrow ticket",
			input: validInput,
			setupMocks: func(f *loanFixture) {
				f.assets.EXPECT().NonFungible(gomock.Any(), collectionAddr).Return(f.nft, nil)
				f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
				f.borrow.EXPECT().Mint(gomock.Any(), registryAddr, borrowerAddr, domain.LoanID(1)).Return(nil)
				f.nft.EXPECT().TransferFrom(gomock.Any(), registryAddr, borrowerAddr, registryAddr, uint256.NewInt(7)).Return(nil)
			},
		},
		{
			name: "zero principal",
			input: func() usecase.CreateLoanInput {
				in := validInput()
				in.Principal = new(uint256.Int)
				return in
			},
			errorType: domain.ErrInvalidParameter,
		},
		{
			name: "zero duration",
			input: func() usecase.CreateLoanInput {
				in := validInput()
				in.DurationSeconds = 0
				return in
			},
			errorType: domain.ErrInvalidParameter,
		},
		{
			name: "ticket used as collateral",
			input: func() usecase.CreateLoanInput {
				in := validInput()
				in.CollateralContract = lendTicketsAddr
				return in
			},
			errorType: domain.ErrInvalidParameter,
		},
		{
			name:  "unknown collateral contract",
			input: validInput,
			setupMocks: func(f *loanFixture) {
				f.assets.EXPECT().NonFungible(gomock.Any(), collectionAddr).Return(nil, domain.ErrAssetNotFound)
			},
			errorType: domain.ErrInvalidParameter,
		},
		{
			name:  "collateral transfer rejected",
			input: validInput,
			setupMocks: func(f *loanFixture) {
				f.assets.EXPECT().NonFungible(gomock.Any(), collectionAddr).Return(f.nft, nil)
				f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
				f.borrow.EXPECT().Mint(gomock.Any(), registryAddr, borrowerAddr, domain.LoanID(1)).Return(nil)
				f.nft.EXPECT().TransferFrom(gomock.Any(), registryAddr, borrowerAddr, registryAddr, gomock.Any()).
					Return(domain.ErrNotOwnerNorApproved)
			},
			errorType: domain.ErrTransferRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(t)
			if tt.setupMocks != nil {
				tt.setupMocks(f)
			}

			loan, err := f.useCase.CreateLoan(context.Background(), tt.input())

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				if f.txMgr.Commits != 0 {
					t.Fatalf("expected no commit, got %d", f.txMgr.Commits)
				}
				if len(f.outbox.Events) != 0 {
					t.Fatalf("expected no events, got %v", f.outbox.EventTypes())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if loan.ID != 1 {
				t.Fatalf("expected loan id 1, got %d", loan.ID)
			}
			if loan.Funded() || loan.Closed {
				t.Fatalf("expected open unfunded loan, got %+v", loan)
			}
			if loan.LastAccrualTimestamp != f.now() {
				t.Fatalf("expected accrual timestamp %d, got %d", f.now(), loan.LastAccrualTimestamp)
			}
			if got := f.outbox.EventTypes(); len(got) != 1 || got[0] != domain.EventTypeLoanCreated {
				t.Fatalf("expected loan.created event, got %v", got)
			}
			if f.outbox.Events[0].Payload["borrower"] != borrowerAddr.Hex() {
				t.Fatalf("unexpected payload %v", f.outbox.Events[0].Payload)
			}
		})
	}
}

func TestLoanUseCase_CreateLoan_KeepsCauseOfRejection(t *testing.T) {
	f := newLoanFixture(t)
	f.assets.EXPECT().NonFungible(gomock.Any(), collectionAddr).Return(f.nft, nil)
	f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
	f.borrow.EXPECT().Mint(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	f.nft.EXPECT().TransferFrom(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrHasLender)

	_, err := f.useCase.CreateLoan(context.Background(), usecase.CreateLoanInput{
		Caller:             borrowerAddr,
		CollateralContract: collectionAddr,
		CollateralTokenID:  uint256.NewInt(7),
		DenominationAsset:  tokenAddr,
		Principal:          uint256.NewInt(1000),
		Rate:               uint256.NewInt(1),
		DurationSeconds:    60,
		Recipient:          borrowerAddr,
	})
	if !errors.Is(err, domain.ErrTransferRejected) || !errors.Is(err, domain.ErrHasLender) {
		t.Fatalf("expected wrapped ErrHasLender, got %v", err)
	}
	if f.txMgr.Rollbacks != 1 {
		t.Fatalf("expected rollback, got %d", f.txMgr.Rollbacks)
	}
}

func TestLoanUseCase_Lend_Fund(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.openLoan(1, false)
	loan.Principal = wei("50500000000000000000")
	f.loans.Put(loan)

	principal := wei("50500000000000000000")
	fee := wei("505000000000000000")
	payout := wei("49995000000000000000")

	f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
	f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
	f.lend.EXPECT().Mint(gomock.Any(), registryAddr, lenderAddr, domain.LoanID(1)).Return(nil)
	gomock.InOrder(
		f.token.EXPECT().TransferFrom(gomock.Any(), registryAddr, lenderAddr, registryAddr, principal).Return(nil),
		f.token.EXPECT().Transfer(gomock.Any(), registryAddr, borrowerAddr, payout).Return(nil),
	)

	f.clock.Advance(time.Hour)
	result, err := f.useCase.Lend(context.Background(), usecase.LendInput{
		Caller:          lenderAddr,
		LoanID:          1,
		Principal:       principal,
		Rate:            uint256.NewInt(100),
		DurationSeconds: 30 * 86400,
		Recipient:       lenderAddr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Buyout {
		t.Fatal("expected first funding, got buyout")
	}
	if !result.OriginationFee.Eq(fee) {
		t.Fatalf("expected fee %s, got %s", fee.Dec(), result.OriginationFee.Dec())
	}
	if !result.BorrowerPayout.Eq(payout) {
		t.Fatalf("expected payout %s, got %s", payout.Dec(), result.BorrowerPayout.Dec())
	}

	collected, _ := f.fees.Balance(context.Background(), tokenAddr)
	if !collected.Eq(fee) {
		t.Fatalf("expected fee ledger %s, got %s", fee.Dec(), collected.Dec())
	}

	stored, _ := f.loans.GetByID(context.Background(), 1)
	if stored.Lender != lenderAddr {
		t.Fatalf("expected lender %s, got %s", lenderAddr.Hex(), stored.Lender.Hex())
	}
	if stored.LastAccrualTimestamp != f.now() {
		t.Fatalf("expected clock reset to %d, got %d", f.now(), stored.LastAccrualTimestamp)
	}
	if !stored.AccruedInterest.IsZero() {
		t.Fatalf("expected no accrued interest, got %s", stored.AccruedInterest.Dec())
	}
	if got := f.outbox.EventTypes(); len(got) != 1 || got[0] != domain.EventTypeLoanLent {
		t.Fatalf("expected loan.lent event, got %v", got)
	}
}

func TestLoanUseCase_Lend_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *loanFixture)
		principal  string
		rate       uint64
		duration   uint64
		setupMocks func(f *loanFixture)
		errorType  error
	}{
		{
			name:      "loan not found",
			setup:     func(f *loanFixture) {},
			principal: "1000000000000000000",
			rate:      100,
			duration:  30 * 86400,
			errorType: domain.ErrLoanNotFound,
		},
		{
			name: "closed loan",
			setup: func(f *loanFixture) {
				loan := f.openLoan(1, false)
				loan.Closed = true
				f.loans.Put(loan)
			},
			principal: "1000000000000000000",
			rate:      100,
			duration:  30 * 86400,
			errorType: domain.ErrLoanClosed,
		},
		{
			name:      "amount below request",
			setup:     func(f *loanFixture) { f.openLoan(1, true) },
			principal: "999999999999999999",
			rate:      100,
			duration:  30 * 86400,
			errorType: domain.ErrAmountTooLow,
		},
		{
			name:      "rate above request",
			setup:     func(f *loanFixture) { f.openLoan(1, true) },
			principal: "1000000000000000000",
			rate:      101,
			duration:  30 * 86400,
			errorType: domain.ErrRateTooHigh,
		},
		{
			name:      "duration below request",
			setup:     func(f *loanFixture) { f.openLoan(1, true) },
			principal: "1000000000000000000",
			rate:      100,
			duration:  30*86400 - 1,
			errorType: domain.ErrDurationTooLow,
		},
		{
			name:      "amount checked before rate",
			setup:     func(f *loanFixture) { f.openLoan(1, true) },
			principal: "1",
			rate:      1000,
			duration:  1,
			errorType: domain.ErrAmountTooLow,
		},
		{
			name:      "amount increase not allowed",
			setup:     func(f *loanFixture) { f.openLoan(1, false) },
			principal: "2000000000000000000",
			rate:      100,
			duration:  30 * 86400,
			errorType: domain.ErrAmountIncreaseNotAllowed,
		},
		{
			name:      "buyout with equal terms",
			setup:     func(f *loanFixture) { f.fundedLoan(1, true) },
			principal: "1000000000000000000",
			rate:      100,
			duration:  30 * 86400,
			setupMocks: func(f *loanFixture) {
				f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
				f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
			},
			errorType: domain.ErrInsufficientImprovement,
		},
		{
			name:      "buyout improving rate by 9 percent",
			setup:     func(f *loanFixture) { f.fundedLoan(1, true) },
			principal: "1000000000000000000",
			rate:      91,
			duration:  30 * 86400,
			setupMocks: func(f *loanFixture) {
				f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
				f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
			},
			errorType: domain.ErrInsufficientImprovement,
		},
		{
			name:      "buyout with larger principal and shorter duration",
			setup:     func(f *loanFixture) { f.fundedLoan(1, true) },
			principal: "1100000000000000000",
			rate:      100,
			duration:  30*86400 - 1,
			errorType: domain.ErrDurationTooLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(t)
			tt.setup(f)
			if tt.setupMocks != nil {
				tt.setupMocks(f)
			}

			_, err := f.useCase.Lend(context.Background(), usecase.LendInput{
				Caller:          lender2Addr,
				LoanID:          1,
				Principal:       wei(tt.principal),
				Rate:            uint256.NewInt(tt.rate),
				DurationSeconds: tt.duration,
				Recipient:       lender2Addr,
			})
			if !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}
			if f.txMgr.Commits != 0 {
				t.Fatalf("expected no commit, got %d", f.txMgr.Commits)
			}
		})
	}
}

func TestLoanUseCase_Lend_Buyout(t *testing.T) {
	f := newLoanFixture(t)
	loan := f.fundedLoan(1, false)
	loan.Rate = uint256.NewInt(200)
	f.loans.Put(loan)

	f.clock.Advance(24 * time.Hour)
	accrued := wei("547945205479372")
	lenderPayout := wei("1000547945205479372")

	f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
	f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
	f.lend.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(lenderAddr, nil)
	f.lend.EXPECT().Transfer(gomock.Any(), registryAddr, lenderAddr, lender2Addr, domain.LoanID(1)).Return(nil)
	f.token.EXPECT().TransferFrom(gomock.Any(), registryAddr, lender2Addr, lenderAddr, lenderPayout).Return(nil)

	result, err := f.useCase.Lend(context.Background(), usecase.LendInput{
		Caller:          lender2Addr,
		LoanID:          1,
		Principal:       wei("1000000000000000000"),
		Rate:            uint256.NewInt(180),
		DurationSeconds: 30 * 86400,
		Recipient:       lender2Addr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Buyout {
		t.Fatal("expected buyout")
	}
	if result.PreviousLender != lenderAddr {
		t.Fatalf("expected previous lender %s, got %s", lenderAddr.Hex(), result.PreviousLender.Hex())
	}
	if !result.LenderPayout.Eq(lenderPayout) {
		t.Fatalf("expected lender payout %s, got %s", lenderPayout.Dec(), result.LenderPayout.Dec())
	}
	if !result.OriginationFee.IsZero() {
		t.Fatalf("expected no fee without increment, got %s", result.OriginationFee.Dec())
	}

	stored, _ := f.loans.GetByID(context.Background(), 1)
	if !stored.AccruedInterest.Eq(accrued) {
		t.Fatalf("expected accrued %s carried forward, got %s", accrued.Dec(), stored.AccruedInterest.Dec())
	}
	if stored.LastAccrualTimestamp != f.now() {
		t.Fatalf("expected clock reset to %d, got %d", f.now(), stored.LastAccrualTimestamp)
	}
	if stored.Rate.Uint64() != 180 || stored.Lender != lender2Addr {
		t.Fatalf("expected new terms, got rate %s lender %s", stored.Rate.Dec(), stored.Lender.Hex())
	}
}

func TestLoanUseCase_Lend_BuyoutWithIncrement(t *testing.T) {
	f := newLoanFixture(t)
	f.fundedLoan(1, true)

	increment := wei("100000000000000000")
	payout := wei("99000000000000000")

	f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
	f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
	f.lend.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(lenderAddr, nil)
	f.lend.EXPECT().Transfer(gomock.Any(), registryAddr, lenderAddr, lender2Addr, domain.LoanID(1)).Return(nil)
	gomock.InOrder(
		f.token.EXPECT().TransferFrom(gomock.Any(), registryAddr, lender2Addr, registryAddr, increment).Return(nil),
		f.token.EXPECT().Transfer(gomock.Any(), registryAddr, borrowerAddr, payout).Return(nil),
		f.token.EXPECT().TransferFrom(gomock.Any(), registryAddr, lender2Addr, lenderAddr, wei("1000000000000000000")).Return(nil),
	)

	result, err := f.useCase.Lend(context.Background(), usecase.LendInput{
		Caller:          lender2Addr,
		LoanID:          1,
		Principal:       wei("1100000000000000000"),
		Rate:            uint256.NewInt(100),
		DurationSeconds: 30 * 86400,
		Recipient:       lender2Addr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.OriginationFee.Eq(wei("1000000000000000")) {
		t.Fatalf("expected fee on increment, got %s", result.OriginationFee.Dec())
	}
	if !result.BorrowerPayout.Eq(payout) {
		t.Fatalf("expected borrower payout %s, got %s", payout.Dec(), result.BorrowerPayout.Dec())
	}
}

func TestLoanUseCase_CloseLoan(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *loanFixture)
		caller     common.Address
		setupMocks func(f *loanFixture)
		errorType  error
	}{
		{
			name:      "loan not found",
			setup:     func(f *loanFixture) {},
			caller:    borrowerAddr,
			errorType: domain.ErrLoanNotFound,
		},
		{
			name:   "caller does not hold borrow ticket",
			setup:  func(f *loanFixture) { f.openLoan(1, false) },
			caller: strangerAddr,
			setupMocks: func(f *loanFixture) {
				f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
			},
			errorType: domain.ErrUnauthorized,
		},
		{
			name: "already closed",
			setup: func(f *loanFixture) {
				loan := f.openLoan(1, false)
				loan.Closed = true
				f.loans.Put(loan)
			},
			caller: borrowerAddr,
			setupMocks: func(f *loanFixture) {
				f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
			},
			errorType: domain.ErrLoanClosed,
		},
		{
			name:   "funded loan",
			setup:  func(f *loanFixture) { f.fundedLoan(1, false) },
			caller: borrowerAddr,
			setupMocks: func(f *loanFixture) {
				f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
			},
			errorType: domain.ErrHasLender,
		},
		{
			name:   "returns collateral",
			setup:  func(f *loanFixture) { f.openLoan(1, false) },
			caller: borrowerAddr,
			setupMocks: func(f *loanFixture) {
				f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
				f.assets.EXPECT().NonFungible(gomock.Any(), collectionAddr).Return(f.nft, nil)
				f.nft.EXPECT().TransferFrom(gomock.Any(), registryAddr, registryAddr, strangerAddr, uint256.NewInt(7)).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(t)
			tt.setup(f)
			if tt.setupMocks != nil {
				tt.setupMocks(f)
			}

			loan, err := f.useCase.CloseLoan(context.Background(), usecase.CloseLoanInput{
				Caller:   tt.caller,
				LoanID:   1,
				ReturnTo: strangerAddr,
			})
			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !loan.Closed {
				t.Fatal("expected loan closed")
			}
			if got := f.outbox.EventTypes(); len(got) != 1 || got[0] != domain.EventTypeLoanClosed {
				t.Fatalf("expected loan.closed event, got %v", got)
			}
		})
	}
}

func TestLoanUseCase_RepayAndCloseLoan(t *testing.T) {
	t.Run("unfunded loan", func(t *testing.T) {
		f := newLoanFixture(t)
		f.openLoan(1, false)

		_, err := f.useCase.RepayAndCloseLoan(context.Background(), usecase.RepayInput{Caller: borrowerAddr, LoanID: 1})
		if !errors.Is(err, domain.ErrNotFunded) {
			t.Fatalf("expected ErrNotFunded, got %v", err)
		}
	})

	t.Run("pays lend ticket holder after one year", func(t *testing.T) {
		f := newLoanFixture(t)
		f.fundedLoan(1, false)
		f.clock.Advance(365 * 24 * time.Hour)

		interest := wei("99999999999985536")
		total := wei("1099999999999985536")

		f.lend.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(lender2Addr, nil)
		f.borrow.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(borrowerAddr, nil)
		f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
		f.assets.EXPECT().NonFungible(gomock.Any(), collectionAddr).Return(f.nft, nil)
		gomock.InOrder(
			f.token.EXPECT().TransferFrom(gomock.Any(), registryAddr, strangerAddr, lender2Addr, total).Return(nil),
			f.nft.EXPECT().TransferFrom(gomock.Any(), registryAddr, registryAddr, borrowerAddr, uint256.NewInt(7)).Return(nil),
		)

		result, err := f.useCase.RepayAndCloseLoan(context.Background(), usecase.RepayInput{Caller: strangerAddr, LoanID: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.Interest.Eq(interest) || !result.Total.Eq(total) {
			t.Fatalf("expected interest %s total %s, got %s %s", interest.Dec(), total.Dec(), result.Interest.Dec(), result.Total.Dec())
		}
		if result.Lender != lender2Addr {
			t.Fatalf("expected payment to ticket holder %s, got %s", lender2Addr.Hex(), result.Lender.Hex())
		}

		stored, _ := f.loans.GetByID(context.Background(), 1)
		if !stored.Closed {
			t.Fatal("expected loan closed")
		}
		if !stored.AccruedInterest.Eq(interest) {
			t.Fatalf("expected checkpointed interest %s, got %s", interest.Dec(), stored.AccruedInterest.Dec())
		}
	})

	t.Run("closed loan", func(t *testing.T) {
		f := newLoanFixture(t)
		loan := f.fundedLoan(1, false)
		loan.Closed = true
		f.loans.Put(loan)

		_, err := f.useCase.RepayAndCloseLoan(context.Background(), usecase.RepayInput{Caller: borrowerAddr, LoanID: 1})
		if !errors.Is(err, domain.ErrLoanClosed) {
			t.Fatalf("expected ErrLoanClosed, got %v", err)
		}
	})
}

func TestLoanUseCase_Seize(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(f *loanFixture)
		caller     common.Address
		advance    time.Duration
		setupMocks func(f *loanFixture)
		errorType  error
	}{
		{
			name:      "unfunded loan",
			setup:     func(f *loanFixture) { f.openLoan(1, false) },
			caller:    lenderAddr,
			advance:   31 * 24 * time.Hour,
			errorType: domain.ErrUnauthorized,
		},
		{
			name:    "caller does not hold lend ticket",
			setup:   func(f *loanFixture) { f.fundedLoan(1, false) },
			caller:  strangerAddr,
			advance: 31 * 24 * time.Hour,
			setupMocks: func(f *loanFixture) {
				f.lend.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(lenderAddr, nil)
			},
			errorType: domain.ErrUnauthorized,
		},
		{
			name:    "one second before maturity",
			setup:   func(f *loanFixture) { f.fundedLoan(1, false) },
			caller:  lenderAddr,
			advance: 30*24*time.Hour - time.Second,
			setupMocks: func(f *loanFixture) {
				f.lend.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(lenderAddr, nil)
			},
			errorType: domain.ErrNotLate,
		},
		{
			name: "closed loan",
			setup: func(f *loanFixture) {
				loan := f.fundedLoan(1, false)
				loan.Closed = true
				f.loans.Put(loan)
			},
			caller:  lenderAddr,
			advance: 31 * 24 * time.Hour,
			setupMocks: func(f *loanFixture) {
				f.lend.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(lenderAddr, nil)
			},
			errorType: domain.ErrLoanClosed,
		},
		{
			name:    "at maturity",
			setup:   func(f *loanFixture) { f.fundedLoan(1, false) },
			caller:  lenderAddr,
			advance: 30 * 24 * time.Hour,
			setupMocks: func(f *loanFixture) {
				f.lend.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(1)).Return(lenderAddr, nil)
				f.assets.EXPECT().NonFungible(gomock.Any(), collectionAddr).Return(f.nft, nil)
				f.nft.EXPECT().TransferFrom(gomock.Any(), registryAddr, registryAddr, lender2Addr, uint256.NewInt(7)).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(t)
			tt.setup(f)
			if tt.setupMocks != nil {
				tt.setupMocks(f)
			}
			f.clock.Advance(tt.advance)

			loan, err := f.useCase.Seize(context.Background(), usecase.SeizeInput{
				Caller: tt.caller,
				LoanID: 1,
				To:     lender2Addr,
			})
			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !loan.Closed {
				t.Fatal("expected loan closed")
			}
			if got := f.outbox.EventTypes(); len(got) != 1 || got[0] != domain.EventTypeLoanSeized {
				t.Fatalf("expected loan.seized event, got %v", got)
			}
		})
	}
}

func TestLoanUseCase_AmountOwed(t *testing.T) {
	f := newLoanFixture(t)
	f.openLoan(1, false)
	f.fundedLoan(2, false)
	f.clock.Advance(365 * 24 * time.Hour)

	owed, err := f.useCase.AmountOwed(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !owed.Interest.IsZero() || !owed.Total.IsZero() {
		t.Fatalf("expected nothing owed on unfunded loan, got %s %s", owed.Interest.Dec(), owed.Total.Dec())
	}

	owed, err = f.useCase.AmountOwed(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owed.Interest.Dec() != "99999999999985536" {
		t.Fatalf("unexpected interest %s", owed.Interest.Dec())
	}
	if owed.Total.Dec() != "1099999999999985536" {
		t.Fatalf("unexpected total %s", owed.Total.Dec())
	}
	if owed.LoanEnd != uint64(epoch.Unix())+30*86400 {
		t.Fatalf("unexpected loan end %d", owed.LoanEnd)
	}

	if _, err := f.useCase.AmountOwed(context.Background(), 3); !errors.Is(err, domain.ErrLoanNotFound) {
		t.Fatalf("expected ErrLoanNotFound, got %v", err)
	}
}

func TestLoanUseCase_ListLoans(t *testing.T) {
	f := newLoanFixture(t)
	f.openLoan(1, false)
	f.fundedLoan(2, false)
	f.lend.EXPECT().OwnerOf(gomock.Any(), domain.LoanID(2)).Return(lender2Addr, nil).Times(2)

	loans, err := f.useCase.ListLoans(context.Background(), usecase.ListLoansInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loans) != 2 {
		t.Fatalf("expected 2 loans, got %d", len(loans))
	}
	if loans[1].Lender != lender2Addr {
		t.Fatalf("expected lender from ticket %s, got %s", lender2Addr.Hex(), loans[1].Lender.Hex())
	}

	page, err := f.useCase.ListLoans(context.Background(), usecase.ListLoansInput{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 1 || page[0].ID != 2 {
		t.Fatalf("expected second page to hold loan 2, got %v", page)
	}
}

func TestLoanUseCase_RegistryCannotBeAParty(t *testing.T) {
	create := func(caller, recipient common.Address) func(f *loanFixture) error {
		return func(f *loanFixture) error {
			_, err := f.useCase.CreateLoan(context.Background(), usecase.CreateLoanInput{
				Caller:             caller,
				CollateralContract: collectionAddr,
				CollateralTokenID:  uint256.NewInt(7),
				DenominationAsset:  tokenAddr,
				Principal:          wei("1000000000000000000"),
				Rate:               uint256.NewInt(100),
				DurationSeconds:    86400,
				Recipient:          recipient,
			})
			return err
		}
	}
	lend := func(caller, recipient common.Address) func(f *loanFixture) error {
		return func(f *loanFixture) error {
			_, err := f.useCase.Lend(context.Background(), usecase.LendInput{
				Caller:          caller,
				LoanID:          1,
				Principal:       wei("1000000000000000000"),
				Rate:            uint256.NewInt(100),
				DurationSeconds: 30 * 86400,
				Recipient:       recipient,
			})
			return err
		}
	}

	tests := []struct {
		name      string
		call      func(f *loanFixture) error
		errorType error
	}{
		{name: "create as registry", call: create(registryAddr, borrowerAddr), errorType: domain.ErrUnauthorized},
		{name: "create for registry", call: create(borrowerAddr, registryAddr), errorType: domain.ErrInvalidParameter},
		{name: "lend as registry", call: lend(registryAddr, lenderAddr), errorType: domain.ErrUnauthorized},
		{name: "lend for registry", call: lend(lenderAddr, registryAddr), errorType: domain.ErrInvalidParameter},
		{
			name: "close as registry",
			call: func(f *loanFixture) error {
				_, err := f.useCase.CloseLoan(context.Background(), usecase.CloseLoanInput{Caller: registryAddr, LoanID: 1, ReturnTo: strangerAddr})
				return err
			},
			errorType: domain.ErrUnauthorized,
		},
		{
			name: "close into registry",
			call: func(f *loanFixture) error {
				_, err := f.useCase.CloseLoan(context.Background(), usecase.CloseLoanInput{Caller: borrowerAddr, LoanID: 1, ReturnTo: registryAddr})
				return err
			},
			errorType: domain.ErrInvalidParameter,
		},
		{
			name: "repay as registry",
			call: func(f *loanFixture) error {
				_, err := f.useCase.RepayAndCloseLoan(context.Background(), usecase.RepayInput{Caller: registryAddr, LoanID: 1})
				return err
			},
			errorType: domain.ErrUnauthorized,
		},
		{
			name: "seize into registry",
			call: func(f *loanFixture) error {
				_, err := f.useCase.Seize(context.Background(), usecase.SeizeInput{Caller: lenderAddr, LoanID: 1, To: registryAddr})
				return err
			},
			errorType: domain.ErrInvalidParameter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLoanFixture(t)
			f.fundedLoan(1, false)

			err := tt.call(f)

			if !errors.Is(err, tt.errorType) {
				t.Fatalf("expected %v, got %v", tt.errorType, err)
			}
			if f.txMgr.Begins != 0 {
				t.Fatalf("expected no transaction, got %d", f.txMgr.Begins)
			}
			if len(f.outbox.Events) != 0 {
				t.Fatalf("expected no events, got %d", len(f.outbox.Events))
			}
		})
	}
}
