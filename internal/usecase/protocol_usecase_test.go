package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/mock/gomock"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
	"github.com/bengbengle/nft-lend/internal/usecase/mocks"
)

type protocolFixture struct {
	params  *mocks.FakeParamsRepository
	fees    *mocks.FakeFeeLedgerRepository
	outbox  *mocks.FakeOutboxRepository
	audit   *mocks.FakeAuditRepository
	txMgr   *mocks.FakeTransactionManager
	assets  *mocks.MockAssetRegistry
	token   *mocks.MockFungibleAsset
	useCase *usecase.ProtocolUseCase
}

func newProtocolFixture(t *testing.T) *protocolFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &protocolFixture{
		params: mocks.NewFakeParamsRepository(domain.DefaultParams(managerAddr)),
		fees:   mocks.NewFakeFeeLedgerRepository(),
		outbox: mocks.NewFakeOutboxRepository(),
		audit:  mocks.NewFakeAuditRepository(),
		txMgr:  mocks.NewFakeTransactionManager(),
		assets: mocks.NewMockAssetRegistry(ctrl),
		token:  mocks.NewMockFungibleAsset(ctrl),
	}
	f.useCase = usecase.NewProtocolUseCase(
		f.txMgr,
		f.params,
		f.fees,
		f.outbox,
		f.audit,
		f.assets,
		mocks.NewFakeClock(epoch),
		mocks.NewFakeIDGenerator(),
		nil,
		registryAddr,
	)
	return f
}

func TestProtocolUseCase_UpdateOriginationFeeRate(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.UpdateFeeRateInput
		expectError bool
		errorType   error
	}{
		{
			name:  "manager sets max rate",
			input: usecase.UpdateFeeRateInput{Caller: managerAddr, Rate: uint256.NewInt(50)},
		},
		{
			name:  "manager sets zero rate",
			input: usecase.UpdateFeeRateInput{Caller: managerAddr, Rate: new(uint256.Int)},
		},
		{
			name:        "rate above cap",
			input:       usecase.UpdateFeeRateInput{Caller: managerAddr, Rate: uint256.NewInt(51)},
			expectError: true,
			errorType:   domain.ErrInvalidParameter,
		},
		{
			name:        "non-manager",
			input:       usecase.UpdateFeeRateInput{Caller: strangerAddr, Rate: uint256.NewInt(20)},
			expectError: true,
			errorType:   domain.ErrUnauthorized,
		},
		{
			name:        "registry address",
			input:       usecase.UpdateFeeRateInput{Caller: registryAddr, Rate: uint256.NewInt(20)},
			expectError: true,
			errorType:   domain.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProtocolFixture(t)

			params, err := f.useCase.UpdateOriginationFeeRate(context.Background(), tt.input)

			if tt.expectError {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				current, _ := f.params.Get(context.Background())
				if !current.OriginationFeeRate.Eq(domain.DefaultOriginationFeeRate) {
					t.Fatalf("expected rate unchanged, got %s", current.OriginationFeeRate.Dec())
				}
				if len(f.audit.Logs) != 0 {
					t.Fatalf("expected no audit rows, got %d", len(f.audit.Logs))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !params.OriginationFeeRate.Eq(tt.input.Rate) {
				t.Fatalf("expected rate %s, got %s", tt.input.Rate.Dec(), params.OriginationFeeRate.Dec())
			}
			if got := f.outbox.EventTypes(); len(got) != 1 || got[0] != domain.EventTypeFeeRateUpdated {
				t.Fatalf("expected fee rate event, got %v", got)
			}
			if len(f.audit.Logs) != 1 {
				t.Fatalf("expected one audit row, got %d", len(f.audit.Logs))
			}
			log := f.audit.Logs[0]
			if log.Actor != managerAddr.Hex() || log.Action != string(domain.AuditActionUpdateFeeRate) {
				t.Fatalf("unexpected audit row %+v", log)
			}
			if log.BeforeState["origination_fee_rate"] != "10" {
				t.Fatalf("expected before state rate 10, got %v", log.BeforeState)
			}
		})
	}
}

func TestProtocolUseCase_UpdateRequiredImprovementRate(t *testing.T) {
	f := newProtocolFixture(t)

	if _, err := f.useCase.UpdateRequiredImprovementRate(context.Background(), usecase.UpdateImprovementRateInput{
		Caller: strangerAddr,
		Rate:   25,
	}); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	params, err := f.useCase.UpdateRequiredImprovementRate(context.Background(), usecase.UpdateImprovementRateInput{
		Caller: managerAddr,
		Rate:   250,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.RequiredImprovementRate != 250 {
		t.Fatalf("expected 250, got %d", params.RequiredImprovementRate)
	}

	events, err := f.useCase.ProtocolEvents(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].EventType != domain.EventTypeImprovementRateUpdated {
		t.Fatalf("expected improvement rate event, got %v", events)
	}
}

func TestProtocolUseCase_WithdrawOriginationFees(t *testing.T) {
	tests := []struct {
		name       string
		input      usecase.WithdrawFeesInput
		setupMocks func(f *protocolFixture)
		errorType  error
		remaining  uint64
	}{
		{
			name:  "manager withdraws part",
			input: usecase.WithdrawFeesInput{Caller: managerAddr, Asset: tokenAddr, Amount: uint256.NewInt(400), To: strangerAddr},
			setupMocks: func(f *protocolFixture) {
				f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
				f.token.EXPECT().Transfer(gomock.Any(), registryAddr, strangerAddr, uint256.NewInt(400)).Return(nil)
			},
			remaining: 600,
		},
		{
			name:      "more than collected",
			input:     usecase.WithdrawFeesInput{Caller: managerAddr, Asset: tokenAddr, Amount: uint256.NewInt(1001), To: strangerAddr},
			errorType: domain.ErrInsufficientFees,
			remaining: 1000,
		},
		{
			name:      "non-manager",
			input:     usecase.WithdrawFeesInput{Caller: strangerAddr, Asset: tokenAddr, Amount: uint256.NewInt(1), To: strangerAddr},
			errorType: domain.ErrUnauthorized,
			remaining: 1000,
		},
		{
			name:      "registry as caller",
			input:     usecase.WithdrawFeesInput{Caller: registryAddr, Asset: tokenAddr, Amount: uint256.NewInt(1), To: strangerAddr},
			errorType: domain.ErrUnauthorized,
			remaining: 1000,
		},
		{
			name:      "registry as destination",
			input:     usecase.WithdrawFeesInput{Caller: managerAddr, Asset: tokenAddr, Amount: uint256.NewInt(1), To: registryAddr},
			errorType: domain.ErrInvalidParameter,
			remaining: 1000,
		},
		{
			name:      "zero destination",
			input:     usecase.WithdrawFeesInput{Caller: managerAddr, Asset: tokenAddr, Amount: uint256.NewInt(1)},
			errorType: domain.ErrInvalidParameter,
			remaining: 1000,
		},
		{
			name:  "asset transfer fails",
			input: usecase.WithdrawFeesInput{Caller: managerAddr, Asset: tokenAddr, Amount: uint256.NewInt(10), To: strangerAddr},
			setupMocks: func(f *protocolFixture) {
				f.assets.EXPECT().Fungible(gomock.Any(), tokenAddr).Return(f.token, nil)
				f.token.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrInsufficientBalance)
				f.fees.SubFunc = func(ctx context.Context, tx usecase.Transaction, asset common.Address, amount *uint256.Int) error {
					return nil
				}
			},
			errorType: domain.ErrTransferRejected,
			remaining: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProtocolFixture(t)
			_ = f.fees.Add(context.Background(), nil, tokenAddr, uint256.NewInt(1000))
			if tt.setupMocks != nil {
				tt.setupMocks(f)
			}

			err := f.useCase.WithdrawOriginationFees(context.Background(), tt.input)

			if tt.errorType != nil {
				if !errors.Is(err, tt.errorType) {
					t.Fatalf("expected %v, got %v", tt.errorType, err)
				}
				if f.txMgr.Commits != 0 {
					t.Fatalf("expected no commit, got %d", f.txMgr.Commits)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			balance, _ := f.useCase.OriginationFees(context.Background(), tokenAddr)
			if balance.Uint64() != tt.remaining {
				t.Fatalf("expected %d remaining, got %s", tt.remaining, balance.Dec())
			}
		})
	}
}

func TestProtocolUseCase_ListAuditLogs(t *testing.T) {
	f := newProtocolFixture(t)

	if _, err := f.useCase.UpdateOriginationFeeRate(context.Background(), usecase.UpdateFeeRateInput{
		Caller: managerAddr,
		Rate:   uint256.NewInt(20),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.useCase.UpdateRequiredImprovementRate(context.Background(), usecase.UpdateImprovementRateInput{
		Caller: managerAddr,
		Rate:   15,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logs, err := f.useCase.ListAuditLogs(context.Background(), domain.AuditFilter{
		Action: string(domain.AuditActionUpdateImprovementRate),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(logs))
	}

	withoutAudit := usecase.NewProtocolUseCase(f.txMgr, f.params, f.fees, f.outbox, nil, f.assets, nil, mocks.NewFakeIDGenerator(), nil, registryAddr)
	logs, err = withoutAudit.ListAuditLogs(context.Background(), domain.AuditFilter{})
	if err != nil || len(logs) != 0 {
		t.Fatalf("expected empty list without audit repository, got %v %v", logs, err)
	}
}
