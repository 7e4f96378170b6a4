package dto

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// CreateLoanRequest opens a loan request. Amounts are base-10 strings in
// base units; rate is in tenths of a percent per year.
type CreateLoanRequest struct {
	CollateralContract  string `json:"collateral_contract"`
	CollateralTokenID   string `json:"collateral_token_id"`
	DenominationAsset   string `json:"denomination_asset"`
	Principal           string `json:"principal"`
	Rate                string `json:"rate"`
	DurationSeconds     uint64 `json:"duration_seconds"`
	Recipient           string `json:"recipient,omitempty"`
	AllowAmountIncrease bool   `json:"allow_amount_increase"`
}

// ToUseCaseInput converts to use case input. Recipient defaults to caller.
func (r *CreateLoanRequest) ToUseCaseInput(caller common.Address) (usecase.CreateLoanInput, error) {
	collateral, err := domain.ParseAddress(r.CollateralContract)
	if err != nil {
		return usecase.CreateLoanInput{}, fmt.Errorf("collateral_contract: %w", err)
	}
	tokenID, err := domain.ParseAmount(r.CollateralTokenID)
	if err != nil {
		return usecase.CreateLoanInput{}, fmt.Errorf("collateral_token_id: %w", err)
	}
	asset, err := domain.ParseAddress(r.DenominationAsset)
	if err != nil {
		return usecase.CreateLoanInput{}, fmt.Errorf("denomination_asset: %w", err)
	}
	terms, err := parseTerms(r.Principal, r.Rate)
	if err != nil {
		return usecase.CreateLoanInput{}, err
	}
	recipient, err := optionalAddress(r.Recipient, caller)
	if err != nil {
		return usecase.CreateLoanInput{}, fmt.Errorf("recipient: %w", err)
	}

	return usecase.CreateLoanInput{
		Caller:              caller,
		CollateralContract:  collateral,
		CollateralTokenID:   tokenID,
		DenominationAsset:   asset,
		Principal:           terms[0],
		Rate:                terms[1],
		DurationSeconds:     r.DurationSeconds,
		Recipient:           recipient,
		AllowAmountIncrease: r.AllowAmountIncrease,
	}, nil
}

// LendRequest funds or buys out a loan.
type LendRequest struct {
	Principal       string `json:"principal"`
	Rate            string `json:"rate"`
	DurationSeconds uint64 `json:"duration_seconds"`
	Recipient       string `json:"recipient,omitempty"`
}

// ToUseCaseInput converts to use case input. Recipient defaults to caller.
func (r *LendRequest) ToUseCaseInput(caller common.Address, id domain.LoanID) (usecase.LendInput, error) {
	terms, err := parseTerms(r.Principal, r.Rate)
	if err != nil {
		return usecase.LendInput{}, err
	}
	recipient, err := optionalAddress(r.Recipient, caller)
	if err != nil {
		return usecase.LendInput{}, fmt.Errorf("recipient: %w", err)
	}

	return usecase.LendInput{
		Caller:          caller,
		LoanID:          id,
		Principal:       terms[0],
		Rate:            terms[1],
		DurationSeconds: r.DurationSeconds,
		Recipient:       recipient,
	}, nil
}

// CloseLoanRequest withdraws an unfunded loan request.
type CloseLoanRequest struct {
	ReturnTo string `json:"return_to,omitempty"`
}

// ToUseCaseInput converts to use case input. ReturnTo defaults to caller.
func (r *CloseLoanRequest) ToUseCaseInput(caller common.Address, id domain.LoanID) (usecase.CloseLoanInput, error) {
	to, err := optionalAddress(r.ReturnTo, caller)
	if err != nil {
		return usecase.CloseLoanInput{}, fmt.Errorf("return_to: %w", err)
	}
	return usecase.CloseLoanInput{Caller: caller, LoanID: id, ReturnTo: to}, nil
}

// SeizeRequest claims the collateral of a late loan.
type SeizeRequest struct {
	To string `json:"to,omitempty"`
}

// ToUseCaseInput converts to use case input. To defaults to caller.
func (r *SeizeRequest) ToUseCaseInput(caller common.Address, id domain.LoanID) (usecase.SeizeInput, error) {
	to, err := optionalAddress(r.To, caller)
	if err != nil {
		return usecase.SeizeInput{}, fmt.Errorf("to: %w", err)
	}
	return usecase.SeizeInput{Caller: caller, LoanID: id, To: to}, nil
}

// UpdateFeeRateRequest sets the origination fee rate. Exactly one of Rate
// (tenths of a percent) or RatePercent must be set.
type UpdateFeeRateRequest struct {
	Rate        string           `json:"rate,omitempty"`
	RatePercent *decimal.Decimal `json:"rate_percent,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateFeeRateRequest) ToUseCaseInput(caller common.Address) (usecase.UpdateFeeRateInput, error) {
	switch {
	case r.Rate != "" && r.RatePercent != nil:
		return usecase.UpdateFeeRateInput{}, fmt.Errorf("%w: set rate or rate_percent, not both", domain.ErrInvalidParameter)
	case r.RatePercent != nil:
		rate, err := RateFromPercent(*r.RatePercent)
		if err != nil {
			return usecase.UpdateFeeRateInput{}, err
		}
		return usecase.UpdateFeeRateInput{Caller: caller, Rate: rate}, nil
	default:
		rate, err := domain.ParseAmount(r.Rate)
		if err != nil {
			return usecase.UpdateFeeRateInput{}, fmt.Errorf("rate: %w", err)
		}
		return usecase.UpdateFeeRateInput{Caller: caller, Rate: rate}, nil
	}
}

// UpdateImprovementRateRequest sets the buyout improvement threshold in
// percent.
type UpdateImprovementRateRequest struct {
	Rate uint64 `json:"rate"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateImprovementRateRequest) ToUseCaseInput(caller common.Address) usecase.UpdateImprovementRateInput {
	return usecase.UpdateImprovementRateInput{Caller: caller, Rate: r.Rate}
}

// WithdrawFeesRequest moves collected origination fees out of the registry.
type WithdrawFeesRequest struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
	To     string `json:"to"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawFeesRequest) ToUseCaseInput(caller common.Address) (usecase.WithdrawFeesInput, error) {
	asset, err := domain.ParseAddress(r.Asset)
	if err != nil {
		return usecase.WithdrawFeesInput{}, fmt.Errorf("asset: %w", err)
	}
	amount, err := domain.ParseAmount(r.Amount)
	if err != nil {
		return usecase.WithdrawFeesInput{}, fmt.Errorf("amount: %w", err)
	}
	to, err := domain.ParseAddress(r.To)
	if err != nil {
		return usecase.WithdrawFeesInput{}, fmt.Errorf("to: %w", err)
	}
	return usecase.WithdrawFeesInput{Caller: caller, Asset: asset, Amount: amount, To: to}, nil
}

// DeployAssetRequest deploys a sandbox token contract.
type DeployAssetRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// MintRequest mints sandbox tokens. Amount is used by fungible assets and
// TokenID by non-fungible ones.
type MintRequest struct {
	To      string `json:"to"`
	Amount  string `json:"amount,omitempty"`
	TokenID string `json:"token_id,omitempty"`
}

// ApproveRequest approves spender on behalf of the caller. Amount is used by
// fungible assets and TokenID by non-fungible ones; Operator sets a
// non-fungible operator approval instead.
type ApproveRequest struct {
	Spender  string `json:"spender"`
	Amount   string `json:"amount,omitempty"`
	TokenID  string `json:"token_id,omitempty"`
	Operator *bool  `json:"operator,omitempty"`
}

// RateFromPercent converts a percentage into the registry's rate units.
// Percentages finer than the rate resolution are rejected.
func RateFromPercent(percent decimal.Decimal) (*uint256.Int, error) {
	scaled := percent.Shift(domain.InterestRateDecimals - 2)
	if scaled.IsNegative() || !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: rate_percent %s", domain.ErrInvalidParameter, percent.String())
	}
	rate, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: rate_percent %s", domain.ErrInvalidParameter, percent.String())
	}
	return rate, nil
}

func parseTerms(principal, rate string) ([2]*uint256.Int, error) {
	p, err := domain.ParseAmount(principal)
	if err != nil {
		return [2]*uint256.Int{}, fmt.Errorf("principal: %w", err)
	}
	r, err := domain.ParseAmount(rate)
	if err != nil {
		return [2]*uint256.Int{}, fmt.Errorf("rate: %w", err)
	}
	return [2]*uint256.Int{p, r}, nil
}

func optionalAddress(s string, fallback common.Address) (common.Address, error) {
	if s == "" {
		return fallback, nil
	}
	return domain.ParseAddress(s)
}
