package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// FeeBalance is the origination fee balance held for one denomination asset.
type FeeBalance struct {
	Asset  common.Address
	Amount *uint256.Int
}

// OriginationFee returns principal * rate / RateScalar, floored.
func OriginationFee(principal, rate *uint256.Int) (*uint256.Int, error) {
	fee, overflow := new(uint256.Int).MulOverflow(principal, rate)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return fee.Div(fee, RateScalar), nil
}

// ValidateOriginationFeeRate rejects rates above MaxOriginationFeeRate.
func ValidateOriginationFeeRate(rate *uint256.Int) error {
	if rate == nil {
		return fmt.Errorf("%w: fee rate is required", ErrInvalidParameter)
	}
	if rate.Gt(MaxOriginationFeeRate) {
		return fmt.Errorf("%w: fee rate %s exceeds max %s", ErrInvalidParameter, rate.Dec(), MaxOriginationFeeRate.Dec())
	}
	return nil
}

// Params is the manager-controlled protocol configuration.
type Params struct {
	Manager                 common.Address
	OriginationFeeRate      *uint256.Int
	RequiredImprovementRate uint64
}

// DefaultParams returns the launch configuration for manager.
func DefaultParams(manager common.Address) Params {
	return Params{
		Manager:                 manager,
		OriginationFeeRate:      DefaultOriginationFeeRate.Clone(),
		RequiredImprovementRate: DefaultRequiredImprovementRate,
	}
}

// Clone returns a deep copy of the params.
func (p Params) Clone() Params {
	p.OriginationFeeRate = cloneInt(p.OriginationFeeRate)
	return p
}
