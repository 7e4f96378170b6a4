package domain

import "github.com/holiman/uint256"

const (
	// InterestRateDecimals is the fixed-point scale of rates: a rate equal to
	// 10^InterestRateDecimals is 100% per year.
	InterestRateDecimals = 3

	// SecondsPerYear is the accrual year length (365 days).
	SecondsPerYear = 31_536_000
)

var (
	// RateScalar represents 100% for rate and fee arithmetic.
	RateScalar = pow10(InterestRateDecimals)

	// MaxOriginationFeeRate caps the protocol take at 5% of RateScalar.
	MaxOriginationFeeRate = new(uint256.Int).Mul(uint256.NewInt(5), pow10(InterestRateDecimals-2))

	// DefaultOriginationFeeRate is 1% of RateScalar.
	DefaultOriginationFeeRate = pow10(InterestRateDecimals - 2)

	wad           = pow10(18)
	secondsInYear = uint256.NewInt(SecondsPerYear)
)

// DefaultRequiredImprovementRate is the default buyout improvement, in percent.
const DefaultRequiredImprovementRate = 10

// InterestOwed computes
//
//	prior + principal * elapsed * floor(rate * 1e18 / SecondsPerYear) / 1e18 / RateScalar
//
// flooring at every step, left to right. Any intermediate overflow of 256
// bits is reported as ErrArithmeticOverflow.
func InterestOwed(principal, rate *uint256.Int, elapsed uint64, prior *uint256.Int) (*uint256.Int, error) {
	perSecond, overflow := new(uint256.Int).MulOverflow(rate, wad)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	perSecond.Div(perSecond, secondsInYear)

	owed, overflow := new(uint256.Int).MulOverflow(principal, uint256.NewInt(elapsed))
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	if _, overflow = owed.MulOverflow(owed, perSecond); overflow {
		return nil, ErrArithmeticOverflow
	}
	owed.Div(owed, wad)
	owed.Div(owed, RateScalar)

	if prior == nil {
		return owed, nil
	}
	if _, overflow = owed.AddOverflow(owed, prior); overflow {
		return nil, ErrArithmeticOverflow
	}
	return owed, nil
}

func pow10(n int) *uint256.Int {
	v := uint256.NewInt(1)
	ten := uint256.NewInt(10)
	for i := 0; i < n; i++ {
		v.Mul(v, ten)
	}
	return v
}
