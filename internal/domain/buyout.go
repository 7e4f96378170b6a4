package domain

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// BuyoutPolicy decides whether an offer may replace the current terms.
type BuyoutPolicy struct {
	// RequiredImprovementRate is the minimum improvement, in percent, that
	// at least one axis must reach.
	RequiredImprovementRate uint64
}

// CheckTerms verifies that offer meets or beats current on every axis.
// Violations are reported in a fixed order: amount, rate, duration.
func (p BuyoutPolicy) CheckTerms(current, offer Terms) error {
	if offer.Principal.Lt(current.Principal) {
		return fmt.Errorf("%w: offered %s, need at least %s", ErrAmountTooLow, offer.Principal.Dec(), current.Principal.Dec())
	}
	if offer.Rate.Gt(current.Rate) {
		return fmt.Errorf("%w: offered %s, need at most %s", ErrRateTooHigh, offer.Rate.Dec(), current.Rate.Dec())
	}
	if offer.DurationSeconds < current.DurationSeconds {
		return fmt.Errorf("%w: offered %d, need at least %d", ErrDurationTooLow, offer.DurationSeconds, current.DurationSeconds)
	}
	return nil
}

// CheckImprovement requires at least one axis to improve strictly and by at
// least RequiredImprovementRate percent of its current value. A zero rate
// cannot improve.
func (p BuyoutPolicy) CheckImprovement(current, offer Terms) error {
	pct := new(big.Int).SetUint64(p.RequiredImprovementRate)

	if offer.Rate.Lt(current.Rate) && p.enough(current.Rate.ToBig(), new(big.Int).Sub(current.Rate.ToBig(), offer.Rate.ToBig()), pct) {
		return nil
	}
	if offer.Principal.Gt(current.Principal) && p.enough(current.Principal.ToBig(), new(big.Int).Sub(offer.Principal.ToBig(), current.Principal.ToBig()), pct) {
		return nil
	}
	if offer.DurationSeconds > current.DurationSeconds {
		old := new(big.Int).SetUint64(current.DurationSeconds)
		diff := new(big.Int).SetUint64(offer.DurationSeconds - current.DurationSeconds)
		if p.enough(old, diff, pct) {
			return nil
		}
	}
	return fmt.Errorf("%w: need %d%% on at least one axis", ErrInsufficientImprovement, p.RequiredImprovementRate)
}

// CheckBuyout runs CheckTerms then CheckImprovement.
func (p BuyoutPolicy) CheckBuyout(current, offer Terms) error {
	if err := p.CheckTerms(current, offer); err != nil {
		return err
	}
	return p.CheckImprovement(current, offer)
}

// diff*100 >= old*pct, evaluated without overflow.
func (p BuyoutPolicy) enough(old, diff, pct *big.Int) bool {
	lhs := new(big.Int).Mul(diff, big.NewInt(100))
	rhs := new(big.Int).Mul(old, pct)
	return lhs.Cmp(rhs) >= 0
}

// ValidateTerms checks the values a borrower or lender may propose.
func ValidateTerms(t Terms) error {
	if t.Principal == nil || t.Principal.IsZero() {
		return fmt.Errorf("%w: principal must be positive", ErrInvalidParameter)
	}
	if t.Rate == nil {
		return fmt.Errorf("%w: rate is required", ErrInvalidParameter)
	}
	if t.DurationSeconds == 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidParameter)
	}
	return nil
}

// NewTerms builds Terms from plain values.
func NewTerms(principal, rate *uint256.Int, duration uint64) Terms {
	return Terms{Principal: cloneInt(principal), Rate: cloneInt(rate), DurationSeconds: duration}
}
