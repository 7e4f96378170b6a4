package domain

import (
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// LoanID identifies a loan. Ids start at 1 and are never reused.
type LoanID uint64

// Collateral is the non-fungible asset locked for a loan.
type Collateral struct {
	Contract common.Address
	TokenID  *uint256.Int
}

// Terms are the three negotiable axes of a loan.
type Terms struct {
	Principal       *uint256.Int
	Rate            *uint256.Int
	DurationSeconds uint64
}

// Loan is the registry record for a single collateralized loan.
type Loan struct {
	ID                   LoanID
	Collateral           Collateral
	DenominationAsset    common.Address
	Principal            *uint256.Int
	Rate                 *uint256.Int
	DurationSeconds      uint64
	AccruedInterest      *uint256.Int
	LastAccrualTimestamp uint64
	Lender               common.Address
	AllowAmountIncrease  bool
	Closed               bool
}

// Funded reports whether a lender has ever funded the loan.
func (l *Loan) Funded() bool {
	return l.Lender != (common.Address{})
}

// Terms returns a copy of the current terms.
func (l *Loan) Terms() Terms {
	return Terms{
		Principal:       l.Principal.Clone(),
		Rate:            l.Rate.Clone(),
		DurationSeconds: l.DurationSeconds,
	}
}

// MaturesAt is the first timestamp at which the lender may seize.
func (l *Loan) MaturesAt() uint64 {
	if l.LastAccrualTimestamp > math.MaxUint64-l.DurationSeconds {
		return math.MaxUint64
	}
	return l.LastAccrualTimestamp + l.DurationSeconds
}

// IsLate reports whether the commitment period has elapsed at now.
func (l *Loan) IsLate(now uint64) bool {
	return now >= l.MaturesAt()
}

// InterestOwed returns the interest owed at now under the current terms,
// including interest locked in at the last checkpoint.
func (l *Loan) InterestOwed(now uint64) (*uint256.Int, error) {
	var elapsed uint64
	if now > l.LastAccrualTimestamp {
		elapsed = now - l.LastAccrualTimestamp
	}
	return InterestOwed(l.Principal, l.Rate, elapsed, l.AccruedInterest)
}

// TotalOwed returns principal plus interest owed at now.
func (l *Loan) TotalOwed(now uint64) (*uint256.Int, error) {
	interest, err := l.InterestOwed(now)
	if err != nil {
		return nil, err
	}
	total, overflow := new(uint256.Int).AddOverflow(l.Principal, interest)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	return total, nil
}

// Checkpoint locks in accrued interest and applies new terms as of now.
func (l *Loan) Checkpoint(accrued *uint256.Int, terms Terms, now uint64) {
	l.AccruedInterest = accrued.Clone()
	l.Principal = terms.Principal.Clone()
	l.Rate = terms.Rate.Clone()
	l.DurationSeconds = terms.DurationSeconds
	l.LastAccrualTimestamp = now
}

// Clone returns a deep copy of the loan.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	c := *l
	c.Collateral.TokenID = cloneInt(l.Collateral.TokenID)
	c.Principal = cloneInt(l.Principal)
	c.Rate = cloneInt(l.Rate)
	c.AccruedInterest = cloneInt(l.AccruedInterest)
	return &c
}

func cloneInt(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}
