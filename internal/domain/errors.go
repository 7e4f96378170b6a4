package domain

import "errors"

var (
	// Loan lifecycle errors
	ErrLoanNotFound             = errors.New("loan not found")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrLoanClosed               = errors.New("loan closed")
	ErrHasLender                = errors.New("has lender")
	ErrNotFunded                = errors.New("loan has no lender")
	ErrNotLate                  = errors.New("payment is not late")
	ErrInvalidParameter         = errors.New("invalid parameter")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")
	ErrTransferRejected         = errors.New("asset transfer rejected")
	ErrInsufficientFees         = errors.New("amount exceeds collected origination fees")
	ErrAmountIncreaseNotAllowed = errors.New("loan amount increase not allowed")

	// Lend term errors
	ErrAmountTooLow            = errors.New("amount too low")
	ErrRateTooHigh             = errors.New("rate too high")
	ErrDurationTooLow          = errors.New("duration too low")
	ErrInsufficientImprovement = errors.New("insufficient improvement")

	// Ticket errors
	ErrTicketNotFound = errors.New("ticket not minted")
	ErrTicketExists   = errors.New("ticket already minted")

	// Asset errors
	ErrAssetNotFound          = errors.New("asset contract not found")
	ErrInsufficientBalance    = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance  = errors.New("insufficient allowance")
	ErrTokenNotFound          = errors.New("token does not exist")
	ErrTokenExists            = errors.New("token already minted")
	ErrNotOwnerNorApproved    = errors.New("transfer caller is not owner nor approved")
	ErrInvalidAddress         = errors.New("invalid address")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidLoanID          = errors.New("invalid loan id")
	ErrZeroAddressNotAllowed  = errors.New("zero address not allowed")
	ErrAssetAlreadyRegistered = errors.New("asset contract already registered")
)

// ErrorKind returns a stable label for err, used for metrics and API payloads.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoanNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrLoanClosed):
		return "already_closed"
	case errors.Is(err, ErrHasLender):
		return "has_lender"
	case errors.Is(err, ErrNotFunded):
		return "not_funded"
	case errors.Is(err, ErrNotLate):
		return "not_late"
	case errors.Is(err, ErrAmountTooLow):
		return "amount_too_low"
	case errors.Is(err, ErrRateTooHigh):
		return "rate_too_high"
	case errors.Is(err, ErrDurationTooLow):
		return "duration_too_low"
	case errors.Is(err, ErrInsufficientImprovement):
		return "insufficient_improvement"
	case errors.Is(err, ErrAmountIncreaseNotAllowed):
		return "amount_increase_not_allowed"
	case errors.Is(err, ErrInsufficientFees):
		return "insufficient_fees"
	case errors.Is(err, ErrArithmeticOverflow):
		return "overflow"
	case errors.Is(err, ErrTransferRejected):
		return "transfer_rejected"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	default:
		return "internal"
	}
}
