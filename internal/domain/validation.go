package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Pagination limits
const (
	MaxPageSize     = 1000
	DefaultPageSize = 50
)

// ParseAddress parses a 0x-prefixed hex address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

// ParseNonZeroAddress is ParseAddress that also rejects the zero address.
func ParseNonZeroAddress(s string) (common.Address, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return addr, err
	}
	if addr == (common.Address{}) {
		return addr, ErrZeroAddressNotAllowed
	}
	return addr, nil
}

// ParseAmount parses a base-10 unsigned 256-bit integer.
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

// ParseLoanID parses a loan id; zero is never a valid id.
func ParseLoanID(s string) (LoanID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLoanID, s)
	}
	return LoanID(n), nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
