package domain

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Caller is the authenticated party behind an operation.
type Caller struct {
	Address common.Address
	Role    Role
}

// Role represents a caller's access level
type Role string

const (
	// RoleParticipant may borrow, lend, repay and seize.
	RoleParticipant Role = "participant"

	// RoleViewer can only read loans and protocol state.
	RoleViewer Role = "viewer"
)

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return r == RoleParticipant || r == RoleViewer
}

// CanMutate checks if the role can submit state-changing operations
func (r Role) CanMutate() bool {
	return r == RoleParticipant
}

// Authentication errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
	ErrMissingCaller    = errors.New("caller address required")
)

type callerKey struct{}

// WithCaller returns a context carrying c.
func WithCaller(ctx context.Context, c *Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(*Caller)
	return c, ok && c != nil
}
