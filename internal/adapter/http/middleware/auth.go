package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/infrastructure/auth"
	"github.com/bengbengle/nft-lend/internal/infrastructure/metrics"
)

// CallerAddressHeader names the caller when token authentication is off.
const CallerAddressHeader = "X-Caller-Address"

// CallerAuth resolves the caller of a request and stores it with
// domain.WithCaller. With tokens enabled the caller comes from a Bearer JWT;
// otherwise the X-Caller-Address header names a participant. Requests without
// credentials continue anonymously so read-only routes stay public, but
// malformed credentials are rejected. The registry address is never accepted
// as a caller.
func CallerAuth(jwtManager *auth.JWTManager, tokensEnabled bool, registry common.Address, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				caller *domain.Caller
				err    error
			)
			if tokensEnabled {
				caller, err = callerFromToken(jwtManager, r.Header.Get("Authorization"))
			} else {
				caller, err = callerFromHeader(r.Header.Get(CallerAddressHeader))
			}
			if err != nil {
				if m != nil {
					m.AuthFailures.WithLabelValues(failureReason(err)).Inc()
				}
				writeAuthError(w, http.StatusUnauthorized, "invalid credentials", err)
				return
			}
			if caller == nil {
				next.ServeHTTP(w, r)
				return
			}
			if caller.Address == registry {
				if m != nil {
					m.AuthFailures.WithLabelValues("reserved_address").Inc()
				}
				writeAuthError(w, http.StatusForbidden, "reserved address", domain.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithCaller(r.Context(), caller)))
		})
	}
}

func callerFromToken(jwtManager *auth.JWTManager, header string) (*domain.Caller, error) {
	if header == "" {
		return nil, nil
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, domain.ErrInvalidToken
	}

	claims, err := jwtManager.Verify(parts[1])
	if err != nil {
		return nil, err
	}
	return claims.Caller()
}

func callerFromHeader(header string) (*domain.Caller, error) {
	if header == "" {
		return nil, nil
	}
	addr, err := domain.ParseNonZeroAddress(header)
	if err != nil {
		return nil, err
	}
	return &domain.Caller{Address: addr, Role: domain.RoleParticipant}, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrExpiredToken):
		return "expired"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	default:
		return "invalid_address"
	}
}

// RequireMutate rejects callers that are missing or whose role is read-only.
func RequireMutate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := domain.CallerFromContext(r.Context())
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, "authentication required", domain.ErrMissingCaller)
			return
		}
		if !caller.Role.CanMutate() {
			writeAuthError(w, http.StatusForbidden, "insufficient permissions", domain.ErrInsufficientRole)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   message,
		"message": err.Error(),
	})
}
