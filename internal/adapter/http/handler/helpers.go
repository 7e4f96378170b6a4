package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/bengbengle/nft-lend/internal/adapter/http/dto"
	"github.com/bengbengle/nft-lend/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with its mapped status and kind.
func writeDomainError(w http.ResponseWriter, err error, message string) {
	status := mapDomainError(err)
	kind := domain.ErrorKind(err)
	if kind == "internal" && status != http.StatusInternalServerError {
		kind = ""
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Kind:    kind,
		Message: err.Error(),
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	// Asset failures wrap the asset's own error, so this goes first.
	case errors.Is(err, domain.ErrTransferRejected):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrTicketNotFound),
		errors.Is(err, domain.ErrAssetNotFound),
		errors.Is(err, domain.ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingCaller),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInsufficientRole),
		errors.Is(err, domain.ErrNotOwnerNorApproved):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrLoanClosed),
		errors.Is(err, domain.ErrHasLender),
		errors.Is(err, domain.ErrNotFunded),
		errors.Is(err, domain.ErrNotLate),
		errors.Is(err, domain.ErrTicketExists),
		errors.Is(err, domain.ErrTokenExists),
		errors.Is(err, domain.ErrInsufficientFees):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAmountTooLow),
		errors.Is(err, domain.ErrRateTooHigh),
		errors.Is(err, domain.ErrDurationTooLow),
		errors.Is(err, domain.ErrInsufficientImprovement),
		errors.Is(err, domain.ErrAmountIncreaseNotAllowed),
		errors.Is(err, domain.ErrArithmeticOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidParameter),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidLoanID),
		errors.Is(err, domain.ErrZeroAddressNotAllowed),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientAllowance):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// decodeBody decodes a JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func loanIDParam(r *http.Request) (domain.LoanID, error) {
	return domain.ParseLoanID(chi.URLParam(r, "id"))
}

func addressParam(r *http.Request, key string) (common.Address, error) {
	addr, err := domain.ParseAddress(chi.URLParam(r, key))
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", key, err)
	}
	return addr, nil
}

// requireCaller returns the authenticated caller or writes a 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (*domain.Caller, bool) {
	caller, ok := domain.CallerFromContext(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrMissingCaller, "caller required")
		return nil, false
	}
	return caller, true
}
