package handler

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/infrastructure/auth"
)

// AuthHandler issues caller tokens.
type AuthHandler struct {
	jwtManager *auth.JWTManager
	registry   common.Address
}

// NewAuthHandler creates a new auth handler. No token is ever issued for
// registry.
func NewAuthHandler(jwtManager *auth.JWTManager, registry common.Address) *AuthHandler {
	return &AuthHandler{
		jwtManager: jwtManager,
		registry:   registry,
	}
}

// TokenRequest asks for a token acting as Address.
type TokenRequest struct {
	Address string      `json:"address"`
	Role    domain.Role `json:"role"`
}

// TokenResponse carries an issued token.
type TokenResponse struct {
	Token   string      `json:"token,omitempty"`
	Address string      `json:"address"`
	Role    domain.Role `json:"role"`
}

// IssueToken signs a token for any address without proof of key ownership.
// It is only mounted in sandbox mode.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	addr, err := domain.ParseNonZeroAddress(req.Address)
	if err != nil {
		writeDomainError(w, err, "invalid address")
		return
	}
	if addr == h.registry {
		writeDomainError(w, domain.ErrUnauthorized, "reserved address")
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleParticipant
	}
	if !req.Role.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid role", string(req.Role))
		return
	}

	caller := &domain.Caller{Address: addr, Role: req.Role}
	token, err := h.jwtManager.Generate(caller)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token, Address: addr.Hex(), Role: caller.Role})
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Address: caller.Address.Hex(), Role: caller.Role})
}
