package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bengbengle/nft-lend/internal/adapter/http/dto"
	"github.com/bengbengle/nft-lend/internal/adapter/repository/memory"
	"github.com/bengbengle/nft-lend/internal/domain"
)

// SandboxHandler deploys and drives in-process test tokens so the registry
// can be exercised end to end without a chain.
type SandboxHandler struct {
	assets *memory.Assets
}

// NewSandboxHandler creates a new SandboxHandler.
func NewSandboxHandler(assets *memory.Assets) *SandboxHandler {
	return &SandboxHandler{assets: assets}
}

// DeployFungible deploys a fungible denomination token.
func (h *SandboxHandler) DeployFungible(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDeploy(w, r)
	if !ok {
		return
	}
	token := h.assets.DeployFungible(req.Name, req.Symbol)
	writeJSON(w, http.StatusCreated, dto.AssetResponse{
		Address: token.Address().Hex(),
		Kind:    memory.KindFungible,
		Name:    token.Name(),
		Symbol:  token.Symbol(),
	})
}

// DeployNonFungible deploys a collateral collection.
func (h *SandboxHandler) DeployNonFungible(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDeploy(w, r)
	if !ok {
		return
	}
	nft := h.assets.DeployNonFungible(req.Name, req.Symbol)
	writeJSON(w, http.StatusCreated, dto.AssetResponse{
		Address: nft.Address().Hex(),
		Kind:    memory.KindNonFungible,
		Name:    nft.Name(),
		Symbol:  nft.Symbol(),
	})
}

// List lists deployed sandbox assets.
func (h *SandboxHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := h.assets.List()
	resp := make([]dto.AssetResponse, len(infos))
	for i, info := range infos {
		resp[i] = dto.AssetResponse{
			Address: info.Address.Hex(),
			Kind:    info.Kind,
			Name:    info.Name,
			Symbol:  info.Symbol,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Mint mints tokens of the asset to an address.
func (h *SandboxHandler) Mint(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireCaller(w, r); !ok {
		return
	}
	asset, err := addressParam(r, "asset")
	if err != nil {
		writeDomainError(w, err, "invalid asset")
		return
	}

	var req dto.MintRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		writeDomainError(w, err, "invalid recipient")
		return
	}

	if token, err := h.assets.FungibleToken(asset); err == nil {
		amount, err := domain.ParseAmount(req.Amount)
		if err != nil {
			writeDomainError(w, err, "invalid amount")
			return
		}
		if err := token.Mint(r.Context(), to, amount); err != nil {
			writeDomainError(w, err, "failed to mint")
			return
		}
		balance, _ := token.BalanceOf(r.Context(), to)
		writeJSON(w, http.StatusOK, dto.BalanceResponse{Asset: asset.Hex(), Owner: to.Hex(), Balance: balance.Dec()})
		return
	}

	nft, err := h.assets.NonFungibleToken(asset)
	if err != nil {
		writeDomainError(w, err, "unknown asset")
		return
	}
	tokenID, err := domain.ParseAmount(req.TokenID)
	if err != nil {
		writeDomainError(w, err, "invalid token id")
		return
	}
	if err := nft.Mint(r.Context(), to, tokenID); err != nil {
		writeDomainError(w, err, "failed to mint")
		return
	}
	writeJSON(w, http.StatusOK, dto.OwnerResponse{Asset: asset.Hex(), TokenID: tokenID.Dec(), Owner: to.Hex()})
}

// Approve approves a spender on behalf of the caller. The registry's own
// holdings cannot be approved away.
func (h *SandboxHandler) Approve(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	if caller.Address == h.assets.Deployer() {
		writeDomainError(w, domain.ErrUnauthorized, "reserved address")
		return
	}
	asset, err := addressParam(r, "asset")
	if err != nil {
		writeDomainError(w, err, "invalid asset")
		return
	}

	var req dto.ApproveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	spender, err := domain.ParseAddress(req.Spender)
	if err != nil {
		writeDomainError(w, err, "invalid spender")
		return
	}

	if token, err := h.assets.FungibleToken(asset); err == nil {
		amount, err := domain.ParseAmount(req.Amount)
		if err != nil {
			writeDomainError(w, err, "invalid amount")
			return
		}
		if err := token.Approve(r.Context(), caller.Address, spender, amount); err != nil {
			writeDomainError(w, err, "failed to approve")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	nft, err := h.assets.NonFungibleToken(asset)
	if err != nil {
		writeDomainError(w, err, "unknown asset")
		return
	}
	if req.Operator != nil {
		err = nft.SetApprovalForAll(r.Context(), caller.Address, spender, *req.Operator)
	} else {
		tokenID, parseErr := domain.ParseAmount(req.TokenID)
		if parseErr != nil {
			writeDomainError(w, parseErr, "invalid token id")
			return
		}
		err = nft.Approve(r.Context(), caller.Address, spender, tokenID)
	}
	if err != nil {
		writeDomainError(w, err, "failed to approve")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Balance returns a fungible balance.
func (h *SandboxHandler) Balance(w http.ResponseWriter, r *http.Request) {
	asset, err := addressParam(r, "asset")
	if err != nil {
		writeDomainError(w, err, "invalid asset")
		return
	}
	owner, err := addressParam(r, "owner")
	if err != nil {
		writeDomainError(w, err, "invalid owner")
		return
	}

	token, err := h.assets.FungibleToken(asset)
	if err != nil {
		writeDomainError(w, err, "unknown asset")
		return
	}
	balance, err := token.BalanceOf(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err, "failed to read balance")
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{Asset: asset.Hex(), Owner: owner.Hex(), Balance: balance.Dec()})
}

// Owner returns the holder of a non-fungible token.
func (h *SandboxHandler) Owner(w http.ResponseWriter, r *http.Request) {
	asset, err := addressParam(r, "asset")
	if err != nil {
		writeDomainError(w, err, "invalid asset")
		return
	}
	tokenID, err := domain.ParseAmount(chi.URLParam(r, "tokenId"))
	if err != nil {
		writeDomainError(w, err, "invalid token id")
		return
	}

	nft, err := h.assets.NonFungibleToken(asset)
	if err != nil {
		writeDomainError(w, err, "unknown asset")
		return
	}
	owner, err := nft.OwnerOf(r.Context(), tokenID)
	if err != nil {
		writeDomainError(w, err, "failed to read owner")
		return
	}
	writeJSON(w, http.StatusOK, dto.OwnerResponse{Asset: asset.Hex(), TokenID: tokenID.Dec(), Owner: owner.Hex()})
}

func decodeDeploy(w http.ResponseWriter, r *http.Request) (dto.DeployAssetRequest, bool) {
	var req dto.DeployAssetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Symbol = strings.TrimSpace(req.Symbol)
	if req.Name == "" || req.Symbol == "" {
		writeDomainError(w, fmt.Errorf("%w: name and symbol are required", domain.ErrInvalidParameter), "invalid asset")
		return req, false
	}
	return req, true
}
