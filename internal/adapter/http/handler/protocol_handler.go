package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/bengbengle/nft-lend/internal/adapter/http/dto"
	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// ProtocolService defines the behavior needed by ProtocolHandler.
type ProtocolService interface {
	Params(ctx context.Context) (domain.Params, error)
	OriginationFees(ctx context.Context, asset common.Address) (*uint256.Int, error)
	UpdateOriginationFeeRate(ctx context.Context, input usecase.UpdateFeeRateInput) (domain.Params, error)
	UpdateRequiredImprovementRate(ctx context.Context, input usecase.UpdateImprovementRateInput) (domain.Params, error)
	WithdrawOriginationFees(ctx context.Context, input usecase.WithdrawFeesInput) error
	ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
	ProtocolEvents(ctx context.Context, limit, offset int) ([]*domain.OutboxEvent, error)
}

// ProtocolHandler handles manager-controlled protocol settings.
type ProtocolHandler struct {
	protocolUC ProtocolService
}

// NewProtocolHandler creates a new ProtocolHandler.
func NewProtocolHandler(protocolUC ProtocolService) *ProtocolHandler {
	return &ProtocolHandler{protocolUC: protocolUC}
}

// Params returns the current protocol parameters.
func (h *ProtocolHandler) Params(w http.ResponseWriter, r *http.Request) {
	params, err := h.protocolUC.Params(r.Context())
	if err != nil {
		writeDomainError(w, err, "failed to load protocol parameters")
		return
	}
	writeJSON(w, http.StatusOK, dto.ParamsFromDomain(params))
}

// UpdateFeeRate sets the origination fee rate.
func (h *ProtocolHandler) UpdateFeeRate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req dto.UpdateFeeRateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller.Address)
	if err != nil {
		writeDomainError(w, err, "invalid fee rate")
		return
	}

	params, err := h.protocolUC.UpdateOriginationFeeRate(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to update fee rate")
		return
	}
	writeJSON(w, http.StatusOK, dto.ParamsFromDomain(params))
}

// UpdateImprovementRate sets the required buyout improvement.
func (h *ProtocolHandler) UpdateImprovementRate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req dto.UpdateImprovementRateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	params, err := h.protocolUC.UpdateRequiredImprovementRate(r.Context(), req.ToUseCaseInput(caller.Address))
	if err != nil {
		writeDomainError(w, err, "failed to update improvement rate")
		return
	}
	writeJSON(w, http.StatusOK, dto.ParamsFromDomain(params))
}

// Fees returns the origination fees collected in one asset.
func (h *ProtocolHandler) Fees(w http.ResponseWriter, r *http.Request) {
	asset, err := addressParam(r, "asset")
	if err != nil {
		writeDomainError(w, err, "invalid asset")
		return
	}

	balance, err := h.protocolUC.OriginationFees(r.Context(), asset)
	if err != nil {
		writeDomainError(w, err, "failed to load fee balance")
		return
	}
	writeJSON(w, http.StatusOK, dto.FeeBalanceResponse{Asset: asset.Hex(), Balance: balance.Dec()})
}

// WithdrawFees moves collected fees to a destination address.
func (h *ProtocolHandler) WithdrawFees(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req dto.WithdrawFeesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller.Address)
	if err != nil {
		writeDomainError(w, err, "invalid withdrawal")
		return
	}

	if err := h.protocolUC.WithdrawOriginationFees(r.Context(), input); err != nil {
		writeDomainError(w, err, "failed to withdraw fees")
		return
	}

	balance, err := h.protocolUC.OriginationFees(r.Context(), input.Asset)
	if err != nil {
		writeDomainError(w, err, "failed to load fee balance")
		return
	}
	writeJSON(w, http.StatusOK, dto.FeeBalanceResponse{Asset: input.Asset.Hex(), Balance: balance.Dec()})
}

// AuditLogs lists manager audit rows. Supports actor, action, from and to
// (RFC 3339) filters.
func (h *ProtocolHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.AuditFilter{
		Actor:  q.Get("actor"),
		Action: q.Get("action"),
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	}
	if filter.Actor != "" {
		actor, err := domain.ParseAddress(filter.Actor)
		if err != nil {
			writeDomainError(w, err, "invalid actor")
			return
		}
		filter.Actor = actor.Hex()
	}
	for key, dst := range map[string]**time.Time{"from": &filter.StartDate, "to": &filter.EndDate} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+key+" timestamp", err.Error())
			return
		}
		*dst = &at
	}

	logs, err := h.protocolUC.ListAuditLogs(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err, "failed to list audit logs")
		return
	}
	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}

// Events lists protocol parameter events.
func (h *ProtocolHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.protocolUC.ProtocolEvents(r.Context(), parseIntQuery(r, "limit", domain.DefaultPageSize), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, err, "failed to list protocol events")
		return
	}
	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}
