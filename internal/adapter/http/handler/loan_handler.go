package handler

import (
	"context"
	"net/http"

	"github.com/bengbengle/nft-lend/internal/adapter/http/dto"
	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error)
	Lend(ctx context.Context, input usecase.LendInput) (*usecase.LendResult, error)
	CloseLoan(ctx context.Context, input usecase.CloseLoanInput) (*domain.Loan, error)
	RepayAndCloseLoan(ctx context.Context, input usecase.RepayInput) (*usecase.RepayResult, error)
	Seize(ctx context.Context, input usecase.SeizeInput) (*domain.Loan, error)
	LoanInfo(ctx context.Context, id domain.LoanID) (*domain.Loan, error)
	ListLoans(ctx context.Context, input usecase.ListLoansInput) ([]*domain.Loan, error)
	AmountOwed(ctx context.Context, id domain.LoanID) (*usecase.Owed, error)
	LoanEvents(ctx context.Context, id domain.LoanID, limit, offset int) ([]*domain.OutboxEvent, error)
}

// LoanHandler handles loan lifecycle HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// Create opens a loan request, taking custody of the collateral.
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req dto.CreateLoanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller.Address)
	if err != nil {
		writeDomainError(w, err, "invalid loan request")
		return
	}

	loan, err := h.loanUC.CreateLoan(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to create loan")
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Get retrieves a loan by id.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := loanIDParam(r)
	if err != nil {
		writeDomainError(w, err, "invalid loan id")
		return
	}

	loan, err := h.loanUC.LoanInfo(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to get loan")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// List lists loans by id.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loanUC.ListLoans(r.Context(), usecase.ListLoansInput{
		Limit:  parseIntQuery(r, "limit", domain.DefaultPageSize),
		Offset: parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, err, "failed to list loans")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoansFromDomain(loans))
}

// Lend funds a loan or buys out its current lender.
func (h *LoanHandler) Lend(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, err := loanIDParam(r)
	if err != nil {
		writeDomainError(w, err, "invalid loan id")
		return
	}

	var req dto.LendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller.Address, id)
	if err != nil {
		writeDomainError(w, err, "invalid lend request")
		return
	}

	result, err := h.loanUC.Lend(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "lend rejected")
		return
	}

	writeJSON(w, http.StatusOK, dto.LendFromResult(result))
}

// Close withdraws an unfunded loan request and returns the collateral.
func (h *LoanHandler) Close(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, err := loanIDParam(r)
	if err != nil {
		writeDomainError(w, err, "invalid loan id")
		return
	}

	var req dto.CloseLoanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller.Address, id)
	if err != nil {
		writeDomainError(w, err, "invalid close request")
		return
	}

	loan, err := h.loanUC.CloseLoan(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to close loan")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Repay repays principal plus interest and closes the loan.
func (h *LoanHandler) Repay(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, err := loanIDParam(r)
	if err != nil {
		writeDomainError(w, err, "invalid loan id")
		return
	}

	result, err := h.loanUC.RepayAndCloseLoan(r.Context(), usecase.RepayInput{
		Caller: caller.Address,
		LoanID: id,
	})
	if err != nil {
		writeDomainError(w, err, "failed to repay loan")
		return
	}

	writeJSON(w, http.StatusOK, dto.RepayFromResult(result))
}

// Seize claims the collateral of a late loan for the lender.
func (h *LoanHandler) Seize(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id, err := loanIDParam(r)
	if err != nil {
		writeDomainError(w, err, "invalid loan id")
		return
	}

	var req dto.SeizeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(caller.Address, id)
	if err != nil {
		writeDomainError(w, err, "invalid seize request")
		return
	}

	loan, err := h.loanUC.Seize(r.Context(), input)
	if err != nil {
		writeDomainError(w, err, "failed to seize collateral")
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Owed reports interest and total owed now.
func (h *LoanHandler) Owed(w http.ResponseWriter, r *http.Request) {
	id, err := loanIDParam(r)
	if err != nil {
		writeDomainError(w, err, "invalid loan id")
		return
	}

	owed, err := h.loanUC.AmountOwed(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "failed to compute amount owed")
		return
	}

	writeJSON(w, http.StatusOK, dto.OwedFromUseCase(owed))
}

// Events lists the lifecycle events of a loan.
func (h *LoanHandler) Events(w http.ResponseWriter, r *http.Request) {
	id, err := loanIDParam(r)
	if err != nil {
		writeDomainError(w, err, "invalid loan id")
		return
	}

	events, err := h.loanUC.LoanEvents(r.Context(), id, parseIntQuery(r, "limit", domain.DefaultPageSize), parseIntQuery(r, "offset", 0))
	if err != nil {
		writeDomainError(w, err, "failed to list loan events")
		return
	}

	writeJSON(w, http.StatusOK, dto.EventsFromDomain(events))
}
