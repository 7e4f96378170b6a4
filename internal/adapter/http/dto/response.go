package dto

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/bengbengle/nft-lend/internal/domain"
	"github.com/bengbengle/nft-lend/internal/usecase"
)

// LoanResponse represents a loan in API responses. Amounts are base-10
// strings; RatePercent is the rate rendered as a percentage.
type LoanResponse struct {
	ID                   uint64          `json:"id"`
	CollateralContract   string          `json:"collateral_contract"`
	CollateralTokenID    string          `json:"collateral_token_id"`
	DenominationAsset    string          `json:"denomination_asset"`
	Principal            string          `json:"principal"`
	Rate                 string          `json:"rate"`
	RatePercent          decimal.Decimal `json:"rate_percent"`
	DurationSeconds      uint64          `json:"duration_seconds"`
	AccruedInterest      string          `json:"accrued_interest"`
	LastAccrualTimestamp uint64          `json:"last_accrual_timestamp"`
	MaturesAt            uint64          `json:"matures_at,omitempty"`
	Lender               string          `json:"lender,omitempty"`
	AllowAmountIncrease  bool            `json:"allow_amount_increase"`
	Funded               bool            `json:"funded"`
	Closed               bool            `json:"closed"`
}

// LoanFromDomain converts domain loan to response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	resp := &LoanResponse{
		ID:                   uint64(l.ID),
		CollateralContract:   l.Collateral.Contract.Hex(),
		CollateralTokenID:    l.Collateral.TokenID.Dec(),
		DenominationAsset:    l.DenominationAsset.Hex(),
		Principal:            l.Principal.Dec(),
		Rate:                 l.Rate.Dec(),
		RatePercent:          PercentFromRate(l.Rate),
		DurationSeconds:      l.DurationSeconds,
		AccruedInterest:      l.AccruedInterest.Dec(),
		LastAccrualTimestamp: l.LastAccrualTimestamp,
		AllowAmountIncrease:  l.AllowAmountIncrease,
		Funded:               l.Funded(),
		Closed:               l.Closed,
	}
	if l.Funded() {
		resp.Lender = l.Lender.Hex()
		resp.MaturesAt = l.MaturesAt()
	}
	return resp
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// LendResponse reports the money movement of a lend call.
type LendResponse struct {
	Loan           *LoanResponse `json:"loan"`
	Buyout         bool          `json:"buyout"`
	OriginationFee string        `json:"origination_fee"`
	BorrowerPayout string        `json:"borrower_payout"`
	PreviousLender string        `json:"previous_lender,omitempty"`
	LenderPayout   string        `json:"lender_payout,omitempty"`
}

// LendFromResult converts a lend result to response.
func LendFromResult(r *usecase.LendResult) *LendResponse {
	resp := &LendResponse{
		Loan:           LoanFromDomain(r.Loan),
		Buyout:         r.Buyout,
		OriginationFee: decString(r.OriginationFee),
		BorrowerPayout: decString(r.BorrowerPayout),
	}
	if r.Buyout {
		resp.PreviousLender = r.PreviousLender.Hex()
		resp.LenderPayout = decString(r.LenderPayout)
	}
	return resp
}

// RepayResponse reports a repayment.
type RepayResponse struct {
	Loan     *LoanResponse `json:"loan"`
	Lender   string        `json:"lender"`
	Borrower string        `json:"borrower"`
	Interest string        `json:"interest"`
	Total    string        `json:"total"`
}

// RepayFromResult converts a repay result to response.
func RepayFromResult(r *usecase.RepayResult) *RepayResponse {
	return &RepayResponse{
		Loan:     LoanFromDomain(r.Loan),
		Lender:   r.Lender.Hex(),
		Borrower: r.Borrower.Hex(),
		Interest: decString(r.Interest),
		Total:    decString(r.Total),
	}
}

// OwedResponse is the amount due on a loan at a point in time.
type OwedResponse struct {
	LoanID   uint64 `json:"loan_id"`
	At       uint64 `json:"at"`
	Interest string `json:"interest"`
	Total    string `json:"total"`
	LoanEnd  uint64 `json:"loan_end"`
}

// OwedFromUseCase converts owed amounts to response.
func OwedFromUseCase(o *usecase.Owed) *OwedResponse {
	return &OwedResponse{
		LoanID:   uint64(o.LoanID),
		At:       o.At,
		Interest: decString(o.Interest),
		Total:    decString(o.Total),
		LoanEnd:  o.LoanEnd,
	}
}

// ParamsResponse represents the protocol parameters.
type ParamsResponse struct {
	Manager                   string          `json:"manager"`
	OriginationFeeRate        string          `json:"origination_fee_rate"`
	OriginationFeeRatePercent decimal.Decimal `json:"origination_fee_rate_percent"`
	RequiredImprovementRate   uint64          `json:"required_improvement_rate"`
}

// ParamsFromDomain converts protocol parameters to response.
func ParamsFromDomain(p domain.Params) *ParamsResponse {
	return &ParamsResponse{
		Manager:                   p.Manager.Hex(),
		OriginationFeeRate:        decString(p.OriginationFeeRate),
		OriginationFeeRatePercent: PercentFromRate(p.OriginationFeeRate),
		RequiredImprovementRate:   p.RequiredImprovementRate,
	}
}

// FeeBalanceResponse is the collected fee balance for one asset.
type FeeBalanceResponse struct {
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

// EventResponse represents an outbox event in API responses.
type EventResponse struct {
	ID            string         `json:"id"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	EventType     string         `json:"event_type"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
	Published     bool           `json:"published"`
}

// EventsFromDomain converts outbox events to responses.
func EventsFromDomain(events []*domain.OutboxEvent) []*EventResponse {
	result := make([]*EventResponse, len(events))
	for i, e := range events {
		result[i] = &EventResponse{
			ID:            e.ID,
			AggregateType: e.AggregateType,
			AggregateID:   e.AggregateID,
			EventType:     e.EventType,
			Payload:       e.Payload,
			CreatedAt:     e.CreatedAt,
			Published:     e.Published,
		}
	}
	return result
}

// AuditLogResponse represents an audit row in API responses.
type AuditLogResponse struct {
	ID           string      `json:"id"`
	Actor        string      `json:"actor"`
	Action       string      `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id"`
	BeforeState  domain.JSON `json:"before_state,omitempty"`
	AfterState   domain.JSON `json:"after_state,omitempty"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// AuditLogsFromDomain converts audit rows to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []*AuditLogResponse {
	result := make([]*AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = &AuditLogResponse{
			ID:           l.ID,
			Actor:        l.Actor,
			Action:       l.Action,
			ResourceType: l.ResourceType,
			ResourceID:   l.ResourceID,
			BeforeState:  l.BeforeState,
			AfterState:   l.AfterState,
			Status:       l.Status,
			ErrorMessage: l.ErrorMessage,
			CreatedAt:    l.CreatedAt,
		}
	}
	return result
}

// AssetResponse describes a sandbox asset contract.
type AssetResponse struct {
	Address string `json:"address"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// BalanceResponse is a fungible balance.
type BalanceResponse struct {
	Asset   string `json:"asset"`
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
}

// OwnerResponse is the holder of a non-fungible token.
type OwnerResponse struct {
	Asset   string `json:"asset"`
	TokenID string `json:"token_id"`
	Owner   string `json:"owner"`
}

// ErrorResponse represents an error in API responses. Kind is a stable
// machine-readable label.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

// PercentFromRate renders a rate as a percentage.
func PercentFromRate(rate *uint256.Int) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(rate.ToBig(), -(domain.InterestRateDecimals - 2))
}

func decString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
