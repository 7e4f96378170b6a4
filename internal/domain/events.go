package domain

import "time"

// Event types
const (
	EventTypeLoanCreated              = "loan.created"
	EventTypeLoanLent                 = "loan.lent"
	EventTypeLoanClosed               = "loan.closed"
	EventTypeLoanRepaid               = "loan.repaid"
	EventTypeLoanSeized               = "loan.seized"
	EventTypeFeeRateUpdated           = "protocol.fee_rate_updated"
	EventTypeImprovementRateUpdated   = "protocol.improvement_rate_updated"
	EventTypeOriginationFeesWithdrawn = "protocol.fees_withdrawn"
)

// Aggregate types
const (
	AggregateTypeLoan     = "loan"
	AggregateTypeProtocol = "protocol"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LoanCreatedEvent payload
type LoanCreatedEvent struct {
	LoanID              uint64 `json:"loan_id"`
	Borrower            string `json:"borrower"`
	CollateralContract  string `json:"collateral_contract"`
	CollateralTokenID   string `json:"collateral_token_id"`
	DenominationAsset   string `json:"denomination_asset"`
	Principal           string `json:"principal"`
	Rate                string `json:"rate"`
	DurationSeconds     uint64 `json:"duration_seconds"`
	AllowAmountIncrease bool   `json:"allow_amount_increase"`
}

// LoanLentEvent payload. PreviousLender and LenderPayout are empty when
// Buyout is false.
type LoanLentEvent struct {
	LoanID          uint64 `json:"loan_id"`
	Buyout          bool   `json:"buyout"`
	Lender          string `json:"lender"`
	PreviousLender  string `json:"previous_lender,omitempty"`
	Principal       string `json:"principal"`
	Rate            string `json:"rate"`
	DurationSeconds uint64 `json:"duration_seconds"`
	OriginationFee  string `json:"origination_fee"`
	BorrowerPayout  string `json:"borrower_payout"`
	LenderPayout    string `json:"lender_payout,omitempty"`
	AccruedInterest string `json:"accrued_interest"`
}

// LoanClosedEvent payload
type LoanClosedEvent struct {
	LoanID   uint64 `json:"loan_id"`
	ReturnTo string `json:"return_to"`
}

// LoanRepaidEvent payload
type LoanRepaidEvent struct {
	LoanID   uint64 `json:"loan_id"`
	Payer    string `json:"payer"`
	Lender   string `json:"lender"`
	Borrower string `json:"borrower"`
	Interest string `json:"interest"`
	Total    string `json:"total"`
}

// LoanSeizedEvent payload
type LoanSeizedEvent struct {
	LoanID uint64 `json:"loan_id"`
	Lender string `json:"lender"`
	To     string `json:"to"`
}

// FeeRateUpdatedEvent payload
type FeeRateUpdatedEvent struct {
	Previous string `json:"previous"`
	Rate     string `json:"rate"`
}

// ImprovementRateUpdatedEvent payload
type ImprovementRateUpdatedEvent struct {
	Previous uint64 `json:"previous"`
	Rate     uint64 `json:"rate"`
}

// OriginationFeesWithdrawnEvent payload
type OriginationFeesWithdrawnEvent struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
	To     string `json:"to"`
}
