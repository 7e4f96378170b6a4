package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds a single lifecycle operation.
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Operation names used for metrics and logs.
const (
	OpCreateLoan            = "create_loan"
	OpLend                  = "lend"
	OpCloseLoan             = "close_loan"
	OpRepayAndCloseLoan     = "repay_and_close_loan"
	OpSeize                 = "seize"
	OpWithdrawFees          = "withdraw_origination_fees"
	OpUpdateFeeRate         = "update_origination_fee_rate"
	OpUpdateImprovementRate = "update_required_improvement_rate"
)
