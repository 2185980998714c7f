package usecase

import "time"

const (
	// MaxAccountNumberAttempts bounds the collision retries for one account number.
	MaxAccountNumberAttempts = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending marks a key whose request has not finished yet.
	IdempotencyPending = "processing"
)

// Operation names reported to the Recorder.
const (
	OpRegister         = "register"
	OpLogin            = "login"
	OpVerifyToken      = "verify_token"
	OpCreateAccount    = "create_account"
	OpGetAccount       = "get_account"
	OpDeposit          = "deposit"
	OpWithdraw         = "withdraw"
	OpTransfer         = "transfer"
	OpCloseAccount     = "close_account"
	OpCheckConsistency = "check_consistency"
)
