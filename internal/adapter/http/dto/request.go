package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/usecase"
)

// CredentialsRequest is the body of /register and /login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateAccountRequest represents a request to create an account.
// Amounts accept both JSON numbers and quoted decimal strings.
type CreateAccountRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(owner string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Owner:          owner,
		InitialBalance: r.InitialBalance,
	}
}

// AmountRequest is the body of deposit and withdraw.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// TransferRequest represents a request to move funds to another account.
type TransferRequest struct {
	ToAccountNumber string          `json:"to_account_number"`
	Amount          decimal.Decimal `json:"amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput(owner string) usecase.TransferInput {
	return usecase.TransferInput{
		Owner:           owner,
		ToAccountNumber: r.ToAccountNumber,
		Amount:          r.Amount,
	}
}
