package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// Response is the envelope of every API reply.
type Response struct {
	Success bool             `json:"success"`
	Message string           `json:"message,omitempty"`
	Token   string           `json:"token,omitempty"`
	Account *AccountResponse `json:"account,omitempty"`
	Data    *DataResponse    `json:"data,omitempty"`
}

// ErrorResponse is the envelope of a failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     string          `json:"created_at"`
}

// DataResponse carries operation results.
type DataResponse struct {
	AccountNumber string           `json:"account_number,omitempty"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	NewBalance    *decimal.Decimal `json:"new_balance,omitempty"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		AccountNumber: a.Number,
		Balance:       a.Balance.Round(domain.AmountScale),
		CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreatedFromDomain describes a freshly opened account.
func CreatedFromDomain(a *domain.Account) *DataResponse {
	balance := a.Balance.Round(domain.AmountScale)
	return &DataResponse{AccountNumber: a.Number, Balance: &balance}
}

// NewBalance wraps the balance left after a mutation.
func NewBalance(balance decimal.Decimal) *DataResponse {
	b := balance.Round(domain.AmountScale)
	return &DataResponse{NewBalance: &b}
}

// Failure builds an ErrorResponse.
func Failure(message string) ErrorResponse {
	return ErrorResponse{Success: false, Message: message}
}
