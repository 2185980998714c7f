package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetActiveAccount(ctx context.Context, owner string) (*domain.Account, error)
	Deposit(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (decimal.Decimal, error)
	Close(ctx context.Context, owner string) error
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create opens an account for the caller.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: "Account created successfully",
		Data:    dto.CreatedFromDomain(account),
	})
}

// Get returns the caller's active account.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	account, err := h.accountUC.GetActiveAccount(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Response{Success: true, Account: dto.AccountFromDomain(account)})
}

// Deposit credits the caller's active account.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.accountUC.Deposit, "Deposited $%s")
}

// Withdraw debits the caller's active account.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.accountUC.Withdraw, "Withdrew $%s")
}

func (h *AccountHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, string, decimal.Decimal) (decimal.Decimal, error),
	format string,
) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.AmountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	balance, err := op(r.Context(), owner, req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: fmt.Sprintf(format, req.Amount.StringFixed(domain.AmountScale)),
		Data:    dto.NewBalance(balance),
	})
}

// Transfer moves funds from the caller's account to another account.
func (h *AccountHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	balance, err := h.accountUC.Transfer(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Response{
		Success: true,
		Message: fmt.Sprintf("Transferred $%s to account %s", req.Amount.StringFixed(domain.AmountScale), req.ToAccountNumber),
		Data:    dto.NewBalance(balance),
	})
}

// Close soft-closes the caller's account.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.accountUC.Close(r.Context(), owner); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Response{Success: true, Message: "Account closed successfully"})
}
