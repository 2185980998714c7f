package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

type accountServiceStub struct {
	createFn   func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn      func(ctx context.Context, owner string) (*domain.Account, error)
	depositFn  func(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error)
	withdrawFn func(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error)
	transferFn func(ctx context.Context, input usecase.TransferInput) (decimal.Decimal, error)
	closeFn    func(ctx context.Context, owner string) error
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, input)
}

func (s *accountServiceStub) GetActiveAccount(ctx context.Context, owner string) (*domain.Account, error) {
	return s.getFn(ctx, owner)
}

func (s *accountServiceStub) Deposit(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.depositFn(ctx, owner, amount)
}

func (s *accountServiceStub) Withdraw(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error) {
	return s.withdrawFn(ctx, owner, amount)
}

func (s *accountServiceStub) Transfer(ctx context.Context, input usecase.TransferInput) (decimal.Decimal, error) {
	return s.transferFn(ctx, input)
}

func (s *accountServiceStub) Close(ctx context.Context, owner string) error {
	return s.closeFn(ctx, owner)
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	return req.WithContext(middleware.WithUsername(req.Context(), "alice"))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestAccountHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateAccountInput
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			return &domain.Account{Number: "0000000042", Owner: input.Owner, Balance: input.InitialBalance, Active: true}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/accounts/create", `{"initial_balance": 100}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Owner != "alice" || !captured.InitialBalance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	resp := decodeResponse(t, rec)
	if !resp.Success || resp.Message != "Account created successfully" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	if resp.Data == nil || resp.Data.AccountNumber != "0000000042" || !resp.Data.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected data %+v", resp.Data)
	}
}

func TestAccountHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			t.Fatal("CreateAccount should not be called for invalid payload")
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/accounts/create", "{invalid json"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAccountHandler_Create_AlreadyHasAccount(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
			return nil, domain.ErrAlreadyHasActiveAccount
		},
	})

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/accounts/create", `{"initial_balance": 0}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Success || resp.Message != "User already has an active account" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestAccountHandler_RequiresUser(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{})

	rec := httptest.NewRecorder()
	handler.Get(rec, httptest.NewRequest(http.MethodGet, "/accounts/my-account", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAccountHandler_Get(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, owner string) (*domain.Account, error) {
			if owner != "alice" {
				t.Fatalf("expected owner alice, got %s", owner)
			}
			return &domain.Account{Number: "0000000001", Owner: owner, Balance: decimal.RequireFromString("12.5"), Active: true, CreatedAt: created}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, authedRequest(http.MethodGet, "/accounts/my-account", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeResponse(t, rec)
	if resp.Account == nil || resp.Account.AccountNumber != "0000000001" || resp.Account.CreatedAt != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected account %+v", resp.Account)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, owner string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	rec := httptest.NewRecorder()
	handler.Get(rec, authedRequest(http.MethodGet, "/accounts/my-account", ""))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_DepositAndWithdraw(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		depositFn: func(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error) {
			return decimal.NewFromInt(150), nil
		},
		withdrawFn: func(ctx context.Context, owner string, amount decimal.Decimal) (decimal.Decimal, error) {
			return decimal.Zero, domain.ErrInsufficientFunds
		},
	})

	rec := httptest.NewRecorder()
	handler.Deposit(rec, authedRequest(http.MethodPost, "/accounts/deposit", `{"amount": 50}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Message != "Deposited $50.00" || resp.Data == nil || !resp.Data.NewBalance.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("unexpected deposit response %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.Withdraw(rec, authedRequest(http.MethodPost, "/accounts/withdraw", `{"amount": "500.00"}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Message != "Insufficient funds" {
		t.Fatalf("unexpected withdraw message %q", resp.Message)
	}
}

func TestAccountHandler_Transfer(t *testing.T) {
	var captured usecase.TransferInput
	handler := NewAccountHandler(&accountServiceStub{
		transferFn: func(ctx context.Context, input usecase.TransferInput) (decimal.Decimal, error) {
			captured = input
			return decimal.NewFromInt(70), nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Transfer(rec, authedRequest(http.MethodPost, "/accounts/transfer", `{"to_account_number":"0000000002","amount":30}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Owner != "alice" || captured.ToAccountNumber != "0000000002" || !captured.Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("unexpected input %+v", captured)
	}
	resp := decodeResponse(t, rec)
	if resp.Message != "Transferred $30.00 to account 0000000002" || !resp.Data.NewBalance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected transfer response %+v", resp)
	}
}

func TestAccountHandler_TransferErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrRecipientNotFound, http.StatusNotFound},
		{domain.ErrRecipientInactive, http.StatusBadRequest},
		{domain.ErrSameAccount, http.StatusBadRequest},
		{domain.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			handler := NewAccountHandler(&accountServiceStub{
				transferFn: func(ctx context.Context, input usecase.TransferInput) (decimal.Decimal, error) {
					return decimal.Zero, tt.err
				},
			})

			rec := httptest.NewRecorder()
			handler.Transfer(rec, authedRequest(http.MethodPost, "/accounts/transfer", `{"to_account_number":"1","amount":1}`))

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestAccountHandler_Close(t *testing.T) {
	handler := NewAccountHandler(&accountServiceStub{
		closeFn: func(ctx context.Context, owner string) error {
			return nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Close(rec, authedRequest(http.MethodPost, "/accounts/close", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Message != "Account closed successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}
