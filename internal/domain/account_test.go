package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewAccount(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name    string
		number  string
		owner   string
		initial decimal.Decimal
		wantErr error
	}{
		{name: "valid", number: "0000000001", owner: "alice", initial: decimal.NewFromInt(100)},
		{name: "zero opening balance", number: "0000000002", owner: "alice", initial: decimal.Zero},
		{name: "empty number", number: " ", owner: "alice", initial: decimal.Zero, wantErr: ErrInvalidAccountNumber},
		{name: "empty owner", number: "0000000003", owner: "", initial: decimal.Zero, wantErr: ErrInvalidUsername},
		{name: "negative balance", number: "0000000004", owner: "alice", initial: decimal.NewFromInt(-1), wantErr: ErrInvalidAmount},
		{name: "three decimals", number: "0000000005", owner: "alice", initial: decimal.RequireFromString("1.005"), wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, err := NewAccount(tt.number, tt.owner, tt.initial, created)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !acc.Active {
				t.Error("expected new account to be active")
			}
			if !acc.Balance.Equal(tt.initial) {
				t.Errorf("expected balance %s, got %s", tt.initial, acc.Balance)
			}
			if !acc.CreatedAt.Equal(created) {
				t.Errorf("expected created_at %v, got %v", created, acc.CreatedAt)
			}
		})
	}
}

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name        string
		balance     decimal.Decimal
		debitAmount decimal.Decimal
		active      bool
		wantErr     error
	}{
		{
			name:        "debit more than balance",
			balance:     decimal.NewFromInt(100),
			active:      true,
			debitAmount: decimal.NewFromInt(150),
			wantErr:     ErrInsufficientFunds,
		},
		{
			name:        "debit exact balance",
			balance:     decimal.NewFromInt(100),
			active:      true,
			debitAmount: decimal.NewFromInt(100),
		},
		{
			name:        "debit less than balance",
			balance:     decimal.NewFromInt(100),
			active:      true,
			debitAmount: decimal.NewFromInt(50),
		},
		{
			name:        "closed account",
			balance:     decimal.NewFromInt(100),
			active:      false,
			debitAmount: decimal.NewFromInt(50),
			wantErr:     ErrAccountClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := &Account{Balance: tt.balance, Active: tt.active}

			err := acc.ValidateDebit(tt.debitAmount)

			if tt.wantErr == nil && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAccount_DebitLeavesBalanceOnFailure(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(150), Active: true}

	if err := acc.Debit(decimal.NewFromInt(1000)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if !acc.Balance.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected balance 150, got %s", acc.Balance)
	}
}

func TestAccount_ApplyCredit(t *testing.T) {
	acc := &Account{Balance: decimal.NewFromInt(100), Active: true}

	if got := acc.ApplyCredit(decimal.NewFromInt(50)); !got.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected 150, got %s", got)
	}
	if got := acc.ApplyDebit(decimal.NewFromInt(30)); !got.Equal(decimal.NewFromInt(70)) {
		t.Errorf("expected 70, got %s", got)
	}
	if !acc.Balance.Equal(decimal.NewFromInt(100)) {
		t.Error("Apply* must not mutate the account")
	}
}

func TestAccount_Close(t *testing.T) {
	t.Run("empty account closes", func(t *testing.T) {
		acc := &Account{Balance: decimal.Zero, Active: true}
		if err := acc.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if acc.Active {
			t.Error("expected account to be inactive")
		}
		if err := acc.Credit(decimal.NewFromInt(1)); !errors.Is(err, ErrAccountClosed) {
			t.Errorf("expected ErrAccountClosed on credit, got %v", err)
		}
	})

	t.Run("non-empty account rejected", func(t *testing.T) {
		acc := &Account{Balance: decimal.RequireFromString("0.01"), Active: true}
		if err := acc.Close(); !errors.Is(err, ErrNonZeroBalance) {
			t.Fatalf("expected ErrNonZeroBalance, got %v", err)
		}
		if !acc.Active {
			t.Error("expected account to stay active")
		}
	})
}

func TestAccount_CloneAndEqual(t *testing.T) {
	acc := &Account{Number: "1", Owner: "alice", Balance: decimal.NewFromInt(5), Active: true}
	c := acc.Clone()

	if !acc.Equal(c) {
		t.Fatal("expected clone to be equal")
	}
	c.Balance = decimal.NewFromInt(6)
	if acc.Equal(c) {
		t.Error("expected modified clone to differ")
	}
	if !acc.Balance.Equal(decimal.NewFromInt(5)) {
		t.Error("clone shares state with original")
	}
}
