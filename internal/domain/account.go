package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account is a single owner's balance holder. Accounts are never removed;
// closing one only clears Active.
type Account struct {
	Number    string
	Owner     string
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
}

// NewAccount builds an active account with the given opening balance.
func NewAccount(number, owner string, initial decimal.Decimal, createdAt time.Time) (*Account, error) {
	if strings.TrimSpace(number) == "" {
		return nil, ErrInvalidAccountNumber
	}
	if strings.TrimSpace(owner) == "" {
		return nil, ErrInvalidUsername
	}
	if err := ValidateInitialBalance(initial); err != nil {
		return nil, err
	}

	return &Account{
		Number:    number,
		Owner:     owner,
		Balance:   initial,
		Active:    true,
		CreatedAt: createdAt.UTC(),
	}, nil
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if !a.Active {
		return ErrAccountClosed
	}
	if a.ApplyDebit(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateCredit checks if account can be credited by amount.
func (a *Account) ValidateCredit(_ decimal.Decimal) error {
	if !a.Active {
		return ErrAccountClosed
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}

// Debit validates and subtracts amount from the balance.
func (a *Account) Debit(amount decimal.Decimal) error {
	if err := a.ValidateDebit(amount); err != nil {
		return err
	}
	a.Balance = a.ApplyDebit(amount)
	return nil
}

// Credit validates and adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) error {
	if err := a.ValidateCredit(amount); err != nil {
		return err
	}
	a.Balance = a.ApplyCredit(amount)
	return nil
}

// Close deactivates the account. Only an empty account can be closed.
func (a *Account) Close() error {
	if !a.Active {
		return ErrAccountClosed
	}
	if !a.Balance.IsZero() {
		return fmt.Errorf("%w: balance is %s", ErrNonZeroBalance, a.Balance.StringFixed(2))
	}
	a.Active = false
	return nil
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// Equal reports whether both accounts hold the same state.
func (a *Account) Equal(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Number == b.Number &&
		a.Owner == b.Owner &&
		a.Balance.Equal(b.Balance) &&
		a.Active == b.Active &&
		a.CreatedAt.Equal(b.CreatedAt)
}
