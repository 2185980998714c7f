package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	store   LedgerStore
	numbers AccountNumberGenerator
	opts    options
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(store LedgerStore, numbers AccountNumberGenerator, opts ...Option) *AccountUseCase {
	return &AccountUseCase{
		store:   store,
		numbers: numbers,
		opts:    applyOptions(opts),
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Owner          string
	InitialBalance decimal.Decimal
}

// CreateAccount opens a new active account for the owner.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (account *domain.Account, err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpCreateAccount, err) }()

	owner := domain.NormalizeUsername(input.Owner)
	if err := domain.ValidateUsername(owner); err != nil {
		return nil, err
	}
	if err := domain.ValidateInitialBalance(input.InitialBalance); err != nil {
		return nil, err
	}

	err = uc.store.CommitAtomic(ctx, func(l *domain.Ledger) error {
		if _, ok := l.ActiveAccount(owner); ok {
			return domain.ErrAlreadyHasActiveAccount
		}

		number, err := uc.allocateAccountNumber(l)
		if err != nil {
			return err
		}

		acc, err := domain.NewAccount(number, owner, input.InitialBalance, uc.opts.now())
		if err != nil {
			return err
		}
		l.Put(acc)
		account = acc.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetActiveAccount returns the owner's active account.
func (uc *AccountUseCase) GetActiveAccount(ctx context.Context, owner string) (account *domain.Account, err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpGetAccount, err) }()

	l, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	acc, ok := l.ActiveAccount(domain.NormalizeUsername(owner))
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return acc, nil
}

// Deposit credits the owner's active account and returns the new balance.
func (uc *AccountUseCase) Deposit(ctx context.Context, owner string, amount decimal.Decimal) (balance decimal.Decimal, err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpDeposit, err) }()

	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	owner = domain.NormalizeUsername(owner)

	err = uc.store.CommitAtomic(ctx, func(l *domain.Ledger) error {
		acc, ok := l.ActiveAccount(owner)
		if !ok {
			return domain.ErrAccountNotFound
		}
		if err := acc.Credit(amount); err != nil {
			return err
		}
		balance = acc.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// Withdraw debits the owner's active account and returns the new balance.
func (uc *AccountUseCase) Withdraw(ctx context.Context, owner string, amount decimal.Decimal) (balance decimal.Decimal, err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpWithdraw, err) }()

	if err := domain.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	owner = domain.NormalizeUsername(owner)

	err = uc.store.CommitAtomic(ctx, func(l *domain.Ledger) error {
		acc, ok := l.ActiveAccount(owner)
		if !ok {
			return domain.ErrAccountNotFound
		}
		if err := acc.Debit(amount); err != nil {
			return err
		}
		balance = acc.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	Owner           string
	ToAccountNumber string
	Amount          decimal.Decimal
}

// Transfer moves funds from the owner's active account to another account.
// Both balances change in the same commit. Returns the sender's new balance.
func (uc *AccountUseCase) Transfer(ctx context.Context, input TransferInput) (balance decimal.Decimal, err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpTransfer, err) }()

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return decimal.Zero, err
	}
	owner := domain.NormalizeUsername(input.Owner)

	err = uc.store.CommitAtomic(ctx, func(l *domain.Ledger) error {
		from, ok := l.ActiveAccount(owner)
		if !ok {
			return domain.ErrAccountNotFound
		}

		to, ok := l.Get(input.ToAccountNumber)
		if !ok {
			return domain.ErrRecipientNotFound
		}
		if !to.Active {
			return domain.ErrRecipientInactive
		}
		if to.Number == from.Number {
			return domain.ErrSameAccount
		}

		if err := from.Debit(input.Amount); err != nil {
			return err
		}
		if err := to.Credit(input.Amount); err != nil {
			return err
		}
		balance = from.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

// Close deactivates the owner's active account. The balance must be zero.
func (uc *AccountUseCase) Close(ctx context.Context, owner string) (err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpCloseAccount, err) }()

	owner = domain.NormalizeUsername(owner)

	return uc.store.CommitAtomic(ctx, func(l *domain.Ledger) error {
		acc, ok := l.ActiveAccount(owner)
		if !ok {
			return domain.ErrAccountNotFound
		}
		return acc.Close()
	})
}

func (uc *AccountUseCase) allocateAccountNumber(l *domain.Ledger) (string, error) {
	for range MaxAccountNumberAttempts {
		number, err := uc.numbers.Generate()
		if err != nil {
			return "", fmt.Errorf("generate account number: %w", err)
		}
		if !l.Has(number) {
			return number, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", domain.ErrAccountNumberUnavailable, MaxAccountNumberAttempts)
}
