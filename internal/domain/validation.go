package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxAmount         = "1000000000000" // 1 trillion
	AmountScale       = 2
	MaxPasswordLength = 72 // bcrypt input limit

	// Exponent bounds keep rescaling of hostile inputs like "1e20000000" cheap.
	minAmountExponent = -18
	maxAmountExponent = 12
)

var maxAmount = decimal.RequireFromString(MaxAmount)

// ValidateAmount validates deposit/withdraw/transfer amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if err := checkExponent(amount); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	return validateMagnitude(amount)
}

// ValidateInitialBalance validates an opening balance, which may be zero.
func ValidateInitialBalance(amount decimal.Decimal) error {
	if err := checkExponent(amount); err != nil {
		return err
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: initial balance cannot be negative", ErrInvalidAmount)
	}
	return validateMagnitude(amount)
}

// checkExponent runs before any arithmetic that may rescale amount.
func checkExponent(amount decimal.Decimal) error {
	if exp := amount.Exponent(); exp < minAmountExponent || exp > maxAmountExponent {
		return fmt.Errorf("%w: out of range", ErrInvalidAmount)
	}
	return nil
}

func validateMagnitude(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(AmountScale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, AmountScale)
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxAmount)
	}
	return nil
}

// ValidateUsername rejects empty usernames.
func ValidateUsername(username string) error {
	if NormalizeUsername(username) == "" {
		return ErrInvalidUsername
	}
	return nil
}

// ValidatePassword checks input shape only.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password must not be empty", ErrInvalidPassword)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d bytes", ErrInvalidPassword, MaxPasswordLength)
	}
	return nil
}
