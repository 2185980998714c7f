package domain

import "errors"

var (
	// Credential errors
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("username must not be empty")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrCredentialNotFound = errors.New("credential not found")

	// Token errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")

	// Account errors
	ErrAccountNotFound          = errors.New("no active account found")
	ErrAlreadyHasActiveAccount  = errors.New("user already has an active account")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrNonZeroBalance           = errors.New("cannot close account with remaining balance")
	ErrAccountClosed            = errors.New("account is closed")
	ErrInvalidAccountNumber     = errors.New("invalid account number")
	ErrAccountNumberUnavailable = errors.New("no free account number")

	// Transfer errors
	ErrRecipientNotFound = errors.New("recipient account not found")
	ErrRecipientInactive = errors.New("recipient account is not active")
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidAmount     = errors.New("invalid amount")

	// Storage errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)
