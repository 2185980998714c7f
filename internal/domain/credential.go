package domain

import "strings"

// Credential binds a username to a password digest. Credentials are
// created once at registration and never changed.
type Credential struct {
	Username       string
	PasswordDigest string
}

// NewCredential validates and builds a credential.
func NewCredential(username, digest string) (*Credential, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if digest == "" {
		return nil, ErrInvalidPassword
	}
	return &Credential{Username: username, PasswordDigest: digest}, nil
}

// NormalizeUsername trims surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
