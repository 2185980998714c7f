// Package idgen produces account numbers and request identifiers.
package idgen

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// DefaultAccountNumberLength matches the ten digit numbers issued so far.
const DefaultAccountNumberLength = 10

// ErrInvalidLength is returned for lengths outside 1..18.
var ErrInvalidLength = errors.New("account number length must be between 1 and 18")

// AccountNumberGenerator draws uniformly random, zero padded numeric
// account numbers. It implements usecase.AccountNumberGenerator.
type AccountNumberGenerator struct {
	length int
	limit  *big.Int
	format string
}

// NewAccountNumberGenerator creates a generator for numbers of the given length.
func NewAccountNumberGenerator(length int) (*AccountNumberGenerator, error) {
	if length < 1 || length > 18 {
		return nil, ErrInvalidLength
	}
	return &AccountNumberGenerator{
		length: length,
		limit:  new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil),
		format: fmt.Sprintf("%%0%dd", length),
	}, nil
}

// Generate returns a candidate number. Uniqueness is checked by the caller.
func (g *AccountNumberGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.limit)
	if err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return fmt.Sprintf(g.format, n.Int64()), nil
}
