package usecase

import (
	"context"
	"time"

	"github.com/iho/bankledger/internal/domain"
)

// LedgerStore persists the account ledger.
type LedgerStore interface {
	// Load returns a private copy of the current ledger.
	Load(ctx context.Context) (*domain.Ledger, error)
	// CommitAtomic runs mutate against a private copy of the ledger and
	// persists the copy only if mutate returns nil. Commits are serialized.
	// Implementations may call mutate more than once.
	CommitAtomic(ctx context.Context, mutate func(*domain.Ledger) error) error
}

// CredentialRepository defines data access for credentials.
type CredentialRepository interface {
	// Create stores the credential or fails with domain.ErrUserExists.
	Create(ctx context.Context, credential *domain.Credential) error
	// GetByUsername fails with domain.ErrCredentialNotFound for unknown users.
	GetByUsername(ctx context.Context, username string) (*domain.Credential, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// TokenService issues and verifies identity tokens.
type TokenService interface {
	Issue(username string) (string, error)
	Verify(token string) (string, error)
}

// AccountNumberGenerator generates candidate account numbers.
type AccountNumberGenerator interface {
	Generate() (string, error)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so the request can be retried.
	Release(ctx context.Context, key string) error
}

// Recorder receives the outcome of every ledger and auth operation.
type Recorder interface {
	RecordOperation(operation string, err error)
}
