package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/iho/bankledger/internal/domain"
)

const credentialsKey = "bankledger:credentials"

// CredentialStore implements usecase.CredentialRepository on a single
// Redis hash mapping username to password digest.
type CredentialStore struct {
	client redis.UniversalClient
	key    string
}

// NewCredentialStore creates a new CredentialStore.
func NewCredentialStore(client redis.UniversalClient) *CredentialStore {
	return &CredentialStore{client: client, key: credentialsKey}
}

// Create stores the credential with HSETNX, so concurrent registrations of
// one username cannot both succeed.
func (s *CredentialStore) Create(ctx context.Context, credential *domain.Credential) error {
	set, err := s.client.HSetNX(ctx, s.key, credential.Username, credential.PasswordDigest).Result()
	if err != nil {
		return storageErr(err)
	}
	if !set {
		return domain.ErrUserExists
	}
	return nil
}

// GetByUsername retrieves a credential by username.
func (s *CredentialStore) GetByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	digest, err := s.client.HGet(ctx, s.key, username).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCredentialNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &domain.Credential{Username: username, PasswordDigest: digest}, nil
}

// Ping reports whether Redis answers.
func (s *CredentialStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return storageErr(err)
	}
	return nil
}
