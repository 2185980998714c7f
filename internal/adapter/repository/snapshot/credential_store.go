package snapshot

import (
	"context"
	"maps"
	"sync"

	"github.com/iho/bankledger/internal/domain"
)

// CredentialStore implements usecase.CredentialRepository on top of
// users.json, a flat username to digest map. An empty path keeps
// credentials in memory only.
type CredentialStore struct {
	mu    sync.RWMutex
	path  string
	users map[string]string
}

// NewCredentialStore loads the snapshot at path.
func NewCredentialStore(path string) (*CredentialStore, error) {
	s := &CredentialStore{path: path, users: make(map[string]string)}
	if path == "" {
		return s, nil
	}

	var users map[string]string
	found, err := readJSON(path, &users)
	if err != nil {
		return nil, err
	}
	if found && users != nil {
		s.users = users
	}
	return s, nil
}

// Create stores the credential unless the username is taken.
func (s *CredentialStore) Create(ctx context.Context, credential *domain.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[credential.Username]; ok {
		return domain.ErrUserExists
	}

	next := maps.Clone(s.users)
	next[credential.Username] = credential.PasswordDigest

	if s.path != "" {
		if err := writeJSONAtomic(s.path, next); err != nil {
			return err
		}
	}

	s.users = next
	return nil
}

// GetByUsername returns the stored credential.
func (s *CredentialStore) GetByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	digest, ok := s.users[username]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &domain.Credential{Username: username, PasswordDigest: digest}, nil
}
