package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iho/bankledger/internal/domain"
)

// AuthUseCase handles registration, login and token checks.
type AuthUseCase struct {
	credentials CredentialRepository
	hasher      PasswordHasher
	tokens      TokenService
	opts        options

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(credentials CredentialRepository, hasher PasswordHasher, tokens TokenService, opts ...Option) *AuthUseCase {
	return &AuthUseCase{
		credentials: credentials,
		hasher:      hasher,
		tokens:      tokens,
		opts:        applyOptions(opts),
	}
}

// Register stores a new credential with a hashed password.
func (uc *AuthUseCase) Register(ctx context.Context, username, password string) (err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpRegister, err) }()

	username = domain.NormalizeUsername(username)
	if err := domain.ValidateUsername(username); err != nil {
		return err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}

	digest, err := uc.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	credential, err := domain.NewCredential(username, digest)
	if err != nil {
		return err
	}

	return uc.credentials.Create(ctx, credential)
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords both fail with domain.ErrInvalidCredentials.
func (uc *AuthUseCase) Authenticate(ctx context.Context, username, password string) error {
	credential, err := uc.credentials.GetByUsername(ctx, domain.NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, domain.ErrCredentialNotFound) {
			// same hashing work as a wrong password
			uc.hasher.Verify(password, uc.unknownUserDigest())
			return domain.ErrInvalidCredentials
		}
		return err
	}

	if !uc.hasher.Verify(password, credential.PasswordDigest) {
		return domain.ErrInvalidCredentials
	}

	return nil
}

// unknownUserDigest returns a digest, made with the configured hasher,
// that no stored credential uses.
func (uc *AuthUseCase) unknownUserDigest() string {
	uc.dummyOnce.Do(func() {
		digest, err := uc.hasher.Hash("unknown-user-placeholder")
		if err == nil {
			uc.dummyDigest = digest
		}
	})
	return uc.dummyDigest
}

// Login authenticates the user and issues a token.
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (token string, err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpLogin, err) }()

	if err := uc.Authenticate(ctx, username, password); err != nil {
		return "", err
	}

	token, err = uc.tokens.Issue(domain.NormalizeUsername(username))
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// VerifyToken returns the username carried by a valid token.
func (uc *AuthUseCase) VerifyToken(token string) (username string, err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpVerifyToken, err) }()

	return uc.tokens.Verify(token)
}
