package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
)

// CredentialRepository implements usecase.CredentialRepository.
type CredentialRepository struct {
	queries *generated.Queries
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db generated.DBTX) *CredentialRepository {
	return &CredentialRepository{queries: generated.New(db)}
}

// Create inserts the credential unless the username is taken.
func (r *CredentialRepository) Create(ctx context.Context, credential *domain.Credential) error {
	inserted, err := r.queries.CreateCredential(ctx, generated.CreateCredentialParams{
		Username:       credential.Username,
		PasswordDigest: credential.PasswordDigest,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrUserExists
		}
		return storageErr(err)
	}
	if inserted == 0 {
		return domain.ErrUserExists
	}
	return nil
}

// GetByUsername retrieves a credential by username
func (r *CredentialRepository) GetByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	row, err := r.queries.GetCredential(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, storageErr(err)
	}

	return &domain.Credential{
		Username:       row.Username,
		PasswordDigest: row.PasswordDigest,
	}, nil
}
