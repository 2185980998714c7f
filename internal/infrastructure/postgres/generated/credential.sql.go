package generated

import (
	"context"
)

const createCredential = `-- name: CreateCredential :execrows
INSERT INTO credentials (username, password_digest)
VALUES ($1, $2)
ON CONFLICT (username) DO NOTHING
`

type CreateCredentialParams struct {
	Username       string `json:"username"`
	PasswordDigest string `json:"password_digest"`
}

func (q *Queries) CreateCredential(ctx context.Context, arg CreateCredentialParams) (int64, error) {
	result, err := q.db.Exec(ctx, createCredential, arg.Username, arg.PasswordDigest)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getCredential = `-- name: GetCredential :one
SELECT username, password_digest, created_at FROM credentials WHERE username = $1
`

func (q *Queries) GetCredential(ctx context.Context, username string) (Credential, error) {
	row := q.db.QueryRow(ctx, getCredential, username)
	var i Credential
	err := row.Scan(&i.Username, &i.PasswordDigest, &i.CreatedAt)
	return i, err
}
