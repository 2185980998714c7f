package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listAccounts = `-- name: ListAccounts :many
SELECT account_number, username, balance, is_active, created_at FROM accounts
ORDER BY account_number
`

func (q *Queries) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccounts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.AccountNumber,
			&i.Username,
			&i.Balance,
			&i.IsActive,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const lockAccounts = `-- name: LockAccounts :exec
LOCK TABLE accounts IN SHARE ROW EXCLUSIVE MODE
`

func (q *Queries) LockAccounts(ctx context.Context) error {
	_, err := q.db.Exec(ctx, lockAccounts)
	return err
}

const upsertAccount = `-- name: UpsertAccount :exec
INSERT INTO accounts (account_number, username, balance, is_active, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (account_number) DO UPDATE
SET balance = EXCLUDED.balance, is_active = EXCLUDED.is_active
`

type UpsertAccountParams struct {
	AccountNumber string             `json:"account_number"`
	Username      string             `json:"username"`
	Balance       pgtype.Numeric     `json:"balance"`
	IsActive      bool               `json:"is_active"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) UpsertAccount(ctx context.Context, arg UpsertAccountParams) error {
	_, err := q.db.Exec(ctx, upsertAccount,
		arg.AccountNumber,
		arg.Username,
		arg.Balance,
		arg.IsActive,
		arg.CreatedAt,
	)
	return err
}
