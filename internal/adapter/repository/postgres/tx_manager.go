package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager runs query batches inside one transaction.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return newTxManagerWithPool(pool)
}

func newTxManagerWithPool(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// WithinTx runs fn in a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (m *TxManager) WithinTx(ctx context.Context, fn func(q *generated.Queries) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return storageErr(err)
	}

	finished := false
	defer func() {
		if !finished {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(generated.New(tx)); err != nil {
		finished = true
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return storageErr(rbErr)
		}
		return err
	}

	finished = true
	if err := tx.Commit(ctx); err != nil {
		return storageErr(err)
	}
	return nil
}
