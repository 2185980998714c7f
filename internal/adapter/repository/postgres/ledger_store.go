package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
)

type pgxDB interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
	Ping(context.Context) error
}

// LedgerStore implements usecase.LedgerStore on the accounts table. Each
// commit locks the table, so commits from every process are serialized.
type LedgerStore struct {
	db      pgxDB
	queries *generated.Queries
	tx      *TxManager
	retrier *Retrier
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *pgxpool.Pool, retrier *Retrier) *LedgerStore {
	return newLedgerStore(pool, retrier)
}

func newLedgerStore(db pgxDB, retrier *Retrier) *LedgerStore {
	return &LedgerStore{
		db:      db,
		queries: generated.New(db),
		tx:      newTxManagerWithPool(db),
		retrier: retrier,
	}
}

// Load reads every account.
func (s *LedgerStore) Load(ctx context.Context) (*domain.Ledger, error) {
	return loadLedger(ctx, s.queries)
}

// CommitAtomic runs mutate inside a transaction holding the accounts table
// lock and upserts the rows mutate changed. The whole transaction, mutate
// included, is retried on deadlock or serialization failure.
func (s *LedgerStore) CommitAtomic(ctx context.Context, mutate func(*domain.Ledger) error) error {
	return s.retrier.Retry(ctx, func() error {
		return s.tx.WithinTx(ctx, func(q *generated.Queries) error {
			if err := q.LockAccounts(ctx); err != nil {
				return storageErr(err)
			}

			prev, err := loadLedger(ctx, q)
			if err != nil {
				return err
			}

			next := prev.Clone()
			if err := mutate(next); err != nil {
				return err
			}

			for _, acc := range domain.Changed(prev, next) {
				if err := q.UpsertAccount(ctx, toUpsertParams(acc)); err != nil {
					return storageErr(err)
				}
			}
			return nil
		})
	})
}

// Ping reports whether the database is reachable.
func (s *LedgerStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return storageErr(err)
	}
	return nil
}

func loadLedger(ctx context.Context, q *generated.Queries) (*domain.Ledger, error) {
	rows, err := q.ListAccounts(ctx)
	if err != nil {
		return nil, storageErr(err)
	}

	l := domain.NewLedger()
	for _, row := range rows {
		l.Put(toDomainAccount(row))
	}
	return l, nil
}
