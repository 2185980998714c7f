package snapshot

import (
	"context"
	"sync"

	"github.com/iho/bankledger/internal/domain"
)

// LedgerStore implements usecase.LedgerStore on top of accounts.json.
// An empty path keeps the ledger in memory only.
type LedgerStore struct {
	mu     sync.Mutex
	path   string
	ledger *domain.Ledger
}

// NewLedgerStore loads the snapshot at path, starting empty if the file
// does not exist. A corrupt snapshot fails with domain.ErrStorageUnavailable.
func NewLedgerStore(path string) (*LedgerStore, error) {
	s := &LedgerStore{path: path, ledger: domain.NewLedger()}
	if path == "" {
		return s, nil
	}

	var records map[string]accountRecord
	found, err := readJSON(path, &records)
	if err != nil {
		return nil, err
	}
	if found {
		l, err := fromRecords(records)
		if err != nil {
			return nil, storageErr(err)
		}
		s.ledger = l
	}
	return s, nil
}

// NewMemoryLedgerStore returns a store seeded with accounts that never
// touches disk.
func NewMemoryLedgerStore(accounts ...*domain.Account) *LedgerStore {
	return &LedgerStore{ledger: domain.NewLedger(accounts...)}
}

// Load returns a copy of the current ledger.
func (s *LedgerStore) Load(ctx context.Context) (*domain.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.Clone(), nil
}

// CommitAtomic applies mutate to a copy of the ledger, writes the copy and
// then publishes it. Nothing changes if mutate or the write fails.
func (s *LedgerStore) CommitAtomic(ctx context.Context, mutate func(*domain.Ledger) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.ledger.Clone()
	if err := mutate(next); err != nil {
		return err
	}

	if s.path != "" {
		if err := writeJSONAtomic(s.path, toRecords(next)); err != nil {
			return err
		}
	}

	s.ledger = next
	return nil
}

// Ping reports whether the snapshot directory is writable.
func (s *LedgerStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.path == "" {
		return nil
	}
	return checkDir(s.path)
}
