package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when stored accounts break a ledger invariant.
	ErrInconsistentLedger = errors.New("ledger is inconsistent")
)

// ConsistencyReport summarizes a ledger check.
type ConsistencyReport struct {
	Accounts     int
	Active       int
	TotalBalance decimal.Decimal
	Violations   []string
}

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	store LedgerStore
	opts  options
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(store LedgerStore, opts ...Option) *LedgerUseCase {
	return &LedgerUseCase{
		store: store,
		opts:  applyOptions(opts),
	}
}

// CheckConsistency verifies that no balance is negative and no owner holds
// more than one active account. The report is returned even when the
// ledger is inconsistent.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (report *ConsistencyReport, err error) {
	defer func() { uc.opts.recorder.RecordOperation(OpCheckConsistency, err) }()

	l, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	report = &ConsistencyReport{TotalBalance: l.TotalBalance()}
	activeByOwner := make(map[string][]string)

	for _, acc := range l.Accounts() {
		report.Accounts++
		if acc.Balance.IsNegative() {
			report.Violations = append(report.Violations,
				fmt.Sprintf("account %s has negative balance %s", acc.Number, acc.Balance.StringFixed(2)))
		}
		if acc.Active {
			report.Active++
			activeByOwner[acc.Owner] = append(activeByOwner[acc.Owner], acc.Number)
		}
	}

	owners := make([]string, 0, len(activeByOwner))
	for owner := range activeByOwner {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	for _, owner := range owners {
		if numbers := activeByOwner[owner]; len(numbers) > 1 {
			report.Violations = append(report.Violations,
				fmt.Sprintf("owner %s has %d active accounts %v", owner, len(numbers), numbers))
		}
	}

	if len(report.Violations) > 0 {
		return report, fmt.Errorf("%w: %d violation(s)", ErrInconsistentLedger, len(report.Violations))
	}
	return report, nil
}
