package snapshot

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// accountRecord is the on-disk shape of one account. Balances are written
// as decimal strings; plain JSON numbers are accepted on read.
type accountRecord struct {
	AccountNumber string          `json:"account_number"`
	Username      string          `json:"username"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     string          `json:"created_at"`
}

// createdAtLayouts lists accepted created_at formats, newest first.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseCreatedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized created_at %q", s)
}

func toRecords(l *domain.Ledger) map[string]accountRecord {
	out := make(map[string]accountRecord, l.Len())
	for _, a := range l.Accounts() {
		out[a.Number] = accountRecord{
			AccountNumber: a.Number,
			Username:      a.Owner,
			Balance:       a.Balance,
			IsActive:      a.Active,
			CreatedAt:     a.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	}
	return out
}

func fromRecords(records map[string]accountRecord) (*domain.Ledger, error) {
	l := domain.NewLedger()
	for key, r := range records {
		number := r.AccountNumber
		if number == "" {
			number = key
		}
		if number != key {
			return nil, fmt.Errorf("account %s stored under key %s", number, key)
		}
		createdAt, err := parseCreatedAt(r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", number, err)
		}
		l.Put(&domain.Account{
			Number:    number,
			Owner:     r.Username,
			Balance:   r.Balance,
			Active:    r.IsActive,
			CreatedAt: createdAt,
		})
	}
	return l, nil
}
