package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Ledger is the full set of accounts keyed by account number.
type Ledger struct {
	accounts map[string]*Account
}

// NewLedger builds a ledger from the given accounts. Later duplicates win.
func NewLedger(accounts ...*Account) *Ledger {
	l := &Ledger{accounts: make(map[string]*Account, len(accounts))}
	for _, a := range accounts {
		l.Put(a)
	}
	return l
}

// Get returns the account with the given number.
func (l *Ledger) Get(number string) (*Account, bool) {
	a, ok := l.accounts[number]
	return a, ok
}

// Has reports whether the number was ever allocated.
func (l *Ledger) Has(number string) bool {
	_, ok := l.accounts[number]
	return ok
}

// ActiveAccount returns the owner's active account. If the stored data
// holds several, the lowest account number wins.
func (l *Ledger) ActiveAccount(owner string) (*Account, bool) {
	var found *Account
	for _, a := range l.accounts {
		if !a.Active || a.Owner != owner {
			continue
		}
		if found == nil || a.Number < found.Number {
			found = a
		}
	}
	return found, found != nil
}

// Put inserts or replaces an account.
func (l *Ledger) Put(a *Account) {
	l.accounts[a.Number] = a
}

// Len returns the number of accounts, closed ones included.
func (l *Ledger) Len() int {
	return len(l.accounts)
}

// Accounts returns all accounts ordered by number.
func (l *Ledger) Accounts() []*Account {
	out := make([]*Account, 0, len(l.accounts))
	for _, a := range l.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// TotalBalance sums every balance in the ledger.
func (l *Ledger) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range l.accounts {
		total = total.Add(a.Balance)
	}
	return total
}

// Clone returns a deep copy that can be mutated independently.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{accounts: make(map[string]*Account, len(l.accounts))}
	for k, a := range l.accounts {
		c.accounts[k] = a.Clone()
	}
	return c
}

// Changed returns accounts in next that are new or differ from prev,
// ordered by number.
func Changed(prev, next *Ledger) []*Account {
	var out []*Account
	for _, a := range next.Accounts() {
		old, ok := prev.Get(a.Number)
		if !ok || !old.Equal(a) {
			out = append(out, a)
		}
	}
	return out
}
