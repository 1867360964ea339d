package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a named group of two or more ledger entries posted
// atomically. Total debits must equal total credits within
// BalanceEpsilon before any entry is persisted.
type Transaction struct {
	ID              string
	TenantID        string
	Description     string
	TransactionDate time.Time
	TransactionRef  *string
	CreatedBy       string
	CreatedAt       time.Time
}

// CheckBalanced sums debit and credit amounts and verifies the
// double-entry invariant. Returns the totals so callers can report them.
func CheckBalanced(entries []*LedgerEntry) (debits, credits decimal.Decimal, err error) {
	if len(entries) < 2 {
		return decimal.Zero, decimal.Zero, ErrTooFewEntries
	}

	for _, e := range entries {
		switch e.EntryType {
		case EntryTypeDebit:
			debits = debits.Add(e.Amount)
		case EntryTypeCredit:
			credits = credits.Add(e.Amount)
		default:
			return decimal.Zero, decimal.Zero, ErrInvalidEntryType
		}
	}

	if !AmountsMatch(debits, credits) {
		return debits, credits, ErrImbalancedTransaction
	}

	return debits, credits, nil
}
