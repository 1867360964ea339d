package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a ledger entry.
type EntryType string

const (
	EntryTypeDebit  EntryType = "debit"
	EntryTypeCredit EntryType = "credit"
)

// IsValid checks the entry type is one of the two directions.
func (t EntryType) IsValid() bool {
	return t == EntryTypeDebit || t == EntryTypeCredit
}

// Opposite returns the other direction.
func (t EntryType) Opposite() EntryType {
	if t == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

// BalanceEpsilon is the tolerance for debit/credit equality and
// reconciliation amount matching, in currency units.
var BalanceEpsilon = decimal.RequireFromString("0.01")

// LedgerEntry is a single immutable debit or credit. Amount is always
// non-negative; direction is carried by EntryType. Only the
// reconciliation flags may change after creation.
type LedgerEntry struct {
	ID              string
	TenantID        string
	EntityID        *string
	EntryType       EntryType
	AccountCode     string
	AccountName     string
	Amount          decimal.Decimal
	Currency        string
	Description     string
	TransactionDate time.Time
	TaxAmount       *decimal.Decimal
	TaxRate         *decimal.Decimal
	DocumentID      *string
	TransactionRef  *string
	Reconciled      bool
	ReconciledWith  *string
	Metadata        map[string]any
	CreatedBy       string
	CreatedAt       time.Time
}

// Validate checks entry fields before persistence.
func (e *LedgerEntry) Validate() error {
	if !e.EntryType.IsValid() {
		return ErrInvalidEntryType
	}
	if e.AccountCode == "" {
		return ErrMissingAccountCode
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return ValidateCurrency(e.Currency)
}

// HasDocument reports whether the entry originated from a source document.
func (e *LedgerEntry) HasDocument() bool {
	return e.DocumentID != nil && *e.DocumentID != ""
}

// AmountsMatch reports whether two amounts are equal within BalanceEpsilon.
func AmountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(BalanceEpsilon)
}
