package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbooks/finbooks/internal/domain"
)

func entry(entryType domain.EntryType, account, amount string) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		EntryType:   entryType,
		AccountCode: account,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "GBP",
	}
}

func TestCheckBalanced(t *testing.T) {
	tests := []struct {
		name    string
		entries []*domain.LedgerEntry
		wantErr error
	}{
		{
			name: "balanced pair",
			entries: []*domain.LedgerEntry{
				entry(domain.EntryTypeDebit, "5000", "120.00"),
				entry(domain.EntryTypeCredit, "1100", "120.00"),
			},
		},
		{
			name: "balanced within epsilon",
			entries: []*domain.LedgerEntry{
				entry(domain.EntryTypeDebit, "5000", "100.00"),
				entry(domain.EntryTypeCredit, "1100", "100.01"),
			},
		},
		{
			name: "imbalanced",
			entries: []*domain.LedgerEntry{
				entry(domain.EntryTypeDebit, "5000", "100.00"),
				entry(domain.EntryTypeCredit, "1100", "100.02"),
			},
			wantErr: domain.ErrImbalancedTransaction,
		},
		{
			name: "single entry",
			entries: []*domain.LedgerEntry{
				entry(domain.EntryTypeDebit, "5000", "100.00"),
			},
			wantErr: domain.ErrTooFewEntries,
		},
		{
			name: "unknown entry type",
			entries: []*domain.LedgerEntry{
				entry(domain.EntryTypeDebit, "5000", "100.00"),
				entry(domain.EntryType("refund"), "1100", "100.00"),
			},
			wantErr: domain.ErrInvalidEntryType,
		},
		{
			name: "multi-leg split",
			entries: []*domain.LedgerEntry{
				entry(domain.EntryTypeDebit, "5000", "100.00"),
				entry(domain.EntryTypeDebit, "1400", "20.00"),
				entry(domain.EntryTypeCredit, "2100", "120.00"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debits, credits, err := domain.CheckBalanced(tt.entries)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, domain.AmountsMatch(debits, credits))
		})
	}
}
