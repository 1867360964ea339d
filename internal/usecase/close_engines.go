package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// AccrualEngine posts pending accruals for the close period.
type AccrualEngine struct {
	accruals *AccrualUseCase
}

func NewAccrualEngine(accruals *AccrualUseCase) *AccrualEngine {
	return &AccrualEngine{accruals: accruals}
}

func (e *AccrualEngine) Run(ctx context.Context, close *domain.PeriodClose) (map[string]any, error) {
	posted, err := e.accruals.PostPendingAccruals(ctx, close.TenantID, close.PeriodEnd)
	if err != nil {
		return nil, err
	}
	return map[string]any{"accruals_posted": posted}, nil
}

// PrepaymentEngine amortizes open prepayments for the close period.
type PrepaymentEngine struct {
	accruals *AccrualUseCase
}

func NewPrepaymentEngine(accruals *AccrualUseCase) *PrepaymentEngine {
	return &PrepaymentEngine{accruals: accruals}
}

func (e *PrepaymentEngine) Run(ctx context.Context, close *domain.PeriodClose) (map[string]any, error) {
	amortized, err := e.accruals.AmortizePrepayments(ctx, close.TenantID, close.PeriodEnd)
	if err != nil {
		return nil, err
	}
	return map[string]any{"prepayments_amortized": amortized}, nil
}

// ReconciliationEngine auto-pairs unreconciled entries in the period:
// opposite entry types on the same account with matching amounts.
type ReconciliationEngine struct {
	ledger  *LedgerUseCase
	entries EntryRepository
}

func NewReconciliationEngine(ledger *LedgerUseCase, entries EntryRepository) *ReconciliationEngine {
	return &ReconciliationEngine{ledger: ledger, entries: entries}
}

func (e *ReconciliationEngine) Run(ctx context.Context, close *domain.PeriodClose) (map[string]any, error) {
	unreconciled, err := e.entries.ListUnreconciled(ctx, close.TenantID, close.PeriodStart, close.PeriodEnd)
	if err != nil {
		return nil, err
	}

	paired := make(map[string]bool)
	matched := 0
	for i, a := range unreconciled {
		if paired[a.ID] {
			continue
		}
		for _, b := range unreconciled[i+1:] {
			if paired[b.ID] {
				continue
			}
			if a.AccountCode != b.AccountCode || a.EntryType == b.EntryType {
				continue
			}
			if !domain.AmountsMatch(a.Amount, b.Amount) {
				continue
			}
			if err := e.ledger.ReconcileEntries(ctx, close.TenantID, a.ID, b.ID); err != nil {
				return nil, err
			}
			paired[a.ID] = true
			paired[b.ID] = true
			matched++
			break
		}
	}

	return map[string]any{
		"candidates": len(unreconciled),
		"matched":    matched,
		"unmatched":  len(unreconciled) - 2*matched,
	}, nil
}

// ValidationEngine verifies the ledger is balanced over the close
// period before the books can be signed off.
type ValidationEngine struct {
	entries EntryRepository
}

func NewValidationEngine(entries EntryRepository) *ValidationEngine {
	return &ValidationEngine{entries: entries}
}

func (e *ValidationEngine) Run(ctx context.Context, close *domain.PeriodClose) (map[string]any, error) {
	sums, err := e.entries.SumPeriod(ctx, close.TenantID, close.PeriodStart, close.PeriodEnd)
	if err != nil {
		return nil, err
	}

	diff := sums.Debits.Sub(sums.Credits).Abs()
	if diff.GreaterThan(domain.BalanceEpsilon) {
		return nil, fmt.Errorf("ledger out of balance for period: debits %s, credits %s",
			sums.Debits.StringFixed(2), sums.Credits.StringFixed(2))
	}

	return map[string]any{
		"entries": sums.Count,
		"debits":  sums.Debits.StringFixed(2),
		"credits": sums.Credits.StringFixed(2),
	}, nil
}

// ReportEngine generates the close reports: a trial balance and a
// summary profit and loss for the period.
type ReportEngine struct {
	entries EntryRepository
}

func NewReportEngine(entries EntryRepository) *ReportEngine {
	return &ReportEngine{entries: entries}
}

func (e *ReportEngine) Run(ctx context.Context, close *domain.PeriodClose) (map[string]any, error) {
	rows, err := e.entries.TrialBalance(ctx, close.TenantID, close.PeriodStart, close.PeriodEnd)
	if err != nil {
		return nil, err
	}

	trialBalance := make([]map[string]any, 0, len(rows))
	revenue := decimal.Zero
	expenses := decimal.Zero
	for _, row := range rows {
		trialBalance = append(trialBalance, map[string]any{
			"account_code": row.AccountCode,
			"account_name": row.AccountName,
			"debits":       row.DebitTotal.StringFixed(2),
			"credits":      row.CreditTotal.StringFixed(2),
		})

		switch {
		case hasPrefix(row.AccountCode, PrefixRevenue):
			revenue = revenue.Add(row.CreditTotal.Sub(row.DebitTotal))
		case hasPrefix(row.AccountCode, PrefixExpense), hasPrefix(row.AccountCode, PrefixExpense2):
			expenses = expenses.Add(row.DebitTotal.Sub(row.CreditTotal))
		}
	}

	return map[string]any{
		"trial_balance": trialBalance,
		"profit_and_loss": map[string]any{
			"revenue":    revenue.StringFixed(2),
			"expenses":   expenses.StringFixed(2),
			"net_income": revenue.Sub(expenses).StringFixed(2),
		},
	}, nil
}

func hasPrefix(code, prefix string) bool {
	return len(code) >= len(prefix) && code[:len(prefix)] == prefix
}
