package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/finbooks/finbooks/internal/domain"
)

func TestComputeBalance(t *testing.T) {
	debit := decimal.RequireFromString("120.00")
	credit := decimal.Zero

	tests := []struct {
		name        string
		accountType domain.AccountType
		debitTotal  decimal.Decimal
		creditTotal decimal.Decimal
		want        string
	}{
		{"expense is debit normal", domain.AccountTypeExpense, debit, credit, "120"},
		{"asset is debit normal", domain.AccountTypeAsset, credit, debit, "-120"},
		{"revenue is credit normal", domain.AccountTypeRevenue, credit, debit, "120"},
		{"liability is credit normal", domain.AccountTypeLiability, debit, credit, "-120"},
		{"equity is credit normal", domain.AccountTypeEquity, credit, debit, "120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ComputeBalance(tt.accountType, tt.debitTotal, tt.creditTotal)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestClassifyVariance(t *testing.T) {
	tests := []struct {
		drift        string
		wantSeverity domain.VarianceSeverity
		wantAlert    bool
	}{
		{"500", "", false},
		{"1000", "", false},
		{"1000.01", domain.VarianceSeverityMedium, true},
		{"-2500", domain.VarianceSeverityMedium, true},
		{"5000.01", domain.VarianceSeverityHigh, true},
		{"10000.01", domain.VarianceSeverityCritical, true},
		{"-50000", domain.VarianceSeverityCritical, true},
	}

	for _, tt := range tests {
		t.Run(tt.drift, func(t *testing.T) {
			severity, alert := domain.ClassifyVariance(decimal.RequireFromString(tt.drift))
			assert.Equal(t, tt.wantAlert, alert)
			assert.Equal(t, tt.wantSeverity, severity)
		})
	}
}

func TestPrepaymentMonthlyAmount(t *testing.T) {
	p := &domain.Prepayment{
		Amount:      decimal.RequireFromString("1200.00"),
		MonthsTotal: 12,
	}
	assert.Equal(t, "100", p.MonthlyAmount().String())

	uneven := &domain.Prepayment{
		Amount:      decimal.RequireFromString("100.00"),
		MonthsTotal: 3,
	}
	assert.Equal(t, "33.33", uneven.MonthlyAmount().String())
}
