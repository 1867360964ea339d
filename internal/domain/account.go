package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies a chart-of-accounts entry and determines its
// balance sign convention.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

var validAccountTypes = map[AccountType]bool{
	AccountTypeAsset:     true,
	AccountTypeLiability: true,
	AccountTypeEquity:    true,
	AccountTypeRevenue:   true,
	AccountTypeExpense:   true,
}

// IsValid checks the account type is known.
func (t AccountType) IsValid() bool {
	return validAccountTypes[t]
}

// DebitNormal reports whether accounts of this type increase with debits.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// ChartAccount is a chart-of-accounts record. Code is unique per tenant.
type ChartAccount struct {
	ID         string
	TenantID   string
	Code       string
	Name       string
	Type       AccountType
	ParentCode *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks chart account fields.
func (a *ChartAccount) Validate() error {
	if a.Code == "" {
		return ErrMissingAccountCode
	}
	if !a.Type.IsValid() {
		return ErrInvalidAccountType
	}
	return ValidateAccountName(a.Name)
}

// AccountBalance is the computed balance of one account: balance is
// debitTotal - creditTotal for debit-normal accounts, inverted otherwise.
type AccountBalance struct {
	AccountCode string
	AccountType AccountType
	Balance     decimal.Decimal
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
	AsOf        *time.Time
}

// ComputeBalance applies the sign convention of accountType to the raw
// debit and credit totals.
func ComputeBalance(accountType AccountType, debitTotal, creditTotal decimal.Decimal) decimal.Decimal {
	if accountType.DebitNormal() {
		return debitTotal.Sub(creditTotal)
	}
	return creditTotal.Sub(debitTotal)
}
