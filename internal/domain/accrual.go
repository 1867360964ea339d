package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccrualStatus is the lifecycle state of an accrual.
type AccrualStatus string

const (
	AccrualStatusPending  AccrualStatus = "pending"
	AccrualStatusPosted   AccrualStatus = "posted"
	AccrualStatusReversed AccrualStatus = "reversed"
)

// Accrual is an expense or revenue recognized before cash movement.
// Pending accruals are posted during the period close and reversed in
// the following period.
type Accrual struct {
	ID            string
	TenantID      string
	AccountCode   string
	Description   string
	Amount        decimal.Decimal
	Currency      string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	Status        AccrualStatus
	TransactionID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PrepaymentStatus is the lifecycle state of a prepayment.
type PrepaymentStatus string

const (
	PrepaymentStatusPending   PrepaymentStatus = "pending"
	PrepaymentStatusPosted    PrepaymentStatus = "posted"
	PrepaymentStatusAmortized PrepaymentStatus = "amortized"
)

// Prepayment is cash paid ahead of the expense it covers, amortized
// straight-line over the months between PeriodStart and PeriodEnd.
type Prepayment struct {
	ID              string
	TenantID        string
	AccountCode     string
	Description     string
	Amount          decimal.Decimal
	Currency        string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Status          PrepaymentStatus
	MonthsTotal     int
	MonthsAmortized int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MonthlyAmount returns the straight-line amortization charge for one
// month, rounded to 2 decimal places.
func (p *Prepayment) MonthlyAmount() decimal.Decimal {
	if p.MonthsTotal <= 0 {
		return p.Amount
	}
	return p.Amount.Div(decimal.NewFromInt(int64(p.MonthsTotal))).Round(2)
}

// FullyAmortized reports whether every month has been charged.
func (p *Prepayment) FullyAmortized() bool {
	return p.MonthsAmortized >= p.MonthsTotal
}
