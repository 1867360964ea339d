package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// AccrualUseCase manages the accrual and prepayment lifecycle that
// feeds the period close.
type AccrualUseCase struct {
	accrualRepo AccrualRepository
	poster      Poster
	idGen       IDGenerator
}

// NewAccrualUseCase creates a new AccrualUseCase.
func NewAccrualUseCase(accrualRepo AccrualRepository, poster Poster, idGen IDGenerator) *AccrualUseCase {
	return &AccrualUseCase{
		accrualRepo: accrualRepo,
		poster:      poster,
		idGen:       idGen,
	}
}

// CreateAccrualInput describes a new accrual.
type CreateAccrualInput struct {
	AccountCode string
	Description string
	Amount      decimal.Decimal
	Currency    string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// CreateAccrual records a pending accrual for later posting at close.
func (uc *AccrualUseCase) CreateAccrual(ctx context.Context, tenantID string, input CreateAccrualInput) (*domain.Accrual, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	// A zero accrual would post a meaningless 0/0 transaction at close.
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.PeriodEnd.After(input.PeriodStart) {
		return nil, domain.ErrInvalidPeriod
	}

	now := time.Now().UTC()
	accrual := &domain.Accrual{
		ID:          uc.idGen.Generate(),
		TenantID:    tenantID,
		AccountCode: input.AccountCode,
		Description: input.Description,
		Amount:      input.Amount,
		Currency:    currencyOrDefault(input.Currency),
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Status:      domain.AccrualStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.accrualRepo.CreateAccrual(ctx, accrual); err != nil {
		return nil, err
	}

	return accrual, nil
}

// PostPendingAccruals posts every pending accrual whose period ends on
// or before periodEnd: debit the expense account, credit accrued
// liabilities. Returns the number of accruals posted.
func (uc *AccrualUseCase) PostPendingAccruals(ctx context.Context, tenantID string, periodEnd time.Time) (int, error) {
	pending, err := uc.accrualRepo.ListAccruals(ctx, tenantID, domain.AccrualStatusPending, periodEnd)
	if err != nil {
		return 0, err
	}

	posted := 0
	for _, accrual := range pending {
		ref := "accrual:" + accrual.ID
		result, err := uc.poster.PostDoubleEntry(ctx, tenantID, PostDoubleEntryInput{
			Description:     "Accrual: " + accrual.Description,
			TransactionDate: accrual.PeriodEnd,
			CreatedBy:       "close-engine",
			TransactionRef:  &ref,
			Entries: []PostEntryInput{
				{
					EntryType:   domain.EntryTypeDebit,
					AccountCode: accrual.AccountCode,
					AccountName: "Accrued Expense",
					Amount:      accrual.Amount,
					Currency:    accrual.Currency,
				},
				{
					EntryType:   domain.EntryTypeCredit,
					AccountCode: AccountAccruals,
					AccountName: "Accrued Liabilities",
					Amount:      accrual.Amount,
					Currency:    accrual.Currency,
				},
			},
		})
		if err != nil {
			return posted, fmt.Errorf("posting accrual %s: %w", accrual.ID, err)
		}

		accrual.Status = domain.AccrualStatusPosted
		accrual.TransactionID = &result.TransactionID
		accrual.UpdatedAt = time.Now().UTC()
		if err := uc.accrualRepo.UpdateAccrual(ctx, accrual); err != nil {
			return posted, err
		}

		posted++
	}

	return posted, nil
}

// ReversePostedAccruals reverses accruals whose period ended before
// asOf, emitting the opposite pair of entries in the new period.
func (uc *AccrualUseCase) ReversePostedAccruals(ctx context.Context, tenantID string, asOf time.Time) (int, error) {
	postedAccruals, err := uc.accrualRepo.ListAccruals(ctx, tenantID, domain.AccrualStatusPosted, asOf)
	if err != nil {
		return 0, err
	}

	reversed := 0
	for _, accrual := range postedAccruals {
		ref := "accrual-reversal:" + accrual.ID
		_, err := uc.poster.PostDoubleEntry(ctx, tenantID, PostDoubleEntryInput{
			Description:     "Accrual reversal: " + accrual.Description,
			TransactionDate: asOf,
			CreatedBy:       "close-engine",
			TransactionRef:  &ref,
			Entries: []PostEntryInput{
				{
					EntryType:   domain.EntryTypeDebit,
					AccountCode: AccountAccruals,
					AccountName: "Accrued Liabilities",
					Amount:      accrual.Amount,
					Currency:    accrual.Currency,
				},
				{
					EntryType:   domain.EntryTypeCredit,
					AccountCode: accrual.AccountCode,
					AccountName: "Accrued Expense",
					Amount:      accrual.Amount,
					Currency:    accrual.Currency,
				},
			},
		})
		if err != nil {
			return reversed, fmt.Errorf("reversing accrual %s: %w", accrual.ID, err)
		}

		accrual.Status = domain.AccrualStatusReversed
		accrual.UpdatedAt = time.Now().UTC()
		if err := uc.accrualRepo.UpdateAccrual(ctx, accrual); err != nil {
			return reversed, err
		}

		reversed++
	}

	return reversed, nil
}

// CreatePrepaymentInput describes a new prepayment.
type CreatePrepaymentInput struct {
	AccountCode string
	Description string
	Amount      decimal.Decimal
	Currency    string
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// CreatePrepayment records a prepayment amortized straight-line over
// the whole months between start and end.
func (uc *AccrualUseCase) CreatePrepayment(ctx context.Context, tenantID string, input CreatePrepaymentInput) (*domain.Prepayment, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.PeriodEnd.After(input.PeriodStart) {
		return nil, domain.ErrInvalidPeriod
	}

	months := monthsBetween(input.PeriodStart, input.PeriodEnd)
	if months < 1 {
		months = 1
	}

	now := time.Now().UTC()
	prepayment := &domain.Prepayment{
		ID:          uc.idGen.Generate(),
		TenantID:    tenantID,
		AccountCode: input.AccountCode,
		Description: input.Description,
		Amount:      input.Amount,
		Currency:    currencyOrDefault(input.Currency),
		PeriodStart: input.PeriodStart,
		PeriodEnd:   input.PeriodEnd,
		Status:      domain.PrepaymentStatusPending,
		MonthsTotal: months,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.accrualRepo.CreatePrepayment(ctx, prepayment); err != nil {
		return nil, err
	}

	return prepayment, nil
}

// AmortizePrepayments charges one month of every open prepayment whose
// coverage has started by periodEnd: debit the expense account, credit
// the prepayments asset. The final month flips the status to amortized.
func (uc *AccrualUseCase) AmortizePrepayments(ctx context.Context, tenantID string, periodEnd time.Time) (int, error) {
	open, err := uc.accrualRepo.ListOpenPrepayments(ctx, tenantID, periodEnd)
	if err != nil {
		return 0, err
	}

	amortized := 0
	for _, prepayment := range open {
		if prepayment.FullyAmortized() {
			continue
		}

		monthly := prepayment.MonthlyAmount()
		if prepayment.MonthsAmortized == prepayment.MonthsTotal-1 {
			// Last month absorbs rounding leftover.
			charged := monthly.Mul(decimal.NewFromInt(int64(prepayment.MonthsAmortized)))
			monthly = prepayment.Amount.Sub(charged)
		}

		ref := fmt.Sprintf("prepayment:%s:%d", prepayment.ID, prepayment.MonthsAmortized+1)
		_, err := uc.poster.PostDoubleEntry(ctx, tenantID, PostDoubleEntryInput{
			Description:     "Prepayment amortization: " + prepayment.Description,
			TransactionDate: periodEnd,
			CreatedBy:       "close-engine",
			TransactionRef:  &ref,
			Entries: []PostEntryInput{
				{
					EntryType:   domain.EntryTypeDebit,
					AccountCode: prepayment.AccountCode,
					AccountName: "Prepaid Expense",
					Amount:      monthly,
					Currency:    prepayment.Currency,
				},
				{
					EntryType:   domain.EntryTypeCredit,
					AccountCode: AccountPrepayments,
					AccountName: "Prepayments",
					Amount:      monthly,
					Currency:    prepayment.Currency,
				},
			},
		})
		if err != nil {
			return amortized, fmt.Errorf("amortizing prepayment %s: %w", prepayment.ID, err)
		}

		prepayment.MonthsAmortized++
		if prepayment.FullyAmortized() {
			prepayment.Status = domain.PrepaymentStatusAmortized
		} else {
			prepayment.Status = domain.PrepaymentStatusPosted
		}
		prepayment.UpdatedAt = time.Now().UTC()
		if err := uc.accrualRepo.UpdatePrepayment(ctx, prepayment); err != nil {
			return amortized, err
		}

		amortized++
	}

	return amortized, nil
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "GBP"
	}
	return currency
}

func monthsBetween(start, end time.Time) int {
	years := end.Year() - start.Year()
	months := int(end.Month()) - int(start.Month())
	return years*12 + months
}
