package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
	"github.com/finbooks/finbooks/internal/usecase/mocks"
)

type accrualFixture struct {
	uc          *usecase.AccrualUseCase
	accrualRepo *mocks.MockAccrualRepository
	poster      *mocks.MockPoster
}

func newAccrualFixture() *accrualFixture {
	accrualRepo := mocks.NewMockAccrualRepository()
	poster := mocks.NewMockPoster()
	uc := usecase.NewAccrualUseCase(accrualRepo, poster, mocks.NewMockIDGenerator())
	return &accrualFixture{uc: uc, accrualRepo: accrualRepo, poster: poster}
}

func TestAccrualUseCase_CreateAccrual(t *testing.T) {
	f := newAccrualFixture()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	accrual, err := f.uc.CreateAccrual(context.Background(), "tenant-1", usecase.CreateAccrualInput{
		AccountCode: "5000",
		Description: "July electricity",
		Amount:      decimal.RequireFromString("240.00"),
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if accrual.Status != domain.AccrualStatusPending {
		t.Errorf("expected pending, got %s", accrual.Status)
	}
	if accrual.Currency != "GBP" {
		t.Errorf("expected default currency GBP, got %s", accrual.Currency)
	}

	t.Run("invalid amount", func(t *testing.T) {
		_, err := f.uc.CreateAccrual(context.Background(), "tenant-1", usecase.CreateAccrualInput{
			AccountCode: "5000",
			Amount:      decimal.Zero,
			PeriodStart: start,
			PeriodEnd:   end,
		})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Errorf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := f.uc.CreateAccrual(context.Background(), "tenant-1", usecase.CreateAccrualInput{
			AccountCode: "5000",
			Amount:      decimal.NewFromInt(10),
			PeriodStart: end,
			PeriodEnd:   start,
		})
		if !errors.Is(err, domain.ErrInvalidPeriod) {
			t.Errorf("expected ErrInvalidPeriod, got %v", err)
		}
	})
}

func TestAccrualUseCase_PostPendingAccruals(t *testing.T) {
	f := newAccrualFixture()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	accrual, err := f.uc.CreateAccrual(context.Background(), "tenant-1", usecase.CreateAccrualInput{
		AccountCode: "5100",
		Description: "July electricity",
		Amount:      decimal.RequireFromString("240.00"),
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An accrual for a later period must not be touched.
	_, err = f.uc.CreateAccrual(context.Background(), "tenant-1", usecase.CreateAccrualInput{
		AccountCode: "5100",
		Description: "August electricity",
		Amount:      decimal.RequireFromString("240.00"),
		PeriodStart: end.AddDate(0, 0, 1),
		PeriodEnd:   end.AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	posted, err := f.uc.PostPendingAccruals(context.Background(), "tenant-1", end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if posted != 1 {
		t.Fatalf("expected 1 posted accrual, got %d", posted)
	}

	if len(f.poster.Posted) != 1 {
		t.Fatalf("expected 1 posted transaction, got %d", len(f.poster.Posted))
	}
	txn := f.poster.Posted[0]
	if len(txn.Entries) != 2 {
		t.Fatalf("expected a balanced pair, got %d entries", len(txn.Entries))
	}
	if txn.Entries[0].AccountCode != "5100" || txn.Entries[0].EntryType != domain.EntryTypeDebit {
		t.Error("expected debit on the accrued expense account")
	}
	if txn.Entries[1].AccountCode != "2300" || txn.Entries[1].EntryType != domain.EntryTypeCredit {
		t.Error("expected credit on accrued liabilities")
	}
	if txn.TransactionRef == nil || *txn.TransactionRef != "accrual:"+accrual.ID {
		t.Error("expected idempotency ref derived from the accrual id")
	}

	updated, err := f.accrualRepo.GetAccrual(context.Background(), "tenant-1", accrual.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != domain.AccrualStatusPosted {
		t.Errorf("expected posted, got %s", updated.Status)
	}
	if updated.TransactionID == nil {
		t.Error("expected transaction id recorded")
	}
}

func TestAccrualUseCase_ReversePostedAccruals(t *testing.T) {
	f := newAccrualFixture()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	accrual, _ := f.uc.CreateAccrual(context.Background(), "tenant-1", usecase.CreateAccrualInput{
		AccountCode: "5100",
		Description: "July electricity",
		Amount:      decimal.RequireFromString("240.00"),
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if _, err := f.uc.PostPendingAccruals(context.Background(), "tenant-1", end); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	nextPeriod := end.AddDate(0, 1, 0)
	reversed, err := f.uc.ReversePostedAccruals(context.Background(), "tenant-1", nextPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reversed != 1 {
		t.Fatalf("expected 1 reversal, got %d", reversed)
	}

	reversal := f.poster.Posted[len(f.poster.Posted)-1]
	if reversal.Entries[0].AccountCode != "2300" || reversal.Entries[0].EntryType != domain.EntryTypeDebit {
		t.Error("expected reversal to debit accrued liabilities")
	}
	if reversal.Entries[1].AccountCode != "5100" || reversal.Entries[1].EntryType != domain.EntryTypeCredit {
		t.Error("expected reversal to credit the expense account")
	}

	updated, _ := f.accrualRepo.GetAccrual(context.Background(), "tenant-1", accrual.ID)
	if updated.Status != domain.AccrualStatusReversed {
		t.Errorf("expected reversed, got %s", updated.Status)
	}
}

func TestAccrualUseCase_CreatePrepayment_Months(t *testing.T) {
	f := newAccrualFixture()

	tests := []struct {
		name       string
		start, end time.Time
		wantMonths int
	}{
		{
			name:       "full year",
			start:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			wantMonths: 12,
		},
		{
			name:       "quarter",
			start:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:        time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			wantMonths: 3,
		},
		{
			name:       "under a month clamps to one",
			start:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			end:        time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			wantMonths: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prepayment, err := f.uc.CreatePrepayment(context.Background(), "tenant-1", usecase.CreatePrepaymentInput{
				AccountCode: "5200",
				Description: "insurance",
				Amount:      decimal.RequireFromString("1200.00"),
				PeriodStart: tt.start,
				PeriodEnd:   tt.end,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if prepayment.MonthsTotal != tt.wantMonths {
				t.Errorf("expected %d months, got %d", tt.wantMonths, prepayment.MonthsTotal)
			}
		})
	}
}

func TestAccrualUseCase_CreatePrepayment_ZeroAmount(t *testing.T) {
	f := newAccrualFixture()

	_, err := f.uc.CreatePrepayment(context.Background(), "tenant-1", usecase.CreatePrepaymentInput{
		AccountCode: "5200",
		Amount:      decimal.Zero,
		PeriodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestAccrualUseCase_AmortizePrepayments(t *testing.T) {
	f := newAccrualFixture()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	// 100.00 over 3 months: 33.33 + 33.33 + 33.34.
	prepayment, err := f.uc.CreatePrepayment(context.Background(), "tenant-1", usecase.CreatePrepaymentInput{
		AccountCode: "5200",
		Description: "software licence",
		Amount:      decimal.RequireFromString("100.00"),
		PeriodStart: start,
		PeriodEnd:   end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCharges := []string{"33.33", "33.33", "33.34"}
	for i, want := range wantCharges {
		periodEnd := start.AddDate(0, i+1, -1)
		n, err := f.uc.AmortizePrepayments(context.Background(), "tenant-1", periodEnd)
		if err != nil {
			t.Fatalf("month %d: unexpected error: %v", i+1, err)
		}
		if n != 1 {
			t.Fatalf("month %d: expected 1 amortization, got %d", i+1, n)
		}

		charge := f.poster.Posted[len(f.poster.Posted)-1]
		if !charge.Entries[0].Amount.Equal(decimal.RequireFromString(want)) {
			t.Errorf("month %d: expected charge %s, got %s", i+1, want, charge.Entries[0].Amount)
		}
		if charge.Entries[1].AccountCode != "1300" {
			t.Errorf("month %d: expected credit against prepayments asset", i+1)
		}
	}

	updated, _ := f.accrualRepo.GetPrepayment(context.Background(), "tenant-1", prepayment.ID)
	if updated.Status != domain.PrepaymentStatusAmortized {
		t.Errorf("expected amortized after final month, got %s", updated.Status)
	}
	if updated.MonthsAmortized != 3 {
		t.Errorf("expected 3 months amortized, got %d", updated.MonthsAmortized)
	}

	// Nothing left to charge.
	n, err := f.uc.AmortizePrepayments(context.Background(), "tenant-1", end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no further amortization, got %d", n)
	}
}
