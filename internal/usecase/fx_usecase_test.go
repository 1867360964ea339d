package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
	"github.com/finbooks/finbooks/internal/usecase/mocks"
)

func newFXUseCase(rateRepo *mocks.MockRateRepository) *usecase.FXUseCase {
	return usecase.NewFXUseCase(rateRepo, mocks.NewMockIDGenerator(), zerolog.Nop(), 10, time.Millisecond)
}

func TestFXUseCase_GetExchangeRate_SameCurrency(t *testing.T) {
	rateRepo := mocks.NewMockRateRepository()
	uc := newFXUseCase(rateRepo)

	rate, err := uc.GetExchangeRate(context.Background(), "tenant-1", "GBP", "GBP", time.Now(), usecase.RateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected rate 1 for same currency, got %s", rate)
	}
}

func TestFXUseCase_GetExchangeRate_FetchAndCache(t *testing.T) {
	rateRepo := mocks.NewMockRateRepository()
	uc := newFXUseCase(rateRepo)

	calls := 0
	provider := mocks.NewMockRateProvider("ecb")
	provider.FetchRateFunc = func(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
		calls++
		return decimal.RequireFromString("1.1720"), nil
	}
	uc.RegisterProvider(provider)

	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	rate, err := uc.GetExchangeRate(context.Background(), "tenant-1", "EUR", "USD", date, usecase.RateOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("1.1720")) {
		t.Errorf("expected fetched rate, got %s", rate)
	}

	// Second lookup is served from the persisted cache.
	if _, err := uc.GetExchangeRate(context.Background(), "tenant-1", "EUR", "USD", date, usecase.RateOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 provider call, got %d", calls)
	}

	stored, err := rateRepo.Get(context.Background(), "tenant-1", "EUR", "USD", date, domain.RateTypeSpot)
	if err != nil {
		t.Fatalf("expected persisted spot rate: %v", err)
	}
	if stored.Source != "ecb" {
		t.Errorf("expected source ecb, got %s", stored.Source)
	}
}

func TestFXUseCase_GetExchangeRate_ForceRefresh(t *testing.T) {
	rateRepo := mocks.NewMockRateRepository()
	uc := newFXUseCase(rateRepo)

	calls := 0
	provider := mocks.NewMockRateProvider("ecb")
	provider.FetchRateFunc = func(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
		calls++
		return decimal.RequireFromString("0.8500"), nil
	}
	uc.RegisterProvider(provider)

	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if _, err := uc.GetExchangeRate(context.Background(), "tenant-1", "USD", "GBP", date, usecase.RateOptions{ForceRefresh: true}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("expected provider hit on every forced refresh, got %d calls", calls)
	}
}

func TestFXUseCase_GetExchangeRate_UnknownProvider(t *testing.T) {
	uc := newFXUseCase(mocks.NewMockRateRepository())

	_, err := uc.GetExchangeRate(context.Background(), "tenant-1", "EUR", "USD", time.Now(), usecase.RateOptions{Provider: "nope"})
	if !errors.Is(err, domain.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestFXUseCase_GetExchangeRate_ManualFallback(t *testing.T) {
	rateRepo := mocks.NewMockRateRepository()
	uc := newFXUseCase(rateRepo)

	provider := mocks.NewMockRateProvider("ecb")
	provider.FetchRateFunc = func(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("upstream down")
	}
	uc.RegisterProvider(provider)

	date := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	if err := uc.EnterManualRate(context.Background(), "tenant-1", "EUR", "USD", date, decimal.RequireFromString("1.1000")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Cap retries via the context so the fallback path is reached quickly.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rate, err := uc.GetExchangeRate(ctx, "tenant-1", "EUR", "USD", date, usecase.RateOptions{})
	if err != nil {
		t.Fatalf("expected manual fallback, got %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("1.1000")) {
		t.Errorf("expected manual rate 1.1000, got %s", rate)
	}
}

func TestFXUseCase_GetExchangeRate_NoFallbackAvailable(t *testing.T) {
	rateRepo := mocks.NewMockRateRepository()
	uc := newFXUseCase(rateRepo)

	provider := mocks.NewMockRateProvider("ecb")
	provider.FetchRateFunc = func(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
		return decimal.Zero, errors.New("upstream down")
	}
	uc.RegisterProvider(provider)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := uc.GetExchangeRate(ctx, "tenant-1", "EUR", "USD", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), usecase.RateOptions{})
	if !errors.Is(err, domain.ErrRateNotFound) {
		t.Errorf("expected ErrRateNotFound, got %v", err)
	}
}

func TestFXUseCase_EnterManualRate_Invalid(t *testing.T) {
	uc := newFXUseCase(mocks.NewMockRateRepository())

	err := uc.EnterManualRate(context.Background(), "tenant-1", "EUR", "USD", time.Now(), decimal.Zero)
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestFXUseCase_SyncExchangeRates(t *testing.T) {
	rateRepo := mocks.NewMockRateRepository()
	uc := newFXUseCase(rateRepo)

	provider := mocks.NewMockRateProvider("ecb")
	provider.FetchRateFunc = func(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
		return decimal.RequireFromString("1.2345"), nil
	}
	uc.RegisterProvider(provider)

	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)

	// Base currency itself is skipped as a target.
	result, err := uc.SyncExchangeRates(context.Background(), "tenant-1", "EUR", []string{"USD", "GBP", "EUR"}, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Synced != 6 {
		t.Errorf("expected 6 synced pairs (3 days x 2 targets), got %d", result.Synced)
	}
	if result.Failed != 0 {
		t.Errorf("expected 0 failures, got %d", result.Failed)
	}

	if _, err := rateRepo.Get(context.Background(), "tenant-1", "EUR", "GBP", to, domain.RateTypeSpot); err != nil {
		t.Errorf("expected persisted rate for final day: %v", err)
	}
}

func TestFXUseCase_SyncExchangeRates_InvalidRange(t *testing.T) {
	uc := newFXUseCase(mocks.NewMockRateRepository())

	day := time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC)
	_, err := uc.SyncExchangeRates(context.Background(), "tenant-1", "EUR", []string{"USD"}, day, day.AddDate(0, 0, -1))
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}
