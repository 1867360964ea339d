package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// DefaultRateProvider is used when a request names no provider.
const DefaultRateProvider = "ecb"

// FXUseCase resolves exchange rates from pluggable providers with a
// persisted per-tenant rate cache and a manual-rate fallback.
type FXUseCase struct {
	rateRepo   RateRepository
	providers  map[string]RateProvider
	idGen      IDGenerator
	logger     zerolog.Logger
	batchSize  int
	batchDelay time.Duration
}

// NewFXUseCase creates a new FXUseCase.
func NewFXUseCase(rateRepo RateRepository, idGen IDGenerator, logger zerolog.Logger, batchSize int, batchDelay time.Duration) *FXUseCase {
	if batchSize <= 0 {
		batchSize = 10
	}
	if batchDelay <= 0 {
		batchDelay = 100 * time.Millisecond
	}
	return &FXUseCase{
		rateRepo:   rateRepo,
		providers:  make(map[string]RateProvider),
		idGen:      idGen,
		logger:     logger,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// RegisterProvider makes a provider available by name.
func (uc *FXUseCase) RegisterProvider(p RateProvider) {
	uc.providers[p.Name()] = p
}

// RateOptions tune a single rate lookup.
type RateOptions struct {
	Provider     string
	ForceRefresh bool
}

// GetExchangeRate resolves from->to at date. Same-currency pairs
// short-circuit to 1.0 without touching any provider. Cached spot rates
// are served unless ForceRefresh is set; provider failures fall back to
// a manually entered rate before surfacing an error.
func (uc *FXUseCase) GetExchangeRate(ctx context.Context, tenantID, from, to string, date time.Time, opts RateOptions) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	if !opts.ForceRefresh {
		cached, err := uc.rateRepo.Get(ctx, tenantID, from, to, date, domain.RateTypeSpot)
		if err == nil {
			return cached.Rate, nil
		}
		if !errors.Is(err, domain.ErrRateNotFound) {
			return decimal.Zero, err
		}
	}

	name := opts.Provider
	if name == "" {
		name = DefaultRateProvider
	}

	provider, ok := uc.providers[name]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}

	rate, fetchErr := uc.fetchWithRetry(ctx, provider, from, to, date)
	if fetchErr != nil {
		uc.logger.Warn().
			Err(fetchErr).
			Str("provider", name).
			Str("from", from).
			Str("to", to).
			Msg("rate provider failed, trying manual fallback")

		manual, err := uc.rateRepo.Get(ctx, tenantID, from, to, date, domain.RateTypeManual)
		if err == nil {
			return manual.Rate, nil
		}

		return decimal.Zero, fmt.Errorf("%w: %s %s/%s at %s: %v",
			domain.ErrRateNotFound, name, from, to, date.Format("2006-01-02"), fetchErr)
	}

	persisted := &domain.ExchangeRate{
		ID:           uc.idGen.Generate(),
		TenantID:     tenantID,
		FromCurrency: from,
		ToCurrency:   to,
		RateDate:     date,
		Rate:         rate,
		RateType:     domain.RateTypeSpot,
		Source:       provider.Name(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.rateRepo.Upsert(ctx, persisted); err != nil {
		return decimal.Zero, err
	}

	return rate, nil
}

func (uc *FXUseCase) fetchWithRetry(ctx context.Context, provider RateProvider, from, to string, date time.Time) (decimal.Decimal, error) {
	var rate decimal.Decimal

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = 5 * time.Second

	err := backoff.Retry(func() error {
		var err error
		rate, err = provider.FetchRate(ctx, from, to, date)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
		}
		return nil
	}, backoff.WithContext(b, ctx))

	return rate, err
}

// GetRate implements RateSource for the consolidator.
func (uc *FXUseCase) GetRate(ctx context.Context, tenantID, from, to string, date time.Time) (decimal.Decimal, error) {
	return uc.GetExchangeRate(ctx, tenantID, from, to, date, RateOptions{})
}

// EnterManualRate stores a user-supplied rate used as provider fallback.
func (uc *FXUseCase) EnterManualRate(ctx context.Context, tenantID, from, to string, date time.Time, rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}

	return uc.rateRepo.Upsert(ctx, &domain.ExchangeRate{
		ID:           uc.idGen.Generate(),
		TenantID:     tenantID,
		FromCurrency: from,
		ToCurrency:   to,
		RateDate:     date,
		Rate:         rate,
		RateType:     domain.RateTypeManual,
		Source:       "manual",
		CreatedAt:    time.Now().UTC(),
	})
}

// SyncResult summarizes a rate sync run.
type SyncResult struct {
	Synced int
	Failed int
}

type ratePair struct {
	from string
	to   string
	date time.Time
}

// SyncExchangeRates fetches and caches every day x target currency pair
// in the range. Pairs run sequentially in fixed-size batches with an
// inter-batch delay to respect provider rate limits; a single pair
// failure never aborts the run.
func (uc *FXUseCase) SyncExchangeRates(ctx context.Context, tenantID, base string, targets []string, from, to time.Time) (*SyncResult, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidPeriod
	}

	var pairs []ratePair
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		for _, target := range targets {
			if target == base {
				continue
			}
			pairs = append(pairs, ratePair{from: base, to: target, date: day})
		}
	}

	result := &SyncResult{}
	for i := 0; i < len(pairs); i += uc.batchSize {
		end := i + uc.batchSize
		if end > len(pairs) {
			end = len(pairs)
		}

		for _, p := range pairs[i:end] {
			if _, err := uc.GetExchangeRate(ctx, tenantID, p.from, p.to, p.date, RateOptions{}); err != nil {
				uc.logger.Warn().
					Err(err).
					Str("from", p.from).
					Str("to", p.to).
					Time("date", p.date).
					Msg("rate sync pair failed")
				result.Failed++
				continue
			}
			result.Synced++
		}

		if end < len(pairs) {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(uc.batchDelay):
			}
		}
	}

	return result, nil
}
