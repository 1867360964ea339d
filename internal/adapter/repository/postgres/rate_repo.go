package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain"
)

// RateRepository implements usecase.RateRepository on PostgreSQL.
type RateRepository struct {
	pool *pgxpool.Pool
}

// NewRateRepository creates a new exchange rate repository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}

// Get retrieves a cached rate for an exact (pair, date, type) key.
// Rates are stored per calendar day.
func (r *RateRepository) Get(ctx context.Context, tenantID, from, to string, date time.Time, rateType domain.RateType) (*domain.ExchangeRate, error) {
	var rate domain.ExchangeRate
	var value pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, from_currency, to_currency, rate_date,
		       rate, rate_type, source, created_at
		FROM exchange_rates
		WHERE tenant_id = $1 AND from_currency = $2 AND to_currency = $3
		  AND rate_date = $4::date AND rate_type = $5
	`, tenantID, from, to, date, rateType).Scan(
		&rate.ID,
		&rate.TenantID,
		&rate.FromCurrency,
		&rate.ToCurrency,
		&rate.RateDate,
		&value,
		&rate.RateType,
		&rate.Source,
		&rate.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrRateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query exchange rate: %w", err)
	}

	rate.Rate = numericToDecimal(value)
	return &rate, nil
}

// Upsert stores a rate, replacing any previous value for the same
// (tenant, pair, date, type) key.
func (r *RateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO exchange_rates (
			id, tenant_id, from_currency, to_currency, rate_date,
			rate, rate_type, source, created_at
		) VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9)
		ON CONFLICT (tenant_id, from_currency, to_currency, rate_date, rate_type)
		DO UPDATE SET rate = EXCLUDED.rate, source = EXCLUDED.source
	`,
		rate.ID,
		rate.TenantID,
		rate.FromCurrency,
		rate.ToCurrency,
		rate.RateDate,
		decimalToNumeric(rate.Rate),
		rate.RateType,
		rate.Source,
		rate.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert exchange rate: %w", err)
	}

	return nil
}
