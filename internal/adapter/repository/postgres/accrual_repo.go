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

const accrualColumns = `
	id, tenant_id, account_code, description, amount, currency,
	period_start, period_end, status, transaction_id, created_at, updated_at
`

const prepaymentColumns = `
	id, tenant_id, account_code, description, amount, currency,
	period_start, period_end, status, months_total, months_amortized,
	created_at, updated_at
`

// AccrualRepository implements usecase.AccrualRepository on PostgreSQL.
type AccrualRepository struct {
	pool *pgxpool.Pool
}

// NewAccrualRepository creates a new accrual repository.
func NewAccrualRepository(pool *pgxpool.Pool) *AccrualRepository {
	return &AccrualRepository{pool: pool}
}

// CreateAccrual inserts an accrual.
func (r *AccrualRepository) CreateAccrual(ctx context.Context, accrual *domain.Accrual) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accruals (`+accrualColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		accrual.ID,
		accrual.TenantID,
		accrual.AccountCode,
		accrual.Description,
		decimalToNumeric(accrual.Amount),
		accrual.Currency,
		accrual.PeriodStart,
		accrual.PeriodEnd,
		accrual.Status,
		accrual.TransactionID,
		accrual.CreatedAt,
		accrual.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert accrual: %w", err)
	}

	return nil
}

// GetAccrual retrieves an accrual.
func (r *AccrualRepository) GetAccrual(ctx context.Context, tenantID, id string) (*domain.Accrual, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accrualColumns+`
		FROM accruals
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	accrual, err := scanAccrualRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccrualNotFound
	}
	if err != nil {
		return nil, err
	}

	return accrual, nil
}

// ListAccruals retrieves accruals with the given status whose period
// ends on or before periodEnd.
func (r *AccrualRepository) ListAccruals(ctx context.Context, tenantID string, status domain.AccrualStatus, periodEnd time.Time) ([]*domain.Accrual, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accrualColumns+`
		FROM accruals
		WHERE tenant_id = $1 AND status = $2 AND period_end <= $3
		ORDER BY period_end, id
	`, tenantID, status, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("query accruals: %w", err)
	}
	defer rows.Close()

	var accruals []*domain.Accrual
	for rows.Next() {
		accrual, err := scanAccrualRow(rows)
		if err != nil {
			return nil, err
		}
		accruals = append(accruals, accrual)
	}

	return accruals, rows.Err()
}

// UpdateAccrual persists an accrual's status and transaction link.
func (r *AccrualRepository) UpdateAccrual(ctx context.Context, accrual *domain.Accrual) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accruals
		SET status = $3, transaction_id = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2
	`, accrual.TenantID, accrual.ID, accrual.Status, accrual.TransactionID, accrual.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update accrual: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccrualNotFound
	}

	return nil
}

// CreatePrepayment inserts a prepayment.
func (r *AccrualRepository) CreatePrepayment(ctx context.Context, prepayment *domain.Prepayment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prepayments (`+prepaymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		prepayment.ID,
		prepayment.TenantID,
		prepayment.AccountCode,
		prepayment.Description,
		decimalToNumeric(prepayment.Amount),
		prepayment.Currency,
		prepayment.PeriodStart,
		prepayment.PeriodEnd,
		prepayment.Status,
		prepayment.MonthsTotal,
		prepayment.MonthsAmortized,
		prepayment.CreatedAt,
		prepayment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prepayment: %w", err)
	}

	return nil
}

// GetPrepayment retrieves a prepayment.
func (r *AccrualRepository) GetPrepayment(ctx context.Context, tenantID, id string) (*domain.Prepayment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+prepaymentColumns+`
		FROM prepayments
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	prepayment, err := scanPrepaymentRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPrepaymentNotFound
	}
	if err != nil {
		return nil, err
	}

	return prepayment, nil
}

// ListOpenPrepayments retrieves prepayments with months still to charge
// whose amortization window has started by periodEnd.
func (r *AccrualRepository) ListOpenPrepayments(ctx context.Context, tenantID string, periodEnd time.Time) ([]*domain.Prepayment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prepaymentColumns+`
		FROM prepayments
		WHERE tenant_id = $1 AND months_amortized < months_total
		  AND period_start <= $2
		ORDER BY period_start, id
	`, tenantID, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("query prepayments: %w", err)
	}
	defer rows.Close()

	var prepayments []*domain.Prepayment
	for rows.Next() {
		prepayment, err := scanPrepaymentRow(rows)
		if err != nil {
			return nil, err
		}
		prepayments = append(prepayments, prepayment)
	}

	return prepayments, rows.Err()
}

// UpdatePrepayment persists a prepayment's amortization progress.
func (r *AccrualRepository) UpdatePrepayment(ctx context.Context, prepayment *domain.Prepayment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE prepayments
		SET status = $3, months_amortized = $4, updated_at = $5
		WHERE tenant_id = $1 AND id = $2
	`, prepayment.TenantID, prepayment.ID, prepayment.Status, prepayment.MonthsAmortized, prepayment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update prepayment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPrepaymentNotFound
	}

	return nil
}

func scanAccrualRow(row pgx.Row) (*domain.Accrual, error) {
	var accrual domain.Accrual
	var amount pgtype.Numeric
	err := row.Scan(
		&accrual.ID,
		&accrual.TenantID,
		&accrual.AccountCode,
		&accrual.Description,
		&amount,
		&accrual.Currency,
		&accrual.PeriodStart,
		&accrual.PeriodEnd,
		&accrual.Status,
		&accrual.TransactionID,
		&accrual.CreatedAt,
		&accrual.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	accrual.Amount = numericToDecimal(amount)
	return &accrual, nil
}

func scanPrepaymentRow(row pgx.Row) (*domain.Prepayment, error) {
	var prepayment domain.Prepayment
	var amount pgtype.Numeric
	err := row.Scan(
		&prepayment.ID,
		&prepayment.TenantID,
		&prepayment.AccountCode,
		&prepayment.Description,
		&amount,
		&prepayment.Currency,
		&prepayment.PeriodStart,
		&prepayment.PeriodEnd,
		&prepayment.Status,
		&prepayment.MonthsTotal,
		&prepayment.MonthsAmortized,
		&prepayment.CreatedAt,
		&prepayment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	prepayment.Amount = numericToDecimal(amount)
	return &prepayment, nil
}
