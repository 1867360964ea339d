package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain"
)

const chartColumns = `
	id, tenant_id, code, name, type, parent_code, is_active, created_at, updated_at
`

// ChartRepository implements usecase.ChartRepository on PostgreSQL.
type ChartRepository struct {
	pool *pgxpool.Pool
}

// NewChartRepository creates a new chart-of-accounts repository.
func NewChartRepository(pool *pgxpool.Pool) *ChartRepository {
	return &ChartRepository{pool: pool}
}

// Create inserts a chart account. Code is unique per tenant.
func (r *ChartRepository) Create(ctx context.Context, account *domain.ChartAccount) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chart_accounts (`+chartColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		account.ID,
		account.TenantID,
		account.Code,
		account.Name,
		account.Type,
		account.ParentCode,
		account.IsActive,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chart account: %w", err)
	}

	return nil
}

// GetByCode retrieves an account by its code.
func (r *ChartRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.ChartAccount, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+chartColumns+`
		FROM chart_accounts
		WHERE tenant_id = $1 AND code = $2
	`, tenantID, code)

	account, err := scanChartRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return account, nil
}

// List retrieves accounts for a tenant ordered by code.
func (r *ChartRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.ChartAccount, error) {
	return r.queryAccounts(ctx, `
		SELECT `+chartColumns+`
		FROM chart_accounts
		WHERE tenant_id = $1
		ORDER BY code
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
}

// ListByType retrieves all accounts of one type ordered by code.
func (r *ChartRepository) ListByType(ctx context.Context, tenantID string, accountType domain.AccountType) ([]*domain.ChartAccount, error) {
	return r.queryAccounts(ctx, `
		SELECT `+chartColumns+`
		FROM chart_accounts
		WHERE tenant_id = $1 AND type = $2
		ORDER BY code
	`, tenantID, accountType)
}

func (r *ChartRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]*domain.ChartAccount, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chart accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.ChartAccount
	for rows.Next() {
		account, err := scanChartRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanChartRow(row pgx.Row) (*domain.ChartAccount, error) {
	var account domain.ChartAccount
	err := row.Scan(
		&account.ID,
		&account.TenantID,
		&account.Code,
		&account.Name,
		&account.Type,
		&account.ParentCode,
		&account.IsActive,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &account, nil
}
