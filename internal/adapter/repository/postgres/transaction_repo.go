package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository on
// PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// CreateIdempotent inserts the transaction record unless one with the
// same ref already exists. Uniqueness is enforced by a partial unique
// index on (tenant_id, transaction_ref) where transaction_ref is set,
// so replayed postings reuse the original record.
func (r *TransactionRepository) CreateIdempotent(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) (string, error) {
	q := querierFor(r.pool, tx)

	var id string
	err := q.QueryRow(ctx, `
		INSERT INTO transactions (id, tenant_id, description, transaction_date, transaction_ref, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (tenant_id, transaction_ref)
			WHERE transaction_ref IS NOT NULL
		DO NOTHING
		RETURNING id
	`, txn.ID, txn.TenantID, txn.Description, txn.TransactionDate, txn.TransactionRef, txn.CreatedBy, txn.CreatedAt).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("insert transaction: %w", err)
	}

	// The index swallowed the insert; read the surviving record.
	err = q.QueryRow(ctx, `
		SELECT id FROM transactions
		WHERE tenant_id = $1 AND transaction_ref = $2
	`, txn.TenantID, txn.TransactionRef).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("read surviving transaction: %w", err)
	}

	return id, nil
}

// GetByID retrieves a transaction record.
func (r *TransactionRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, description, transaction_date, transaction_ref, created_by, created_at
		FROM transactions
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(
		&txn.ID,
		&txn.TenantID,
		&txn.Description,
		&txn.TransactionDate,
		&txn.TransactionRef,
		&txn.CreatedBy,
		&txn.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}

	return &txn, nil
}
