package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

// IntercompanyRepository implements usecase.IntercompanyRepository on
// PostgreSQL.
type IntercompanyRepository struct {
	pool *pgxpool.Pool
}

// NewIntercompanyRepository creates a new intercompany repository.
func NewIntercompanyRepository(pool *pgxpool.Pool) *IntercompanyRepository {
	return &IntercompanyRepository{pool: pool}
}

// Create inserts an intercompany transaction.
func (r *IntercompanyRepository) Create(ctx context.Context, txn *domain.IntercompanyTransaction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO intercompany_transactions (
			id, tenant_id, from_entity_id, to_entity_id, amount, currency,
			description, transaction_date, eliminated, eliminated_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		txn.ID,
		txn.TenantID,
		txn.FromEntityID,
		txn.ToEntityID,
		decimalToNumeric(txn.Amount),
		txn.Currency,
		txn.Description,
		txn.TransactionDate,
		txn.Eliminated,
		txn.EliminatedAt,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert intercompany transaction: %w", err)
	}

	return nil
}

// ListPending retrieves uneliminated transactions in a date range where
// both parties are in the consolidated entity set.
func (r *IntercompanyRepository) ListPending(ctx context.Context, tenantID string, entityIDs []string, start, end time.Time) ([]*domain.IntercompanyTransaction, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, from_entity_id, to_entity_id, amount, currency,
		       description, transaction_date, eliminated, eliminated_at, created_at
		FROM intercompany_transactions
		WHERE tenant_id = $1 AND NOT eliminated
		  AND transaction_date >= $2 AND transaction_date <= $3
		  AND from_entity_id = ANY($4) AND to_entity_id = ANY($4)
		ORDER BY transaction_date, id
	`, tenantID, start, end, entityIDs)
	if err != nil {
		return nil, fmt.Errorf("query intercompany transactions: %w", err)
	}
	defer rows.Close()

	var txns []*domain.IntercompanyTransaction
	for rows.Next() {
		var txn domain.IntercompanyTransaction
		var amount pgtype.Numeric
		err := rows.Scan(
			&txn.ID,
			&txn.TenantID,
			&txn.FromEntityID,
			&txn.ToEntityID,
			&amount,
			&txn.Currency,
			&txn.Description,
			&txn.TransactionDate,
			&txn.Eliminated,
			&txn.EliminatedAt,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan intercompany transaction: %w", err)
		}
		txn.Amount = numericToDecimal(amount)
		txns = append(txns, &txn)
	}

	return txns, rows.Err()
}

// MarkEliminated flags transactions as eliminated. Already-eliminated
// rows are left untouched so a re-run cannot double-count.
func (r *IntercompanyRepository) MarkEliminated(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	q := querierFor(r.pool, tx)

	_, err := q.Exec(ctx, `
		UPDATE intercompany_transactions
		SET eliminated = TRUE, eliminated_at = $3
		WHERE tenant_id = $1 AND id = ANY($2) AND NOT eliminated
	`, tenantID, ids, at)
	if err != nil {
		return fmt.Errorf("mark intercompany transactions eliminated: %w", err)
	}

	return nil
}
