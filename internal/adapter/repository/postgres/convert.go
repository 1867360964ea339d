package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/usecase"
)

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querierFor unwraps a use-case transaction into its pgx.Tx, falling
// back to the pool for standalone statements.
func querierFor(pool *pgxpool.Pool, tx usecase.Transaction) querier {
	if pgTx, ok := tx.(*Tx); ok && pgTx != nil {
		return pgTx.PgxTx()
	}
	return pool
}

// decimalToNumeric converts a decimal.Decimal to pgtype.Numeric.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.String())
	return n
}

// numericToDecimal converts a pgtype.Numeric to decimal.Decimal.
func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(n.Int.String())
	if err != nil {
		return decimal.Zero
	}
	return d.Shift(n.Exp)
}

// decimalPtrToNumeric converts an optional decimal to a nullable numeric.
func decimalPtrToNumeric(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return decimalToNumeric(*d)
}

// numericToDecimalPtr converts a nullable numeric back to an optional
// decimal.
func numericToDecimalPtr(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := numericToDecimal(n)
	return &d
}
