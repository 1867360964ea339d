package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

const entryColumns = `
	id, tenant_id, entity_id, entry_type, account_code, account_name,
	amount, currency, description, transaction_date, tax_amount, tax_rate,
	document_id, transaction_ref, reconciled, reconciled_with, metadata,
	created_by, created_at
`

// EntryRepository implements usecase.EntryRepository on PostgreSQL.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new entry repository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// CreateIdempotent inserts the entry unless an identical referenced one
// already exists. Uniqueness is enforced by a partial unique index on
// (tenant_id, account_code, entry_type, amount, transaction_ref) where
// transaction_ref is set, so concurrent replays race safely.
func (r *EntryRepository) CreateIdempotent(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) (string, bool, error) {
	q := querierFor(r.pool, tx)

	metadataJSON, err := marshalMetadata(entry.Metadata)
	if err != nil {
		return "", false, err
	}

	query := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (tenant_id, account_code, entry_type, amount, transaction_ref)
			WHERE transaction_ref IS NOT NULL
		DO NOTHING
		RETURNING id
	`

	var id string
	err = q.QueryRow(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.EntityID,
		entry.EntryType,
		entry.AccountCode,
		entry.AccountName,
		decimalToNumeric(entry.Amount),
		entry.Currency,
		entry.Description,
		entry.TransactionDate,
		decimalPtrToNumeric(entry.TaxAmount),
		decimalPtrToNumeric(entry.TaxRate),
		entry.DocumentID,
		entry.TransactionRef,
		entry.Reconciled,
		entry.ReconciledWith,
		metadataJSON,
		entry.CreatedBy,
		entry.CreatedAt,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("insert ledger entry: %w", err)
	}

	// The index swallowed the insert; read the surviving row.
	err = q.QueryRow(ctx, `
		SELECT id FROM ledger_entries
		WHERE tenant_id = $1 AND account_code = $2 AND entry_type = $3
		  AND amount = $4 AND transaction_ref = $5
	`, entry.TenantID, entry.AccountCode, entry.EntryType,
		decimalToNumeric(entry.Amount), entry.TransactionRef,
	).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("read surviving ledger entry: %w", err)
	}

	return id, false, nil
}

// GetByID retrieves a single entry.
func (r *EntryRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.LedgerEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	entry, err := scanEntryRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// List retrieves entries matching the filter, newest first, plus the
// total match count before pagination.
func (r *EntryRepository) List(ctx context.Context, tenantID string, filter usecase.EntryFilter) ([]*domain.LedgerEntry, int, error) {
	where := ` WHERE tenant_id = $1`
	args := []any{tenantID}
	argPos := 2

	if filter.StartDate != nil {
		where += fmt.Sprintf(` AND transaction_date >= $%d`, argPos)
		args = append(args, *filter.StartDate)
		argPos++
	}
	if filter.EndDate != nil {
		where += fmt.Sprintf(` AND transaction_date <= $%d`, argPos)
		args = append(args, *filter.EndDate)
		argPos++
	}
	if filter.AccountCode != "" {
		where += fmt.Sprintf(` AND account_code = $%d`, argPos)
		args = append(args, filter.AccountCode)
		argPos++
	}
	if filter.EntryType != "" {
		where += fmt.Sprintf(` AND entry_type = $%d`, argPos)
		args = append(args, filter.EntryType)
		argPos++
	}
	if filter.Reconciled != nil {
		where += fmt.Sprintf(` AND reconciled = $%d`, argPos)
		args = append(args, *filter.Reconciled)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ledger_entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries` + where +
		` ORDER BY transaction_date DESC, id DESC`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	entries, err := r.queryEntries(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// SumAccount returns raw debit/credit totals for one account, optionally
// cut off at asOf (inclusive).
func (r *EntryRepository) SumAccount(ctx context.Context, tenantID, accountCode string, asOf *time.Time) (usecase.AccountSums, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'credit'), 0),
			COUNT(*)
		FROM ledger_entries
		WHERE tenant_id = $1 AND account_code = $2
	`
	args := []any{tenantID, accountCode}
	if asOf != nil {
		query += ` AND transaction_date <= $3`
		args = append(args, *asOf)
	}

	return r.scanSums(ctx, query, args...)
}

// SumPeriod returns raw debit/credit totals across all accounts in a
// date range.
func (r *EntryRepository) SumPeriod(ctx context.Context, tenantID string, start, end time.Time) (usecase.AccountSums, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'credit'), 0),
			COUNT(*)
		FROM ledger_entries
		WHERE tenant_id = $1 AND transaction_date >= $2 AND transaction_date <= $3
	`

	return r.scanSums(ctx, query, tenantID, start, end)
}

// SumByPrefix totals entries of one direction whose account code starts
// with any of the prefixes, optionally scoped to one entity.
func (r *EntryRepository) SumByPrefix(ctx context.Context, tenantID string, entityID *string, prefixes []string, entryType domain.EntryType, start, end time.Time) (decimal.Decimal, error) {
	if len(prefixes) == 0 {
		return decimal.Zero, nil
	}

	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE tenant_id = $1 AND entry_type = $2
		  AND transaction_date >= $3 AND transaction_date <= $4
	`
	args := []any{tenantID, entryType, start, end}
	argPos := 5

	if entityID != nil {
		query += fmt.Sprintf(` AND entity_id = $%d`, argPos)
		args = append(args, *entityID)
		argPos++
	}

	query += ` AND (`
	for i, prefix := range prefixes {
		if i > 0 {
			query += ` OR `
		}
		query += fmt.Sprintf(`account_code LIKE $%d || '%%'`, argPos)
		args = append(args, prefix)
		argPos++
	}
	query += `)`

	var sum pgtype.Numeric
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum entries by prefix: %w", err)
	}

	return numericToDecimal(sum), nil
}

// TrialBalance returns per-account debit and credit totals for a period,
// ordered by account code.
func (r *EntryRepository) TrialBalance(ctx context.Context, tenantID string, start, end time.Time) ([]usecase.TrialBalanceRow, error) {
	query := `
		SELECT
			account_code,
			MIN(account_name),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'debit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'credit'), 0)
		FROM ledger_entries
		WHERE tenant_id = $1 AND transaction_date >= $2 AND transaction_date <= $3
		GROUP BY account_code
		ORDER BY account_code
	`

	rows, err := r.pool.Query(ctx, query, tenantID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query trial balance: %w", err)
	}
	defer rows.Close()

	var result []usecase.TrialBalanceRow
	for rows.Next() {
		var row usecase.TrialBalanceRow
		var debits, credits pgtype.Numeric
		if err := rows.Scan(&row.AccountCode, &row.AccountName, &debits, &credits); err != nil {
			return nil, fmt.Errorf("scan trial balance row: %w", err)
		}
		row.DebitTotal = numericToDecimal(debits)
		row.CreditTotal = numericToDecimal(credits)
		result = append(result, row)
	}

	return result, rows.Err()
}

// MarkReconciled flags an entry as reconciled against another.
func (r *EntryRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, tenantID, id, withID string) error {
	q := querierFor(r.pool, tx)

	tag, err := q.Exec(ctx, `
		UPDATE ledger_entries
		SET reconciled = TRUE, reconciled_with = $3
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id, withID)
	if err != nil {
		return fmt.Errorf("mark entry reconciled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// ListUnreconciled retrieves unreconciled entries in a date range.
func (r *EntryRepository) ListUnreconciled(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.LedgerEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE tenant_id = $1 AND NOT reconciled
		  AND transaction_date >= $2 AND transaction_date <= $3
		ORDER BY account_code, transaction_date, id
	`, tenantID, start, end)
}

// FindSimilar retrieves candidate entries for duplicate scoring. Non-nil
// query fields are ANDed.
func (r *EntryRepository) FindSimilar(ctx context.Context, tenantID string, q usecase.SimilarEntryQuery) ([]*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE tenant_id = $1`
	args := []any{tenantID}
	argPos := 2

	if q.AccountCode != nil {
		query += fmt.Sprintf(` AND account_code = $%d`, argPos)
		args = append(args, *q.AccountCode)
		argPos++
	}
	if q.AmountFrom != nil {
		query += fmt.Sprintf(` AND amount >= $%d`, argPos)
		args = append(args, decimalToNumeric(*q.AmountFrom))
		argPos++
	}
	if q.AmountTo != nil {
		query += fmt.Sprintf(` AND amount <= $%d`, argPos)
		args = append(args, decimalToNumeric(*q.AmountTo))
		argPos++
	}
	if q.DateFrom != nil {
		query += fmt.Sprintf(` AND transaction_date >= $%d`, argPos)
		args = append(args, *q.DateFrom)
		argPos++
	}
	if q.DateTo != nil {
		query += fmt.Sprintf(` AND transaction_date <= $%d`, argPos)
		args = append(args, *q.DateTo)
		argPos++
	}
	if q.DocumentID != nil {
		query += fmt.Sprintf(` AND document_id = $%d`, argPos)
		args = append(args, *q.DocumentID)
		argPos++
	}
	if q.Description != nil {
		query += fmt.Sprintf(` AND description = $%d`, argPos)
		args = append(args, *q.Description)
		argPos++
	}

	query += ` ORDER BY transaction_date DESC, id`

	return r.queryEntries(ctx, query, args...)
}

// ListForeignCurrency retrieves entries in a date range whose currency
// differs from the base currency.
func (r *EntryRepository) ListForeignCurrency(ctx context.Context, tenantID, baseCurrency string, start, end time.Time) ([]*domain.LedgerEntry, error) {
	return r.queryEntries(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE tenant_id = $1 AND currency <> $2
		  AND transaction_date >= $3 AND transaction_date <= $4
		ORDER BY transaction_date, id
	`, tenantID, baseCurrency, start, end)
}

func (r *EntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry
	for rows.Next() {
		entry, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *EntryRepository) scanSums(ctx context.Context, query string, args ...any) (usecase.AccountSums, error) {
	var debits, credits pgtype.Numeric
	var sums usecase.AccountSums

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&debits, &credits, &sums.Count); err != nil {
		return usecase.AccountSums{}, fmt.Errorf("sum ledger entries: %w", err)
	}

	sums.Debits = numericToDecimal(debits)
	sums.Credits = numericToDecimal(credits)
	return sums, nil
}

func scanEntryRow(row pgx.Row) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var amount, taxAmount, taxRate pgtype.Numeric
	var metadataJSON []byte

	err := row.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.EntityID,
		&entry.EntryType,
		&entry.AccountCode,
		&entry.AccountName,
		&amount,
		&entry.Currency,
		&entry.Description,
		&entry.TransactionDate,
		&taxAmount,
		&taxRate,
		&entry.DocumentID,
		&entry.TransactionRef,
		&entry.Reconciled,
		&entry.ReconciledWith,
		&metadataJSON,
		&entry.CreatedBy,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Amount = numericToDecimal(amount)
	entry.TaxAmount = numericToDecimalPtr(taxAmount)
	entry.TaxRate = numericToDecimalPtr(taxRate)

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal entry metadata: %w", err)
		}
	}

	return &entry, nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal entry metadata: %w", err)
	}
	return data, nil
}
