package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

const pgErrUniqueViolation = "23505"

const closeColumns = `
	id, tenant_id, entity_id, period_start, period_end, status,
	locked_at, locked_by, closed_at, closed_by, reports, created_at, updated_at
`

const taskColumns = `
	id, close_id, task_type, priority, status, blocker_reason, result_data,
	created_at, updated_at
`

// CloseRepository implements usecase.CloseRepository on PostgreSQL.
type CloseRepository struct {
	pool *pgxpool.Pool
}

// NewCloseRepository creates a new period close repository.
func NewCloseRepository(pool *pgxpool.Pool) *CloseRepository {
	return &CloseRepository{pool: pool}
}

// Create inserts a period close. A unique index on
// (tenant_id, entity_id, period_start, period_end) makes the insert the
// arbiter of concurrent creates; the loser gets ErrDuplicateClose.
func (r *CloseRepository) Create(ctx context.Context, tx usecase.Transaction, close *domain.PeriodClose) error {
	q := querierFor(r.pool, tx)

	_, err := q.Exec(ctx, `
		INSERT INTO period_closes (`+closeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		close.ID,
		close.TenantID,
		close.EntityID,
		close.PeriodStart,
		close.PeriodEnd,
		close.Status,
		close.LockedAt,
		close.LockedBy,
		close.ClosedAt,
		close.ClosedBy,
		close.Reports,
		close.CreatedAt,
		close.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			return domain.ErrDuplicateClose
		}
		return fmt.Errorf("insert period close: %w", err)
	}

	return nil
}

// CreateTasks inserts the checklist tasks for a close.
func (r *CloseRepository) CreateTasks(ctx context.Context, tx usecase.Transaction, tasks []*domain.CloseTask) error {
	q := querierFor(r.pool, tx)

	for _, task := range tasks {
		resultJSON, err := marshalResultData(task.ResultData)
		if err != nil {
			return err
		}

		_, err = q.Exec(ctx, `
			INSERT INTO close_tasks (`+taskColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			task.ID,
			task.CloseID,
			task.Type,
			task.Priority,
			task.Status,
			task.BlockerReason,
			resultJSON,
			task.CreatedAt,
			task.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert close task %s: %w", task.Type, err)
		}
	}

	return nil
}

// GetByID retrieves a period close.
func (r *CloseRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.PeriodClose, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+closeColumns+`
		FROM period_closes
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)

	close, err := scanCloseRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPeriodCloseNotFound
	}
	if err != nil {
		return nil, err
	}

	return close, nil
}

// GetByPeriod retrieves the close for an exact period, scoped to one
// entity or to the tenant-wide close when entityID is nil.
func (r *CloseRepository) GetByPeriod(ctx context.Context, tenantID string, entityID *string, periodStart, periodEnd time.Time) (*domain.PeriodClose, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+closeColumns+`
		FROM period_closes
		WHERE tenant_id = $1 AND entity_id IS NOT DISTINCT FROM $2
		  AND period_start = $3 AND period_end = $4
	`, tenantID, entityID, periodStart, periodEnd)

	close, err := scanCloseRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPeriodCloseNotFound
	}
	if err != nil {
		return nil, err
	}

	return close, nil
}

// UpdateStatus persists the close's status and lifecycle fields.
func (r *CloseRepository) UpdateStatus(ctx context.Context, close *domain.PeriodClose) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE period_closes
		SET status = $3, locked_at = $4, locked_by = $5,
		    closed_at = $6, closed_by = $7, reports = $8, updated_at = $9
		WHERE tenant_id = $1 AND id = $2
	`,
		close.TenantID,
		close.ID,
		close.Status,
		close.LockedAt,
		close.LockedBy,
		close.ClosedAt,
		close.ClosedBy,
		close.Reports,
		close.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update period close: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodCloseNotFound
	}

	return nil
}

// ListTasks retrieves a close's tasks in priority order.
func (r *CloseRepository) ListTasks(ctx context.Context, closeID string) ([]*domain.CloseTask, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM close_tasks
		WHERE close_id = $1
		ORDER BY priority
	`, closeID)
	if err != nil {
		return nil, fmt.Errorf("query close tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.CloseTask
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTask retrieves one task of a close.
func (r *CloseRepository) GetTask(ctx context.Context, closeID, taskID string) (*domain.CloseTask, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM close_tasks
		WHERE close_id = $1 AND id = $2
	`, closeID, taskID)

	task, err := scanTaskRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTask persists a task's status, blocker and results.
func (r *CloseRepository) UpdateTask(ctx context.Context, task *domain.CloseTask) error {
	resultJSON, err := marshalResultData(task.ResultData)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE close_tasks
		SET status = $3, blocker_reason = $4, result_data = $5, updated_at = $6
		WHERE close_id = $1 AND id = $2
	`, task.CloseID, task.ID, task.Status, task.BlockerReason, resultJSON, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update close task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// CreateAlerts inserts variance alerts.
func (r *CloseRepository) CreateAlerts(ctx context.Context, alerts []*domain.VarianceAlert) error {
	for _, alert := range alerts {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO variance_alerts (
				id, close_id, account_code, severity,
				current_value, prior_value, drift, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			alert.ID,
			alert.CloseID,
			alert.AccountCode,
			alert.Severity,
			decimalToNumeric(alert.CurrentValue),
			decimalToNumeric(alert.PriorValue),
			decimalToNumeric(alert.Drift),
			alert.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert variance alert: %w", err)
		}
	}

	return nil
}

// ListAlerts retrieves a close's variance alerts ordered by account code.
func (r *CloseRepository) ListAlerts(ctx context.Context, closeID string) ([]*domain.VarianceAlert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, close_id, account_code, severity,
		       current_value, prior_value, drift, created_at
		FROM variance_alerts
		WHERE close_id = $1
		ORDER BY account_code
	`, closeID)
	if err != nil {
		return nil, fmt.Errorf("query variance alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*domain.VarianceAlert
	for rows.Next() {
		var alert domain.VarianceAlert
		var current, prior, drift pgtype.Numeric
		err := rows.Scan(
			&alert.ID,
			&alert.CloseID,
			&alert.AccountCode,
			&alert.Severity,
			&current,
			&prior,
			&drift,
			&alert.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan variance alert: %w", err)
		}
		alert.CurrentValue = numericToDecimal(current)
		alert.PriorValue = numericToDecimal(prior)
		alert.Drift = numericToDecimal(drift)
		alerts = append(alerts, &alert)
	}

	return alerts, rows.Err()
}

func scanCloseRow(row pgx.Row) (*domain.PeriodClose, error) {
	var close domain.PeriodClose
	err := row.Scan(
		&close.ID,
		&close.TenantID,
		&close.EntityID,
		&close.PeriodStart,
		&close.PeriodEnd,
		&close.Status,
		&close.LockedAt,
		&close.LockedBy,
		&close.ClosedAt,
		&close.ClosedBy,
		&close.Reports,
		&close.CreatedAt,
		&close.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &close, nil
}

func scanTaskRow(row pgx.Row) (*domain.CloseTask, error) {
	var task domain.CloseTask
	var resultJSON []byte
	err := row.Scan(
		&task.ID,
		&task.CloseID,
		&task.Type,
		&task.Priority,
		&task.Status,
		&task.BlockerReason,
		&resultJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &task.ResultData); err != nil {
			return nil, fmt.Errorf("unmarshal task result data: %w", err)
		}
	}

	return &task, nil
}

func marshalResultData(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal task result data: %w", err)
	}
	return data, nil
}
