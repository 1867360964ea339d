package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// TaskEngine automates one close task type.
type TaskEngine interface {
	Run(ctx context.Context, close *domain.PeriodClose) (map[string]any, error)
}

// CloseUseCase drives the period-close state machine and its task
// checklist.
type CloseUseCase struct {
	txManager TransactionManager
	closeRepo CloseRepository
	entryRepo EntryRepository
	chartRepo ChartRepository
	idGen     IDGenerator
	locker    Locker
	engines   map[domain.TaskType]TaskEngine
	logger    zerolog.Logger
}

// NewCloseUseCase creates a new CloseUseCase. Engines for automatable
// task types are registered separately; depreciation is expected to
// come from an external engine.
func NewCloseUseCase(
	txManager TransactionManager,
	closeRepo CloseRepository,
	entryRepo EntryRepository,
	chartRepo ChartRepository,
	idGen IDGenerator,
	locker Locker,
	logger zerolog.Logger,
) *CloseUseCase {
	return &CloseUseCase{
		txManager: txManager,
		closeRepo: closeRepo,
		entryRepo: entryRepo,
		chartRepo: chartRepo,
		idGen:     idGen,
		locker:    locker,
		engines:   make(map[domain.TaskType]TaskEngine),
		logger:    logger,
	}
}

// RegisterEngine attaches an automation engine to a task type.
func (uc *CloseUseCase) RegisterEngine(taskType domain.TaskType, engine TaskEngine) {
	uc.engines[taskType] = engine
}

// CreatePeriodClose creates a close with its fixed ordered task
// checklist, or returns the existing close for the same
// (tenant, entity, start, end).
func (uc *CloseUseCase) CreatePeriodClose(ctx context.Context, tenantID string, entityID *string, periodStart, periodEnd time.Time) (*domain.PeriodClose, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	if !periodEnd.After(periodStart) {
		return nil, domain.ErrInvalidPeriod
	}

	existing, err := uc.closeRepo.GetByPeriod(ctx, tenantID, entityID, periodStart, periodEnd)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrPeriodCloseNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	close := &domain.PeriodClose{
		ID:          uc.idGen.Generate(),
		TenantID:    tenantID,
		EntityID:    entityID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Status:      domain.CloseStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tasks := make([]*domain.CloseTask, 0, len(domain.CloseTaskOrder))
	for i, taskType := range domain.CloseTaskOrder {
		tasks = append(tasks, &domain.CloseTask{
			ID:        uc.idGen.Generate(),
			CloseID:   close.ID,
			Type:      taskType,
			Priority:  i + 1,
			Status:    domain.TaskStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.closeRepo.Create(ctx, tx, close); err != nil {
		if errors.Is(err, domain.ErrDuplicateClose) {
			// Lost a creation race; the winner's close is the close.
			return uc.closeRepo.GetByPeriod(ctx, tenantID, entityID, periodStart, periodEnd)
		}
		return nil, err
	}

	if err := uc.closeRepo.CreateTasks(ctx, tx, tasks); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return close, nil
}

// GetPeriodClose retrieves a close by id.
func (uc *CloseUseCase) GetPeriodClose(ctx context.Context, tenantID, closeID string) (*domain.PeriodClose, error) {
	return uc.closeRepo.GetByID(ctx, tenantID, closeID)
}

// ListTasks lists the close's checklist in priority order.
func (uc *CloseUseCase) ListTasks(ctx context.Context, tenantID, closeID string) ([]*domain.CloseTask, error) {
	if _, err := uc.closeRepo.GetByID(ctx, tenantID, closeID); err != nil {
		return nil, err
	}
	return uc.closeRepo.ListTasks(ctx, closeID)
}

// StartClose moves a draft close to in_progress. Calling it on a close
// already in progress is a no-op.
func (uc *CloseUseCase) StartClose(ctx context.Context, tenantID, closeID string) (*domain.PeriodClose, error) {
	close, err := uc.closeRepo.GetByID(ctx, tenantID, closeID)
	if err != nil {
		return nil, err
	}

	if !close.CanStart() {
		return nil, fmt.Errorf("%w: cannot start close in status %s", domain.ErrInvalidCloseStatus, close.Status)
	}

	if close.Status == domain.CloseStatusInProgress {
		return close, nil
	}

	close.Status = domain.CloseStatusInProgress
	close.UpdatedAt = time.Now().UTC()
	if err := uc.closeRepo.UpdateStatus(ctx, close); err != nil {
		return nil, err
	}

	return close, nil
}

// LockPeriod locks the close against further posting, recording who
// locked it and when.
func (uc *CloseUseCase) LockPeriod(ctx context.Context, tenantID, closeID, actor string) (*domain.PeriodClose, error) {
	close, err := uc.closeRepo.GetByID(ctx, tenantID, closeID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	close.Status = domain.CloseStatusLocked
	close.LockedAt = &now
	close.LockedBy = &actor
	close.UpdatedAt = now
	if err := uc.closeRepo.UpdateStatus(ctx, close); err != nil {
		return nil, err
	}

	return close, nil
}

// CompleteClose is the sole hard gate of the close process: it fails
// unless every task is completed or skipped.
func (uc *CloseUseCase) CompleteClose(ctx context.Context, tenantID, closeID, actor string) (*domain.PeriodClose, error) {
	var result *domain.PeriodClose

	err := uc.locker.WithLock(ctx, closeLockKey(closeID), func(ctx context.Context) error {
		close, err := uc.closeRepo.GetByID(ctx, tenantID, closeID)
		if err != nil {
			return err
		}

		if !close.CanComplete() {
			return fmt.Errorf("%w: cannot complete close in status %s", domain.ErrInvalidCloseStatus, close.Status)
		}

		tasks, err := uc.closeRepo.ListTasks(ctx, closeID)
		if err != nil {
			return err
		}

		for _, task := range tasks {
			if !task.Status.Done() {
				return fmt.Errorf("%w: task %s is %s", domain.ErrIncompleteTasks, task.Type, task.Status)
			}
		}

		now := time.Now().UTC()
		close.Status = domain.CloseStatusClosed
		close.ClosedAt = &now
		close.ClosedBy = &actor
		close.UpdatedAt = now
		if err := uc.closeRepo.UpdateStatus(ctx, close); err != nil {
			return err
		}

		result = close
		return nil
	})

	return result, err
}

// ReopenClose is the manual escape hatch out of a closed period.
func (uc *CloseUseCase) ReopenClose(ctx context.Context, tenantID, closeID string) (*domain.PeriodClose, error) {
	close, err := uc.closeRepo.GetByID(ctx, tenantID, closeID)
	if err != nil {
		return nil, err
	}

	if close.Status != domain.CloseStatusClosed {
		return nil, fmt.Errorf("%w: only closed periods can be reopened", domain.ErrInvalidCloseStatus)
	}

	close.Status = domain.CloseStatusReopened
	close.UpdatedAt = time.Now().UTC()
	if err := uc.closeRepo.UpdateStatus(ctx, close); err != nil {
		return nil, err
	}

	return close, nil
}

// TaskRunSummary reports one ExecuteCloseTasks pass.
type TaskRunSummary struct {
	Executed  int
	Completed int
	Blocked   int
	Manual    int
}

// ExecuteCloseTasks runs pending automatable tasks sequentially in
// priority order under a per-close advisory lock. A failing task is
// marked blocked with its reason and never aborts the remaining tasks;
// manual tasks (tax, filing, approval) stay pending.
func (uc *CloseUseCase) ExecuteCloseTasks(ctx context.Context, tenantID, closeID string) (*TaskRunSummary, error) {
	summary := &TaskRunSummary{}

	err := uc.locker.WithLock(ctx, closeLockKey(closeID), func(ctx context.Context) error {
		close, err := uc.closeRepo.GetByID(ctx, tenantID, closeID)
		if err != nil {
			return err
		}

		if close.Status == domain.CloseStatusClosed {
			return fmt.Errorf("%w: close is already completed", domain.ErrInvalidCloseStatus)
		}

		if close.Status == domain.CloseStatusDraft {
			close.Status = domain.CloseStatusInProgress
			close.UpdatedAt = time.Now().UTC()
			if err := uc.closeRepo.UpdateStatus(ctx, close); err != nil {
				return err
			}
		}

		tasks, err := uc.closeRepo.ListTasks(ctx, closeID)
		if err != nil {
			return err
		}

		for _, task := range tasks {
			if task.Status != domain.TaskStatusPending {
				continue
			}

			if domain.ManualTaskTypes[task.Type] {
				summary.Manual++
				continue
			}

			summary.Executed++
			uc.runTask(ctx, close, task, summary)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func (uc *CloseUseCase) runTask(ctx context.Context, close *domain.PeriodClose, task *domain.CloseTask, summary *TaskRunSummary) {
	task.Status = domain.TaskStatusInProgress
	task.UpdatedAt = time.Now().UTC()
	if err := uc.closeRepo.UpdateTask(ctx, task); err != nil {
		uc.blockTask(ctx, task, err.Error(), summary)
		return
	}

	engine, ok := uc.engines[task.Type]
	if !ok {
		uc.blockTask(ctx, task, fmt.Sprintf("no engine registered for task type %s", task.Type), summary)
		return
	}

	result, err := engine.Run(ctx, close)
	if err != nil {
		uc.logger.Warn().
			Err(err).
			Str("close_id", close.ID).
			Str("task_type", string(task.Type)).
			Msg("close task blocked")
		uc.blockTask(ctx, task, err.Error(), summary)
		return
	}

	task.Status = domain.TaskStatusCompleted
	task.ResultData = result
	task.BlockerReason = nil
	task.UpdatedAt = time.Now().UTC()
	if err := uc.closeRepo.UpdateTask(ctx, task); err != nil {
		uc.blockTask(ctx, task, err.Error(), summary)
		return
	}

	summary.Completed++
}

func (uc *CloseUseCase) blockTask(ctx context.Context, task *domain.CloseTask, reason string, summary *TaskRunSummary) {
	task.Status = domain.TaskStatusBlocked
	task.BlockerReason = &reason
	task.UpdatedAt = time.Now().UTC()
	if err := uc.closeRepo.UpdateTask(ctx, task); err != nil {
		uc.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to persist blocked task state")
	}
	summary.Blocked++
}

// CompleteTask marks a manual (or blocked) task completed.
func (uc *CloseUseCase) CompleteTask(ctx context.Context, tenantID, closeID, taskID string) (*domain.CloseTask, error) {
	return uc.setTaskStatus(ctx, tenantID, closeID, taskID, domain.TaskStatusCompleted)
}

// SkipTask marks a task skipped; skipped tasks count toward completion.
func (uc *CloseUseCase) SkipTask(ctx context.Context, tenantID, closeID, taskID string) (*domain.CloseTask, error) {
	return uc.setTaskStatus(ctx, tenantID, closeID, taskID, domain.TaskStatusSkipped)
}

func (uc *CloseUseCase) setTaskStatus(ctx context.Context, tenantID, closeID, taskID string, status domain.TaskStatus) (*domain.CloseTask, error) {
	if _, err := uc.closeRepo.GetByID(ctx, tenantID, closeID); err != nil {
		return nil, err
	}

	task, err := uc.closeRepo.GetTask(ctx, closeID, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = status
	task.BlockerReason = nil
	task.UpdatedAt = time.Now().UTC()
	if err := uc.closeRepo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// CheckVarianceAlerts flags cash-account balance drift between the end
// of this period and the end of the prior one, persisting the alerts on
// the close.
func (uc *CloseUseCase) CheckVarianceAlerts(ctx context.Context, tenantID, closeID string) ([]*domain.VarianceAlert, error) {
	close, err := uc.closeRepo.GetByID(ctx, tenantID, closeID)
	if err != nil {
		return nil, err
	}

	cashAccounts, err := uc.cashAccounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	priorEnd := close.PeriodStart.AddDate(0, 0, -1)
	now := time.Now().UTC()

	var alerts []*domain.VarianceAlert
	for _, account := range cashAccounts {
		current, err := uc.balanceAsOf(ctx, tenantID, account.Code, close.PeriodEnd)
		if err != nil {
			return nil, err
		}

		prior, err := uc.balanceAsOf(ctx, tenantID, account.Code, priorEnd)
		if err != nil {
			return nil, err
		}

		drift := current.Sub(prior)
		severity, alert := domain.ClassifyVariance(drift)
		if !alert {
			continue
		}

		alerts = append(alerts, &domain.VarianceAlert{
			ID:           uc.idGen.Generate(),
			CloseID:      closeID,
			AccountCode:  account.Code,
			Severity:     severity,
			CurrentValue: current,
			PriorValue:   prior,
			Drift:        drift,
			CreatedAt:    now,
		})
	}

	if len(alerts) > 0 {
		if err := uc.closeRepo.CreateAlerts(ctx, alerts); err != nil {
			return nil, err
		}
	}

	return alerts, nil
}

// ListVarianceAlerts lists persisted alerts for a close.
func (uc *CloseUseCase) ListVarianceAlerts(ctx context.Context, tenantID, closeID string) ([]*domain.VarianceAlert, error) {
	if _, err := uc.closeRepo.GetByID(ctx, tenantID, closeID); err != nil {
		return nil, err
	}
	return uc.closeRepo.ListAlerts(ctx, closeID)
}

func (uc *CloseUseCase) cashAccounts(ctx context.Context, tenantID string) ([]*domain.ChartAccount, error) {
	assets, err := uc.chartRepo.ListByType(ctx, tenantID, domain.AccountTypeAsset)
	if err != nil {
		return nil, err
	}

	var cash []*domain.ChartAccount
	for _, account := range assets {
		if hasPrefix(account.Code, PrefixCash) {
			cash = append(cash, account)
		}
	}

	return cash, nil
}

func (uc *CloseUseCase) balanceAsOf(ctx context.Context, tenantID, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	sums, err := uc.entryRepo.SumAccount(ctx, tenantID, accountCode, &asOf)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return domain.ComputeBalance(domain.AccountTypeAsset, sums.Debits, sums.Credits), nil
}

func closeLockKey(closeID string) string {
	return "period-close:" + closeID
}
