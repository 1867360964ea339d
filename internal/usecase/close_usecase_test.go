package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
	"github.com/finbooks/finbooks/internal/usecase/mocks"
)

type closeFixture struct {
	uc        *usecase.CloseUseCase
	closeRepo *mocks.MockCloseRepository
	entryRepo *mocks.MockEntryRepository
	chartRepo *mocks.MockChartRepository
}

func newCloseFixture() *closeFixture {
	closeRepo := mocks.NewMockCloseRepository()
	entryRepo := mocks.NewMockEntryRepository()
	chartRepo := mocks.NewMockChartRepository()
	uc := usecase.NewCloseUseCase(
		mocks.NewMockTransactionManager(),
		closeRepo,
		entryRepo,
		chartRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockLocker(),
		zerolog.Nop(),
	)
	return &closeFixture{uc: uc, closeRepo: closeRepo, entryRepo: entryRepo, chartRepo: chartRepo}
}

// nopEngine completes without doing anything.
type nopEngine struct{}

func (nopEngine) Run(ctx context.Context, close *domain.PeriodClose) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

// failEngine always fails.
type failEngine struct{ msg string }

func (e failEngine) Run(ctx context.Context, close *domain.PeriodClose) (map[string]any, error) {
	return nil, errors.New(e.msg)
}

func registerNopEngines(uc *usecase.CloseUseCase, types ...domain.TaskType) {
	for _, t := range types {
		uc.RegisterEngine(t, nopEngine{})
	}
}

var allAutomatable = []domain.TaskType{
	domain.TaskTypeAccrual,
	domain.TaskTypeDepreciation,
	domain.TaskTypePrepayment,
	domain.TaskTypeReconciliation,
	domain.TaskTypeValidation,
	domain.TaskTypeReport,
}

func periodMarch() (time.Time, time.Time) {
	return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestCloseUseCase_CreatePeriodClose(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()

	close, err := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if close.Status != domain.CloseStatusDraft {
		t.Errorf("expected draft status, got %s", close.Status)
	}

	tasks, err := f.uc.ListTasks(context.Background(), "tenant-1", close.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != len(domain.CloseTaskOrder) {
		t.Fatalf("expected %d tasks, got %d", len(domain.CloseTaskOrder), len(tasks))
	}
	for i, task := range tasks {
		if task.Type != domain.CloseTaskOrder[i] {
			t.Errorf("task %d: expected type %s, got %s", i, domain.CloseTaskOrder[i], task.Type)
		}
		if task.Priority != i+1 {
			t.Errorf("task %d: expected priority %d, got %d", i, i+1, task.Priority)
		}
		if task.Status != domain.TaskStatusPending {
			t.Errorf("task %d: expected pending, got %s", i, task.Status)
		}
	}
}

func TestCloseUseCase_CreatePeriodClose_Idempotent(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()

	first, err := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)
	if err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected same close, got %s and %s", first.ID, second.ID)
	}

	// A different entity gets its own close for the same period.
	entity := "entity-1"
	third, err := f.uc.CreatePeriodClose(context.Background(), "tenant-1", &entity, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third.ID == first.ID {
		t.Error("expected a separate close per entity")
	}
}

func TestCloseUseCase_CreatePeriodClose_InvalidPeriod(t *testing.T) {
	f := newCloseFixture()
	start, _ := periodMarch()

	_, err := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, start)
	if !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestCloseUseCase_ExecuteCloseTasks(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()
	registerNopEngines(f.uc, allAutomatable...)

	close, err := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := f.uc.ExecuteCloseTasks(context.Background(), "tenant-1", close.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Completed != len(allAutomatable) {
		t.Errorf("expected %d completed, got %d", len(allAutomatable), summary.Completed)
	}
	if summary.Manual != 3 {
		t.Errorf("expected 3 manual tasks untouched, got %d", summary.Manual)
	}

	refreshed, _ := f.uc.GetPeriodClose(context.Background(), "tenant-1", close.ID)
	if refreshed.Status != domain.CloseStatusInProgress {
		t.Errorf("expected in_progress after execution, got %s", refreshed.Status)
	}

	tasks, _ := f.uc.ListTasks(context.Background(), "tenant-1", close.ID)
	for _, task := range tasks {
		if domain.ManualTaskTypes[task.Type] {
			if task.Status != domain.TaskStatusPending {
				t.Errorf("manual task %s should stay pending, got %s", task.Type, task.Status)
			}
			continue
		}
		if task.Status != domain.TaskStatusCompleted {
			t.Errorf("task %s: expected completed, got %s", task.Type, task.Status)
		}
	}
}

func TestCloseUseCase_ExecuteCloseTasks_PartialFailure(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()

	// Depreciation fails, everything else succeeds; siblings must still run.
	registerNopEngines(f.uc, allAutomatable...)
	f.uc.RegisterEngine(domain.TaskTypeDepreciation, failEngine{msg: "asset register unavailable"})

	close, err := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := f.uc.ExecuteCloseTasks(context.Background(), "tenant-1", close.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Blocked != 1 {
		t.Errorf("expected 1 blocked task, got %d", summary.Blocked)
	}
	if summary.Completed != len(allAutomatable)-1 {
		t.Errorf("expected %d completed, got %d", len(allAutomatable)-1, summary.Completed)
	}

	tasks, _ := f.uc.ListTasks(context.Background(), "tenant-1", close.ID)
	for _, task := range tasks {
		if task.Type != domain.TaskTypeDepreciation {
			continue
		}
		if task.Status != domain.TaskStatusBlocked {
			t.Fatalf("expected depreciation blocked, got %s", task.Status)
		}
		if task.BlockerReason == nil || *task.BlockerReason != "asset register unavailable" {
			t.Error("expected blocker reason recorded")
		}
	}
}

func TestCloseUseCase_ExecuteCloseTasks_NoEngine(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()
	// Only some engines registered; depreciation has none.
	registerNopEngines(f.uc,
		domain.TaskTypeAccrual,
		domain.TaskTypePrepayment,
		domain.TaskTypeReconciliation,
		domain.TaskTypeValidation,
		domain.TaskTypeReport,
	)

	close, _ := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)

	summary, err := f.uc.ExecuteCloseTasks(context.Background(), "tenant-1", close.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Blocked != 1 {
		t.Errorf("expected 1 blocked task for missing engine, got %d", summary.Blocked)
	}
}

func TestCloseUseCase_CompleteClose(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()
	registerNopEngines(f.uc, allAutomatable...)

	close, _ := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)

	if _, err := f.uc.ExecuteCloseTasks(context.Background(), "tenant-1", close.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Completing an unlocked close is a status violation.
	if _, err := f.uc.CompleteClose(context.Background(), "tenant-1", close.ID, "controller"); !errors.Is(err, domain.ErrInvalidCloseStatus) {
		t.Fatalf("expected ErrInvalidCloseStatus, got %v", err)
	}

	if _, err := f.uc.LockPeriod(context.Background(), "tenant-1", close.ID, "controller"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Manual tasks still pending: completion must be refused.
	_, err := f.uc.CompleteClose(context.Background(), "tenant-1", close.ID, "controller")
	if !errors.Is(err, domain.ErrIncompleteTasks) {
		t.Fatalf("expected ErrIncompleteTasks, got %v", err)
	}

	tasks, _ := f.uc.ListTasks(context.Background(), "tenant-1", close.ID)
	for _, task := range tasks {
		if task.Status == domain.TaskStatusPending {
			if _, err := f.uc.CompleteTask(context.Background(), "tenant-1", close.ID, task.ID); err != nil {
				t.Fatalf("complete task %s: %v", task.Type, err)
			}
		}
	}

	completed, err := f.uc.CompleteClose(context.Background(), "tenant-1", close.ID, "controller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if completed.Status != domain.CloseStatusClosed {
		t.Errorf("expected closed, got %s", completed.Status)
	}
	if completed.ClosedBy == nil || *completed.ClosedBy != "controller" {
		t.Error("expected closing actor recorded")
	}
}

func TestCloseUseCase_CompleteClose_SkippedCounts(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()
	registerNopEngines(f.uc, allAutomatable...)

	close, _ := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)
	if _, err := f.uc.ExecuteCloseTasks(context.Background(), "tenant-1", close.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tasks, _ := f.uc.ListTasks(context.Background(), "tenant-1", close.ID)
	for _, task := range tasks {
		if task.Status == domain.TaskStatusPending {
			if _, err := f.uc.SkipTask(context.Background(), "tenant-1", close.ID, task.ID); err != nil {
				t.Fatalf("skip task %s: %v", task.Type, err)
			}
		}
	}

	if _, err := f.uc.LockPeriod(context.Background(), "tenant-1", close.ID, "controller"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.uc.CompleteClose(context.Background(), "tenant-1", close.ID, "controller"); err != nil {
		t.Errorf("expected skipped tasks to count toward completion, got %v", err)
	}
}

func TestCloseUseCase_ReopenClose(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()
	registerNopEngines(f.uc, allAutomatable...)

	close, _ := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)

	// Reopening anything but a closed period is refused.
	if _, err := f.uc.ReopenClose(context.Background(), "tenant-1", close.ID); !errors.Is(err, domain.ErrInvalidCloseStatus) {
		t.Fatalf("expected ErrInvalidCloseStatus, got %v", err)
	}

	if _, err := f.uc.ExecuteCloseTasks(context.Background(), "tenant-1", close.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tasks, _ := f.uc.ListTasks(context.Background(), "tenant-1", close.ID)
	for _, task := range tasks {
		if task.Status == domain.TaskStatusPending {
			_, _ = f.uc.SkipTask(context.Background(), "tenant-1", close.ID, task.ID)
		}
	}
	if _, err := f.uc.LockPeriod(context.Background(), "tenant-1", close.ID, "controller"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.uc.CompleteClose(context.Background(), "tenant-1", close.ID, "controller"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened, err := f.uc.ReopenClose(context.Background(), "tenant-1", close.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reopened.Status != domain.CloseStatusReopened {
		t.Errorf("expected reopened, got %s", reopened.Status)
	}
}

func TestCloseUseCase_LockPeriod(t *testing.T) {
	f := newCloseFixture()
	start, end := periodMarch()

	close, _ := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)

	locked, err := f.uc.LockPeriod(context.Background(), "tenant-1", close.ID, "controller")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locked.Status != domain.CloseStatusLocked {
		t.Errorf("expected locked, got %s", locked.Status)
	}
	if locked.LockedBy == nil || *locked.LockedBy != "controller" {
		t.Error("expected locking actor recorded")
	}
	if locked.LockedAt == nil {
		t.Error("expected lock timestamp recorded")
	}
}

func TestCloseUseCase_CheckVarianceAlerts(t *testing.T) {
	tests := []struct {
		name         string
		priorBalance string
		currBalance  string
		wantAlerts   int
		wantSeverity domain.VarianceSeverity
	}{
		{name: "no drift", priorBalance: "5000.00", currBalance: "5000.00", wantAlerts: 0},
		{name: "drift under threshold", priorBalance: "5000.00", currBalance: "5900.00", wantAlerts: 0},
		{name: "medium drift", priorBalance: "5000.00", currBalance: "7500.00", wantAlerts: 1, wantSeverity: domain.VarianceSeverityMedium},
		{name: "high drift", priorBalance: "5000.00", currBalance: "11000.00", wantAlerts: 1, wantSeverity: domain.VarianceSeverityHigh},
		{name: "critical drift", priorBalance: "50000.00", currBalance: "30000.00", wantAlerts: 1, wantSeverity: domain.VarianceSeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCloseFixture()
			start, end := periodMarch()
			seedChart(t, f.chartRepo, "tenant-1", "1100", domain.AccountTypeAsset)
			// A non-cash asset account must never produce alerts.
			seedChart(t, f.chartRepo, "tenant-1", "1200", domain.AccountTypeAsset)

			prior := start.AddDate(0, 0, -10)
			f.entryRepo.Seed(
				ledgerEntry("p1", "tenant-1", "1100", domain.EntryTypeDebit, tt.priorBalance, prior),
				ledgerEntry("c1", "tenant-1", "1200", domain.EntryTypeDebit, "99999.00", prior),
			)
			if tt.currBalance != tt.priorBalance {
				curr := decimal.RequireFromString(tt.currBalance)
				priorDec := decimal.RequireFromString(tt.priorBalance)
				diff := curr.Sub(priorDec)
				entryType := domain.EntryTypeDebit
				if diff.IsNegative() {
					entryType = domain.EntryTypeCredit
					diff = diff.Abs()
				}
				f.entryRepo.Seed(&domain.LedgerEntry{
					ID: "m1", TenantID: "tenant-1", EntryType: entryType,
					AccountCode: "1100", AccountName: "Cash",
					Amount: diff, Currency: "GBP",
					TransactionDate: start.AddDate(0, 0, 5),
				})
			}

			close, _ := f.uc.CreatePeriodClose(context.Background(), "tenant-1", nil, start, end)

			alerts, err := f.uc.CheckVarianceAlerts(context.Background(), "tenant-1", close.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(alerts) != tt.wantAlerts {
				t.Fatalf("expected %d alerts, got %d", tt.wantAlerts, len(alerts))
			}
			if tt.wantAlerts > 0 {
				if alerts[0].Severity != tt.wantSeverity {
					t.Errorf("expected severity %s, got %s", tt.wantSeverity, alerts[0].Severity)
				}
				if alerts[0].AccountCode != "1100" {
					t.Errorf("expected alert on cash account, got %s", alerts[0].AccountCode)
				}

				stored, err := f.uc.ListVarianceAlerts(context.Background(), "tenant-1", close.ID)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(stored) != tt.wantAlerts {
					t.Errorf("expected %d persisted alerts, got %d", tt.wantAlerts, len(stored))
				}
			}
		})
	}
}
