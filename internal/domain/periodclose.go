package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CloseStatus is the state of a period close. Progression is monotonic
// draft -> in_progress -> locked -> closed; reopened is a manual escape
// hatch out of closed.
type CloseStatus string

const (
	CloseStatusDraft      CloseStatus = "draft"
	CloseStatusInProgress CloseStatus = "in_progress"
	CloseStatusLocked     CloseStatus = "locked"
	CloseStatusClosed     CloseStatus = "closed"
	CloseStatusReopened   CloseStatus = "reopened"
)

// PeriodClose finalizes a tenant's (optionally entity-scoped) books for
// a date range. At most one close exists per (tenant, entity, start, end).
type PeriodClose struct {
	ID          string
	TenantID    string
	EntityID    *string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      CloseStatus
	LockedAt    *time.Time
	LockedBy    *string
	ClosedAt    *time.Time
	ClosedBy    *string
	Reports     []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CanStart reports whether the close may move to in_progress.
func (c *PeriodClose) CanStart() bool {
	return c.Status == CloseStatusDraft || c.Status == CloseStatusInProgress
}

// CanComplete reports whether the close may move to closed.
func (c *PeriodClose) CanComplete() bool {
	return c.Status == CloseStatusLocked
}

// TaskType identifies one step of the close checklist.
type TaskType string

const (
	TaskTypeAccrual        TaskType = "accrual"
	TaskTypeDepreciation   TaskType = "depreciation"
	TaskTypePrepayment     TaskType = "prepayment"
	TaskTypeReconciliation TaskType = "reconciliation"
	TaskTypeValidation     TaskType = "validation"
	TaskTypeReport         TaskType = "report"
	TaskTypeTax            TaskType = "tax"
	TaskTypeFiling         TaskType = "filing"
	TaskTypeApproval       TaskType = "approval"
)

// CloseTaskOrder is the fixed priority order in which tasks are created
// and executed.
var CloseTaskOrder = []TaskType{
	TaskTypeAccrual,
	TaskTypeDepreciation,
	TaskTypePrepayment,
	TaskTypeReconciliation,
	TaskTypeValidation,
	TaskTypeReport,
	TaskTypeTax,
	TaskTypeFiling,
	TaskTypeApproval,
}

// ManualTaskTypes are checklist steps with no automation; they stay
// pending until a user completes or skips them.
var ManualTaskTypes = map[TaskType]bool{
	TaskTypeTax:      true,
	TaskTypeFiling:   true,
	TaskTypeApproval: true,
}

// TaskStatus is the state of a close task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusSkipped    TaskStatus = "skipped"
)

// Done reports whether the status counts toward close completion.
func (s TaskStatus) Done() bool {
	return s == TaskStatusCompleted || s == TaskStatusSkipped
}

// CloseTask is one step of a period close checklist. Tasks are created
// as a fixed ordered set when the close is created.
type CloseTask struct {
	ID            string
	CloseID       string
	Type          TaskType
	Priority      int
	Status        TaskStatus
	BlockerReason *string
	ResultData    map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Variance alert severity thresholds in absolute currency units.
var (
	VarianceThresholdMedium   = decimal.NewFromInt(1000)
	VarianceThresholdHigh     = decimal.NewFromInt(5000)
	VarianceThresholdCritical = decimal.NewFromInt(10000)
)

// VarianceSeverity classifies the size of a balance drift.
type VarianceSeverity string

const (
	VarianceSeverityMedium   VarianceSeverity = "medium"
	VarianceSeverityHigh     VarianceSeverity = "high"
	VarianceSeverityCritical VarianceSeverity = "critical"
)

// ClassifyVariance maps an absolute drift to a severity. The second
// return is false when the drift is below the alert threshold.
func ClassifyVariance(drift decimal.Decimal) (VarianceSeverity, bool) {
	abs := drift.Abs()
	switch {
	case abs.GreaterThan(VarianceThresholdCritical):
		return VarianceSeverityCritical, true
	case abs.GreaterThan(VarianceThresholdHigh):
		return VarianceSeverityHigh, true
	case abs.GreaterThan(VarianceThresholdMedium):
		return VarianceSeverityMedium, true
	default:
		return "", false
	}
}

// VarianceAlert records a cash-account balance drift between the
// current and prior period.
type VarianceAlert struct {
	ID           string
	CloseID      string
	AccountCode  string
	Severity     VarianceSeverity
	CurrentValue decimal.Decimal
	PriorValue   decimal.Decimal
	Drift        decimal.Decimal
	CreatedAt    time.Time
}
