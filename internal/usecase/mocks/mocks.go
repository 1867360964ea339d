package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.LedgerEntry

	CreateIdempotentFunc    func(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) (string, bool, error)
	GetByIDFunc             func(ctx context.Context, tenantID, id string) (*domain.LedgerEntry, error)
	ListFunc                func(ctx context.Context, tenantID string, filter usecase.EntryFilter) ([]*domain.LedgerEntry, int, error)
	SumAccountFunc          func(ctx context.Context, tenantID, accountCode string, asOf *time.Time) (usecase.AccountSums, error)
	SumPeriodFunc           func(ctx context.Context, tenantID string, start, end time.Time) (usecase.AccountSums, error)
	SumByPrefixFunc         func(ctx context.Context, tenantID string, entityID *string, prefixes []string, entryType domain.EntryType, start, end time.Time) (decimal.Decimal, error)
	TrialBalanceFunc        func(ctx context.Context, tenantID string, start, end time.Time) ([]usecase.TrialBalanceRow, error)
	MarkReconciledFunc      func(ctx context.Context, tx usecase.Transaction, tenantID, id, withID string) error
	ListUnreconciledFunc    func(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.LedgerEntry, error)
	FindSimilarFunc         func(ctx context.Context, tenantID string, q usecase.SimilarEntryQuery) ([]*domain.LedgerEntry, error)
	ListForeignCurrencyFunc func(ctx context.Context, tenantID, baseCurrency string, start, end time.Time) ([]*domain.LedgerEntry, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.LedgerEntry),
	}
}

// Seed inserts entries directly, bypassing idempotency.
func (m *MockEntryRepository) Seed(entries ...*domain.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.ID] = e
	}
}

func (m *MockEntryRepository) CreateIdempotent(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) (string, bool, error) {
	if m.CreateIdempotentFunc != nil {
		return m.CreateIdempotentFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.TransactionRef != nil {
		for _, existing := range m.entries {
			if existing.TenantID == entry.TenantID &&
				existing.AccountCode == entry.AccountCode &&
				existing.EntryType == entry.EntryType &&
				existing.Amount.Equal(entry.Amount) &&
				existing.TransactionRef != nil &&
				*existing.TransactionRef == *entry.TransactionRef {
				return existing.ID, false, nil
			}
		}
	}
	m.entries[entry.ID] = entry
	return entry.ID, true, nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.LedgerEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok && e.TenantID == tenantID {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) List(ctx context.Context, tenantID string, filter usecase.EntryFilter) ([]*domain.LedgerEntry, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.TenantID != tenantID {
			continue
		}
		if filter.AccountCode != "" && e.AccountCode != filter.AccountCode {
			continue
		}
		if filter.EntryType != "" && e.EntryType != filter.EntryType {
			continue
		}
		if filter.Reconciled != nil && e.Reconciled != *filter.Reconciled {
			continue
		}
		if filter.StartDate != nil && e.TransactionDate.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.TransactionDate.After(*filter.EndDate) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *MockEntryRepository) SumAccount(ctx context.Context, tenantID, accountCode string, asOf *time.Time) (usecase.AccountSums, error) {
	if m.SumAccountFunc != nil {
		return m.SumAccountFunc(ctx, tenantID, accountCode, asOf)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sums := usecase.AccountSums{Debits: decimal.Zero, Credits: decimal.Zero}
	for _, e := range m.entries {
		if e.TenantID != tenantID || e.AccountCode != accountCode {
			continue
		}
		if asOf != nil && e.TransactionDate.After(*asOf) {
			continue
		}
		sums.Count++
		if e.EntryType == domain.EntryTypeDebit {
			sums.Debits = sums.Debits.Add(e.Amount)
		} else {
			sums.Credits = sums.Credits.Add(e.Amount)
		}
	}
	return sums, nil
}

func (m *MockEntryRepository) SumPeriod(ctx context.Context, tenantID string, start, end time.Time) (usecase.AccountSums, error) {
	if m.SumPeriodFunc != nil {
		return m.SumPeriodFunc(ctx, tenantID, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sums := usecase.AccountSums{Debits: decimal.Zero, Credits: decimal.Zero}
	for _, e := range m.entries {
		if e.TenantID != tenantID || e.TransactionDate.Before(start) || e.TransactionDate.After(end) {
			continue
		}
		sums.Count++
		if e.EntryType == domain.EntryTypeDebit {
			sums.Debits = sums.Debits.Add(e.Amount)
		} else {
			sums.Credits = sums.Credits.Add(e.Amount)
		}
	}
	return sums, nil
}

func (m *MockEntryRepository) SumByPrefix(ctx context.Context, tenantID string, entityID *string, prefixes []string, entryType domain.EntryType, start, end time.Time) (decimal.Decimal, error) {
	if m.SumByPrefixFunc != nil {
		return m.SumByPrefixFunc(ctx, tenantID, entityID, prefixes, entryType, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, e := range m.entries {
		if e.TenantID != tenantID || e.EntryType != entryType {
			continue
		}
		if entityID != nil && (e.EntityID == nil || *e.EntityID != *entityID) {
			continue
		}
		if e.TransactionDate.Before(start) || e.TransactionDate.After(end) {
			continue
		}
		matched := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(e.AccountCode, prefix) {
				matched = true
				break
			}
		}
		if matched {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (m *MockEntryRepository) TrialBalance(ctx context.Context, tenantID string, start, end time.Time) ([]usecase.TrialBalanceRow, error) {
	if m.TrialBalanceFunc != nil {
		return m.TrialBalanceFunc(ctx, tenantID, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	byCode := make(map[string]*usecase.TrialBalanceRow)
	for _, e := range m.entries {
		if e.TenantID != tenantID || e.TransactionDate.Before(start) || e.TransactionDate.After(end) {
			continue
		}
		row, ok := byCode[e.AccountCode]
		if !ok {
			row = &usecase.TrialBalanceRow{
				AccountCode: e.AccountCode,
				AccountName: e.AccountName,
				DebitTotal:  decimal.Zero,
				CreditTotal: decimal.Zero,
			}
			byCode[e.AccountCode] = row
		}
		if e.EntryType == domain.EntryTypeDebit {
			row.DebitTotal = row.DebitTotal.Add(e.Amount)
		} else {
			row.CreditTotal = row.CreditTotal.Add(e.Amount)
		}
	}
	rows := make([]usecase.TrialBalanceRow, 0, len(byCode))
	for _, row := range byCode {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountCode < rows[j].AccountCode })
	return rows, nil
}

func (m *MockEntryRepository) MarkReconciled(ctx context.Context, tx usecase.Transaction, tenantID, id, withID string) error {
	if m.MarkReconciledFunc != nil {
		return m.MarkReconciledFunc(ctx, tx, tenantID, id, withID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok || e.TenantID != tenantID {
		return domain.ErrEntryNotFound
	}
	e.Reconciled = true
	e.ReconciledWith = &withID
	return nil
}

func (m *MockEntryRepository) ListUnreconciled(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.LedgerEntry, error) {
	if m.ListUnreconciledFunc != nil {
		return m.ListUnreconciledFunc(ctx, tenantID, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.TenantID != tenantID || e.Reconciled {
			continue
		}
		if e.TransactionDate.Before(start) || e.TransactionDate.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockEntryRepository) FindSimilar(ctx context.Context, tenantID string, q usecase.SimilarEntryQuery) ([]*domain.LedgerEntry, error) {
	if m.FindSimilarFunc != nil {
		return m.FindSimilarFunc(ctx, tenantID, q)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.TenantID != tenantID {
			continue
		}
		if q.AccountCode != nil && e.AccountCode != *q.AccountCode {
			continue
		}
		if q.AmountFrom != nil && e.Amount.LessThan(*q.AmountFrom) {
			continue
		}
		if q.AmountTo != nil && e.Amount.GreaterThan(*q.AmountTo) {
			continue
		}
		if q.DateFrom != nil && e.TransactionDate.Before(*q.DateFrom) {
			continue
		}
		if q.DateTo != nil && e.TransactionDate.After(*q.DateTo) {
			continue
		}
		if q.DocumentID != nil && (e.DocumentID == nil || *e.DocumentID != *q.DocumentID) {
			continue
		}
		if q.Description != nil && e.Description != *q.Description {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockEntryRepository) ListForeignCurrency(ctx context.Context, tenantID, baseCurrency string, start, end time.Time) ([]*domain.LedgerEntry, error) {
	if m.ListForeignCurrencyFunc != nil {
		return m.ListForeignCurrencyFunc(ctx, tenantID, baseCurrency, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.TenantID != tenantID || e.Currency == baseCurrency {
			continue
		}
		if e.TransactionDate.Before(start) || e.TransactionDate.After(end) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.Transaction

	CreateIdempotentFunc func(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) (string, error)
	GetByIDFunc          func(ctx context.Context, tenantID, id string) (*domain.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		txns: make(map[string]*domain.Transaction),
	}
}

func (m *MockTransactionRepository) CreateIdempotent(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) (string, error) {
	if m.CreateIdempotentFunc != nil {
		return m.CreateIdempotentFunc(ctx, tx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if txn.TransactionRef != nil {
		for _, existing := range m.txns {
			if existing.TenantID == txn.TenantID &&
				existing.TransactionRef != nil &&
				*existing.TransactionRef == *txn.TransactionRef {
				return existing.ID, nil
			}
		}
	}
	m.txns[txn.ID] = txn
	return txn.ID, nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.txns[id]; ok && t.TenantID == tenantID {
		return t, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// MockChartRepository is a mock implementation of ChartRepository.
type MockChartRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.ChartAccount

	CreateFunc     func(ctx context.Context, account *domain.ChartAccount) error
	GetByCodeFunc  func(ctx context.Context, tenantID, code string) (*domain.ChartAccount, error)
	ListFunc       func(ctx context.Context, tenantID string, limit, offset int) ([]*domain.ChartAccount, error)
	ListByTypeFunc func(ctx context.Context, tenantID string, accountType domain.AccountType) ([]*domain.ChartAccount, error)
}

func NewMockChartRepository() *MockChartRepository {
	return &MockChartRepository{
		accounts: make(map[string]*domain.ChartAccount),
	}
}

func (m *MockChartRepository) chartKey(tenantID, code string) string {
	return tenantID + ":" + code
}

func (m *MockChartRepository) Create(ctx context.Context, account *domain.ChartAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[m.chartKey(account.TenantID, account.Code)] = account
	return nil
}

func (m *MockChartRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.ChartAccount, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, tenantID, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[m.chartKey(tenantID, code)]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockChartRepository) List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.ChartAccount, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ChartAccount
	for _, a := range m.accounts {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MockChartRepository) ListByType(ctx context.Context, tenantID string, accountType domain.AccountType) ([]*domain.ChartAccount, error) {
	if m.ListByTypeFunc != nil {
		return m.ListByTypeFunc(ctx, tenantID, accountType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.ChartAccount
	for _, a := range m.accounts {
		if a.TenantID == tenantID && a.Type == accountType {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// MockCloseRepository is a mock implementation of CloseRepository.
type MockCloseRepository struct {
	mu     sync.RWMutex
	closes map[string]*domain.PeriodClose
	tasks  map[string][]*domain.CloseTask
	alerts map[string][]*domain.VarianceAlert

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, close *domain.PeriodClose) error
	CreateTasksFunc  func(ctx context.Context, tx usecase.Transaction, tasks []*domain.CloseTask) error
	GetByIDFunc      func(ctx context.Context, tenantID, id string) (*domain.PeriodClose, error)
	GetByPeriodFunc  func(ctx context.Context, tenantID string, entityID *string, periodStart, periodEnd time.Time) (*domain.PeriodClose, error)
	UpdateStatusFunc func(ctx context.Context, close *domain.PeriodClose) error
	ListTasksFunc    func(ctx context.Context, closeID string) ([]*domain.CloseTask, error)
	GetTaskFunc      func(ctx context.Context, closeID, taskID string) (*domain.CloseTask, error)
	UpdateTaskFunc   func(ctx context.Context, task *domain.CloseTask) error
	CreateAlertsFunc func(ctx context.Context, alerts []*domain.VarianceAlert) error
	ListAlertsFunc   func(ctx context.Context, closeID string) ([]*domain.VarianceAlert, error)
}

func NewMockCloseRepository() *MockCloseRepository {
	return &MockCloseRepository{
		closes: make(map[string]*domain.PeriodClose),
		tasks:  make(map[string][]*domain.CloseTask),
		alerts: make(map[string][]*domain.VarianceAlert),
	}
}

func (m *MockCloseRepository) Create(ctx context.Context, tx usecase.Transaction, close *domain.PeriodClose) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, close)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.closes {
		if existing.TenantID == close.TenantID &&
			samePointer(existing.EntityID, close.EntityID) &&
			existing.PeriodStart.Equal(close.PeriodStart) &&
			existing.PeriodEnd.Equal(close.PeriodEnd) {
			return domain.ErrDuplicateClose
		}
	}
	m.closes[close.ID] = close
	return nil
}

func (m *MockCloseRepository) CreateTasks(ctx context.Context, tx usecase.Transaction, tasks []*domain.CloseTask) error {
	if m.CreateTasksFunc != nil {
		return m.CreateTasksFunc(ctx, tx, tasks)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, task := range tasks {
		m.tasks[task.CloseID] = append(m.tasks[task.CloseID], task)
	}
	return nil
}

func (m *MockCloseRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.PeriodClose, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.closes[id]; ok && c.TenantID == tenantID {
		return c, nil
	}
	return nil, domain.ErrPeriodCloseNotFound
}

func (m *MockCloseRepository) GetByPeriod(ctx context.Context, tenantID string, entityID *string, periodStart, periodEnd time.Time) (*domain.PeriodClose, error) {
	if m.GetByPeriodFunc != nil {
		return m.GetByPeriodFunc(ctx, tenantID, entityID, periodStart, periodEnd)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.closes {
		if c.TenantID == tenantID &&
			samePointer(c.EntityID, entityID) &&
			c.PeriodStart.Equal(periodStart) &&
			c.PeriodEnd.Equal(periodEnd) {
			return c, nil
		}
	}
	return nil, domain.ErrPeriodCloseNotFound
}

func (m *MockCloseRepository) UpdateStatus(ctx context.Context, close *domain.PeriodClose) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, close)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.closes[close.ID]; !ok {
		return domain.ErrPeriodCloseNotFound
	}
	m.closes[close.ID] = close
	return nil
}

func (m *MockCloseRepository) ListTasks(ctx context.Context, closeID string) ([]*domain.CloseTask, error) {
	if m.ListTasksFunc != nil {
		return m.ListTasksFunc(ctx, closeID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	tasks := append([]*domain.CloseTask(nil), m.tasks[closeID]...)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Priority < tasks[j].Priority })
	return tasks, nil
}

func (m *MockCloseRepository) GetTask(ctx context.Context, closeID, taskID string) (*domain.CloseTask, error) {
	if m.GetTaskFunc != nil {
		return m.GetTaskFunc(ctx, closeID, taskID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, task := range m.tasks[closeID] {
		if task.ID == taskID {
			return task, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (m *MockCloseRepository) UpdateTask(ctx context.Context, task *domain.CloseTask) error {
	if m.UpdateTaskFunc != nil {
		return m.UpdateTaskFunc(ctx, task)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.tasks[task.CloseID] {
		if existing.ID == task.ID {
			m.tasks[task.CloseID][i] = task
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (m *MockCloseRepository) CreateAlerts(ctx context.Context, alerts []*domain.VarianceAlert) error {
	if m.CreateAlertsFunc != nil {
		return m.CreateAlertsFunc(ctx, alerts)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alert := range alerts {
		m.alerts[alert.CloseID] = append(m.alerts[alert.CloseID], alert)
	}
	return nil
}

func (m *MockCloseRepository) ListAlerts(ctx context.Context, closeID string) ([]*domain.VarianceAlert, error) {
	if m.ListAlertsFunc != nil {
		return m.ListAlertsFunc(ctx, closeID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.VarianceAlert(nil), m.alerts[closeID]...), nil
}

// MockEntityRepository is a mock implementation of EntityRepository.
type MockEntityRepository struct {
	mu       sync.RWMutex
	entities map[string]*domain.Entity

	CreateFunc  func(ctx context.Context, entity *domain.Entity) error
	GetByIDFunc func(ctx context.Context, tenantID, id string) (*domain.Entity, error)
	ListFunc    func(ctx context.Context, tenantID string) ([]*domain.Entity, error)
}

func NewMockEntityRepository() *MockEntityRepository {
	return &MockEntityRepository{
		entities: make(map[string]*domain.Entity),
	}
}

func (m *MockEntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entity)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entities[entity.ID] = entity
	return nil
}

func (m *MockEntityRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Entity, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entities[id]; ok && e.TenantID == tenantID {
		return e, nil
	}
	return nil, domain.ErrEntityNotFound
}

func (m *MockEntityRepository) List(ctx context.Context, tenantID string) ([]*domain.Entity, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tenantID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Entity
	for _, e := range m.entities {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockIntercompanyRepository is a mock implementation of IntercompanyRepository.
type MockIntercompanyRepository struct {
	mu   sync.RWMutex
	txns map[string]*domain.IntercompanyTransaction

	CreateFunc         func(ctx context.Context, txn *domain.IntercompanyTransaction) error
	ListPendingFunc    func(ctx context.Context, tenantID string, entityIDs []string, start, end time.Time) ([]*domain.IntercompanyTransaction, error)
	MarkEliminatedFunc func(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string, at time.Time) error
}

func NewMockIntercompanyRepository() *MockIntercompanyRepository {
	return &MockIntercompanyRepository{
		txns: make(map[string]*domain.IntercompanyTransaction),
	}
}

func (m *MockIntercompanyRepository) Create(ctx context.Context, txn *domain.IntercompanyTransaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns[txn.ID] = txn
	return nil
}

func (m *MockIntercompanyRepository) ListPending(ctx context.Context, tenantID string, entityIDs []string, start, end time.Time) ([]*domain.IntercompanyTransaction, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx, tenantID, entityIDs, start, end)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	included := make(map[string]bool, len(entityIDs))
	for _, id := range entityIDs {
		included[id] = true
	}
	var out []*domain.IntercompanyTransaction
	for _, t := range m.txns {
		if t.TenantID != tenantID || t.Eliminated {
			continue
		}
		if !included[t.FromEntityID] || !included[t.ToEntityID] {
			continue
		}
		if t.TransactionDate.Before(start) || t.TransactionDate.After(end) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockIntercompanyRepository) MarkEliminated(ctx context.Context, tx usecase.Transaction, tenantID string, ids []string, at time.Time) error {
	if m.MarkEliminatedFunc != nil {
		return m.MarkEliminatedFunc(ctx, tx, tenantID, ids, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if t, ok := m.txns[id]; ok && t.TenantID == tenantID {
			t.Eliminated = true
			t.EliminatedAt = &at
		}
	}
	return nil
}

// MockRateRepository is a mock implementation of RateRepository.
type MockRateRepository struct {
	mu    sync.RWMutex
	rates map[string]*domain.ExchangeRate

	GetFunc    func(ctx context.Context, tenantID, from, to string, date time.Time, rateType domain.RateType) (*domain.ExchangeRate, error)
	UpsertFunc func(ctx context.Context, rate *domain.ExchangeRate) error
}

func NewMockRateRepository() *MockRateRepository {
	return &MockRateRepository{
		rates: make(map[string]*domain.ExchangeRate),
	}
}

func rateKey(tenantID, from, to string, date time.Time, rateType domain.RateType) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", tenantID, from, to, date.Format("2006-01-02"), rateType)
}

func (m *MockRateRepository) Get(ctx context.Context, tenantID, from, to string, date time.Time, rateType domain.RateType) (*domain.ExchangeRate, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenantID, from, to, date, rateType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rates[rateKey(tenantID, from, to, date, rateType)]; ok {
		return r, nil
	}
	return nil, domain.ErrRateNotFound
}

func (m *MockRateRepository) Upsert(ctx context.Context, rate *domain.ExchangeRate) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, rate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rates[rateKey(rate.TenantID, rate.FromCurrency, rate.ToCurrency, rate.RateDate, rate.RateType)] = rate
	return nil
}

// MockAccrualRepository is a mock implementation of AccrualRepository.
type MockAccrualRepository struct {
	mu          sync.RWMutex
	accruals    map[string]*domain.Accrual
	prepayments map[string]*domain.Prepayment

	CreateAccrualFunc       func(ctx context.Context, accrual *domain.Accrual) error
	GetAccrualFunc          func(ctx context.Context, tenantID, id string) (*domain.Accrual, error)
	ListAccrualsFunc        func(ctx context.Context, tenantID string, status domain.AccrualStatus, periodEnd time.Time) ([]*domain.Accrual, error)
	UpdateAccrualFunc       func(ctx context.Context, accrual *domain.Accrual) error
	CreatePrepaymentFunc    func(ctx context.Context, prepayment *domain.Prepayment) error
	GetPrepaymentFunc       func(ctx context.Context, tenantID, id string) (*domain.Prepayment, error)
	ListOpenPrepaymentsFunc func(ctx context.Context, tenantID string, periodEnd time.Time) ([]*domain.Prepayment, error)
	UpdatePrepaymentFunc    func(ctx context.Context, prepayment *domain.Prepayment) error
}

func NewMockAccrualRepository() *MockAccrualRepository {
	return &MockAccrualRepository{
		accruals:    make(map[string]*domain.Accrual),
		prepayments: make(map[string]*domain.Prepayment),
	}
}

func (m *MockAccrualRepository) CreateAccrual(ctx context.Context, accrual *domain.Accrual) error {
	if m.CreateAccrualFunc != nil {
		return m.CreateAccrualFunc(ctx, accrual)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accruals[accrual.ID] = accrual
	return nil
}

func (m *MockAccrualRepository) GetAccrual(ctx context.Context, tenantID, id string) (*domain.Accrual, error) {
	if m.GetAccrualFunc != nil {
		return m.GetAccrualFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accruals[id]; ok && a.TenantID == tenantID {
		return a, nil
	}
	return nil, domain.ErrAccrualNotFound
}

func (m *MockAccrualRepository) ListAccruals(ctx context.Context, tenantID string, status domain.AccrualStatus, periodEnd time.Time) ([]*domain.Accrual, error) {
	if m.ListAccrualsFunc != nil {
		return m.ListAccrualsFunc(ctx, tenantID, status, periodEnd)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Accrual
	for _, a := range m.accruals {
		if a.TenantID == tenantID && a.Status == status && !a.PeriodEnd.After(periodEnd) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockAccrualRepository) UpdateAccrual(ctx context.Context, accrual *domain.Accrual) error {
	if m.UpdateAccrualFunc != nil {
		return m.UpdateAccrualFunc(ctx, accrual)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accruals[accrual.ID]; !ok {
		return domain.ErrAccrualNotFound
	}
	m.accruals[accrual.ID] = accrual
	return nil
}

func (m *MockAccrualRepository) CreatePrepayment(ctx context.Context, prepayment *domain.Prepayment) error {
	if m.CreatePrepaymentFunc != nil {
		return m.CreatePrepaymentFunc(ctx, prepayment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prepayments[prepayment.ID] = prepayment
	return nil
}

func (m *MockAccrualRepository) GetPrepayment(ctx context.Context, tenantID, id string) (*domain.Prepayment, error) {
	if m.GetPrepaymentFunc != nil {
		return m.GetPrepaymentFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.prepayments[id]; ok && p.TenantID == tenantID {
		return p, nil
	}
	return nil, domain.ErrPrepaymentNotFound
}

func (m *MockAccrualRepository) ListOpenPrepayments(ctx context.Context, tenantID string, periodEnd time.Time) ([]*domain.Prepayment, error) {
	if m.ListOpenPrepaymentsFunc != nil {
		return m.ListOpenPrepaymentsFunc(ctx, tenantID, periodEnd)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Prepayment
	for _, p := range m.prepayments {
		if p.TenantID == tenantID && !p.FullyAmortized() && !p.PeriodStart.After(periodEnd) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockAccrualRepository) UpdatePrepayment(ctx context.Context, prepayment *domain.Prepayment) error {
	if m.UpdatePrepaymentFunc != nil {
		return m.UpdatePrepaymentFunc(ctx, prepayment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.prepayments[prepayment.ID]; !ok {
		return domain.ErrPrepaymentNotFound
	}
	m.prepayments[prepayment.ID] = prepayment
	return nil
}

// MockDocumentRepository is a mock implementation of DocumentRepository.
type MockDocumentRepository struct {
	mu   sync.RWMutex
	docs map[string]*domain.Document

	CreateFunc     func(ctx context.Context, doc *domain.Document) error
	GetByIDFunc    func(ctx context.Context, tenantID, id string) (*domain.Document, error)
	MarkPostedFunc func(ctx context.Context, tenantID, id, transactionID, userID string, at time.Time) error
}

func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		docs: make(map[string]*domain.Document),
	}
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, doc)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc
	return nil
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, tenantID, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.docs[id]; ok && d.TenantID == tenantID {
		return d, nil
	}
	return nil, domain.ErrDocumentNotFound
}

func (m *MockDocumentRepository) MarkPosted(ctx context.Context, tenantID, id, transactionID, userID string, at time.Time) error {
	if m.MarkPostedFunc != nil {
		return m.MarkPostedFunc(ctx, tenantID, id, transactionID, userID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || d.TenantID != tenantID {
		return domain.ErrDocumentNotFound
	}
	d.Status = domain.DocumentStatusPosted
	d.TransactionID = &transactionID
	d.PostedBy = &userID
	d.PostedAt = &at
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string][]byte

	GetFunc             func(ctx context.Context, tenantID, key string) ([]byte, error)
	SetFunc             func(ctx context.Context, tenantID, key string, value []byte, ttl time.Duration) error
	InvalidateTenantFunc func(ctx context.Context, tenantID string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
	}
}

func (m *MockCache) Get(ctx context.Context, tenantID, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, tenantID, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[tenantID+":"+key]; ok {
		return v, nil
	}
	return nil, nil
}

func (m *MockCache) Set(ctx context.Context, tenantID, key string, value []byte, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, tenantID, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[tenantID+":"+key] = value
	return nil
}

func (m *MockCache) InvalidateTenant(ctx context.Context, tenantID string) error {
	if m.InvalidateTenantFunc != nil {
		return m.InvalidateTenantFunc(ctx, tenantID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, tenantID+":") {
			delete(m.data, k)
		}
	}
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}

// MockLocker is a mock implementation of Locker that runs the critical
// section inline.
type MockLocker struct {
	WithLockFunc func(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

func NewMockLocker() *MockLocker {
	return &MockLocker{}
}

func (m *MockLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if m.WithLockFunc != nil {
		return m.WithLockFunc(ctx, key, fn)
	}
	return fn(ctx)
}

// MockRateProvider is a mock implementation of RateProvider.
type MockRateProvider struct {
	NameValue     string
	FetchRateFunc func(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error)
}

func NewMockRateProvider(name string) *MockRateProvider {
	return &MockRateProvider{NameValue: name}
}

func (m *MockRateProvider) Name() string {
	return m.NameValue
}

func (m *MockRateProvider) FetchRate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	if m.FetchRateFunc != nil {
		return m.FetchRateFunc(ctx, from, to, date)
	}
	return decimal.NewFromInt(1), nil
}

// MockRateSource is a mock implementation of RateSource.
type MockRateSource struct {
	GetRateFunc func(ctx context.Context, tenantID, from, to string, date time.Time) (decimal.Decimal, error)
}

func NewMockRateSource() *MockRateSource {
	return &MockRateSource{}
}

func (m *MockRateSource) GetRate(ctx context.Context, tenantID, from, to string, date time.Time) (decimal.Decimal, error) {
	if m.GetRateFunc != nil {
		return m.GetRateFunc(ctx, tenantID, from, to, date)
	}
	return decimal.NewFromInt(1), nil
}

// MockPoster is a mock implementation of Poster recording every posted
// transaction.
type MockPoster struct {
	mu     sync.Mutex
	Posted []usecase.PostDoubleEntryInput

	PostDoubleEntryFunc func(ctx context.Context, tenantID string, input usecase.PostDoubleEntryInput) (*usecase.PostDoubleEntryResult, error)
}

func NewMockPoster() *MockPoster {
	return &MockPoster{}
}

func (m *MockPoster) PostDoubleEntry(ctx context.Context, tenantID string, input usecase.PostDoubleEntryInput) (*usecase.PostDoubleEntryResult, error) {
	if m.PostDoubleEntryFunc != nil {
		return m.PostDoubleEntryFunc(ctx, tenantID, input)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Posted = append(m.Posted, input)
	ids := make([]string, len(input.Entries))
	for i := range input.Entries {
		ids[i] = fmt.Sprintf("posted-%d-%d", len(m.Posted), i)
	}
	return &usecase.PostDoubleEntryResult{
		TransactionID: fmt.Sprintf("txn-%d", len(m.Posted)),
		EntryIDs:      ids,
	}, nil
}

func samePointer(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
