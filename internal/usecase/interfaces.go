package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// EntryFilter narrows ledger entry queries. Zero-valued fields are not
// applied.
type EntryFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	AccountCode string
	EntryType   domain.EntryType
	Reconciled  *bool
	Limit       int
	Offset      int
}

// SimilarEntryQuery selects candidate entries for duplicate scoring.
// Non-nil fields are ANDed together.
type SimilarEntryQuery struct {
	AccountCode *string
	AmountFrom  *decimal.Decimal
	AmountTo    *decimal.Decimal
	DateFrom    *time.Time
	DateTo      *time.Time
	DocumentID  *string
	Description *string
}

// AccountSums are raw debit/credit totals for one account.
type AccountSums struct {
	Debits  decimal.Decimal
	Credits decimal.Decimal
	Count   int64
}

// TrialBalanceRow is one account line of a trial balance report.
type TrialBalanceRow struct {
	AccountCode string
	AccountName string
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// CreateIdempotent inserts the entry unless an identical one (same
	// tenant, account code, entry type, amount, transaction ref) already
	// exists; it returns the surviving entry id either way.
	CreateIdempotent(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) (id string, inserted bool, err error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.LedgerEntry, error)
	List(ctx context.Context, tenantID string, filter EntryFilter) ([]*domain.LedgerEntry, int, error)
	SumAccount(ctx context.Context, tenantID, accountCode string, asOf *time.Time) (AccountSums, error)
	SumPeriod(ctx context.Context, tenantID string, start, end time.Time) (AccountSums, error)
	SumByPrefix(ctx context.Context, tenantID string, entityID *string, prefixes []string, entryType domain.EntryType, start, end time.Time) (decimal.Decimal, error)
	TrialBalance(ctx context.Context, tenantID string, start, end time.Time) ([]TrialBalanceRow, error)
	MarkReconciled(ctx context.Context, tx Transaction, tenantID, id, withID string) error
	ListUnreconciled(ctx context.Context, tenantID string, start, end time.Time) ([]*domain.LedgerEntry, error)
	FindSimilar(ctx context.Context, tenantID string, q SimilarEntryQuery) ([]*domain.LedgerEntry, error)
	ListForeignCurrency(ctx context.Context, tenantID, baseCurrency string, start, end time.Time) ([]*domain.LedgerEntry, error)
}

// TransactionRepository defines data access for transaction records.
type TransactionRepository interface {
	// CreateIdempotent inserts the transaction record unless one with
	// the same ref already exists; it returns the surviving id.
	CreateIdempotent(ctx context.Context, tx Transaction, txn *domain.Transaction) (string, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.Transaction, error)
}

// ChartRepository defines data access for the chart of accounts.
type ChartRepository interface {
	Create(ctx context.Context, account *domain.ChartAccount) error
	GetByCode(ctx context.Context, tenantID, code string) (*domain.ChartAccount, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]*domain.ChartAccount, error)
	ListByType(ctx context.Context, tenantID string, accountType domain.AccountType) ([]*domain.ChartAccount, error)
}

// CloseRepository defines data access for period closes and their tasks.
type CloseRepository interface {
	Create(ctx context.Context, tx Transaction, close *domain.PeriodClose) error
	CreateTasks(ctx context.Context, tx Transaction, tasks []*domain.CloseTask) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.PeriodClose, error)
	GetByPeriod(ctx context.Context, tenantID string, entityID *string, periodStart, periodEnd time.Time) (*domain.PeriodClose, error)
	UpdateStatus(ctx context.Context, close *domain.PeriodClose) error
	ListTasks(ctx context.Context, closeID string) ([]*domain.CloseTask, error)
	GetTask(ctx context.Context, closeID, taskID string) (*domain.CloseTask, error)
	UpdateTask(ctx context.Context, task *domain.CloseTask) error
	CreateAlerts(ctx context.Context, alerts []*domain.VarianceAlert) error
	ListAlerts(ctx context.Context, closeID string) ([]*domain.VarianceAlert, error)
}

// EntityRepository defines data access for reporting entities.
type EntityRepository interface {
	Create(ctx context.Context, entity *domain.Entity) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Entity, error)
	List(ctx context.Context, tenantID string) ([]*domain.Entity, error)
}

// IntercompanyRepository defines data access for intercompany transactions.
type IntercompanyRepository interface {
	Create(ctx context.Context, txn *domain.IntercompanyTransaction) error
	ListPending(ctx context.Context, tenantID string, entityIDs []string, start, end time.Time) ([]*domain.IntercompanyTransaction, error)
	MarkEliminated(ctx context.Context, tx Transaction, tenantID string, ids []string, at time.Time) error
}

// RateRepository defines data access for cached exchange rates.
type RateRepository interface {
	Get(ctx context.Context, tenantID, from, to string, date time.Time, rateType domain.RateType) (*domain.ExchangeRate, error)
	Upsert(ctx context.Context, rate *domain.ExchangeRate) error
}

// AccrualRepository defines data access for accruals and prepayments.
type AccrualRepository interface {
	CreateAccrual(ctx context.Context, accrual *domain.Accrual) error
	GetAccrual(ctx context.Context, tenantID, id string) (*domain.Accrual, error)
	ListAccruals(ctx context.Context, tenantID string, status domain.AccrualStatus, periodEnd time.Time) ([]*domain.Accrual, error)
	UpdateAccrual(ctx context.Context, accrual *domain.Accrual) error
	CreatePrepayment(ctx context.Context, prepayment *domain.Prepayment) error
	GetPrepayment(ctx context.Context, tenantID, id string) (*domain.Prepayment, error)
	ListOpenPrepayments(ctx context.Context, tenantID string, periodEnd time.Time) ([]*domain.Prepayment, error)
	UpdatePrepayment(ctx context.Context, prepayment *domain.Prepayment) error
}

// DocumentRepository defines data access for source documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Document, error)
	MarkPosted(ctx context.Context, tenantID, id, transactionID, userID string, at time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines tenant-scoped read caching.
type Cache interface {
	Get(ctx context.Context, tenantID, key string) ([]byte, error)
	Set(ctx context.Context, tenantID, key string, value []byte, ttl time.Duration) error
	InvalidateTenant(ctx context.Context, tenantID string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Locker serializes operations that share a key, e.g. task execution on
// one period close.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// RateProvider fetches exchange rates from an external source.
type RateProvider interface {
	Name() string
	FetchRate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error)
}

// Poster posts balanced transactions to the ledger. Implemented by
// PostingUseCase; consumed by the accrual and prepayment engines.
type Poster interface {
	PostDoubleEntry(ctx context.Context, tenantID string, input PostDoubleEntryInput) (*PostDoubleEntryResult, error)
}

// RateSource resolves a conversion rate for a currency pair at a date.
// Implemented by FXUseCase; consumed by the consolidator.
type RateSource interface {
	GetRate(ctx context.Context, tenantID, from, to string, date time.Time) (decimal.Decimal, error)
}
