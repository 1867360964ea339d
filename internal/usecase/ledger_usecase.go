package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finbooks/finbooks/internal/domain"
)

const entryCacheTTL = 5 * time.Minute

// LedgerUseCase serves entry queries, account balances and
// reconciliation pairing.
type LedgerUseCase struct {
	txManager TransactionManager
	entryRepo EntryRepository
	chartRepo ChartRepository
	cache     Cache
	idGen     IDGenerator
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	chartRepo ChartRepository,
	cache Cache,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager: txManager,
		entryRepo: entryRepo,
		chartRepo: chartRepo,
		cache:     cache,
		idGen:     idGen,
	}
}

// EntryPage is a page of entries plus the unpaginated total.
type EntryPage struct {
	Entries []*domain.LedgerEntry
	Total   int
}

// GetEntry retrieves a single entry.
func (uc *LedgerUseCase) GetEntry(ctx context.Context, tenantID, id string) (*domain.LedgerEntry, error) {
	return uc.entryRepo.GetByID(ctx, tenantID, id)
}

// GetEntries lists entries matching the filter, serving repeat queries
// from the tenant-scoped cache.
func (uc *LedgerUseCase) GetEntries(ctx context.Context, tenantID string, filter EntryFilter) (*EntryPage, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	cacheKey := entriesCacheKey(filter)
	if cached, err := uc.cache.Get(ctx, tenantID, cacheKey); err == nil {
		var page EntryPage
		if err := json.Unmarshal(cached, &page); err == nil {
			return &page, nil
		}
	}

	entries, total, err := uc.entryRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	page := &EntryPage{Entries: entries, Total: total}

	if data, err := json.Marshal(page); err == nil {
		_ = uc.cache.Set(ctx, tenantID, cacheKey, data, entryCacheTTL)
	}

	return page, nil
}

func entriesCacheKey(filter EntryFilter) string {
	start, end := "", ""
	if filter.StartDate != nil {
		start = filter.StartDate.Format(time.RFC3339)
	}
	if filter.EndDate != nil {
		end = filter.EndDate.Format(time.RFC3339)
	}
	reconciled := ""
	if filter.Reconciled != nil {
		reconciled = fmt.Sprintf("%t", *filter.Reconciled)
	}
	return fmt.Sprintf("entries:%s:%s:%s:%s:%s:%d:%d",
		start, end, filter.AccountCode, filter.EntryType, reconciled, filter.Limit, filter.Offset)
}

// CreateEntry persists a single validated entry. Callers are expected
// to keep the surrounding transaction balanced; automated posting goes
// through PostingUseCase.
func (uc *LedgerUseCase) CreateEntry(ctx context.Context, entry *domain.LedgerEntry) (string, error) {
	if entry.TenantID == "" {
		return "", domain.ErrMissingTenant
	}
	if entry.ID == "" {
		entry.ID = uc.idGen.Generate()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := entry.Validate(); err != nil {
		return "", err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	id, _, err := uc.entryRepo.CreateIdempotent(ctx, tx, entry)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	_ = uc.cache.InvalidateTenant(ctx, entry.TenantID)

	return id, nil
}

// GetAccountBalance computes the balance of one account using the
// chart-of-accounts sign convention: debit-normal for asset and expense
// accounts, credit-normal otherwise. Accounts with no chart record and
// no entries do not exist.
func (uc *LedgerUseCase) GetAccountBalance(ctx context.Context, tenantID, accountCode string, asOf *time.Time) (*domain.AccountBalance, error) {
	account, chartErr := uc.chartRepo.GetByCode(ctx, tenantID, accountCode)
	if chartErr != nil && !errors.Is(chartErr, domain.ErrAccountNotFound) {
		return nil, chartErr
	}

	sums, err := uc.entryRepo.SumAccount(ctx, tenantID, accountCode, asOf)
	if err != nil {
		return nil, err
	}

	accountType := domain.AccountTypeAsset
	switch {
	case account != nil:
		accountType = account.Type
	case sums.Count == 0:
		return nil, domain.ErrAccountNotFound
	default:
		// Entries exist but the account was never added to the chart;
		// fall back to the debit-normal convention.
	}

	return &domain.AccountBalance{
		AccountCode: accountCode,
		AccountType: accountType,
		Balance:     domain.ComputeBalance(accountType, sums.Debits, sums.Credits),
		DebitTotal:  sums.Debits,
		CreditTotal: sums.Credits,
		AsOf:        asOf,
	}, nil
}

// ReconcileEntries pairs two opposite-direction entries of equal amount
// as the same economic event. The operation is symmetric and
// idempotent: re-reconciling an already-matched pair is a no-op.
func (uc *LedgerUseCase) ReconcileEntries(ctx context.Context, tenantID, id1, id2 string) error {
	if id1 == id2 {
		return fmt.Errorf("%w: cannot reconcile an entry with itself", domain.ErrReconciliationMismatch)
	}

	first, err := uc.entryRepo.GetByID(ctx, tenantID, id1)
	if err != nil {
		return err
	}

	second, err := uc.entryRepo.GetByID(ctx, tenantID, id2)
	if err != nil {
		return err
	}

	if alreadyPaired(first, second) {
		return nil
	}

	if first.Reconciled || second.Reconciled {
		return fmt.Errorf("%w: entry already reconciled with another entry", domain.ErrReconciliationMismatch)
	}

	if first.EntryType == second.EntryType {
		return fmt.Errorf("%w: entries must have opposite types", domain.ErrReconciliationMismatch)
	}

	if !domain.AmountsMatch(first.Amount, second.Amount) {
		return fmt.Errorf("%w: amounts differ by more than %s", domain.ErrReconciliationMismatch, domain.BalanceEpsilon)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.MarkReconciled(ctx, tx, tenantID, first.ID, second.ID); err != nil {
		return err
	}

	if err := uc.entryRepo.MarkReconciled(ctx, tx, tenantID, second.ID, first.ID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	_ = uc.cache.InvalidateTenant(ctx, tenantID)

	return nil
}

func alreadyPaired(a, b *domain.LedgerEntry) bool {
	return a.Reconciled && b.Reconciled &&
		a.ReconciledWith != nil && *a.ReconciledWith == b.ID &&
		b.ReconciledWith != nil && *b.ReconciledWith == a.ID
}

// CreateChartAccount adds an account to the tenant's chart.
func (uc *LedgerUseCase) CreateChartAccount(ctx context.Context, account *domain.ChartAccount) error {
	if account.TenantID == "" {
		return domain.ErrMissingTenant
	}
	if account.ID == "" {
		account.ID = uc.idGen.Generate()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	if err := account.Validate(); err != nil {
		return err
	}

	return uc.chartRepo.Create(ctx, account)
}

// defaultChartAccounts is the starter chart for a new tenant. The codes
// match what automated posting uses.
var defaultChartAccounts = []struct {
	Code string
	Name string
	Type domain.AccountType
}{
	{AccountCash, "Cash at Bank", domain.AccountTypeAsset},
	{AccountReceivable, "Accounts Receivable", domain.AccountTypeAsset},
	{AccountPrepayments, "Prepayments", domain.AccountTypeAsset},
	{AccountVATInput, "VAT Input", domain.AccountTypeAsset},
	{AccountPayable, "Accounts Payable", domain.AccountTypeLiability},
	{AccountVATOutput, "VAT Output", domain.AccountTypeLiability},
	{AccountAccruals, "Accruals", domain.AccountTypeLiability},
	{"3000", "Retained Earnings", domain.AccountTypeEquity},
	{AccountRevenue, "Revenue", domain.AccountTypeRevenue},
	{AccountExpense, "General Expenses", domain.AccountTypeExpense},
}

// SeedDefaultChart creates the default chart of accounts for a tenant.
// Accounts that already exist are left untouched. Returns the number of
// accounts created.
func (uc *LedgerUseCase) SeedDefaultChart(ctx context.Context, tenantID string) (int, error) {
	if tenantID == "" {
		return 0, domain.ErrMissingTenant
	}

	created := 0
	for _, def := range defaultChartAccounts {
		_, err := uc.chartRepo.GetByCode(ctx, tenantID, def.Code)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return created, err
		}

		account := &domain.ChartAccount{
			TenantID: tenantID,
			Code:     def.Code,
			Name:     def.Name,
			Type:     def.Type,
			IsActive: true,
		}
		if err := uc.CreateChartAccount(ctx, account); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// ListChartAccounts lists the tenant's chart of accounts.
func (uc *LedgerUseCase) ListChartAccounts(ctx context.Context, tenantID string, limit, offset int) ([]*domain.ChartAccount, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.chartRepo.List(ctx, tenantID, limit, offset)
}
