package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// ConsolidationUseCase builds the entity hierarchy and produces
// consolidated group figures across it.
type ConsolidationUseCase struct {
	txManager    TransactionManager
	entityRepo   EntityRepository
	intercompany IntercompanyRepository
	entryRepo    EntryRepository
	rates        RateSource
	idGen        IDGenerator
}

// NewConsolidationUseCase creates a new ConsolidationUseCase.
func NewConsolidationUseCase(
	txManager TransactionManager,
	entityRepo EntityRepository,
	intercompany IntercompanyRepository,
	entryRepo EntryRepository,
	rates RateSource,
	idGen IDGenerator,
) *ConsolidationUseCase {
	return &ConsolidationUseCase{
		txManager:    txManager,
		entityRepo:   entityRepo,
		intercompany: intercompany,
		entryRepo:    entryRepo,
		rates:        rates,
		idGen:        idGen,
	}
}

// CreateEntityInput carries the fields for creating an entity.
type CreateEntityInput struct {
	Name     string
	Type     domain.EntityType
	Currency string
	ParentID *string
}

// CreateEntity registers a reporting entity under the tenant.
func (uc *ConsolidationUseCase) CreateEntity(ctx context.Context, tenantID string, input CreateEntityInput) (*domain.Entity, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	now := time.Now().UTC()
	entity := &domain.Entity{
		ID:        uc.idGen.Generate(),
		TenantID:  tenantID,
		ParentID:  input.ParentID,
		Name:      input.Name,
		Type:      input.Type,
		Currency:  input.Currency,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entity.Validate(); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		if _, err := uc.entityRepo.GetByID(ctx, tenantID, *input.ParentID); err != nil {
			return nil, fmt.Errorf("resolve parent entity: %w", err)
		}
	}

	if err := uc.entityRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

// GetEntity retrieves one entity.
func (uc *ConsolidationUseCase) GetEntity(ctx context.Context, tenantID, entityID string) (*domain.Entity, error) {
	return uc.entityRepo.GetByID(ctx, tenantID, entityID)
}

// GetEntityHierarchy returns the tenant's entities as a forest of
// trees. Entities whose parent is missing surface as roots rather than
// disappearing.
func (uc *ConsolidationUseCase) GetEntityHierarchy(ctx context.Context, tenantID string) ([]*domain.EntityNode, error) {
	entities, err := uc.entityRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*domain.EntityNode, len(entities))
	for _, entity := range entities {
		nodes[entity.ID] = &domain.EntityNode{Entity: entity}
	}

	var roots []*domain.EntityNode
	for _, entity := range entities {
		node := nodes[entity.ID]
		if entity.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*entity.ParentID]
		if !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return roots, nil
}

// EntityProfitLoss is one entity's contribution to the consolidated
// P&L, translated into the reporting currency.
type EntityProfitLoss struct {
	EntityID   string
	EntityName string
	Currency   string
	Rate       decimal.Decimal
	Revenue    decimal.Decimal
	Expenses   decimal.Decimal
	NetIncome  decimal.Decimal
}

// ConsolidatedProfitLoss is the group P&L. Revenue and expenses are
// reported gross; intercompany eliminations are surfaced separately.
type ConsolidatedProfitLoss struct {
	TenantID        string
	Currency        string
	PeriodStart     time.Time
	PeriodEnd       time.Time
	Revenue         decimal.Decimal
	Expenses        decimal.Decimal
	NetIncome       decimal.Decimal
	EliminatedTotal decimal.Decimal
	EliminatedCount int
	EntityBreakdown []EntityProfitLoss
}

// GetConsolidatedProfitLoss aggregates revenue (credit entries on
// revenue accounts) and expenses (debit entries on expense accounts)
// across the selected active entities, translating each entity's
// figures at the period-end spot rate, then eliminates pending
// intercompany transactions between those same entities. An empty
// entityIDs selects every active entity.
func (uc *ConsolidationUseCase) GetConsolidatedProfitLoss(ctx context.Context, tenantID string, entityIDs []string, reportingCurrency string, periodStart, periodEnd time.Time) (*ConsolidatedProfitLoss, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	if err := domain.ValidateCurrency(reportingCurrency); err != nil {
		return nil, err
	}
	if !periodEnd.After(periodStart) {
		return nil, domain.ErrInvalidPeriod
	}

	entities, err := uc.entityRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &ConsolidatedProfitLoss{
		TenantID:    tenantID,
		Currency:    reportingCurrency,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Revenue:     decimal.Zero,
		Expenses:    decimal.Zero,
	}

	selected := make(map[string]bool, len(entityIDs))
	for _, id := range entityIDs {
		selected[id] = true
	}

	included := make([]string, 0, len(entities))
	for _, entity := range entities {
		if !entity.IsActive {
			continue
		}
		if len(selected) > 0 && !selected[entity.ID] {
			continue
		}
		included = append(included, entity.ID)

		entityID := entity.ID
		revenue, err := uc.entryRepo.SumByPrefix(ctx, tenantID, &entityID, []string{PrefixRevenue}, domain.EntryTypeCredit, periodStart, periodEnd)
		if err != nil {
			return nil, err
		}
		expenses, err := uc.entryRepo.SumByPrefix(ctx, tenantID, &entityID, []string{PrefixExpense, PrefixExpense2}, domain.EntryTypeDebit, periodStart, periodEnd)
		if err != nil {
			return nil, err
		}

		rate := decimal.NewFromInt(1)
		if entity.Currency != reportingCurrency {
			rate, err = uc.rates.GetRate(ctx, tenantID, entity.Currency, reportingCurrency, periodEnd)
			if err != nil {
				return nil, fmt.Errorf("translate entity %s: %w", entity.ID, err)
			}
		}

		revenue = revenue.Mul(rate).Round(2)
		expenses = expenses.Mul(rate).Round(2)

		report.Revenue = report.Revenue.Add(revenue)
		report.Expenses = report.Expenses.Add(expenses)
		report.EntityBreakdown = append(report.EntityBreakdown, EntityProfitLoss{
			EntityID:   entity.ID,
			EntityName: entity.Name,
			Currency:   entity.Currency,
			Rate:       rate,
			Revenue:    revenue,
			Expenses:   expenses,
			NetIncome:  revenue.Sub(expenses),
		})
	}

	report.NetIncome = report.Revenue.Sub(report.Expenses)

	eliminated, count, err := uc.EliminateIntercompanyTransactions(ctx, tenantID, included, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	report.EliminatedTotal = eliminated
	report.EliminatedCount = count

	return report, nil
}

// CreateIntercompanyTransaction records a transaction between two
// entities of the tenant so it can be eliminated at consolidation.
func (uc *ConsolidationUseCase) CreateIntercompanyTransaction(ctx context.Context, tenantID string, txn *domain.IntercompanyTransaction) (*domain.IntercompanyTransaction, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	if err := domain.ValidateAmount(txn.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCurrency(txn.Currency); err != nil {
		return nil, err
	}

	if _, err := uc.entityRepo.GetByID(ctx, tenantID, txn.FromEntityID); err != nil {
		return nil, fmt.Errorf("resolve source entity: %w", err)
	}
	if _, err := uc.entityRepo.GetByID(ctx, tenantID, txn.ToEntityID); err != nil {
		return nil, fmt.Errorf("resolve target entity: %w", err)
	}

	txn.ID = uc.idGen.Generate()
	txn.TenantID = tenantID
	txn.Eliminated = false
	txn.EliminatedAt = nil
	txn.CreatedAt = time.Now().UTC()

	if err := uc.intercompany.Create(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

// EliminateIntercompanyTransactions marks pending intercompany
// transactions between the given entities as eliminated and returns the
// eliminated total. Already-eliminated transactions are never touched
// again.
func (uc *ConsolidationUseCase) EliminateIntercompanyTransactions(ctx context.Context, tenantID string, entityIDs []string, periodStart, periodEnd time.Time) (decimal.Decimal, int, error) {
	pending, err := uc.intercompany.ListPending(ctx, tenantID, entityIDs, periodStart, periodEnd)
	if err != nil {
		return decimal.Zero, 0, err
	}
	if len(pending) == 0 {
		return decimal.Zero, 0, nil
	}

	total := decimal.Zero
	ids := make([]string, 0, len(pending))
	for _, txn := range pending {
		total = total.Add(txn.Amount)
		ids = append(ids, txn.ID)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return decimal.Zero, 0, err
	}
	defer tx.Rollback(ctx)

	if err := uc.intercompany.MarkEliminated(ctx, tx, tenantID, ids, time.Now().UTC()); err != nil {
		return decimal.Zero, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, 0, err
	}

	return total, len(pending), nil
}

// RemeasurementLine is one foreign-currency entry restated at the
// period-end rate.
type RemeasurementLine struct {
	EntryID        string
	AccountCode    string
	Currency       string
	OriginalAmount decimal.Decimal
	Rate           decimal.Decimal
	Remeasured     decimal.Decimal
	GainLoss       decimal.Decimal
}

// RemeasurementResult is the outcome of an FX remeasurement run.
type RemeasurementResult struct {
	BaseCurrency  string
	AsOf          time.Time
	Lines         []RemeasurementLine
	TotalGainLoss decimal.Decimal
}

// PerformFXRemeasurement restates the period's foreign-currency entries
// at the period-end spot rate and reports the unrealized gain or loss
// per entry. Entries whose rate cannot be resolved fail the run with
// the rate error.
func (uc *ConsolidationUseCase) PerformFXRemeasurement(ctx context.Context, tenantID, baseCurrency string, periodStart, periodEnd time.Time) (*RemeasurementResult, error) {
	if err := domain.ValidateCurrency(baseCurrency); err != nil {
		return nil, err
	}

	entries, err := uc.entryRepo.ListForeignCurrency(ctx, tenantID, baseCurrency, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	result := &RemeasurementResult{
		BaseCurrency:  baseCurrency,
		AsOf:          periodEnd,
		TotalGainLoss: decimal.Zero,
	}

	rateCache := make(map[string]decimal.Decimal)
	for _, entry := range entries {
		rate, ok := rateCache[entry.Currency]
		if !ok {
			rate, err = uc.rates.GetRate(ctx, tenantID, entry.Currency, baseCurrency, periodEnd)
			if err != nil {
				if errors.Is(err, domain.ErrRateNotFound) {
					return nil, fmt.Errorf("remeasure %s entries: %w", entry.Currency, err)
				}
				return nil, err
			}
			rateCache[entry.Currency] = rate
		}

		remeasured := entry.Amount.Mul(rate).Round(2)
		gainLoss := remeasured.Sub(entry.Amount)
		result.Lines = append(result.Lines, RemeasurementLine{
			EntryID:        entry.ID,
			AccountCode:    entry.AccountCode,
			Currency:       entry.Currency,
			OriginalAmount: entry.Amount,
			Rate:           rate,
			Remeasured:     remeasured,
			GainLoss:       gainLoss,
		})
		result.TotalGainLoss = result.TotalGainLoss.Add(gainLoss)
	}

	return result, nil
}

// BalanceSheetLine is one account line of the consolidated balance
// sheet.
type BalanceSheetLine struct {
	AccountCode string
	AccountName string
	Balance     decimal.Decimal
}

// ConsolidatedBalanceSheet groups trial-balance accounts into assets,
// liabilities and equity as of the period end. Intercompany
// eliminations are surfaced separately, like on the consolidated P&L.
type ConsolidatedBalanceSheet struct {
	TenantID        string
	AsOf            time.Time
	Assets          []BalanceSheetLine
	Liabilities     []BalanceSheetLine
	Equity          []BalanceSheetLine
	EliminatedTotal decimal.Decimal
	EliminatedCount int
}

// GetConsolidatedBalanceSheet builds a balance sheet from the trial
// balance, classifying accounts by code prefix with the conventional
// sign for each section. Pending intercompany transactions between the
// tenant's active entities up to asOf are eliminated first.
func (uc *ConsolidationUseCase) GetConsolidatedBalanceSheet(ctx context.Context, tenantID string, asOf time.Time) (*ConsolidatedBalanceSheet, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	entities, err := uc.entityRepo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	active := make([]string, 0, len(entities))
	for _, entity := range entities {
		if entity.IsActive {
			active = append(active, entity.ID)
		}
	}

	eliminated, count, err := uc.EliminateIntercompanyTransactions(ctx, tenantID, active, time.Time{}, asOf)
	if err != nil {
		return nil, err
	}

	rows, err := uc.entryRepo.TrialBalance(ctx, tenantID, time.Time{}, asOf)
	if err != nil {
		return nil, err
	}

	sheet := &ConsolidatedBalanceSheet{
		TenantID:        tenantID,
		AsOf:            asOf,
		EliminatedTotal: eliminated,
		EliminatedCount: count,
	}
	for _, row := range rows {
		line := BalanceSheetLine{
			AccountCode: row.AccountCode,
			AccountName: row.AccountName,
		}
		switch {
		case hasPrefix(row.AccountCode, PrefixAsset):
			line.Balance = row.DebitTotal.Sub(row.CreditTotal)
			sheet.Assets = append(sheet.Assets, line)
		case hasPrefix(row.AccountCode, PrefixLiability):
			line.Balance = row.CreditTotal.Sub(row.DebitTotal)
			sheet.Liabilities = append(sheet.Liabilities, line)
		case hasPrefix(row.AccountCode, PrefixEquity):
			line.Balance = row.CreditTotal.Sub(row.DebitTotal)
			sheet.Equity = append(sheet.Equity, line)
		}
	}

	return sheet, nil
}
