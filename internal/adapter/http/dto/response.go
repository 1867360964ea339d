package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// EntryResponse represents a ledger entry.
type EntryResponse struct {
	ID              string           `json:"id"`
	EntityID        *string          `json:"entity_id,omitempty"`
	EntryType       string           `json:"entry_type"`
	AccountCode     string           `json:"account_code"`
	AccountName     string           `json:"account_name,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	Description     string           `json:"description,omitempty"`
	TransactionDate time.Time        `json:"transaction_date"`
	TaxAmount       *decimal.Decimal `json:"tax_amount,omitempty"`
	TaxRate         *decimal.Decimal `json:"tax_rate,omitempty"`
	DocumentID      *string          `json:"document_id,omitempty"`
	TransactionRef  *string          `json:"transaction_ref,omitempty"`
	Reconciled      bool             `json:"reconciled"`
	ReconciledWith  *string          `json:"reconciled_with,omitempty"`
	CreatedBy       string           `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		ID:              e.ID,
		EntityID:        e.EntityID,
		EntryType:       string(e.EntryType),
		AccountCode:     e.AccountCode,
		AccountName:     e.AccountName,
		Amount:          e.Amount,
		Currency:        e.Currency,
		Description:     e.Description,
		TransactionDate: e.TransactionDate,
		TaxAmount:       e.TaxAmount,
		TaxRate:         e.TaxRate,
		DocumentID:      e.DocumentID,
		TransactionRef:  e.TransactionRef,
		Reconciled:      e.Reconciled,
		ReconciledWith:  e.ReconciledWith,
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts a slice of domain entries.
func EntriesFromDomain(entries []*domain.LedgerEntry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = EntryFromDomain(e)
	}
	return out
}

// EntryPageResponse is a paginated list of entries.
type EntryPageResponse struct {
	Entries []EntryResponse `json:"entries"`
	Total   int             `json:"total"`
}

// PostResultResponse identifies a posted transaction.
type PostResultResponse struct {
	TransactionID string   `json:"transaction_id"`
	EntryIDs      []string `json:"entry_ids"`
}

// PostResultFromUseCase converts a posting result.
func PostResultFromUseCase(r *usecase.PostDoubleEntryResult) PostResultResponse {
	return PostResultResponse{
		TransactionID: r.TransactionID,
		EntryIDs:      r.EntryIDs,
	}
}

// BalanceResponse represents a computed account balance.
type BalanceResponse struct {
	AccountCode string          `json:"account_code"`
	AccountType string          `json:"account_type"`
	Balance     decimal.Decimal `json:"balance"`
	DebitTotal  decimal.Decimal `json:"debit_total"`
	CreditTotal decimal.Decimal `json:"credit_total"`
	AsOf        *time.Time      `json:"as_of,omitempty"`
}

// BalanceFromDomain converts a domain balance.
func BalanceFromDomain(b *domain.AccountBalance) BalanceResponse {
	return BalanceResponse{
		AccountCode: b.AccountCode,
		AccountType: string(b.AccountType),
		Balance:     b.Balance,
		DebitTotal:  b.DebitTotal,
		CreditTotal: b.CreditTotal,
		AsOf:        b.AsOf,
	}
}

// ChartAccountResponse represents a chart-of-accounts record.
type ChartAccountResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	ParentCode *string   `json:"parent_code,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// ChartAccountFromDomain converts a domain chart account.
func ChartAccountFromDomain(a *domain.ChartAccount) ChartAccountResponse {
	return ChartAccountResponse{
		ID:         a.ID,
		Code:       a.Code,
		Name:       a.Name,
		Type:       string(a.Type),
		ParentCode: a.ParentCode,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
	}
}

// ChartAccountsFromDomain converts a slice of chart accounts.
func ChartAccountsFromDomain(accounts []*domain.ChartAccount) []ChartAccountResponse {
	out := make([]ChartAccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = ChartAccountFromDomain(a)
	}
	return out
}

// CloseResponse represents a period close.
type CloseResponse struct {
	ID          string     `json:"id"`
	EntityID    *string    `json:"entity_id,omitempty"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	Status      string     `json:"status"`
	LockedAt    *time.Time `json:"locked_at,omitempty"`
	LockedBy    *string    `json:"locked_by,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	ClosedBy    *string    `json:"closed_by,omitempty"`
	Reports     []string   `json:"reports,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CloseFromDomain converts a domain period close.
func CloseFromDomain(c *domain.PeriodClose) CloseResponse {
	return CloseResponse{
		ID:          c.ID,
		EntityID:    c.EntityID,
		PeriodStart: c.PeriodStart,
		PeriodEnd:   c.PeriodEnd,
		Status:      string(c.Status),
		LockedAt:    c.LockedAt,
		LockedBy:    c.LockedBy,
		ClosedAt:    c.ClosedAt,
		ClosedBy:    c.ClosedBy,
		Reports:     c.Reports,
		CreatedAt:   c.CreatedAt,
	}
}

// TaskResponse represents one close checklist task.
type TaskResponse struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Priority      int            `json:"priority"`
	Status        string         `json:"status"`
	BlockerReason *string        `json:"blocker_reason,omitempty"`
	ResultData    map[string]any `json:"result_data,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TaskFromDomain converts a domain close task.
func TaskFromDomain(t *domain.CloseTask) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Type:          string(t.Type),
		Priority:      t.Priority,
		Status:        string(t.Status),
		BlockerReason: t.BlockerReason,
		ResultData:    t.ResultData,
		UpdatedAt:     t.UpdatedAt,
	}
}

// TasksFromDomain converts a slice of close tasks.
func TasksFromDomain(tasks []*domain.CloseTask) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = TaskFromDomain(t)
	}
	return out
}

// TaskRunSummaryResponse reports one execution pass over close tasks.
type TaskRunSummaryResponse struct {
	Executed  int `json:"executed"`
	Completed int `json:"completed"`
	Blocked   int `json:"blocked"`
	Manual    int `json:"manual"`
}

// VarianceAlertResponse represents a cash variance alert.
type VarianceAlertResponse struct {
	ID           string          `json:"id"`
	AccountCode  string          `json:"account_code"`
	Severity     string          `json:"severity"`
	CurrentValue decimal.Decimal `json:"current_value"`
	PriorValue   decimal.Decimal `json:"prior_value"`
	Drift        decimal.Decimal `json:"drift"`
	CreatedAt    time.Time       `json:"created_at"`
}

// VarianceAlertsFromDomain converts a slice of variance alerts.
func VarianceAlertsFromDomain(alerts []*domain.VarianceAlert) []VarianceAlertResponse {
	out := make([]VarianceAlertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = VarianceAlertResponse{
			ID:           a.ID,
			AccountCode:  a.AccountCode,
			Severity:     string(a.Severity),
			CurrentValue: a.CurrentValue,
			PriorValue:   a.PriorValue,
			Drift:        a.Drift,
			CreatedAt:    a.CreatedAt,
		}
	}
	return out
}

// EntityResponse represents a reporting entity.
type EntityResponse struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Currency  string    `json:"currency"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// EntityFromDomain converts a domain entity.
func EntityFromDomain(e *domain.Entity) EntityResponse {
	return EntityResponse{
		ID:        e.ID,
		ParentID:  e.ParentID,
		Name:      e.Name,
		Type:      string(e.Type),
		Currency:  e.Currency,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
	}
}

// EntityNodeResponse is an entity with its resolved children.
type EntityNodeResponse struct {
	Entity   EntityResponse       `json:"entity"`
	Children []EntityNodeResponse `json:"children,omitempty"`
}

// EntityNodesFromDomain converts a hierarchy of entity nodes.
func EntityNodesFromDomain(nodes []*domain.EntityNode) []EntityNodeResponse {
	out := make([]EntityNodeResponse, len(nodes))
	for i, n := range nodes {
		out[i] = EntityNodeResponse{
			Entity:   EntityFromDomain(n.Entity),
			Children: EntityNodesFromDomain(n.Children),
		}
	}
	return out
}

// IntercompanyResponse represents an intercompany transaction.
type IntercompanyResponse struct {
	ID              string          `json:"id"`
	FromEntityID    string          `json:"from_entity_id"`
	ToEntityID      string          `json:"to_entity_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	Eliminated      bool            `json:"eliminated"`
	EliminatedAt    *time.Time      `json:"eliminated_at,omitempty"`
}

// IntercompanyFromDomain converts a domain intercompany transaction.
func IntercompanyFromDomain(t *domain.IntercompanyTransaction) IntercompanyResponse {
	return IntercompanyResponse{
		ID:              t.ID,
		FromEntityID:    t.FromEntityID,
		ToEntityID:      t.ToEntityID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Description:     t.Description,
		TransactionDate: t.TransactionDate,
		Eliminated:      t.Eliminated,
		EliminatedAt:    t.EliminatedAt,
	}
}

// EntityProfitLossResponse is one entity line of the consolidated P&L.
type EntityProfitLossResponse struct {
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name"`
	Currency   string          `json:"currency"`
	Rate       decimal.Decimal `json:"rate"`
	Revenue    decimal.Decimal `json:"revenue"`
	Expenses   decimal.Decimal `json:"expenses"`
	NetIncome  decimal.Decimal `json:"net_income"`
}

// ConsolidatedPLResponse is the group profit and loss.
type ConsolidatedPLResponse struct {
	Currency        string                     `json:"currency"`
	PeriodStart     time.Time                  `json:"period_start"`
	PeriodEnd       time.Time                  `json:"period_end"`
	Revenue         decimal.Decimal            `json:"revenue"`
	Expenses        decimal.Decimal            `json:"expenses"`
	NetIncome       decimal.Decimal            `json:"net_income"`
	EliminatedTotal decimal.Decimal            `json:"eliminated_total"`
	EliminatedCount int                        `json:"eliminated_count"`
	EntityBreakdown []EntityProfitLossResponse `json:"entity_breakdown"`
}

// ConsolidatedPLFromUseCase converts a consolidated P&L.
func ConsolidatedPLFromUseCase(pl *usecase.ConsolidatedProfitLoss) ConsolidatedPLResponse {
	breakdown := make([]EntityProfitLossResponse, len(pl.EntityBreakdown))
	for i, line := range pl.EntityBreakdown {
		breakdown[i] = EntityProfitLossResponse{
			EntityID:   line.EntityID,
			EntityName: line.EntityName,
			Currency:   line.Currency,
			Rate:       line.Rate,
			Revenue:    line.Revenue,
			Expenses:   line.Expenses,
			NetIncome:  line.NetIncome,
		}
	}
	return ConsolidatedPLResponse{
		Currency:        pl.Currency,
		PeriodStart:     pl.PeriodStart,
		PeriodEnd:       pl.PeriodEnd,
		Revenue:         pl.Revenue,
		Expenses:        pl.Expenses,
		NetIncome:       pl.NetIncome,
		EliminatedTotal: pl.EliminatedTotal,
		EliminatedCount: pl.EliminatedCount,
		EntityBreakdown: breakdown,
	}
}

// BalanceSheetLineResponse is one account line of the balance sheet.
type BalanceSheetLineResponse struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceSheetResponse groups accounts into the three sections.
type BalanceSheetResponse struct {
	AsOf            time.Time                  `json:"as_of"`
	Assets          []BalanceSheetLineResponse `json:"assets"`
	Liabilities     []BalanceSheetLineResponse `json:"liabilities"`
	Equity          []BalanceSheetLineResponse `json:"equity"`
	EliminatedTotal decimal.Decimal            `json:"eliminated_total"`
	EliminatedCount int                        `json:"eliminated_count"`
}

// BalanceSheetFromUseCase converts a consolidated balance sheet.
func BalanceSheetFromUseCase(bs *usecase.ConsolidatedBalanceSheet) BalanceSheetResponse {
	convert := func(lines []usecase.BalanceSheetLine) []BalanceSheetLineResponse {
		out := make([]BalanceSheetLineResponse, len(lines))
		for i, l := range lines {
			out[i] = BalanceSheetLineResponse{
				AccountCode: l.AccountCode,
				AccountName: l.AccountName,
				Balance:     l.Balance,
			}
		}
		return out
	}
	return BalanceSheetResponse{
		AsOf:            bs.AsOf,
		Assets:          convert(bs.Assets),
		Liabilities:     convert(bs.Liabilities),
		Equity:          convert(bs.Equity),
		EliminatedTotal: bs.EliminatedTotal,
		EliminatedCount: bs.EliminatedCount,
	}
}

// RemeasurementLineResponse is one restated entry.
type RemeasurementLineResponse struct {
	EntryID        string          `json:"entry_id"`
	AccountCode    string          `json:"account_code"`
	Currency       string          `json:"currency"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Rate           decimal.Decimal `json:"rate"`
	Remeasured     decimal.Decimal `json:"remeasured"`
	GainLoss       decimal.Decimal `json:"gain_loss"`
}

// RemeasurementResponse is the outcome of an FX remeasurement run.
type RemeasurementResponse struct {
	BaseCurrency  string                      `json:"base_currency"`
	AsOf          time.Time                   `json:"as_of"`
	Lines         []RemeasurementLineResponse `json:"lines"`
	TotalGainLoss decimal.Decimal             `json:"total_gain_loss"`
}

// RemeasurementFromUseCase converts a remeasurement result.
func RemeasurementFromUseCase(r *usecase.RemeasurementResult) RemeasurementResponse {
	lines := make([]RemeasurementLineResponse, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = RemeasurementLineResponse{
			EntryID:        l.EntryID,
			AccountCode:    l.AccountCode,
			Currency:       l.Currency,
			OriginalAmount: l.OriginalAmount,
			Rate:           l.Rate,
			Remeasured:     l.Remeasured,
			GainLoss:       l.GainLoss,
		}
	}
	return RemeasurementResponse{
		BaseCurrency:  r.BaseCurrency,
		AsOf:          r.AsOf,
		Lines:         lines,
		TotalGainLoss: r.TotalGainLoss,
	}
}

// RateResponse represents a resolved exchange rate.
type RateResponse struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Date         time.Time       `json:"date"`
	Rate         decimal.Decimal `json:"rate"`
}

// SyncResultResponse reports a rate sync run.
type SyncResultResponse struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// DuplicateCandidateResponse is one ranked duplicate candidate.
type DuplicateCandidateResponse struct {
	Entry      EntryResponse `json:"entry"`
	Similarity float64       `json:"similarity"`
	Reason     string        `json:"reason"`
}

// DuplicatesFromUseCase converts ranked duplicate candidates.
func DuplicatesFromUseCase(candidates []usecase.DuplicateCandidate) []DuplicateCandidateResponse {
	out := make([]DuplicateCandidateResponse, len(candidates))
	for i, c := range candidates {
		out[i] = DuplicateCandidateResponse{
			Entry:      EntryFromDomain(c.Entry),
			Similarity: c.Similarity,
			Reason:     c.Reason,
		}
	}
	return out
}

// AccrualResponse represents an accrual.
type AccrualResponse struct {
	ID            string          `json:"id"`
	AccountCode   string          `json:"account_code"`
	Description   string          `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	Status        string          `json:"status"`
	TransactionID *string         `json:"transaction_id,omitempty"`
}

// AccrualFromDomain converts a domain accrual.
func AccrualFromDomain(a *domain.Accrual) AccrualResponse {
	return AccrualResponse{
		ID:            a.ID,
		AccountCode:   a.AccountCode,
		Description:   a.Description,
		Amount:        a.Amount,
		Currency:      a.Currency,
		PeriodStart:   a.PeriodStart,
		PeriodEnd:     a.PeriodEnd,
		Status:        string(a.Status),
		TransactionID: a.TransactionID,
	}
}

// PrepaymentResponse represents a prepayment.
type PrepaymentResponse struct {
	ID              string          `json:"id"`
	AccountCode     string          `json:"account_code"`
	Description     string          `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	Status          string          `json:"status"`
	MonthsTotal     int             `json:"months_total"`
	MonthsAmortized int             `json:"months_amortized"`
}

// PrepaymentFromDomain converts a domain prepayment.
func PrepaymentFromDomain(p *domain.Prepayment) PrepaymentResponse {
	return PrepaymentResponse{
		ID:              p.ID,
		AccountCode:     p.AccountCode,
		Description:     p.Description,
		Amount:          p.Amount,
		Currency:        p.Currency,
		PeriodStart:     p.PeriodStart,
		PeriodEnd:       p.PeriodEnd,
		Status:          string(p.Status),
		MonthsTotal:     p.MonthsTotal,
		MonthsAmortized: p.MonthsAmortized,
	}
}

// DocumentResponse represents a source document.
type DocumentResponse struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	Confidence       float64    `json:"confidence"`
	ValidationPassed bool       `json:"validation_passed"`
	PostedAt         *time.Time `json:"posted_at,omitempty"`
	PostedBy         *string    `json:"posted_by,omitempty"`
	TransactionID    *string    `json:"transaction_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// DocumentFromDomain converts a domain document.
func DocumentFromDomain(d *domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:               d.ID,
		Status:           string(d.Status),
		Confidence:       d.Confidence,
		ValidationPassed: d.ValidationPassed,
		PostedAt:         d.PostedAt,
		PostedBy:         d.PostedBy,
		TransactionID:    d.TransactionID,
		CreatedAt:        d.CreatedAt,
	}
}
