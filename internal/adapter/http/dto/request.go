package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

// EntryItem is one leg of a transaction to post.
type EntryItem struct {
	EntryType   string           `json:"entry_type"`
	AccountCode string           `json:"account_code"`
	AccountName string           `json:"account_name,omitempty"`
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency"`
	TaxAmount   *decimal.Decimal `json:"tax_amount,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	DocumentID  *string          `json:"document_id,omitempty"`
	EntityID    *string          `json:"entity_id,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

// PostTransactionRequest represents a balanced group of entries to post.
type PostTransactionRequest struct {
	Description     string      `json:"description"`
	TransactionDate time.Time   `json:"transaction_date"`
	CreatedBy       string      `json:"created_by"`
	TransactionRef  *string     `json:"transaction_ref,omitempty"`
	Entries         []EntryItem `json:"entries"`
}

// ToUseCaseInput converts to use case input.
func (r *PostTransactionRequest) ToUseCaseInput() usecase.PostDoubleEntryInput {
	entries := make([]usecase.PostEntryInput, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = usecase.PostEntryInput{
			EntryType:   domain.EntryType(e.EntryType),
			AccountCode: e.AccountCode,
			AccountName: e.AccountName,
			Amount:      e.Amount,
			Currency:    e.Currency,
			TaxAmount:   e.TaxAmount,
			TaxRate:     e.TaxRate,
			DocumentID:  e.DocumentID,
			EntityID:    e.EntityID,
			Metadata:    e.Metadata,
		}
	}
	return usecase.PostDoubleEntryInput{
		Description:     r.Description,
		TransactionDate: r.TransactionDate,
		CreatedBy:       r.CreatedBy,
		TransactionRef:  r.TransactionRef,
		Entries:         entries,
	}
}

// PostDocumentRequest represents a request to post a document's entries.
type PostDocumentRequest struct {
	UserID string `json:"user_id"`
}

// CreateDocumentRequest registers an extracted document for posting.
type CreateDocumentRequest struct {
	Vendor           string          `json:"vendor"`
	Total            decimal.Decimal `json:"total"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	Currency         string          `json:"currency"`
	DocumentDate     time.Time       `json:"document_date"`
	DocumentType     string          `json:"document_type"`
	Confidence       float64         `json:"confidence"`
	ValidationPassed bool            `json:"validation_passed"`
}

// ToDomain converts to a domain document.
func (r *CreateDocumentRequest) ToDomain(tenantID string) *domain.Document {
	now := time.Now().UTC()
	return &domain.Document{
		TenantID: tenantID,
		Status:   domain.DocumentStatusValidated,
		Extraction: &domain.DocumentExtraction{
			Vendor:       r.Vendor,
			Total:        r.Total,
			TaxAmount:    r.TaxAmount,
			Currency:     r.Currency,
			DocumentDate: r.DocumentDate,
			DocumentType: r.DocumentType,
		},
		Confidence:       r.Confidence,
		ValidationPassed: r.ValidationPassed,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CreateChartAccountRequest represents a request to create a chart account.
type CreateChartAccountRequest struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	ParentCode *string `json:"parent_code,omitempty"`
}

// ToDomain converts to a domain chart account.
func (r *CreateChartAccountRequest) ToDomain(tenantID string) *domain.ChartAccount {
	return &domain.ChartAccount{
		TenantID:   tenantID,
		Code:       r.Code,
		Name:       r.Name,
		Type:       domain.AccountType(r.Type),
		ParentCode: r.ParentCode,
		IsActive:   true,
	}
}

// ReconcileRequest pairs two entries for reconciliation.
type ReconcileRequest struct {
	EntryID1 string `json:"entry_id_1"`
	EntryID2 string `json:"entry_id_2"`
}

// CreateCloseRequest represents a request to open a period close.
type CreateCloseRequest struct {
	EntityID    *string   `json:"entity_id,omitempty"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// ActorRequest carries the acting user for close transitions.
type ActorRequest struct {
	Actor string `json:"actor"`
}

// CreateEntityRequest represents a request to create a reporting entity.
type CreateEntityRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Currency string  `json:"currency"`
	ParentID *string `json:"parent_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntityRequest) ToUseCaseInput() usecase.CreateEntityInput {
	return usecase.CreateEntityInput{
		Name:     r.Name,
		Type:     domain.EntityType(r.Type),
		Currency: r.Currency,
		ParentID: r.ParentID,
	}
}

// CreateIntercompanyRequest records a transaction between two entities.
type CreateIntercompanyRequest struct {
	FromEntityID    string          `json:"from_entity_id"`
	ToEntityID      string          `json:"to_entity_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Description     string          `json:"description"`
	TransactionDate time.Time       `json:"transaction_date"`
}

// ToDomain converts to a domain intercompany transaction.
func (r *CreateIntercompanyRequest) ToDomain(tenantID string) *domain.IntercompanyTransaction {
	return &domain.IntercompanyTransaction{
		TenantID:        tenantID,
		FromEntityID:    r.FromEntityID,
		ToEntityID:      r.ToEntityID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		Description:     r.Description,
		TransactionDate: r.TransactionDate,
	}
}

// ManualRateRequest enters a manual exchange rate.
type ManualRateRequest struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Date         time.Time       `json:"date"`
	Rate         decimal.Decimal `json:"rate"`
}

// SyncRatesRequest pre-fetches daily rates for a set of pairs.
type SyncRatesRequest struct {
	Base    string    `json:"base"`
	Targets []string  `json:"targets"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// CreateAccrualRequest represents a request to create an accrual.
type CreateAccrualRequest struct {
	AccountCode string          `json:"account_code"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccrualRequest) ToUseCaseInput() usecase.CreateAccrualInput {
	return usecase.CreateAccrualInput{
		AccountCode: r.AccountCode,
		Description: r.Description,
		Amount:      r.Amount,
		Currency:    r.Currency,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
	}
}

// CreatePrepaymentRequest represents a request to create a prepayment.
type CreatePrepaymentRequest struct {
	AccountCode string          `json:"account_code"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
}

// ToUseCaseInput converts to use case input.
func (r *CreatePrepaymentRequest) ToUseCaseInput() usecase.CreatePrepaymentInput {
	return usecase.CreatePrepaymentInput{
		AccountCode: r.AccountCode,
		Description: r.Description,
		Amount:      r.Amount,
		Currency:    r.Currency,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
	}
}
