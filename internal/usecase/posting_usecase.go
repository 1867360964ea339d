package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

// PostingUseCase enforces the double-entry invariant and translates
// source documents into ledger entries.
type PostingUseCase struct {
	txManager           TransactionManager
	entryRepo           EntryRepository
	txRepo              TransactionRepository
	docRepo             DocumentRepository
	cache               Cache
	idGen               IDGenerator
	confidenceThreshold float64
}

// NewPostingUseCase creates a new PostingUseCase.
func NewPostingUseCase(
	txManager TransactionManager,
	entryRepo EntryRepository,
	txRepo TransactionRepository,
	docRepo DocumentRepository,
	cache Cache,
	idGen IDGenerator,
	confidenceThreshold float64,
) *PostingUseCase {
	return &PostingUseCase{
		txManager:           txManager,
		entryRepo:           entryRepo,
		txRepo:              txRepo,
		docRepo:             docRepo,
		cache:               cache,
		idGen:               idGen,
		confidenceThreshold: confidenceThreshold,
	}
}

// PostEntryInput is one leg of a transaction to post.
type PostEntryInput struct {
	EntryType   domain.EntryType
	AccountCode string
	AccountName string
	Amount      decimal.Decimal
	Currency    string
	TaxAmount   *decimal.Decimal
	TaxRate     *decimal.Decimal
	DocumentID  *string
	EntityID    *string
	Metadata    map[string]any
}

// PostDoubleEntryInput is a balanced group of at least two entries.
// TransactionRef, when set, makes the posting idempotent: re-posting
// the same ref yields the original entry ids.
type PostDoubleEntryInput struct {
	Description     string
	TransactionDate time.Time
	CreatedBy       string
	TransactionRef  *string
	Entries         []PostEntryInput
}

// PostDoubleEntryResult identifies the created transaction and entries.
type PostDoubleEntryResult struct {
	TransactionID string
	EntryIDs      []string
}

// PostDoubleEntry validates the double-entry invariant and persists all
// entries plus one transaction record atomically. Nothing is persisted
// when the invariant fails.
func (uc *PostingUseCase) PostDoubleEntry(ctx context.Context, tenantID string, input PostDoubleEntryInput) (*PostDoubleEntryResult, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	now := time.Now().UTC()

	entries := make([]*domain.LedgerEntry, 0, len(input.Entries))
	for _, in := range input.Entries {
		entry := &domain.LedgerEntry{
			ID:              uc.idGen.Generate(),
			TenantID:        tenantID,
			EntityID:        in.EntityID,
			EntryType:       in.EntryType,
			AccountCode:     in.AccountCode,
			AccountName:     in.AccountName,
			Amount:          in.Amount,
			Currency:        in.Currency,
			Description:     input.Description,
			TransactionDate: input.TransactionDate,
			TaxAmount:       in.TaxAmount,
			TaxRate:         in.TaxRate,
			DocumentID:      in.DocumentID,
			TransactionRef:  input.TransactionRef,
			Metadata:        in.Metadata,
			CreatedBy:       input.CreatedBy,
			CreatedAt:       now,
		}

		if err := entry.Validate(); err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	if _, _, err := domain.CheckBalanced(entries); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		TenantID:        tenantID,
		Description:     input.Description,
		TransactionDate: input.TransactionDate,
		TransactionRef:  input.TransactionRef,
		CreatedBy:       input.CreatedBy,
		CreatedAt:       now,
	}

	// Replaying a referenced posting reuses the original record instead
	// of leaving an orphan group per retry.
	txnID, err := uc.txRepo.CreateIdempotent(ctx, tx, txn)
	if err != nil {
		return nil, err
	}

	entryIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		id, _, err := uc.entryRepo.CreateIdempotent(ctx, tx, entry)
		if err != nil {
			return nil, err
		}

		entryIDs = append(entryIDs, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// Stale cached reads expire with the TTL; posting already succeeded.
	_ = uc.cache.InvalidateTenant(ctx, tenantID)

	return &PostDoubleEntryResult{
		TransactionID: txnID,
		EntryIDs:      entryIDs,
	}, nil
}

// RegisterDocument stores an extracted document so it can be posted
// later. The document must already carry its normalized extraction.
func (uc *PostingUseCase) RegisterDocument(ctx context.Context, tenantID string, doc *domain.Document) (*domain.Document, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	doc.ID = uc.idGen.Generate()
	doc.TenantID = tenantID

	if err := uc.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// GetDocument retrieves a document by id.
func (uc *PostingUseCase) GetDocument(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	return uc.docRepo.GetByID(ctx, tenantID, id)
}

// documentAccountPair is the fixed document-type to account mapping.
type documentAccountPair struct {
	debitCode   string
	debitName   string
	creditCode  string
	creditName  string
	expenseSide bool
}

var documentAccountMap = map[string]documentAccountPair{
	"invoice": {
		debitCode: AccountReceivable, debitName: "Accounts Receivable",
		creditCode: AccountRevenue, creditName: "Revenue",
	},
	"receipt": {
		debitCode: AccountExpense, debitName: "Expenses",
		creditCode: AccountCash, creditName: "Cash",
		expenseSide: true,
	},
	"expense": {
		debitCode: AccountExpense, debitName: "Expenses",
		creditCode: AccountCash, creditName: "Cash",
		expenseSide: true,
	},
}

var documentAccountDefault = documentAccountPair{
	debitCode: AccountExpense, debitName: "Expenses",
	creditCode: AccountPayable, creditName: "Accounts Payable",
	expenseSide: true,
}

// PostDocumentToLedger derives a balanced transaction from a validated
// document's normalized extraction and posts it. The document is marked
// posted only after the posting succeeds.
func (uc *PostingUseCase) PostDocumentToLedger(ctx context.Context, tenantID, documentID, userID string) (*PostDoubleEntryResult, error) {
	doc, err := uc.docRepo.GetByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	if err := doc.ReadyToPost(uc.confidenceThreshold); err != nil {
		return nil, err
	}

	ext := doc.Extraction
	pair, ok := documentAccountMap[ext.DocumentType]
	if !ok {
		pair = documentAccountDefault
	}

	gross := ext.Total
	tax := ext.TaxAmount
	net := gross
	if tax.IsPositive() {
		net = gross.Sub(tax)
	}

	currency := ext.Currency
	if currency == "" {
		currency = "GBP"
	}
	ref := "doc:" + documentID

	var entries []PostEntryInput
	if pair.expenseSide {
		// Purchases: expense net of VAT, reclaimable VAT input, cash or
		// payable for the gross.
		entries = append(entries, PostEntryInput{
			EntryType:   domain.EntryTypeDebit,
			AccountCode: pair.debitCode,
			AccountName: pair.debitName,
			Amount:      net,
			Currency:    currency,
			DocumentID:  &documentID,
		})
		if tax.IsPositive() {
			entries = append(entries, PostEntryInput{
				EntryType:   domain.EntryTypeDebit,
				AccountCode: AccountVATInput,
				AccountName: "VAT Input",
				Amount:      tax,
				Currency:    currency,
				TaxAmount:   &tax,
				DocumentID:  &documentID,
			})
		}
		entries = append(entries, PostEntryInput{
			EntryType:   domain.EntryTypeCredit,
			AccountCode: pair.creditCode,
			AccountName: pair.creditName,
			Amount:      gross,
			Currency:    currency,
			DocumentID:  &documentID,
		})
	} else {
		// Sales: receivable for the gross, revenue net of VAT, VAT output
		// owed to the tax authority.
		entries = append(entries, PostEntryInput{
			EntryType:   domain.EntryTypeDebit,
			AccountCode: pair.debitCode,
			AccountName: pair.debitName,
			Amount:      gross,
			Currency:    currency,
			DocumentID:  &documentID,
		})
		entries = append(entries, PostEntryInput{
			EntryType:   domain.EntryTypeCredit,
			AccountCode: pair.creditCode,
			AccountName: pair.creditName,
			Amount:      net,
			Currency:    currency,
			DocumentID:  &documentID,
		})
		if tax.IsPositive() {
			entries = append(entries, PostEntryInput{
				EntryType:   domain.EntryTypeCredit,
				AccountCode: AccountVATOutput,
				AccountName: "VAT Output",
				Amount:      tax,
				Currency:    currency,
				TaxAmount:   &tax,
				DocumentID:  &documentID,
			})
		}
	}

	result, err := uc.PostDoubleEntry(ctx, tenantID, PostDoubleEntryInput{
		Description:     ext.Vendor + " (" + ext.DocumentType + ")",
		TransactionDate: ext.DocumentDate,
		CreatedBy:       userID,
		TransactionRef:  &ref,
		Entries:         entries,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.docRepo.MarkPosted(ctx, tenantID, documentID, result.TransactionID, userID, time.Now().UTC()); err != nil {
		return nil, err
	}

	return result, nil
}
