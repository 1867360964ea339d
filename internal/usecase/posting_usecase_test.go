package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
	"github.com/finbooks/finbooks/internal/usecase/mocks"
)

func newPostingUseCase(entryRepo *mocks.MockEntryRepository, docRepo *mocks.MockDocumentRepository) *usecase.PostingUseCase {
	return usecase.NewPostingUseCase(
		mocks.NewMockTransactionManager(),
		entryRepo,
		mocks.NewMockTransactionRepository(),
		docRepo,
		mocks.NewMockCache(),
		mocks.NewMockIDGenerator(),
		0.8,
	)
}

func TestPostingUseCase_PostDoubleEntry(t *testing.T) {
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		entries     []usecase.PostEntryInput
		expectError bool
		errorType   error
	}{
		{
			name: "balanced pair",
			entries: []usecase.PostEntryInput{
				{EntryType: domain.EntryTypeDebit, AccountCode: "5000", AccountName: "Expenses", Amount: decimal.NewFromInt(100), Currency: "GBP"},
				{EntryType: domain.EntryTypeCredit, AccountCode: "1100", AccountName: "Cash", Amount: decimal.NewFromInt(100), Currency: "GBP"},
			},
		},
		{
			name: "multi leg balanced",
			entries: []usecase.PostEntryInput{
				{EntryType: domain.EntryTypeDebit, AccountCode: "5000", AccountName: "Expenses", Amount: decimal.RequireFromString("80.00"), Currency: "GBP"},
				{EntryType: domain.EntryTypeDebit, AccountCode: "1400", AccountName: "VAT Input", Amount: decimal.RequireFromString("20.00"), Currency: "GBP"},
				{EntryType: domain.EntryTypeCredit, AccountCode: "1100", AccountName: "Cash", Amount: decimal.RequireFromString("100.00"), Currency: "GBP"},
			},
		},
		{
			name: "imbalanced beyond epsilon",
			entries: []usecase.PostEntryInput{
				{EntryType: domain.EntryTypeDebit, AccountCode: "5000", AccountName: "Expenses", Amount: decimal.RequireFromString("100.02"), Currency: "GBP"},
				{EntryType: domain.EntryTypeCredit, AccountCode: "1100", AccountName: "Cash", Amount: decimal.RequireFromString("100.00"), Currency: "GBP"},
			},
			expectError: true,
			errorType:   domain.ErrImbalancedTransaction,
		},
		{
			name: "single entry rejected",
			entries: []usecase.PostEntryInput{
				{EntryType: domain.EntryTypeDebit, AccountCode: "5000", AccountName: "Expenses", Amount: decimal.NewFromInt(100), Currency: "GBP"},
			},
			expectError: true,
			errorType:   domain.ErrTooFewEntries,
		},
		{
			name: "missing account code",
			entries: []usecase.PostEntryInput{
				{EntryType: domain.EntryTypeDebit, AccountCode: "", AccountName: "Expenses", Amount: decimal.NewFromInt(100), Currency: "GBP"},
				{EntryType: domain.EntryTypeCredit, AccountCode: "1100", AccountName: "Cash", Amount: decimal.NewFromInt(100), Currency: "GBP"},
			},
			expectError: true,
			errorType:   domain.ErrMissingAccountCode,
		},
		{
			name: "negative amount",
			entries: []usecase.PostEntryInput{
				{EntryType: domain.EntryTypeDebit, AccountCode: "5000", AccountName: "Expenses", Amount: decimal.NewFromInt(-50), Currency: "GBP"},
				{EntryType: domain.EntryTypeCredit, AccountCode: "1100", AccountName: "Cash", Amount: decimal.NewFromInt(-50), Currency: "GBP"},
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entryRepo := mocks.NewMockEntryRepository()
			uc := newPostingUseCase(entryRepo, mocks.NewMockDocumentRepository())

			result, err := uc.PostDoubleEntry(context.Background(), "tenant-1", usecase.PostDoubleEntryInput{
				Description:     "test posting",
				TransactionDate: date,
				CreatedBy:       "user-1",
				Entries:         tt.entries,
			})

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.EntryIDs) != len(tt.entries) {
				t.Errorf("expected %d entry ids, got %d", len(tt.entries), len(result.EntryIDs))
			}
		})
	}
}

func TestPostingUseCase_PostDoubleEntry_MissingTenant(t *testing.T) {
	uc := newPostingUseCase(mocks.NewMockEntryRepository(), mocks.NewMockDocumentRepository())

	_, err := uc.PostDoubleEntry(context.Background(), "", usecase.PostDoubleEntryInput{})
	if !errors.Is(err, domain.ErrMissingTenant) {
		t.Errorf("expected ErrMissingTenant, got %v", err)
	}
}

func TestPostingUseCase_PostDoubleEntry_Idempotent(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	txRepo := mocks.NewMockTransactionRepository()
	uc := usecase.NewPostingUseCase(
		mocks.NewMockTransactionManager(),
		entryRepo,
		txRepo,
		mocks.NewMockDocumentRepository(),
		mocks.NewMockCache(),
		mocks.NewMockIDGenerator(),
		0.8,
	)

	ref := "bank-feed-42"
	input := usecase.PostDoubleEntryInput{
		Description:     "card payment",
		TransactionDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		CreatedBy:       "user-1",
		TransactionRef:  &ref,
		Entries: []usecase.PostEntryInput{
			{EntryType: domain.EntryTypeDebit, AccountCode: "5000", AccountName: "Expenses", Amount: decimal.NewFromInt(75), Currency: "GBP"},
			{EntryType: domain.EntryTypeCredit, AccountCode: "1100", AccountName: "Cash", Amount: decimal.NewFromInt(75), Currency: "GBP"},
		},
	}

	first, err := uc.PostDoubleEntry(context.Background(), "tenant-1", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := uc.PostDoubleEntry(context.Background(), "tenant-1", input)
	if err != nil {
		t.Fatalf("unexpected error on replay: %v", err)
	}

	if len(second.EntryIDs) != 2 {
		t.Fatalf("expected 2 entry ids, got %d", len(second.EntryIDs))
	}
	for i := range first.EntryIDs {
		if first.EntryIDs[i] != second.EntryIDs[i] {
			t.Errorf("replay produced new entry %s, want original %s", second.EntryIDs[i], first.EntryIDs[i])
		}
	}
	if second.TransactionID != first.TransactionID {
		t.Errorf("replay produced new transaction %s, want original %s", second.TransactionID, first.TransactionID)
	}
	if _, err := txRepo.GetByID(context.Background(), "tenant-1", first.TransactionID); err != nil {
		t.Errorf("original transaction record missing: %v", err)
	}

	// No duplicate rows behind the returned ids.
	page, _, err := entryRepo.List(context.Background(), "tenant-1", usecase.EntryFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected 2 stored entries, got %d", len(page))
	}
}

func TestPostingUseCase_PostDocumentToLedger(t *testing.T) {
	docDate := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		doc          *domain.Document
		expectError  bool
		errorType    error
		wantEntries  int
		wantAccounts []string
	}{
		{
			name: "expense receipt with vat",
			doc: &domain.Document{
				ID:       "doc-1",
				TenantID: "tenant-1",
				Status:   domain.DocumentStatusValidated,
				Extraction: &domain.DocumentExtraction{
					Vendor:       "Staples",
					Total:        decimal.RequireFromString("120.00"),
					TaxAmount:    decimal.RequireFromString("20.00"),
					Currency:     "GBP",
					DocumentDate: docDate,
					DocumentType: "receipt",
				},
				Confidence:       0.95,
				ValidationPassed: true,
			},
			wantEntries:  3,
			wantAccounts: []string{"5000", "1400", "1100"},
		},
		{
			name: "sales invoice",
			doc: &domain.Document{
				ID:       "doc-2",
				TenantID: "tenant-1",
				Status:   domain.DocumentStatusValidated,
				Extraction: &domain.DocumentExtraction{
					Vendor:       "Acme Ltd",
					Total:        decimal.RequireFromString("600.00"),
					TaxAmount:    decimal.RequireFromString("100.00"),
					Currency:     "GBP",
					DocumentDate: docDate,
					DocumentType: "invoice",
				},
				Confidence:       0.9,
				ValidationPassed: true,
			},
			wantEntries:  3,
			wantAccounts: []string{"1200", "4000", "2150"},
		},
		{
			name: "unknown type falls back to payable",
			doc: &domain.Document{
				ID:       "doc-3",
				TenantID: "tenant-1",
				Status:   domain.DocumentStatusValidated,
				Extraction: &domain.DocumentExtraction{
					Vendor:       "Unknown Corp",
					Total:        decimal.RequireFromString("50.00"),
					DocumentDate: docDate,
					DocumentType: "statement",
				},
				Confidence:       0.85,
				ValidationPassed: true,
			},
			wantEntries:  2,
			wantAccounts: []string{"5000", "2100"},
		},
		{
			name: "below confidence threshold",
			doc: &domain.Document{
				ID:       "doc-4",
				TenantID: "tenant-1",
				Status:   domain.DocumentStatusValidated,
				Extraction: &domain.DocumentExtraction{
					Vendor:       "Staples",
					Total:        decimal.RequireFromString("120.00"),
					DocumentDate: docDate,
					DocumentType: "receipt",
				},
				Confidence:       0.5,
				ValidationPassed: true,
			},
			expectError: true,
			errorType:   domain.ErrDocumentNotReady,
		},
		{
			name: "already posted",
			doc: &domain.Document{
				ID:       "doc-5",
				TenantID: "tenant-1",
				Status:   domain.DocumentStatusPosted,
				Extraction: &domain.DocumentExtraction{
					Vendor:       "Staples",
					Total:        decimal.RequireFromString("120.00"),
					DocumentDate: docDate,
					DocumentType: "receipt",
				},
				Confidence:       0.95,
				ValidationPassed: true,
			},
			expectError: true,
			errorType:   domain.ErrAlreadyPosted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entryRepo := mocks.NewMockEntryRepository()
			docRepo := mocks.NewMockDocumentRepository()
			docRepo.Create(context.Background(), tt.doc)

			uc := newPostingUseCase(entryRepo, docRepo)

			result, err := uc.PostDocumentToLedger(context.Background(), "tenant-1", tt.doc.ID, "user-1")

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.EntryIDs) != tt.wantEntries {
				t.Fatalf("expected %d entries, got %d", tt.wantEntries, len(result.EntryIDs))
			}

			seen := make(map[string]bool)
			for _, id := range result.EntryIDs {
				entry, err := entryRepo.GetByID(context.Background(), "tenant-1", id)
				if err != nil {
					t.Fatalf("entry %s not stored: %v", id, err)
				}
				seen[entry.AccountCode] = true
			}
			for _, code := range tt.wantAccounts {
				if !seen[code] {
					t.Errorf("expected an entry on account %s", code)
				}
			}

			doc, err := docRepo.GetByID(context.Background(), "tenant-1", tt.doc.ID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !doc.Posted() {
				t.Error("expected document marked posted")
			}
			if doc.TransactionID == nil || *doc.TransactionID != result.TransactionID {
				t.Error("expected document linked to posted transaction")
			}
		})
	}
}
