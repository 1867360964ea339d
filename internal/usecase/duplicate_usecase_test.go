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

func TestDuplicateUseCase_DetectDuplicates(t *testing.T) {
	date := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	docID := "doc-7"

	subject := &domain.LedgerEntry{
		ID:              "subject",
		TenantID:        "tenant-1",
		EntryType:       domain.EntryTypeDebit,
		AccountCode:     "5000",
		AccountName:     "Expenses",
		Amount:          decimal.RequireFromString("150.00"),
		Currency:        "GBP",
		Description:     "AWS invoice May",
		TransactionDate: date,
		DocumentID:      &docID,
	}

	sameDoc := &domain.LedgerEntry{
		ID: "same-doc", TenantID: "tenant-1", EntryType: domain.EntryTypeDebit,
		AccountCode: "5010", AccountName: "Hosting",
		Amount: decimal.RequireFromString("150.00"), Currency: "GBP",
		Description:     "AWS invoice May reposted",
		TransactionDate: date.AddDate(0, 0, 3),
		DocumentID:      &docID,
	}
	nearMiss := &domain.LedgerEntry{
		ID: "near-miss", TenantID: "tenant-1", EntryType: domain.EntryTypeDebit,
		AccountCode: "5000", AccountName: "Expenses",
		Amount: decimal.RequireFromString("150.01"), Currency: "GBP",
		Description:     "card payment",
		TransactionDate: date.AddDate(0, 0, 1),
	}
	sameDescription := &domain.LedgerEntry{
		ID: "same-desc", TenantID: "tenant-1", EntryType: domain.EntryTypeDebit,
		AccountCode: "5020", AccountName: "Cloud",
		Amount: decimal.RequireFromString("150.40"), Currency: "GBP",
		Description:     "AWS invoice May",
		TransactionDate: date.AddDate(0, 0, 14),
	}
	unrelated := &domain.LedgerEntry{
		ID: "unrelated", TenantID: "tenant-1", EntryType: domain.EntryTypeCredit,
		AccountCode: "1100", AccountName: "Cash",
		Amount: decimal.RequireFromString("999.00"), Currency: "GBP",
		Description:     "rent",
		TransactionDate: date,
	}

	entryRepo := mocks.NewMockEntryRepository()
	entryRepo.Seed(subject, sameDoc, nearMiss, sameDescription, unrelated)

	uc := usecase.NewDuplicateUseCase(entryRepo)
	candidates, err := uc.DetectDuplicates(context.Background(), "tenant-1", "subject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}

	// Ranked by similarity: document match first, then account/amount,
	// then description.
	want := []struct {
		id         string
		similarity float64
	}{
		{"same-doc", 1.0},
		{"near-miss", 0.95},
		{"same-desc", 0.75},
	}
	for i, w := range want {
		if candidates[i].Entry.ID != w.id {
			t.Errorf("rank %d: expected %s, got %s", i, w.id, candidates[i].Entry.ID)
		}
		if candidates[i].Similarity != w.similarity {
			t.Errorf("rank %d: expected similarity %.2f, got %.2f", i, w.similarity, candidates[i].Similarity)
		}
	}
}

func TestDuplicateUseCase_DetectDuplicates_KeepsHighestScore(t *testing.T) {
	date := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	docID := "doc-9"

	subject := &domain.LedgerEntry{
		ID: "subject", TenantID: "tenant-1", EntryType: domain.EntryTypeDebit,
		AccountCode: "5000", AccountName: "Expenses",
		Amount: decimal.RequireFromString("80.00"), Currency: "GBP",
		Description:     "printer ink",
		TransactionDate: date,
		DocumentID:      &docID,
	}
	// Matches every heuristic at once; must surface once with score 1.0.
	twin := &domain.LedgerEntry{
		ID: "twin", TenantID: "tenant-1", EntryType: domain.EntryTypeDebit,
		AccountCode: "5000", AccountName: "Expenses",
		Amount: decimal.RequireFromString("80.00"), Currency: "GBP",
		Description:     "printer ink",
		TransactionDate: date,
		DocumentID:      &docID,
	}

	entryRepo := mocks.NewMockEntryRepository()
	entryRepo.Seed(subject, twin)

	uc := usecase.NewDuplicateUseCase(entryRepo)
	candidates, err := uc.DetectDuplicates(context.Background(), "tenant-1", "subject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Similarity != 1.0 {
		t.Errorf("expected highest score kept, got %.2f", candidates[0].Similarity)
	}
}

func TestDuplicateUseCase_DetectDuplicates_UnknownEntry(t *testing.T) {
	uc := usecase.NewDuplicateUseCase(mocks.NewMockEntryRepository())

	_, err := uc.DetectDuplicates(context.Background(), "tenant-1", "missing")
	if !errors.Is(err, domain.ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}
