package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/domain"
)

func TestPostTransactionRequest_ToUseCaseInput(t *testing.T) {
	ref := "INV-001"
	req := &PostTransactionRequest{
		Description:     "Office rent",
		TransactionDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedBy:       "user-1",
		TransactionRef:  &ref,
		Entries: []EntryItem{
			{EntryType: "debit", AccountCode: "7400", Amount: decimal.RequireFromString("120.00"), Currency: "GBP"},
			{EntryType: "credit", AccountCode: "1200", Amount: decimal.RequireFromString("120.00"), Currency: "GBP"},
		},
	}

	got := req.ToUseCaseInput()

	if got.Description != "Office rent" || got.CreatedBy != "user-1" {
		t.Fatalf("unexpected input header: %+v", got)
	}
	if got.TransactionRef == nil || *got.TransactionRef != "INV-001" {
		t.Fatalf("expected transaction ref carried over, got %v", got.TransactionRef)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if got.Entries[0].EntryType != domain.EntryTypeDebit || got.Entries[0].AccountCode != "7400" {
		t.Fatalf("unexpected first entry: %+v", got.Entries[0])
	}
	if !got.Entries[1].Amount.Equal(decimal.RequireFromString("120.00")) {
		t.Fatalf("unexpected second entry amount: %s", got.Entries[1].Amount)
	}
}

func TestCreateDocumentRequest_ToDomain(t *testing.T) {
	req := &CreateDocumentRequest{
		Vendor:           "Acme Supplies",
		Total:            decimal.RequireFromString("250.50"),
		TaxAmount:        decimal.RequireFromString("41.75"),
		Currency:         "GBP",
		DocumentDate:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		DocumentType:     "invoice",
		Confidence:       0.92,
		ValidationPassed: true,
	}

	doc := req.ToDomain("tenant-1")

	if doc.TenantID != "tenant-1" {
		t.Fatalf("expected tenant-1, got %s", doc.TenantID)
	}
	if doc.Status != domain.DocumentStatusValidated {
		t.Fatalf("expected validated status, got %s", doc.Status)
	}
	if doc.Extraction == nil || doc.Extraction.Vendor != "Acme Supplies" {
		t.Fatalf("unexpected extraction: %+v", doc.Extraction)
	}
	if !doc.Extraction.Total.Equal(decimal.RequireFromString("250.50")) {
		t.Fatalf("unexpected total: %s", doc.Extraction.Total)
	}
	if doc.Confidence != 0.92 || !doc.ValidationPassed {
		t.Fatalf("unexpected confidence fields: %+v", doc)
	}
}

func TestCreateChartAccountRequest_ToDomain(t *testing.T) {
	parent := "7000"
	req := &CreateChartAccountRequest{
		Code:       "7400",
		Name:       "Rent",
		Type:       "expense",
		ParentCode: &parent,
	}

	acc := req.ToDomain("tenant-1")

	if acc.TenantID != "tenant-1" || acc.Code != "7400" || acc.Name != "Rent" {
		t.Fatalf("unexpected account: %+v", acc)
	}
	if acc.Type != domain.AccountTypeExpense {
		t.Fatalf("expected expense type, got %s", acc.Type)
	}
	if acc.ParentCode == nil || *acc.ParentCode != "7000" {
		t.Fatalf("expected parent code 7000, got %v", acc.ParentCode)
	}
	if !acc.IsActive {
		t.Fatal("expected new account to be active")
	}
}

func TestCreateEntityRequest_ToUseCaseInput(t *testing.T) {
	parent := "entity-root"
	req := &CreateEntityRequest{
		Name:     "UK Subsidiary",
		Type:     "subsidiary",
		Currency: "GBP",
		ParentID: &parent,
	}

	got := req.ToUseCaseInput()

	if got.Name != "UK Subsidiary" || got.Currency != "GBP" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Type != domain.EntityTypeSubsidiary {
		t.Fatalf("expected subsidiary type, got %s", got.Type)
	}
	if got.ParentID == nil || *got.ParentID != "entity-root" {
		t.Fatalf("expected parent entity-root, got %v", got.ParentID)
	}
}

func TestCreateAccrualRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccrualRequest{
		AccountCode: "2100",
		Description: "Audit fees",
		Amount:      decimal.RequireFromString("5000"),
		Currency:    "GBP",
		PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	got := req.ToUseCaseInput()

	if got.AccountCode != "2100" || got.Description != "Audit fees" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("unexpected amount: %s", got.Amount)
	}
	if !got.PeriodEnd.After(got.PeriodStart) {
		t.Fatalf("unexpected period: %s - %s", got.PeriodStart, got.PeriodEnd)
	}
}
