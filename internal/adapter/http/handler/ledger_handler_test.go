package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finbooks/finbooks/internal/adapter/http/dto"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
	"github.com/finbooks/finbooks/internal/usecase/mocks"
)

func newLedgerHandler(entryRepo *mocks.MockEntryRepository) *LedgerHandler {
	ledgerUC := usecase.NewLedgerUseCase(
		mocks.NewMockTransactionManager(),
		entryRepo,
		mocks.NewMockChartRepository(),
		mocks.NewMockCache(),
		mocks.NewMockIDGenerator(),
	)
	return NewLedgerHandler(ledgerUC, usecase.NewDuplicateUseCase(entryRepo))
}

func seedEntry(repo *mocks.MockEntryRepository, id, accountCode string, amount int64) *domain.LedgerEntry {
	entry := &domain.LedgerEntry{
		ID:              id,
		TenantID:        "tenant-1",
		EntryType:       domain.EntryTypeDebit,
		AccountCode:     accountCode,
		AccountName:     "Expenses",
		Amount:          decimal.NewFromInt(amount),
		Currency:        "GBP",
		TransactionDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		CreatedBy:       "user-1",
		CreatedAt:       time.Now().UTC(),
	}
	repo.Seed(entry)
	return entry
}

// newTestRouter mounts handlers behind the tenant middleware the way
// the real router does, so URL params and tenant both resolve.
func newTestRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Tenant)
	return r
}

func newEntryRouter(h *LedgerHandler) http.Handler {
	r := newTestRouter()
	r.Get("/entries", h.ListEntries)
	r.Get("/entries/{id}", h.GetEntry)
	r.Post("/entries/reconcile", h.Reconcile)
	return r
}

func tenantRequest(method, target string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.Header.Set(middleware.TenantHeader, "tenant-1")
	return req
}

func TestLedgerHandler_GetEntry_Success(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	seedEntry(entryRepo, "e-1", "5000", 100)
	router := newEntryRouter(newLedgerHandler(entryRepo))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, tenantRequest(http.MethodGet, "/entries/e-1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.EntryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "e-1" || resp.AccountCode != "5000" {
		t.Fatalf("expected entry e-1, got %+v", resp)
	}
}

func TestLedgerHandler_GetEntry_NotFound(t *testing.T) {
	router := newEntryRouter(newLedgerHandler(mocks.NewMockEntryRepository()))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, tenantRequest(http.MethodGet, "/entries/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLedgerHandler_GetEntry_TenantIsolation(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	entry := seedEntry(entryRepo, "e-1", "5000", 100)
	entry.TenantID = "tenant-2"
	router := newEntryRouter(newLedgerHandler(entryRepo))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, tenantRequest(http.MethodGet, "/entries/e-1", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for another tenant's entry, got %d", rec.Code)
	}
}

func TestLedgerHandler_ListEntries_Filters(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	seedEntry(entryRepo, "e-1", "5000", 100)
	seedEntry(entryRepo, "e-2", "6000", 200)
	router := newEntryRouter(newLedgerHandler(entryRepo))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, tenantRequest(http.MethodGet, "/entries?account_code=5000", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page dto.EntryPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.Total != 1 || len(page.Entries) != 1 || page.Entries[0].AccountCode != "5000" {
		t.Fatalf("expected one entry on 5000, got %+v", page)
	}
}

func TestLedgerHandler_Reconcile_Mismatch(t *testing.T) {
	entryRepo := mocks.NewMockEntryRepository()
	// Two debits on different accounts cannot reconcile.
	seedEntry(entryRepo, "e-1", "5000", 100)
	seedEntry(entryRepo, "e-2", "6000", 100)
	router := newEntryRouter(newLedgerHandler(entryRepo))

	body, _ := json.Marshal(dto.ReconcileRequest{EntryID1: "e-1", EntryID2: "e-2"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, tenantRequest(http.MethodPost, "/entries/reconcile", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for mismatched entries, got %d", rec.Code)
	}
}
