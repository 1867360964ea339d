package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbooks/finbooks/internal/adapter/http/dto"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

// LedgerHandler handles ledger query and reconciliation HTTP requests.
type LedgerHandler struct {
	ledgerUC    *usecase.LedgerUseCase
	duplicateUC *usecase.DuplicateUseCase
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC *usecase.LedgerUseCase, duplicateUC *usecase.DuplicateUseCase) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, duplicateUC: duplicateUC}
}

// GetEntry retrieves a ledger entry by ID.
func (h *LedgerHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	entry, err := h.ledgerUC.GetEntry(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get entry", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// ListEntries lists ledger entries matching the query filters.
func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	filter := usecase.EntryFilter{
		StartDate:   parseDateQuery(r, "start_date"),
		EndDate:     parseDateQuery(r, "end_date"),
		AccountCode: r.URL.Query().Get("account_code"),
		EntryType:   domain.EntryType(r.URL.Query().Get("entry_type")),
		Limit:       parseIntQuery(r, "limit", 50),
		Offset:      parseIntQuery(r, "offset", 0),
	}
	if val := r.URL.Query().Get("reconciled"); val == "true" || val == "false" {
		reconciled := val == "true"
		filter.Reconciled = &reconciled
	}

	page, err := h.ledgerUC.GetEntries(r.Context(), tenantID, filter)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list entries", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntryPageResponse{
		Entries: dto.EntriesFromDomain(page.Entries),
		Total:   page.Total,
	})
}

// GetBalance computes an account balance, optionally as of a date.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())
	asOf := parseDateQuery(r, "as_of")

	balance, err := h.ledgerUC.GetAccountBalance(r.Context(), tenantID, code, asOf)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

// Reconcile pairs two opposing entries.
func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req dto.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	if err := h.ledgerUC.ReconcileEntries(r.Context(), tenantID, req.EntryID1, req.EntryID2); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reconcile entries", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}

// DetectDuplicates ranks likely duplicates of an entry.
func (h *LedgerHandler) DetectDuplicates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	candidates, err := h.duplicateUC.DetectDuplicates(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to detect duplicates", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.DuplicatesFromUseCase(candidates))
}

// CreateChartAccount creates a chart-of-accounts record.
func (h *LedgerHandler) CreateChartAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateChartAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())
	account := req.ToDomain(tenantID)

	if err := h.ledgerUC.CreateChartAccount(r.Context(), account); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create account", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.ChartAccountFromDomain(account))
}

// SeedChartAccounts creates the tenant's default chart of accounts.
func (h *LedgerHandler) SeedChartAccounts(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	created, err := h.ledgerUC.SeedDefaultChart(r.Context(), tenantID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to seed chart of accounts", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"created": created})
}

// ListChartAccounts lists the chart of accounts.
func (h *LedgerHandler) ListChartAccounts(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	limit := parseIntQuery(r, "limit", 100)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.ledgerUC.ListChartAccounts(r.Context(), tenantID, limit, offset)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list accounts", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ChartAccountsFromDomain(accounts))
}
