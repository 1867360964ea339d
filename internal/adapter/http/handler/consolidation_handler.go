package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finbooks/finbooks/internal/adapter/http/dto"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	"github.com/finbooks/finbooks/internal/usecase"
)

// ConsolidationHandler handles entity and consolidation HTTP requests.
type ConsolidationHandler struct {
	consolidationUC *usecase.ConsolidationUseCase
}

// NewConsolidationHandler creates a new ConsolidationHandler.
func NewConsolidationHandler(consolidationUC *usecase.ConsolidationUseCase) *ConsolidationHandler {
	return &ConsolidationHandler{consolidationUC: consolidationUC}
}

// CreateEntity creates a reporting entity.
func (h *ConsolidationHandler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	entity, err := h.consolidationUC.CreateEntity(r.Context(), tenantID, req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create entity", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.EntityFromDomain(entity))
}

// GetEntity retrieves an entity by ID.
func (h *ConsolidationHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entity ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	entity, err := h.consolidationUC.GetEntity(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get entity", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntityFromDomain(entity))
}

// GetHierarchy returns the entity tree rooted at top-level entities.
func (h *ConsolidationHandler) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	nodes, err := h.consolidationUC.GetEntityHierarchy(r.Context(), tenantID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get entity hierarchy", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntityNodesFromDomain(nodes))
}

// CreateIntercompany records a transaction between two entities.
func (h *ConsolidationHandler) CreateIntercompany(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateIntercompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	txn, err := h.consolidationUC.CreateIntercompanyTransaction(r.Context(), tenantID, req.ToDomain(tenantID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create intercompany transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.IntercompanyFromDomain(txn))
}

// GetProfitLoss builds the consolidated P&L for a period. An optional
// comma-separated entity_ids query restricts the consolidation scope;
// omitting it consolidates every active entity.
func (h *ConsolidationHandler) GetProfitLoss(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "GBP"
	}

	var entityIDs []string
	if raw := r.URL.Query().Get("entity_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				entityIDs = append(entityIDs, id)
			}
		}
	}

	now := time.Now().UTC()
	periodStart := parseDateQueryDefault(r, "period_start", now.AddDate(0, -1, 0))
	periodEnd := parseDateQueryDefault(r, "period_end", now)

	pl, err := h.consolidationUC.GetConsolidatedProfitLoss(r.Context(), tenantID, entityIDs, currency, periodStart, periodEnd)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to build profit and loss", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ConsolidatedPLFromUseCase(pl))
}

// GetBalanceSheet builds the consolidated balance sheet as of a date.
func (h *ConsolidationHandler) GetBalanceSheet(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	asOf := parseDateQueryDefault(r, "as_of", time.Now().UTC())

	bs, err := h.consolidationUC.GetConsolidatedBalanceSheet(r.Context(), tenantID, asOf)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to build balance sheet", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceSheetFromUseCase(bs))
}

// Remeasure restates foreign-currency entries at the period-end rate.
func (h *ConsolidationHandler) Remeasure(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantFromContext(r.Context())

	currency := r.URL.Query().Get("currency")
	if currency == "" {
		currency = "GBP"
	}

	now := time.Now().UTC()
	periodStart := parseDateQueryDefault(r, "period_start", now.AddDate(0, -1, 0))
	periodEnd := parseDateQueryDefault(r, "period_end", now)

	result, err := h.consolidationUC.PerformFXRemeasurement(r.Context(), tenantID, currency, periodStart, periodEnd)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to remeasure entries", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RemeasurementFromUseCase(result))
}
