package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/finbooks/finbooks/internal/adapter/http/dto"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	"github.com/finbooks/finbooks/internal/usecase"
)

// AccrualHandler handles accrual and prepayment HTTP requests.
type AccrualHandler struct {
	accrualUC *usecase.AccrualUseCase
}

// NewAccrualHandler creates a new AccrualHandler.
func NewAccrualHandler(accrualUC *usecase.AccrualUseCase) *AccrualHandler {
	return &AccrualHandler{accrualUC: accrualUC}
}

// CreateAccrual records a pending accrual.
func (h *AccrualHandler) CreateAccrual(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccrualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	accrual, err := h.accrualUC.CreateAccrual(r.Context(), tenantID, req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create accrual", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.AccrualFromDomain(accrual))
}

// CreatePrepayment records a prepayment to amortize.
func (h *AccrualHandler) CreatePrepayment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePrepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	prepayment, err := h.accrualUC.CreatePrepayment(r.Context(), tenantID, req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create prepayment", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.PrepaymentFromDomain(prepayment))
}

// PostPending posts all pending accruals due by the given period end.
func (h *AccrualHandler) PostPending(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "failed to post accruals", h.accrualUC.PostPendingAccruals)
}

// ReversePosted reverses posted accruals in the following period.
func (h *AccrualHandler) ReversePosted(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "failed to reverse accruals", h.accrualUC.ReversePostedAccruals)
}

// Amortize posts one month of amortization for open prepayments.
func (h *AccrualHandler) Amortize(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "failed to amortize prepayments", h.accrualUC.AmortizePrepayments)
}

func (h *AccrualHandler) run(w http.ResponseWriter, r *http.Request, message string, fn func(ctx context.Context, tenantID string, asOf time.Time) (int, error)) {
	tenantID := middleware.TenantFromContext(r.Context())
	asOf := parseDateQueryDefault(r, "as_of", time.Now().UTC())

	processed, err := fn(r.Context(), tenantID, asOf)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, message, err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"processed": processed})
}
