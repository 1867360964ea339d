package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finbooks/finbooks/internal/adapter/http/dto"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	"github.com/finbooks/finbooks/internal/usecase"
)

// FXHandler handles exchange rate HTTP requests.
type FXHandler struct {
	fxUC *usecase.FXUseCase
}

// NewFXHandler creates a new FXHandler.
func NewFXHandler(fxUC *usecase.FXUseCase) *FXHandler {
	return &FXHandler{fxUC: fxUC}
}

// GetRate resolves an exchange rate for a currency pair and date.
func (h *FXHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "missing currency pair", "from and to query parameters are required")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())
	date := parseDateQueryDefault(r, "date", time.Now().UTC())

	opts := usecase.RateOptions{
		Provider:     r.URL.Query().Get("provider"),
		ForceRefresh: r.URL.Query().Get("refresh") == "true",
	}

	rate, err := h.fxUC.GetExchangeRate(r.Context(), tenantID, from, to, date, opts)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get exchange rate", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.RateResponse{
		FromCurrency: from,
		ToCurrency:   to,
		Date:         date,
		Rate:         rate,
	})
}

// EnterManualRate stores a manually entered rate.
func (h *FXHandler) EnterManualRate(w http.ResponseWriter, r *http.Request) {
	var req dto.ManualRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	if err := h.fxUC.EnterManualRate(r.Context(), tenantID, req.FromCurrency, req.ToCurrency, req.Date, req.Rate); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to enter manual rate", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.RateResponse{
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Date:         req.Date,
		Rate:         req.Rate,
	})
}

// SyncRates pre-fetches daily rates for a set of currency pairs.
func (h *FXHandler) SyncRates(w http.ResponseWriter, r *http.Request) {
	var req dto.SyncRatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	result, err := h.fxUC.SyncExchangeRates(r.Context(), tenantID, req.Base, req.Targets, req.From, req.To)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to sync exchange rates", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SyncResultResponse{
		Synced: result.Synced,
		Failed: result.Failed,
	})
}
