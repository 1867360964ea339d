package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finbooks/finbooks/internal/adapter/http/dto"
	"github.com/finbooks/finbooks/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrPeriodCloseNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrEntityNotFound),
		errors.Is(err, domain.ErrDocumentNotFound),
		errors.Is(err, domain.ErrRateNotFound),
		errors.Is(err, domain.ErrAccrualNotFound),
		errors.Is(err, domain.ErrPrepaymentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyPosted),
		errors.Is(err, domain.ErrDuplicateClose),
		errors.Is(err, domain.ErrInvalidCloseStatus),
		errors.Is(err, domain.ErrIncompleteTasks):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDocumentNotReady):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrImbalancedTransaction),
		errors.Is(err, domain.ErrTooFewEntries),
		errors.Is(err, domain.ErrInvalidEntryType),
		errors.Is(err, domain.ErrMissingAccountCode),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidEntityType),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrReconciliationMismatch),
		errors.Is(err, domain.ErrUnknownProvider),
		errors.Is(err, domain.ErrMissingTenant):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a YYYY-MM-DD query parameter. A missing or
// malformed value returns nil.
func parseDateQuery(r *http.Request, key string) *time.Time {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil
	}
	return &t
}

// parseDateQueryDefault parses a YYYY-MM-DD query parameter, falling
// back to defaultValue when missing or malformed.
func parseDateQueryDefault(r *http.Request, key string, defaultValue time.Time) time.Time {
	if t := parseDateQuery(r, key); t != nil {
		return *t
	}
	return defaultValue
}
