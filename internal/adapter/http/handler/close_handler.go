package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbooks/finbooks/internal/adapter/http/dto"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	"github.com/finbooks/finbooks/internal/domain"
	"github.com/finbooks/finbooks/internal/usecase"
)

// CloseHandler handles period close HTTP requests.
type CloseHandler struct {
	closeUC *usecase.CloseUseCase
}

// NewCloseHandler creates a new CloseHandler.
func NewCloseHandler(closeUC *usecase.CloseUseCase) *CloseHandler {
	return &CloseHandler{closeUC: closeUC}
}

// Create opens a period close with its task checklist.
func (h *CloseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	close, err := h.closeUC.CreatePeriodClose(r.Context(), tenantID, req.EntityID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create period close", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.CloseFromDomain(close))
}

// Get retrieves a period close by ID.
func (h *CloseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing close ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	close, err := h.closeUC.GetPeriodClose(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get period close", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.CloseFromDomain(close))
}

// ListTasks lists the close's checklist tasks.
func (h *CloseHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing close ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	tasks, err := h.closeUC.ListTasks(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list tasks", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TasksFromDomain(tasks))
}

// Start moves the close into progress.
func (h *CloseHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(tenantID, closeID, _ string) (any, error) {
		close, err := h.closeUC.StartClose(r.Context(), tenantID, closeID)
		if err != nil {
			return nil, err
		}
		return dto.CloseFromDomain(close), nil
	}, false)
}

// Lock locks the period against further postings.
func (h *CloseHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(tenantID, closeID, actor string) (any, error) {
		close, err := h.closeUC.LockPeriod(r.Context(), tenantID, closeID, actor)
		if err != nil {
			return nil, err
		}
		return dto.CloseFromDomain(close), nil
	}, true)
}

// Complete finalizes the close once every task is resolved.
func (h *CloseHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(tenantID, closeID, actor string) (any, error) {
		close, err := h.closeUC.CompleteClose(r.Context(), tenantID, closeID, actor)
		if err != nil {
			return nil, err
		}
		return dto.CloseFromDomain(close), nil
	}, true)
}

// Reopen reverts a locked or completed close to in progress.
func (h *CloseHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(tenantID, closeID, _ string) (any, error) {
		close, err := h.closeUC.ReopenClose(r.Context(), tenantID, closeID)
		if err != nil {
			return nil, err
		}
		return dto.CloseFromDomain(close), nil
	}, false)
}

// transition runs a close lifecycle change, optionally reading the
// acting user from the body.
func (h *CloseHandler) transition(w http.ResponseWriter, r *http.Request, fn func(tenantID, closeID, actor string) (any, error), needsActor bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing close ID", "")
		return
	}

	var actor string
	if needsActor {
		var req dto.ActorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
		actor = req.Actor
	}

	tenantID := middleware.TenantFromContext(r.Context())

	resp, err := fn(tenantID, id, actor)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to transition period close", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ExecuteTasks runs the close's pending automatable tasks.
func (h *CloseHandler) ExecuteTasks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing close ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	summary, err := h.closeUC.ExecuteCloseTasks(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to execute tasks", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TaskRunSummaryResponse{
		Executed:  summary.Executed,
		Completed: summary.Completed,
		Blocked:   summary.Blocked,
		Manual:    summary.Manual,
	})
}

// CompleteTask marks a single task completed.
func (h *CloseHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.taskTransition(w, r, h.closeUC.CompleteTask)
}

// SkipTask marks a single task skipped.
func (h *CloseHandler) SkipTask(w http.ResponseWriter, r *http.Request) {
	h.taskTransition(w, r, h.closeUC.SkipTask)
}

func (h *CloseHandler) taskTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, tenantID, closeID, taskID string) (*domain.CloseTask, error)) {
	closeID := chi.URLParam(r, "id")
	taskID := chi.URLParam(r, "taskID")
	if closeID == "" || taskID == "" {
		writeError(w, http.StatusBadRequest, "missing close or task ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	task, err := fn(r.Context(), tenantID, closeID, taskID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update task", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TaskFromDomain(task))
}

// CheckVariances recomputes cash variance alerts for the close.
func (h *CloseHandler) CheckVariances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing close ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	alerts, err := h.closeUC.CheckVarianceAlerts(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to check variances", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.VarianceAlertsFromDomain(alerts))
}

// ListVariances lists the close's stored variance alerts.
func (h *CloseHandler) ListVariances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing close ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	alerts, err := h.closeUC.ListVarianceAlerts(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list variances", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.VarianceAlertsFromDomain(alerts))
}
