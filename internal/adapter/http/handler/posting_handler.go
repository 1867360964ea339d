package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finbooks/finbooks/internal/adapter/http/dto"
	"github.com/finbooks/finbooks/internal/adapter/http/middleware"
	"github.com/finbooks/finbooks/internal/usecase"
)

// PostingHandler handles transaction posting HTTP requests.
type PostingHandler struct {
	postingUC *usecase.PostingUseCase
}

// NewPostingHandler creates a new PostingHandler.
func NewPostingHandler(postingUC *usecase.PostingUseCase) *PostingHandler {
	return &PostingHandler{postingUC: postingUC}
}

// PostTransaction posts a balanced group of entries.
func (h *PostingHandler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	var req dto.PostTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	result, err := h.postingUC.PostDoubleEntry(r.Context(), tenantID, req.ToUseCaseInput())
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to post transaction", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.PostResultFromUseCase(result))
}

// CreateDocument registers an extracted document for later posting.
func (h *PostingHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	doc, err := h.postingUC.RegisterDocument(r.Context(), tenantID, req.ToDomain(tenantID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create document", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.DocumentFromDomain(doc))
}

// GetDocument retrieves a document by ID.
func (h *PostingHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document ID", "")
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	doc, err := h.postingUC.GetDocument(r.Context(), tenantID, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get document", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentFromDomain(doc))
}

// PostDocument derives and posts ledger entries from a document.
func (h *PostingHandler) PostDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document ID", "")
		return
	}

	var req dto.PostDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	tenantID := middleware.TenantFromContext(r.Context())

	result, err := h.postingUC.PostDocumentToLedger(r.Context(), tenantID, id, req.UserID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to post document", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.PostResultFromUseCase(result))
}
