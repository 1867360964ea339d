package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finbooks/finbooks/internal/domain"
)

// DocumentRepository implements usecase.DocumentRepository on PostgreSQL.
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Create inserts a document with its normalized extraction payload.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	var extractionJSON []byte
	if doc.Extraction != nil {
		var err error
		extractionJSON, err = json.Marshal(doc.Extraction)
		if err != nil {
			return fmt.Errorf("marshal document extraction: %w", err)
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (
			id, tenant_id, status, extraction, confidence, validation_passed,
			posted_at, posted_by, transaction_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		doc.ID,
		doc.TenantID,
		doc.Status,
		extractionJSON,
		doc.Confidence,
		doc.ValidationPassed,
		doc.PostedAt,
		doc.PostedBy,
		doc.TransactionID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

// GetByID retrieves a document.
func (r *DocumentRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	var doc domain.Document
	var extractionJSON []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, status, extraction, confidence, validation_passed,
		       posted_at, posted_by, transaction_id, created_at, updated_at
		FROM documents
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.Status,
		&extractionJSON,
		&doc.Confidence,
		&doc.ValidationPassed,
		&doc.PostedAt,
		&doc.PostedBy,
		&doc.TransactionID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}

	if len(extractionJSON) > 0 {
		var extraction domain.DocumentExtraction
		if err := json.Unmarshal(extractionJSON, &extraction); err != nil {
			return nil, fmt.Errorf("unmarshal document extraction: %w", err)
		}
		doc.Extraction = &extraction
	}

	return &doc, nil
}

// MarkPosted records the posting outcome on the document.
func (r *DocumentRepository) MarkPosted(ctx context.Context, tenantID, id, transactionID, userID string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $3, transaction_id = $4, posted_by = $5, posted_at = $6, updated_at = $6
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id, domain.DocumentStatusPosted, transactionID, userID, at)
	if err != nil {
		return fmt.Errorf("mark document posted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}

	return nil
}
