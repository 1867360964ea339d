package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentStatus is the processing state of a source document.
type DocumentStatus string

const (
	DocumentStatusUploaded  DocumentStatus = "uploaded"
	DocumentStatusExtracted DocumentStatus = "extracted"
	DocumentStatusValidated DocumentStatus = "validated"
	DocumentStatusPosted    DocumentStatus = "posted"
)

// DocumentExtraction is the normalized result of upstream OCR and
// classification. Extraction itself happens outside this service; the
// posting engine only consumes the normalized fields.
type DocumentExtraction struct {
	Vendor       string
	Total        decimal.Decimal
	TaxAmount    decimal.Decimal
	Currency     string
	DocumentDate time.Time
	DocumentType string
}

// Document is an uploaded source document (invoice, receipt, ...) that
// can be translated into ledger entries once validated.
type Document struct {
	ID               string
	TenantID         string
	Status           DocumentStatus
	Extraction       *DocumentExtraction
	Confidence       float64
	ValidationPassed bool
	PostedAt         *time.Time
	PostedBy         *string
	TransactionID    *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// HasExtraction reports whether normalized extraction data is present.
func (d *Document) HasExtraction() bool {
	return d.Extraction != nil
}

// Posted reports whether the document has already produced ledger entries.
func (d *Document) Posted() bool {
	return d.Status == DocumentStatusPosted
}

// ReadyToPost checks the external confidence-threshold and
// posting-validation signals consumed at the boundary.
func (d *Document) ReadyToPost(confidenceThreshold float64) error {
	if d.Posted() {
		return ErrAlreadyPosted
	}
	if !d.HasExtraction() || !d.ValidationPassed || d.Confidence < confidenceThreshold {
		return ErrDocumentNotReady
	}
	return nil
}
