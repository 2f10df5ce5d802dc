package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DocumentStatus represents the ingestion state of a document.
type DocumentStatus string

// Possible document status values
const (
	DocumentStatusPending             DocumentStatus = "pending"
	DocumentStatusProcessing          DocumentStatus = "processing"
	DocumentStatusCompleted           DocumentStatus = "completed"
	DocumentStatusCompletedWithErrors DocumentStatus = "completed_with_errors"
	DocumentStatusFailed              DocumentStatus = "failed"
)

// DocumentSource identifies where a document's content comes from.
type DocumentSource string

// Possible document source values
const (
	// DocumentSourceUpload is a file uploaded to the storage bucket.
	DocumentSourceUpload DocumentSource = "upload"

	// DocumentSourceURL is a remote page (article, video, social post)
	// scraped for text, captions, or metadata.
	DocumentSourceURL DocumentSource = "url"
)

// ExtractionMethod records which pipeline strategy produced the stored text.
type ExtractionMethod string

// Possible extraction method values
const (
	ExtractionMethodNative   ExtractionMethod = "native"
	ExtractionMethodOCR      ExtractionMethod = "ocr"
	ExtractionMethodWebpage  ExtractionMethod = "webpage"
	ExtractionMethodCaptions ExtractionMethod = "captions"
	ExtractionMethodFallback ExtractionMethod = "fallback"
)

// Common validation errors for Document
var (
	ErrEmptyDocumentID       = errors.New("document ID cannot be empty")
	ErrEmptyDocumentUserID   = errors.New("document user ID cannot be empty")
	ErrInvalidDocumentStatus = errors.New("invalid document status")
	ErrInvalidDocumentSource = errors.New("invalid document source")
	ErrMissingStorageKey     = errors.New("uploaded document requires a storage key")
	ErrMissingSourceURL      = errors.New("url document requires a source URL")
)

// Document represents a piece of source content a user has submitted for
// ingestion: an uploaded file or a remote URL. The ingestion pipeline fills
// in the extracted text, extraction method, and AI summary.
type Document struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	Source           DocumentSource   `json:"source"`
	OriginalName     string           `json:"original_name,omitempty"`
	SourceURL        string           `json:"source_url,omitempty"`
	MimeType         string           `json:"mime_type,omitempty"`
	StorageKey       string           `json:"storage_key,omitempty"`
	Status           DocumentStatus   `json:"status"`
	ExtractedText    string           `json:"extracted_text,omitempty"`
	ExtractionMethod ExtractionMethod `json:"extraction_method,omitempty"`
	Summary          string           `json:"summary,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewUploadDocument creates a pending Document backed by an object in the
// storage bucket. Returns an error if validation fails.
func NewUploadDocument(userID uuid.UUID, originalName, mimeType, storageKey string) (*Document, error) {
	doc := &Document{
		ID:           uuid.New(),
		UserID:       userID,
		Source:       DocumentSourceUpload,
		OriginalName: originalName,
		MimeType:     mimeType,
		StorageKey:   storageKey,
		Status:       DocumentStatusPending,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// NewURLDocument creates a pending Document referencing a remote page.
// Returns an error if validation fails.
func NewURLDocument(userID uuid.UUID, sourceURL string) (*Document, error) {
	doc := &Document{
		ID:        uuid.New(),
		UserID:    userID,
		Source:    DocumentSourceURL,
		SourceURL: sourceURL,
		Status:    DocumentStatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// Validate checks if the Document has valid data.
func (d *Document) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDocumentID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDocumentUserID
	}

	switch d.Source {
	case DocumentSourceUpload:
		if d.StorageKey == "" {
			return ErrMissingStorageKey
		}
	case DocumentSourceURL:
		if d.SourceURL == "" {
			return ErrMissingSourceURL
		}
	default:
		return ErrInvalidDocumentSource
	}

	if !isValidDocumentStatus(d.Status) {
		return ErrInvalidDocumentStatus
	}

	return nil
}

// UpdateStatus updates the document's status and the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (d *Document) UpdateStatus(status DocumentStatus) error {
	if !isValidDocumentStatus(status) {
		return ErrInvalidDocumentStatus
	}

	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// SetExtraction records the pipeline result on the document.
func (d *Document) SetExtraction(text string, method ExtractionMethod) {
	d.ExtractedText = text
	d.ExtractionMethod = method
	d.UpdatedAt = time.Now().UTC()
}

// isValidDocumentStatus checks if the given status is a valid DocumentStatus.
func isValidDocumentStatus(status DocumentStatus) bool {
	switch status {
	case DocumentStatusPending, DocumentStatusProcessing, DocumentStatusCompleted,
		DocumentStatusCompletedWithErrors, DocumentStatusFailed:
		return true
	default:
		return false
	}
}
