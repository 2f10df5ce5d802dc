package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewUploadDocument(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	doc, err := NewUploadDocument(userID, "notes.pdf", "application/pdf", "documents/abc/notes.pdf")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if doc.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, doc.UserID)
	}

	if doc.Source != DocumentSourceUpload {
		t.Errorf("Expected source %s, got %s", DocumentSourceUpload, doc.Source)
	}

	if doc.Status != DocumentStatusPending {
		t.Errorf("Expected status %s, got %s", DocumentStatusPending, doc.Status)
	}

	if doc.CreatedAt.IsZero() {
		t.Error("Expected non-zero CreatedAt time")
	}

	// Upload without a storage key is invalid
	_, err = NewUploadDocument(userID, "notes.pdf", "application/pdf", "")
	if err != ErrMissingStorageKey {
		t.Errorf("Expected error %v, got %v", ErrMissingStorageKey, err)
	}

	// Missing user ID is invalid
	_, err = NewUploadDocument(uuid.Nil, "notes.pdf", "application/pdf", "documents/abc/notes.pdf")
	if err != ErrEmptyDocumentUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyDocumentUserID, err)
	}
}

func TestNewURLDocument(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	doc, err := NewURLDocument(userID, "https://www.youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.Source != DocumentSourceURL {
		t.Errorf("Expected source %s, got %s", DocumentSourceURL, doc.Source)
	}

	if doc.SourceURL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("Unexpected source URL %s", doc.SourceURL)
	}

	// URL document without a URL is invalid
	_, err = NewURLDocument(userID, "")
	if err != ErrMissingSourceURL {
		t.Errorf("Expected error %v, got %v", ErrMissingSourceURL, err)
	}
}

func TestDocumentValidate(t *testing.T) {
	t.Parallel()
	validDoc := Document{
		ID:         uuid.New(),
		UserID:     uuid.New(),
		Source:     DocumentSourceUpload,
		StorageKey: "documents/abc/notes.pdf",
		Status:     DocumentStatusPending,
	}

	if err := validDoc.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalidDoc := validDoc
	invalidDoc.ID = uuid.Nil
	if err := invalidDoc.Validate(); err != ErrEmptyDocumentID {
		t.Errorf("Expected error %v, got %v", ErrEmptyDocumentID, err)
	}

	invalidDoc = validDoc
	invalidDoc.Source = "carrier-pigeon"
	if err := invalidDoc.Validate(); err != ErrInvalidDocumentSource {
		t.Errorf("Expected error %v, got %v", ErrInvalidDocumentSource, err)
	}

	invalidDoc = validDoc
	invalidDoc.Status = "done"
	if err := invalidDoc.Validate(); err != ErrInvalidDocumentStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidDocumentStatus, err)
	}
}

func TestDocumentUpdateStatus(t *testing.T) {
	t.Parallel()
	doc, err := NewURLDocument(uuid.New(), "https://example.com/article")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	previousUpdatedAt := doc.UpdatedAt

	if err := doc.UpdateStatus(DocumentStatusProcessing); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if doc.Status != DocumentStatusProcessing {
		t.Errorf("Expected status %s, got %s", DocumentStatusProcessing, doc.Status)
	}

	if doc.UpdatedAt.Before(previousUpdatedAt) {
		t.Error("Expected UpdatedAt to advance")
	}

	if err := doc.UpdateStatus("invalid"); err != ErrInvalidDocumentStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidDocumentStatus, err)
	}
}

func TestDocumentSetExtraction(t *testing.T) {
	t.Parallel()
	doc, err := NewURLDocument(uuid.New(), "https://example.com/article")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	doc.SetExtraction("extracted body text", ExtractionMethodWebpage)

	if doc.ExtractedText != "extracted body text" {
		t.Errorf("Unexpected extracted text %q", doc.ExtractedText)
	}

	if doc.ExtractionMethod != ExtractionMethodWebpage {
		t.Errorf("Expected method %s, got %s", ExtractionMethodWebpage, doc.ExtractionMethod)
	}
}
