package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arborhq/arbor-api/internal/service"
)

// DocumentHandler handles document API requests.
type DocumentHandler struct {
	documentService service.DocumentService
	maxUploadBytes  int64
	validator       *validator.Validate
}

// NewDocumentHandler creates a new DocumentHandler. maxUploadBytes caps
// the size of uploaded files.
func NewDocumentHandler(documentService service.DocumentService, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadBytes,
		validator:       validator.New(),
	}
}

// UploadDocument handles POST /documents/upload. The file arrives as the
// "file" field of a multipart form.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			RespondWithError(w, r, http.StatusRequestEntityTooLarge, "File exceeds the upload size limit")
			return
		}
		RespondWithError(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	doc, err := h.documentService.CreateUploadDocument(
		r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), data,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusAccepted, doc)
}

// SubmitURL handles POST /documents/url.
func (h *DocumentHandler) SubmitURL(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SubmitURLRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	doc, err := h.documentService.CreateURLDocument(r.Context(), userID, req.URL)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusAccepted, doc)
}

// GetDocument handles GET /documents/{id}.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID, docID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.GetUserDocument(r.Context(), userID, docID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, doc)
}

// ListDocuments handles GET /documents.
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	docs, err := h.documentService.ListDocuments(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, docs)
}

// DeleteDocument handles DELETE /documents/{id}.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID, docID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.documentService.DeleteDocument(r.Context(), userID, docID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
