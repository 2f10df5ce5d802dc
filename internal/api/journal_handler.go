package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arborhq/arbor-api/internal/service"
)

// JournalHandler handles journal entry API requests.
type JournalHandler struct {
	journalService service.JournalService
	validator      *validator.Validate
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(journalService service.JournalService) *JournalHandler {
	return &JournalHandler{
		journalService: journalService,
		validator:      validator.New(),
	}
}

// CreateEntry handles POST /journal.
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	entry, err := h.journalService.CreateEntry(r.Context(), userID, req.Text, req.Mood)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, entry)
}

// GetEntry handles GET /journal/{id}.
func (h *JournalHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	userID, entryID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	entry, err := h.journalService.GetEntry(r.Context(), userID, entryID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, entry)
}

// ListEntries handles GET /journal.
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	entries, err := h.journalService.ListEntries(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, entries)
}

// ReflectOnEntry handles POST /journal/{id}/reflect. The entry is
// summarized against the user's active identity seed and any extracted
// insights are stored.
func (h *JournalHandler) ReflectOnEntry(w http.ResponseWriter, r *http.Request) {
	userID, entryID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	reflection, err := h.journalService.ReflectOnEntry(r.Context(), userID, entryID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, reflection)
}

// DeleteEntry handles DELETE /journal/{id}.
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, entryID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.journalService.DeleteEntry(r.Context(), userID, entryID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
