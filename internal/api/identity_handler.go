package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arborhq/arbor-api/internal/service"
)

// IdentityHandler handles identity seed API requests.
type IdentityHandler struct {
	identityService service.IdentityService
	validator       *validator.Validate
}

// NewIdentityHandler creates a new IdentityHandler.
func NewIdentityHandler(identityService service.IdentityService) *IdentityHandler {
	return &IdentityHandler{
		identityService: identityService,
		validator:       validator.New(),
	}
}

// CreateSeed handles POST /identity. The new seed becomes active and any
// previous seed is archived.
func (h *IdentityHandler) CreateSeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateSeedRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	seed, err := h.identityService.CreateSeed(r.Context(), userID, req.Text)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, seed)
}

// GetActiveSeed handles GET /identity/active.
func (h *IdentityHandler) GetActiveSeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	seed, err := h.identityService.GetActiveSeed(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, seed)
}

// ListSeeds handles GET /identity.
func (h *IdentityHandler) ListSeeds(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	seeds, err := h.identityService.ListSeeds(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, seeds)
}

// ActivateSeed handles POST /identity/{id}/activate.
func (h *IdentityHandler) ActivateSeed(w http.ResponseWriter, r *http.Request) {
	userID, seedID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	seed, err := h.identityService.ActivateSeed(r.Context(), userID, seedID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, seed)
}
