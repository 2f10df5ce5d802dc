package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arborhq/arbor-api/internal/service"
)

// PathHandler handles learning path API requests.
type PathHandler struct {
	pathService service.LearningPathService
	validator   *validator.Validate
}

// NewPathHandler creates a new PathHandler.
func NewPathHandler(pathService service.LearningPathService) *PathHandler {
	return &PathHandler{
		pathService: pathService,
		validator:   validator.New(),
	}
}

// CreatePath handles POST /paths. Generation runs in the background; the
// response carries the path in pending status.
func (h *PathHandler) CreatePath(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreatePathRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	path, err := h.pathService.CreatePath(r.Context(), userID, req.Topic)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusAccepted, path)
}

// GetPath handles GET /paths/{id}, returning the path with its days.
func (h *PathHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	userID, pathID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	path, err := h.pathService.GetUserPath(r.Context(), userID, pathID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, path)
}

// ListPaths handles GET /paths.
func (h *PathHandler) ListPaths(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	paths, err := h.pathService.ListPaths(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, paths)
}

// CompleteDay handles POST /paths/{id}/days/{dayID}/complete.
func (h *PathHandler) CompleteDay(w http.ResponseWriter, r *http.Request) {
	userID, pathID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	dayID, err := getPathUUID(r, "dayID")
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	day, err := h.pathService.CompleteDay(r.Context(), userID, pathID, dayID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, day)
}

// DeletePath handles DELETE /paths/{id}.
func (h *PathHandler) DeletePath(w http.ResponseWriter, r *http.Request) {
	userID, pathID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.pathService.DeletePath(r.Context(), userID, pathID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
