package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arborhq/arbor-api/internal/domain"
	"github.com/arborhq/arbor-api/internal/service"
)

// GoalHandler handles goal API requests.
type GoalHandler struct {
	goalService service.GoalService
	validator   *validator.Validate
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(goalService service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
		validator:   validator.New(),
	}
}

// CreateGoal handles POST /goals.
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateGoalRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	goal, err := h.goalService.CreateGoal(r.Context(), userID, req.Title, req.Description, req.TargetDate)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, goal)
}

// GetGoal handles GET /goals/{id}.
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, goalID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	goal, err := h.goalService.GetGoal(r.Context(), userID, goalID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, goal)
}

// ListGoals handles GET /goals.
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	goals, err := h.goalService.ListGoals(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, goals)
}

// UpdateGoal handles PATCH /goals/{id}.
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	userID, goalID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	goal, err := h.goalService.UpdateGoal(r.Context(), userID, goalID, service.GoalUpdate{
		Title:       req.Title,
		Description: req.Description,
		TargetDate:  req.TargetDate,
		ClearTarget: req.ClearTarget,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, goal)
}

// UpdateGoalStatus handles POST /goals/{id}/status.
func (h *GoalHandler) UpdateGoalStatus(w http.ResponseWriter, r *http.Request) {
	userID, goalID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateGoalStatusRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	goal, err := h.goalService.UpdateGoalStatus(r.Context(), userID, goalID, domain.GoalStatus(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, goal)
}

// DeleteGoal handles DELETE /goals/{id}.
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, goalID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.goalService.DeleteGoal(r.Context(), userID, goalID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
