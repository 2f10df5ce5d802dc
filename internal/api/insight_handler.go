package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/arborhq/arbor-api/internal/service"
)

// InsightHandler handles insight API requests.
type InsightHandler struct {
	insightService service.InsightService
	validator      *validator.Validate
}

// NewInsightHandler creates a new InsightHandler.
func NewInsightHandler(insightService service.InsightService) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
		validator:      validator.New(),
	}
}

// CreateInsight handles POST /insights.
func (h *InsightHandler) CreateInsight(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateInsightRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	insight, err := h.insightService.CreateInsight(r.Context(), userID, req.Text, req.Tags)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, insight)
}

// GetInsight handles GET /insights/{id}.
func (h *InsightHandler) GetInsight(w http.ResponseWriter, r *http.Request) {
	userID, insightID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	insight, err := h.insightService.GetInsight(r.Context(), userID, insightID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, insight)
}

// ListInsights handles GET /insights.
func (h *InsightHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, offset := parsePagination(r)
	insights, err := h.insightService.ListInsights(r.Context(), userID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, insights)
}

// SearchInsights handles POST /insights/search.
func (h *InsightHandler) SearchInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req SearchInsightsRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	results, err := h.insightService.SearchInsights(r.Context(), userID, req.Query, req.Limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	response := make([]InsightSearchResultResponse, 0, len(results))
	for _, res := range results {
		response = append(response, InsightSearchResultResponse{
			Insight: res.Insight,
			Score:   res.Score,
		})
	}

	RespondWithJSON(w, r, http.StatusOK, response)
}

// DeleteInsight handles DELETE /insights/{id}.
func (h *InsightHandler) DeleteInsight(w http.ResponseWriter, r *http.Request) {
	userID, insightID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.insightService.DeleteInsight(r.Context(), userID, insightID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
