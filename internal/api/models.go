package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/arborhq/arbor-api/internal/domain"
)

// Request and response payloads for the HTTP API.

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    string    `json:"expires_at,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token
// refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// CreateSeedRequest defines the payload for creating an identity seed.
type CreateSeedRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// CreateGoalRequest defines the payload for creating a goal.
type CreateGoalRequest struct {
	Title       string     `json:"title"       validate:"required,max=500"`
	Description string     `json:"description" validate:"max=4000"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
}

// UpdateGoalRequest defines the payload for updating a goal. Omitted
// fields are left unchanged; clear_target removes the target date.
type UpdateGoalRequest struct {
	Title       *string    `json:"title,omitempty"       validate:"omitempty,max=500"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=4000"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	ClearTarget bool       `json:"clear_target,omitempty"`
}

// UpdateGoalStatusRequest defines the payload for a goal status change.
type UpdateGoalStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active paused achieved abandoned"`
}

// CreateEntryRequest defines the payload for creating a journal entry.
type CreateEntryRequest struct {
	Text string `json:"text" validate:"required"`
	Mood string `json:"mood" validate:"max=100"`
}

// SubmitURLRequest defines the payload for submitting a URL document.
type SubmitURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// CreateInsightRequest defines the payload for creating a user insight.
type CreateInsightRequest struct {
	Text string   `json:"text" validate:"required"`
	Tags []string `json:"tags" validate:"max=20,dive,max=100"`
}

// SearchInsightsRequest defines the payload for semantic insight search.
type SearchInsightsRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"gte=0,lte=50"`
}

// InsightSearchResultResponse pairs an insight with its similarity score.
type InsightSearchResultResponse struct {
	Insight *domain.Insight `json:"insight"`
	Score   float64         `json:"score"`
}

// CreatePathRequest defines the payload for creating a learning path.
type CreatePathRequest struct {
	Topic string `json:"topic" validate:"required,max=500"`
}
