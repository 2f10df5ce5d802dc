package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arborhq/arbor-api/internal/service"
	"github.com/arborhq/arbor-api/internal/service/auth"
	"github.com/arborhq/arbor-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes without leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrSeedNotFound),
		errors.Is(err, service.ErrGoalNotFound),
		errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrDocumentNotFound),
		errors.Is(err, service.ErrInsightNotFound),
		errors.Is(err, service.ErrPathNotFound),
		errors.Is(err, service.ErrPathDayNotFound),
		errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Degraded capability
	case errors.Is(err, service.ErrSearchUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, service.ErrSeedNotFound):
		return "Identity seed not found"
	case errors.Is(err, service.ErrGoalNotFound):
		return "Goal not found"
	case errors.Is(err, service.ErrEntryNotFound):
		return "Journal entry not found"
	case errors.Is(err, service.ErrDocumentNotFound):
		return "Document not found"
	case errors.Is(err, service.ErrInsightNotFound):
		return "Insight not found"
	case errors.Is(err, service.ErrPathNotFound):
		return "Learning path not found"
	case errors.Is(err, service.ErrPathDayNotFound):
		return "Path day not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, service.ErrSearchUnavailable):
		return "Semantic search is not available"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation
		// for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages.
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}
