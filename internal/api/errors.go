package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/habit-api/internal/api/shared"
	"github.com/phrazzld/habit-api/internal/domain"
	"github.com/phrazzld/habit-api/internal/service/auth"
	"github.com/phrazzld/habit-api/internal/service/tracker"
	"github.com/phrazzld/habit-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidSubject):
		return http.StatusUnauthorized

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors
	case domain.IsValidationError(err),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrMissingToken):
		return "Authorization required"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidSubject):
		return "Invalid token"

	// Not found errors
	case errors.Is(err, store.ErrHabitNotFound):
		return "Habit not found"
	case store.IsNotFoundError(err):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrItemAlreadyOwned):
		return "Item already owned"
	case errors.Is(err, store.ErrCompletionExists):
		return "Habit already completed on that date"
	case store.IsDuplicateError(err):
		return "Resource already exists"

	// Bad request errors
	case errors.Is(err, domain.ErrInsufficientCoins):
		return "Insufficient coins"
	case errors.Is(err, tracker.ErrFutureDate):
		return "Date cannot be in the future"
	case errors.Is(err, tracker.ErrEmptyStatsUpdate):
		return "No stats fields to update"
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message)
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body required"
	case domain.IsValidationError(err), errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a message naming the
// first offending field and the failed rule.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte":
		return "too small or too short"
	case "max", "lte":
		return "too large or too long"
	case "oneof":
		return "invalid value"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the status and safe message for err. A non-empty
// fallback replaces the generic message of 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
