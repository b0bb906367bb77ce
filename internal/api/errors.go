package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/service"
	"github.com/phrazzld/taskdesk-api/internal/service/auth"
	"github.com/phrazzld/taskdesk-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Login failures are reported as bad requests, never as 404/401
	case errors.Is(err, service.ErrUnknownEmail),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, domain.ErrTaskNotCompleted),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
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

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrForbidden):
		return "You do not have permission to perform this action"

	case errors.Is(err, service.ErrUnknownEmail),
		errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrVersionConflict):
		return "Task was modified by another request"

	case errors.Is(err, domain.ErrTaskNotCompleted):
		return "Task must be completed before it can be verified"

	case errors.Is(err, domain.ErrInvalidTransition):
		return "Task status cannot move backwards"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return validationMessage(err)

	default:
		return "An unexpected error occurred"
	}
}

// validationMessage renders domain validation failures. Their text is built
// from constants and field names only, so it is safe to return.
func validationMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	msg := strings.TrimPrefix(err.Error(), domain.ErrValidation.Error()+": ")
	if msg == "" || msg == domain.ErrValidation.Error() {
		return "Validation error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted cause. defaultMsg replaces the generic text for 500 responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrForbidden) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
