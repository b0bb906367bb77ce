package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/service/auth"
)

// getPathUUID extracts a UUID from the URL path parameters.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireAuthContext returns the caller attached by the auth middleware, or
// writes 401 and returns false.
func requireAuthContext(w http.ResponseWriter, r *http.Request, log *slog.Logger) (domain.AuthContext, bool) {
	ac, ok := shared.AuthContextFrom(r.Context())
	if !ok || ac.UserID == uuid.Nil {
		log.Warn("auth context not found or invalid in request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return domain.AuthContext{}, false
	}
	return ac, true
}

// handleAuthAndPathUUID extracts both the caller and a UUID path parameter.
// It writes an error response if either extraction fails.
func handleAuthAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (domain.AuthContext, uuid.UUID, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	ac, ok := requireAuthContext(w, r, log)
	if !ok {
		return domain.AuthContext{}, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName, slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return domain.AuthContext{}, uuid.Nil, false
	}

	return ac, id, true
}

// decodeAndValidate reads a JSON body into v and validates it, writing 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			shared.ValidationMessage(err, "Validation error"), err)
		return false
	}
	return true
}
