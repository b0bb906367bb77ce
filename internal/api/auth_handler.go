package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/platform/metrics"
	"github.com/phrazzld/taskdesk-api/internal/service"
)

// LoginRecorder counts login attempts by outcome.
type LoginRecorder interface {
	RecordLogin(outcome string)
}

// AuthHandler handles registration and login requests.
type AuthHandler struct {
	userService service.UserService
	logins      LoginRecorder
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. logins may be nil.
func NewAuthHandler(userService service.UserService, logins LoginRecorder, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userService: userService,
		logins:      logins,
		logger:      logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /auth/register. New accounts are always students.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	log.Debug("registered user", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, RegisterResponse{
		Message: "User registered successfully",
		User:    *user,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUnknownEmail) || errors.Is(err, service.ErrInvalidCredentials) {
			h.record(metrics.LoginInvalidCredentials)
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.record(metrics.LoginSuccess)
	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		Token:     result.Token,
		Role:      string(result.Role),
		Name:      result.Name,
		UserID:    result.UserID.String(),
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) record(outcome string) {
	if h.logins != nil {
		h.logins.RecordLogin(outcome)
	}
}
