package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/service"
)

// UserHandler serves user listings.
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService: userService,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// ListStudents handles GET /students. Admin only.
func (h *UserHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ac, ok := requireAuthContext(w, r, log)
	if !ok {
		return
	}

	students, err := h.userService.ListStudents(r.Context(), ac)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list students")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, students)
}
