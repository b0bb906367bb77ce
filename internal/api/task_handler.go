package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/service"
)

// TaskHandler handles task lifecycle requests. Role and ownership checks
// happen in the service.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ac, ok := requireAuthContext(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	assignee, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("assigned_to", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), ac, req.Title, req.Description, assignee)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ac, ok := requireAuthContext(w, r, log)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), ac)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, taskViewToResponse(t))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	ac, id, ok := handleAuthAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), ac, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /tasks/{id}.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ac, id, ok := handleAuthAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	patch := service.TaskPatch{
		Title:           req.Title,
		Description:     req.Description,
		ExpectedVersion: req.Version,
	}
	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("assigned_to", "has invalid format", domain.ErrInvalidID), "")
			return
		}
		patch.AssignedTo = &assignee
	}
	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		patch.Status = &status
	}

	task, err := h.taskService.UpdateTask(r.Context(), ac, id, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// SetStatus handles PUT /tasks/{id}/status.
func (h *TaskHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ac, id, ok := handleAuthAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req SetStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	status, err := domain.ParseTaskStatus(req.Status)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.SetStatus(r.Context(), ac, id, status, req.Version)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task status")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// VerifyTask handles PUT /tasks/{id}/verify.
func (h *TaskHandler) VerifyTask(w http.ResponseWriter, r *http.Request) {
	ac, id, ok := handleAuthAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	task, err := h.taskService.VerifyTask(r.Context(), ac, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to verify task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ac, id, ok := handleAuthAndPathUUID(w, r, "id", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), ac, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}
