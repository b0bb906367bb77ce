package api

import (
	"time"

	"github.com/phrazzld/taskdesk-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string             `json:"message"`
	User    domain.UserSummary `json:"user"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	Token  string `json:"token"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	UserID string `json:"user_id"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expires_at"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
	AssignedTo  string `json:"assigned_to" validate:"required,uuid"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Version, when positive, must match the stored version.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"       validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	AssignedTo  *string `json:"assigned_to,omitempty" validate:"omitempty,uuid"`
	Status      *string `json:"status,omitempty"`
	Version     int     `json:"version,omitempty"     validate:"gte=0"`
}

// SetStatusRequest defines the payload for the status endpoint. Legacy labels
// ("incomplete", "complete") are accepted.
type SetStatusRequest struct {
	Status  string `json:"status"            validate:"required"`
	Version int    `json:"version,omitempty" validate:"gte=0"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// AssigneeResponse is the public projection of a task's assignee.
type AssigneeResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	AssignedTo  string            `json:"assigned_to"`
	Assignee    *AssigneeResponse `json:"assignee,omitempty"`
	Status      string            `json:"status"`
	Verified    bool              `json:"verified"`
	Version     int               `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		AssignedTo:  task.AssignedTo.String(),
		Status:      string(task.Status),
		Verified:    task.Verified,
		Version:     task.Version,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func taskViewToResponse(view *domain.TaskWithAssignee) TaskResponse {
	resp := taskToResponse(&view.Task)
	if view.Assignee != nil {
		resp.Assignee = &AssigneeResponse{
			ID:    view.Assignee.ID.String(),
			Name:  view.Assignee.Name,
			Email: view.Assignee.Email,
		}
	}
	return resp
}
