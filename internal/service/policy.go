package service

import (
	"github.com/phrazzld/taskdesk-api/internal/domain"
)

// Operation names a guarded service action.
type Operation string

// Guarded operations.
const (
	OpCreateTask   Operation = "create_task"
	OpListTasks    Operation = "list_tasks"
	OpGetTask      Operation = "get_task"
	OpUpdateTask   Operation = "update_task"
	OpSetStatus    Operation = "set_status"
	OpVerifyTask   Operation = "verify_task"
	OpDeleteTask   Operation = "delete_task"
	OpListStudents Operation = "list_students"
)

// Rule decides whether ac may act on a task. task is nil for operations that
// are not about a single task, and for checks made before the lookup.
type Rule func(ac domain.AuthContext, task *domain.Task) bool

// RequireAdmin allows only admins.
func RequireAdmin(ac domain.AuthContext, _ *domain.Task) bool {
	return ac.IsAdmin()
}

// RequireOwner allows only the task's assignee. Admins get no exemption.
func RequireOwner(ac domain.AuthContext, task *domain.Task) bool {
	return task != nil && task.IsAssignedTo(ac.UserID)
}

// AdminOrOwner allows admins and the task's assignee.
func AdminOrOwner(ac domain.AuthContext, task *domain.Task) bool {
	return ac.IsAdmin() || RequireOwner(ac, task)
}

// AnyAuthenticated allows every caller with a known role.
func AnyAuthenticated(ac domain.AuthContext, _ *domain.Task) bool {
	return ac.Role.Valid()
}

// Policy maps each operation to the rule guarding it.
type Policy map[Operation]Rule

// DefaultPolicy is the task desk's access table.
var DefaultPolicy = Policy{
	OpCreateTask:   RequireAdmin,
	OpListTasks:    AnyAuthenticated,
	OpGetTask:      AdminOrOwner,
	OpUpdateTask:   AdminOrOwner,
	OpSetStatus:    RequireOwner,
	OpVerifyTask:   RequireAdmin,
	OpDeleteTask:   RequireAdmin,
	OpListStudents: RequireAdmin,
}

// Authorize returns ErrForbidden unless the rule for op allows ac.
// Operations without a rule are denied.
func (p Policy) Authorize(op Operation, ac domain.AuthContext, task *domain.Task) error {
	rule, ok := p[op]
	if !ok || !rule(ac, task) {
		return ErrForbidden
	}
	return nil
}
