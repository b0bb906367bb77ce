package api

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/service"
)

// errInternal stands in for an infrastructure failure whose text must not reach clients.
var errInternal = errors.New("pq: connection to 10.0.0.3:5432 refused")

// fakeUserService fails every call not given a function.
type fakeUserService struct {
	registerFn     func(ctx context.Context, name, email, password string) (*domain.UserSummary, error)
	loginFn        func(ctx context.Context, email, password string) (*service.LoginResult, error)
	listStudentsFn func(ctx context.Context, ac domain.AuthContext) ([]domain.UserSummary, error)
}

var _ service.UserService = (*fakeUserService)(nil)

func (f *fakeUserService) Register(ctx context.Context, name, email, password string) (*domain.UserSummary, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, name, email, password)
	}
	return nil, errInternal
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return nil, errInternal
}

func (f *fakeUserService) ListStudents(ctx context.Context, ac domain.AuthContext) ([]domain.UserSummary, error) {
	if f.listStudentsFn != nil {
		return f.listStudentsFn(ctx, ac)
	}
	return nil, errInternal
}

func (f *fakeUserService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.UserSummary, error) {
	return nil, errInternal
}

// failingTaskService returns err from every operation.
type failingTaskService struct {
	err error
}

var _ service.TaskService = failingTaskService{}

func (f failingTaskService) CreateTask(context.Context, domain.AuthContext, string, string, uuid.UUID) (*domain.Task, error) {
	return nil, f.err
}

func (f failingTaskService) ListTasks(context.Context, domain.AuthContext) ([]*domain.TaskWithAssignee, error) {
	return nil, f.err
}

func (f failingTaskService) GetTask(context.Context, domain.AuthContext, uuid.UUID) (*domain.Task, error) {
	return nil, f.err
}

func (f failingTaskService) UpdateTask(context.Context, domain.AuthContext, uuid.UUID, service.TaskPatch) (*domain.Task, error) {
	return nil, f.err
}

func (f failingTaskService) SetStatus(context.Context, domain.AuthContext, uuid.UUID, domain.TaskStatus, int) (*domain.Task, error) {
	return nil, f.err
}

func (f failingTaskService) VerifyTask(context.Context, domain.AuthContext, uuid.UUID) (*domain.Task, error) {
	return nil, f.err
}

func (f failingTaskService) DeleteTask(context.Context, domain.AuthContext, uuid.UUID) error {
	return f.err
}
