package service

import (
	"context"
	"testing"
	"time"

	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/events"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/platform/memory"
	"github.com/phrazzld/taskdesk-api/internal/service/auth"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct horse battery"

// fixture wires both services over in-memory stores.
type fixture struct {
	users    *memory.UserStore
	tasks    *memory.TaskStore
	recorder *events.Recorder
	jwt      auth.JWTService
	userSvc  *UserServiceImpl
	taskSvc  *TaskServiceImpl
	logs     *logger.TestLogBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, buf := logger.NewTestLogger()
	users := memory.NewUserStore()
	tasks := memory.NewTaskStore(users)
	jwt := auth.NewTestJWTService(auth.TestSecret, 24*time.Hour, nil)

	recorder := &events.Recorder{}
	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(recorder)

	userSvc, err := NewUserService(users, jwt, auth.NewBcryptHasher(bcrypt.MinCost), auth.NewBcryptVerifier(), nil, log)
	require.NoError(t, err)
	taskSvc, err := NewTaskService(tasks, users, emitter, log)
	require.NoError(t, err)

	return &fixture{
		users:    users,
		tasks:    tasks,
		recorder: recorder,
		jwt:      jwt,
		userSvc:  userSvc,
		taskSvc:  taskSvc,
		logs:     buf,
	}
}

// addUser stores a user directly, bypassing registration.
func (f *fixture) addUser(t *testing.T, name, email string, role domain.Role) domain.AuthContext {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := domain.NewUser(name, email, string(hash), role)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), user))
	return domain.AuthContext{UserID: user.ID, Role: role}
}

func (f *fixture) addTask(t *testing.T, admin domain.AuthContext, student domain.AuthContext) *domain.Task {
	t.Helper()
	task, err := f.taskSvc.CreateTask(context.Background(), admin, "T1", "write the report", student.UserID)
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T {
	return &v
}
