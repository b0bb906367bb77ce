package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskdesk-api/internal/api/middleware"
	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/domain"
	"github.com/phrazzld/taskdesk-api/internal/events"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/phrazzld/taskdesk-api/internal/platform/memory"
	"github.com/phrazzld/taskdesk-api/internal/service"
	"github.com/phrazzld/taskdesk-api/internal/service/auth"
)

const testPassword = "correct-horse-battery"

type loginCounter struct {
	outcomes []string
}

func (c *loginCounter) RecordLogin(outcome string) {
	c.outcomes = append(c.outcomes, outcome)
}

// testAPI is a router over real services backed by memory stores.
type testAPI struct {
	router   http.Handler
	users    *memory.UserStore
	tasks    *memory.TaskStore
	jwt      auth.JWTService
	hasher   *auth.BcryptHasher
	logins   *loginCounter
	recorder *events.Recorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	l, _ := logger.NewTestLogger()
	users := memory.NewUserStore()
	tasks := memory.NewTaskStore(users)
	jwtService := auth.NewTestJWTService(auth.TestSecret, 24*time.Hour, nil)
	hasher := auth.NewBcryptHasher(4)

	userSvc, err := service.NewUserService(users, jwtService, hasher, auth.NewBcryptVerifier(), nil, l)
	require.NoError(t, err)

	recorder := &events.Recorder{}
	emitter := events.NewInMemoryEventEmitter(l)
	emitter.RegisterHandler(recorder)
	taskSvc, err := service.NewTaskService(tasks, users, emitter, l)
	require.NoError(t, err)

	logins := &loginCounter{}
	api := &testAPI{
		users:    users,
		tasks:    tasks,
		jwt:      jwtService,
		hasher:   hasher,
		logins:   logins,
		recorder: recorder,
	}
	api.router = newTestRouter(userSvc, taskSvc, jwtService, logins)
	return api
}

func newTestRouter(
	userSvc service.UserService,
	taskSvc service.TaskService,
	jwtService auth.JWTService,
	logins LoginRecorder,
) http.Handler {
	authHandler := NewAuthHandler(userSvc, logins, nil)
	userHandler := NewUserHandler(userSvc, nil)
	taskHandler := NewTaskHandler(taskSvc, nil)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(nil))
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/students", userHandler.ListStudents)
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		r.Put("/tasks/{id}/status", taskHandler.SetStatus)
		r.Put("/tasks/{id}/verify", taskHandler.VerifyTask)
	})
	return r
}

// addUser stores an account directly and returns a bearer token for it.
func (a *testAPI) addUser(t *testing.T, name, email string, role domain.Role) (*domain.User, string) {
	t.Helper()

	hash, err := a.hasher.Hash(testPassword)
	require.NoError(t, err)
	user, err := domain.NewUser(name, email, hash, role)
	require.NoError(t, err)
	require.NoError(t, a.users.Create(context.Background(), user))

	token, err := a.jwt.GenerateToken(context.Background(), user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

func (a *testAPI) addTask(t *testing.T, assignee *domain.User) *domain.Task {
	t.Helper()

	task, err := domain.NewTask("Read chapter 3", "Summarize the key points", assignee.ID)
	require.NoError(t, err)
	require.NoError(t, a.tasks.Create(context.Background(), task))
	return task
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, a.router, method, path, token, body)
}

func serve(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[shared.ErrorResponse](t, rr).Error
}
