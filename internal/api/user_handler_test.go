package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskdesk-api/internal/domain"
)

func TestUserHandler_ListStudents(t *testing.T) {
	t.Parallel()

	a := newTestAPI(t)
	_, adminToken := a.addUser(t, "Root", "root@example.com", domain.RoleAdmin)
	_, beaToken := a.addUser(t, "Bea", "bea@example.com", domain.RoleStudent)
	a.addUser(t, "Ada", "ada@example.com", domain.RoleStudent)

	rr := a.do(t, http.MethodGet, "/students", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	students := decodeBody[[]domain.UserSummary](t, rr)
	require.Len(t, students, 2)
	assert.Equal(t, "Ada", students[0].Name)
	assert.Equal(t, "Bea", students[1].Name)
	assert.NotContains(t, rr.Body.String(), "hashed")
	assert.NotContains(t, rr.Body.String(), "root@example.com")

	rr = a.do(t, http.MethodGet, "/students", beaToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = a.do(t, http.MethodGet, "/students", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserHandler_MissingAuthContext(t *testing.T) {
	t.Parallel()

	h := NewUserHandler(&fakeUserService{}, nil)
	rr := serve(t, http.HandlerFunc(h.ListStudents), http.MethodGet, "/students", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid token", errorMessage(t, rr))
}
