package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newLoggedRequest returns a request carrying a trace ID and a capturing logger.
func newLoggedRequest(t *testing.T) (*http.Request, *logger.TestLogBuffer) {
	t.Helper()
	log, buf := logger.NewTestLogger()
	ctx := context.WithValue(context.Background(), TraceIDKey, "test-trace-id")
	ctx = logger.WithLogger(ctx, log)
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil).WithContext(ctx)
	return req, buf
}

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	req, _ := newLoggedRequest(t)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusCreated, map[string]string{"message": "ok"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"ok"}`, w.Body.String())
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	t.Parallel()

	req, buf := newLoggedRequest(t)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, buf.String(), "failed to encode JSON response")
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	req, _ := newLoggedRequest(t)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid request", response.Error)
	assert.Equal(t, "test-trace-id", response.TraceID)
	assert.NotContains(t, w.Body.String(), "code")
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Task not found")

	assert.JSONEq(t, `{"error":"Task not found"}`, w.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		elevate   bool
		wantLevel string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantLevel: "ERROR"},
		{name: "client error", status: http.StatusBadRequest, wantLevel: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, elevate: true, wantLevel: "WARN"},
		{name: "rate limited", status: http.StatusTooManyRequests, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, buf := newLoggedRequest(t)
			w := httptest.NewRecorder()

			cause := errors.New("dial postgres://app:hunter22@db:5432/taskdesk failed")
			var opts []ResponseOption
			if tt.elevate {
				opts = append(opts, WithElevatedLogLevel())
			}
			RespondWithErrorAndLog(w, req, tt.status, "Something went wrong", cause, opts...)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "hunter22")
			assert.NotContains(t, w.Body.String(), "postgres")

			entries, err := buf.Entries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0]["level"])
			assert.Equal(t, "test-trace-id", entries[0]["trace_id"])
			assert.Equal(t, "*errors.errorString", entries[0]["error_type"])
			assert.NotContains(t, entries[0]["error"], "hunter22")
		})
	}
}
