package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskdesk-api/internal/api/shared"
	"github.com/phrazzld/taskdesk-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	base, buf := logger.NewTestLogger()

	var traceID string
	handler := NewTraceMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	require.NotEmpty(t, traceID)
	assert.Len(t, traceID, shared.TraceIDLength*2)
	assert.Equal(t, traceID, rr.Header().Get(TraceIDHeader))

	entries, err := buf.Entries()
	require.NoError(t, err)
	var found bool
	for _, e := range entries {
		if e["msg"] == "inside handler" {
			found = true
			assert.Equal(t, traceID, e["trace_id"])
		}
	}
	assert.True(t, found, "handler log entry missing")
}

func TestTraceMiddlewareUniquePerRequest(t *testing.T) {
	t.Parallel()

	handler := NewTraceMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEqual(t, first.Header().Get(TraceIDHeader), second.Header().Get(TraceIDHeader))
}
