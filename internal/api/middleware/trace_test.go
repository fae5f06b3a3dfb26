package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/newsletter-api/internal/api/shared"
	"github.com/phrazzld/newsletter-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace(t *testing.T) {
	base, buf := logger.GetTestLogger(t)

	var traceID string
	var hasLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		hasLogger = logger.FromContext(r.Context()) != slog.Default()
		w.WriteHeader(http.StatusTeapot)
	})

	handler := chimiddleware.RequestID(Trace(base)(next))
	req := httptest.NewRequest(http.MethodGet, "/health_check", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "req-42")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, "req-42", traceID)
	assert.True(t, hasLogger)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "request started", entries[0]["msg"])

	completed := entries[1]
	assert.Equal(t, "request completed", completed["msg"])
	assert.Equal(t, "req-42", completed["trace_id"])
	assert.Equal(t, float64(http.StatusTeapot), completed["status"])
	assert.Equal(t, "/health_check", completed["path"])
}

func TestTraceGeneratesID(t *testing.T) {
	var traceID string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
	})

	Trace(nil)(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, traceID)
}
