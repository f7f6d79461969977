package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, false)

	logger.Debug("hidden")
	logger.WithFields(map[string]any{"user_id": 7}).Info("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "visible", entry["msg"])
	require.Equal(t, float64(7), entry["user_id"])
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, false)

	var fromCtx *Logger
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetLoggerFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/3", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, fromCtx)
	require.NotSame(t, logger, fromCtx)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "request completed", entry["msg"])
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, "/users/{id}", entry["route"])
	require.Equal(t, float64(404), entry["status"])
	require.NotEmpty(t, entry["request_id"])
}

func TestGetLoggerFromContextFallback(t *testing.T) {
	require.NotNil(t, GetLoggerFromContext(context.Background()))

	custom := Discard()
	require.Same(t, custom, GetLoggerFromContext(WithLogger(context.Background(), custom)))
}
