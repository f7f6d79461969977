package logging

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// ContextKey is a type for context keys
type ContextKey string

const (
	// LoggerContextKey is the key for the logger in the request context
	LoggerContextKey ContextKey = "logger"
)

var fallbackLogger = NewLogger(true)

// RequestLogger is a middleware that logs each HTTP request once it has
// been served, and exposes a request-scoped logger to handlers.
func RequestLogger(logger *Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			fields := map[string]any{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"remote_ip":  r.RemoteAddr,
			}
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				fields["trace_id"] = sc.TraceID().String()
			}
			reqLogger := logger.WithFields(fields)

			ctx := context.WithValue(r.Context(), LoggerContextKey, reqLogger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logLevel := slog.LevelInfo
			if status >= 500 {
				logLevel = slog.LevelError
			} else if status >= 400 {
				logLevel = slog.LevelWarn
			}

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}

			reqLogger.Log(r.Context(), logLevel, "request completed",
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// GetLoggerFromContext retrieves the logger from the request context
func GetLoggerFromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return fallbackLogger
}

// WithLogger stores logger in ctx for GetLoggerFromContext.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}
