package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/redmonkez12/users-api/internal/httputil"
	"github.com/redmonkez12/users-api/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey    ContextKey = "user_id"
	UserEmailContextKey ContextKey = "user_email"
)

const bearerPrefix = "Bearer "

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth is a middleware that validates the bearer access token
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			httputil.RespondError(w, httputil.MsgTokenMissing, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenService.VerifyToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			logging.GetLoggerFromContext(r.Context()).Warn("token rejected", "error", err.Error())
			httputil.RespondError(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailContextKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int64)
	return userID, ok
}

// GetUserEmailFromContext extracts the user email from the request context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailContextKey).(string)
	return email, ok
}
