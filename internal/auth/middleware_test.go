package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/users-api/internal/httputil"
)

func TestRequireAuth(t *testing.T) {
	tokens, err := NewJWTService([]byte(testSecret))
	require.NoError(t, err)

	valid, err := tokens.CreateToken(9, "ann@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := tokens.CreateToken(9, "ann@example.com", -time.Hour)
	require.NoError(t, err)

	var gotID int64
	var gotEmail string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = GetUserIDFromContext(r.Context())
		gotEmail, _ = GetUserEmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(tokens).RequireAuth(next)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"no header", "", http.StatusUnauthorized, "Token missing!"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "Token missing!"},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, "token has expired"},
		{"garbage", "Bearer nonsense", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotEmail = 0, ""

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.Equal(t, int64(9), gotID)
				require.Equal(t, "ann@example.com", gotEmail)
				return
			}

			require.Zero(t, gotID, "next handler must not run")

			var resp httputil.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.False(t, resp.Success)
			require.NotEmpty(t, resp.Error)
			if tt.wantError != "" {
				require.Equal(t, tt.wantError, resp.Error)
			}
		})
	}
}

func TestGetUserIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := GetUserIDFromContext(req.Context())
	require.False(t, ok)
}
