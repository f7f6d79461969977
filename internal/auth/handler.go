package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/users-api/internal/httputil"
	"github.com/redmonkez12/users-api/internal/logging"
)

const maxLoginBodyBytes = 1 << 20

// Authenticator is the subset of *Service the handler depends on.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service Authenticator
}

func NewHandler(service Authenticator) *Handler {
	return &Handler{service: service}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with e-mail and password and receive a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} httputil.SuccessResponse{data=LoginResult}
// @Failure      400 {object} httputil.ErrorResponse "Missing credentials"
// @Failure      401 {object} httputil.ErrorResponse "Unknown e-mail"
// @Failure      403 {object} httputil.ErrorResponse "Incorrect password"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBodyBytes)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, httputil.MsgInvalidRequestBody, http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		httputil.RespondError(w, httputil.MsgCredentialsRequired, http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": email})

	result, err := h.service.Login(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			logger.Warn("login failed: user not found")
			httputil.RespondError(w, httputil.MsgUserNotFound, http.StatusUnauthorized)
			return
		}
		if errors.Is(err, ErrIncorrectPassword) {
			logger.Warn("login failed: incorrect password")
			httputil.RespondError(w, httputil.MsgIncorrectPassword, http.StatusForbidden)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondError(w, httputil.MsgInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", result.User.ID)
	httputil.RespondSuccess(w, result, http.StatusOK)
}
