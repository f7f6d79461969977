package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/users-api/internal/httputil"
	"github.com/redmonkez12/users-api/internal/logging"
)

const maxBodyBytes = 1 << 20

// UserService is the subset of *Service the handlers depend on.
type UserService interface {
	ListUsers(ctx context.Context, page, perPage int) (*Page, error)
	CreateUser(ctx context.Context, name, email, password string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id int64, name, email string) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword string) error
}

// Handler contains HTTP handlers for user management endpoints
type Handler struct {
	service UserService
}

func NewHandler(service UserService) *Handler {
	return &Handler{service: service}
}

// CreateUserRequest represents the user creation request body
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest represents the user update request body
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdatePasswordRequest represents the password change request body
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// PageLinks points at the neighbouring pages, when they exist.
type PageLinks struct {
	Prev string `json:"prev,omitempty"`
	Next string `json:"next,omitempty"`
}

// ListUsersResponse is a Page plus navigation links.
type ListUsersResponse struct {
	Page
	Links PageLinks `json:"links"`
}

// List handles paginated user listing
// @Summary      List users
// @Description  Paginated list of users, newest first
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page     query int false "Page number (default 1)"
// @Param        per_page query int false "Page size (default 10, max 100)"
// @Success      200 {object} httputil.SuccessResponse{data=ListUsersResponse}
// @Failure      400 {object} httputil.ErrorResponse "Invalid pagination parameters"
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid token"
// @Router       /users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	page, err := queryInt(r, "page", 1)
	if err != nil {
		httputil.RespondError(w, httputil.MsgInvalidPagination, http.StatusBadRequest)
		return
	}
	perPage, err := queryInt(r, "per_page", DefaultPerPage)
	if err != nil {
		httputil.RespondError(w, httputil.MsgInvalidPagination, http.StatusBadRequest)
		return
	}

	result, err := h.service.ListUsers(r.Context(), page, perPage)
	if err != nil {
		respondServiceError(w, logger, "list users", err)
		return
	}

	httputil.RespondSuccess(w, ListUsersResponse{
		Page:  *result,
		Links: buildLinks(r.URL.Path, result),
	}, http.StatusOK)
}

// Create handles user creation
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateUserRequest true "New user"
// @Success      201 {object} httputil.SuccessResponse{data=User}
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "E-mail already registered"
// @Router       /users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		logger.Warn("invalid create user request body", "error", err.Error())
		httputil.RespondError(w, httputil.MsgInvalidRequestBody, http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		httputil.RespondError(w, httputil.MsgCreateFieldsRequired, http.StatusBadRequest)
		return
	}
	if !ValidEmail(email) {
		httputil.RespondError(w, httputil.MsgInvalidEmail, http.StatusBadRequest)
		return
	}

	created, err := h.service.CreateUser(r.Context(), name, email, req.Password)
	if err != nil {
		respondServiceError(w, logger, "create user", err)
		return
	}

	logger.Info("user created", "user_id", created.ID)
	httputil.RespondSuccess(w, created, http.StatusCreated)
}

// GetByID handles fetching a single user
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200 {object} httputil.SuccessResponse{data=User}
// @Failure      400 {object} httputil.ErrorResponse "Invalid user ID"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, logger, "get user", err)
		return
	}

	httputil.RespondSuccess(w, u, http.StatusOK)
}

// GetByEmail handles lookups by e-mail
// @Summary      Get a user by e-mail
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        email query string true "E-mail address"
// @Success      200 {object} httputil.SuccessResponse{data=User}
// @Failure      400 {object} httputil.ErrorResponse "Missing or invalid e-mail"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/by-email [get]
func (h *Handler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		httputil.RespondError(w, httputil.MsgEmailRequired, http.StatusBadRequest)
		return
	}
	if !ValidEmail(email) {
		httputil.RespondError(w, httputil.MsgInvalidEmail, http.StatusBadRequest)
		return
	}

	u, err := h.service.GetUserByEmail(r.Context(), email)
	if err != nil {
		respondServiceError(w, logger, "get user by email", err)
		return
	}

	httputil.RespondSuccess(w, u, http.StatusOK)
}

// Update handles name/e-mail changes
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "User ID"
// @Param        request body UpdateUserRequest true "Fields to change"
// @Success      200 {object} httputil.SuccessResponse{data=User}
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      409 {object} httputil.ErrorResponse "E-mail already registered"
// @Router       /users/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		logger.Warn("invalid update user request body", "error", err.Error())
		httputil.RespondError(w, httputil.MsgInvalidRequestBody, http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" && email == "" {
		httputil.RespondError(w, httputil.MsgUpdateFieldsRequired, http.StatusBadRequest)
		return
	}
	if email != "" && !ValidEmail(email) {
		httputil.RespondError(w, httputil.MsgInvalidEmail, http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), id, name, email)
	if err != nil {
		respondServiceError(w, logger, "update user", err)
		return
	}

	logger.Info("user updated", "user_id", updated.ID)
	httputil.RespondSuccess(w, updated, http.StatusOK)
}

// UpdatePassword handles password changes
// @Summary      Change a user's password
// @Tags         users
// @Accept       json
// @Security     BearerAuth
// @Param        id      path int                   true "User ID"
// @Param        request body UpdatePasswordRequest true "Old and new password"
// @Success      204
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      403 {object} httputil.ErrorResponse "Incorrect password"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [patch]
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := decodeBody(w, r, &req); err != nil {
		logger.Warn("invalid update password request body", "error", err.Error())
		httputil.RespondError(w, httputil.MsgInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		httputil.RespondError(w, httputil.MsgPasswordsRequired, http.StatusBadRequest)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(w, logger, "update password", err)
		return
	}

	logger.Info("password updated", "user_id", id)
	httputil.RespondNoContent(w)
}

// Delete handles user removal
// @Summary      Delete a user
// @Tags         users
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      204
// @Failure      400 {object} httputil.ErrorResponse "Invalid user ID"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /users/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		respondServiceError(w, logger, "delete user", err)
		return
	}

	logger.Info("user deleted", "user_id", id)
	httputil.RespondNoContent(w)
}

// ValidEmail reports whether s is a bare address such as a@example.com.
func ValidEmail(s string) bool {
	if len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// respondServiceError maps service errors onto the JSON envelope.
func respondServiceError(w http.ResponseWriter, logger *logging.Logger, action string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		logger.Warn(action+" failed: user not found")
		httputil.RespondError(w, httputil.MsgUserNotFound, http.StatusNotFound)
	case errors.Is(err, ErrDuplicateEmail):
		logger.Warn(action + " failed: email already exists")
		httputil.RespondError(w, httputil.MsgEmailAlreadyInUse, http.StatusConflict)
	case errors.Is(err, ErrIncorrectPassword):
		logger.Warn(action + " failed: incorrect password")
		httputil.RespondError(w, httputil.MsgIncorrectPassword, http.StatusForbidden)
	case errors.Is(err, ErrPasswordTooLong):
		httputil.RespondError(w, httputil.MsgPasswordTooLong, http.StatusBadRequest)
	default:
		logger.Error(action+" failed: internal error", "error", err.Error())
		httputil.RespondError(w, httputil.MsgInternalError, http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathID parses the {id} URL parameter, writing a 400 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondError(w, httputil.MsgInvalidUserID, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func buildLinks(path string, p *Page) PageLinks {
	var links PageLinks
	if p.CurrentPage > 1 {
		links.Prev = fmt.Sprintf("%s?page=%d&per_page=%d", path, p.CurrentPage-1, p.PerPage)
	}
	if p.CurrentPage < p.TotalPages {
		links.Next = fmt.Sprintf("%s?page=%d&per_page=%d", path, p.CurrentPage+1, p.PerPage)
	}
	return links
}
