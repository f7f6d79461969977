package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// stubService is a UserService whose behaviour is set per test.
type stubService struct {
	listFn           func(ctx context.Context, page, perPage int) (*Page, error)
	createFn         func(ctx context.Context, name, email, password string) (*User, error)
	getByIDFn        func(ctx context.Context, id int64) (*User, error)
	getByEmailFn     func(ctx context.Context, email string) (*User, error)
	updateFn         func(ctx context.Context, id int64, name, email string) (*User, error)
	deleteFn         func(ctx context.Context, id int64) error
	updatePasswordFn func(ctx context.Context, id int64, oldPassword, newPassword string) error

	calls int
}

func (s *stubService) ListUsers(ctx context.Context, page, perPage int) (*Page, error) {
	s.calls++
	return s.listFn(ctx, page, perPage)
}

func (s *stubService) CreateUser(ctx context.Context, name, email, password string) (*User, error) {
	s.calls++
	return s.createFn(ctx, name, email, password)
}

func (s *stubService) GetUserByID(ctx context.Context, id int64) (*User, error) {
	s.calls++
	return s.getByIDFn(ctx, id)
}

func (s *stubService) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	s.calls++
	return s.getByEmailFn(ctx, email)
}

func (s *stubService) UpdateUser(ctx context.Context, id int64, name, email string) (*User, error) {
	s.calls++
	return s.updateFn(ctx, id, name, email)
}

func (s *stubService) DeleteUser(ctx context.Context, id int64) error {
	s.calls++
	return s.deleteFn(ctx, id)
}

func (s *stubService) UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	s.calls++
	return s.updatePasswordFn(ctx, id, oldPassword, newPassword)
}

func newTestRouter(svc UserService) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Get("/users/by-email", h.GetByEmail)
	r.Get("/users/{id}", h.GetByID)
	r.Put("/users/{id}", h.Update)
	r.Patch("/users/{id}", h.UpdatePassword)
	r.Delete("/users/{id}", h.Delete)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHandlerList(t *testing.T) {
	svc := &stubService{
		listFn: func(_ context.Context, page, perPage int) (*Page, error) {
			require.Equal(t, 2, page)
			require.Equal(t, 10, perPage)
			return &Page{
				CurrentPage:  2,
				PerPage:      10,
				TotalRecords: 25,
				TotalPages:   3,
				Items:        []*User{{ID: 15, Name: "u15", Email: "u15@example.com", PasswordHash: "secret-hash"}},
			}, nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodGet, "/users?page=2&per_page=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret-hash")

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)

	var resp ListUsersResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Equal(t, 3, resp.TotalPages)
	require.Equal(t, 25, resp.TotalRecords)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "/users?page=1&per_page=10", resp.Links.Prev)
	require.Equal(t, "/users?page=3&per_page=10", resp.Links.Next)
}

func TestHandlerListDefaults(t *testing.T) {
	svc := &stubService{
		listFn: func(_ context.Context, page, perPage int) (*Page, error) {
			require.Equal(t, 1, page)
			require.Equal(t, DefaultPerPage, perPage)
			return &Page{CurrentPage: 1, PerPage: perPage, TotalRecords: 3, TotalPages: 1, Items: []*User{}}, nil
		},
	}

	rec := do(t, newTestRouter(svc), http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	links, ok := data["links"].(map[string]any)
	require.True(t, ok)
	require.NotContains(t, links, "prev")
	require.NotContains(t, links, "next")
}

func TestHandlerListInvalidPagination(t *testing.T) {
	svc := &stubService{}
	rec := do(t, newTestRouter(svc), http.MethodGet, "/users?page=abc", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, svc.calls)
}

func TestHandlerCreate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
		wantError  string
	}{
		{
			name:       "created",
			body:       `{"name":"Ann","email":"ann@example.com","password":"pw"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request body!",
		},
		{
			name:       "missing password",
			body:       `{"name":"Ann","email":"ann@example.com"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Name, e-mail and password are required!",
		},
		{
			name:       "bad email",
			body:       `{"name":"Ann","email":"not-an-email","password":"pw"}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid e-mail format!",
		},
		{
			name:       "duplicate",
			body:       `{"name":"Ann","email":"ann@example.com","password":"pw"}`,
			createErr:  ErrDuplicateEmail,
			wantStatus: http.StatusConflict,
			wantError:  "E-mail already registered!",
		},
		{
			name:       "storage failure",
			body:       `{"name":"Ann","email":"ann@example.com","password":"pw"}`,
			createErr:  errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				createFn: func(_ context.Context, name, email, password string) (*User, error) {
					if tt.createErr != nil {
						return nil, tt.createErr
					}
					return &User{ID: 1, Name: name, Email: email, PasswordHash: "hash"}, nil
				},
			}

			rec := do(t, newTestRouter(svc), http.MethodPost, "/users", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)

			env := decodeEnvelope(t, rec)
			if tt.wantError != "" {
				require.False(t, env.Success)
				require.Equal(t, tt.wantError, env.Error)
				return
			}

			require.True(t, env.Success)
			var u map[string]any
			require.NoError(t, json.Unmarshal(env.Data, &u))
			require.Equal(t, "ann@example.com", u["email"])
			require.NotContains(t, u, "password")
			require.NotContains(t, u, "PasswordHash")
		})
	}
}

func TestHandlerGetByID(t *testing.T) {
	svc := &stubService{
		getByIDFn: func(_ context.Context, id int64) (*User, error) {
			if id == 1 {
				return &User{ID: 1, Name: "Ann", Email: "ann@example.com"}, nil
			}
			return nil, ErrNotFound
		},
	}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/users/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/users/2", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "User not found :/", decodeEnvelope(t, rec).Error)

	for _, bad := range []string{"abc", "0", "-3"} {
		rec = do(t, router, http.MethodGet, "/users/"+bad, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, bad)
		require.Equal(t, "Invalid user ID!", decodeEnvelope(t, rec).Error)
	}
}

func TestHandlerGetByEmail(t *testing.T) {
	svc := &stubService{
		getByEmailFn: func(_ context.Context, email string) (*User, error) {
			if email == "ann@example.com" {
				return &User{ID: 1, Name: "Ann", Email: email}, nil
			}
			return nil, ErrNotFound
		},
	}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodGet, "/users/by-email?email=ann@example.com", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/users/by-email?email=bob@example.com", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/users/by-email", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "E-mail is required!", decodeEnvelope(t, rec).Error)

	rec = do(t, router, http.MethodGet, "/users/by-email?email=nope", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid e-mail format!", decodeEnvelope(t, rec).Error)
}

func TestHandlerUpdate(t *testing.T) {
	var gotName, gotEmail string
	svc := &stubService{
		updateFn: func(_ context.Context, id int64, name, email string) (*User, error) {
			gotName, gotEmail = name, email
			if email == "taken@example.com" {
				return nil, ErrDuplicateEmail
			}
			return &User{ID: id, Name: "Annie", Email: "ann@example.com"}, nil
		},
	}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodPut, "/users/1", `{"name":"  Annie  "}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Annie", gotName)
	require.Empty(t, gotEmail)

	rec = do(t, router, http.MethodPut, "/users/1", `{"email":"taken@example.com"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	before := svc.calls
	rec = do(t, router, http.MethodPut, "/users/1", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "At least one field (name or e-mail) is required!", decodeEnvelope(t, rec).Error)

	rec = do(t, router, http.MethodPut, "/users/1", `{"email":"bad"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, before, svc.calls)
}

func TestHandlerUpdatePassword(t *testing.T) {
	svc := &stubService{
		updatePasswordFn: func(_ context.Context, id int64, oldPassword, newPassword string) error {
			if id != 1 {
				return ErrNotFound
			}
			if oldPassword != "old" {
				return ErrIncorrectPassword
			}
			return nil
		},
	}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodPatch, "/users/1", `{"old_password":"old","new_password":"new"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = do(t, router, http.MethodPatch, "/users/1", `{"old_password":"wrong","new_password":"new"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "Incorrect password!", decodeEnvelope(t, rec).Error)

	rec = do(t, router, http.MethodPatch, "/users/2", `{"old_password":"old","new_password":"new"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPatch, "/users/1", `{"old_password":"old"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Old and new passwords are required!", decodeEnvelope(t, rec).Error)
}

func TestHandlerDelete(t *testing.T) {
	svc := &stubService{
		deleteFn: func(_ context.Context, id int64) error {
			if id == 1 {
				return nil
			}
			return ErrNotFound
		},
	}
	router := newTestRouter(svc)

	rec := do(t, router, http.MethodDelete, "/users/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodDelete, "/users/9", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@example.com", "first.last+tag@sub.example.org"}
	invalid := []string{"", "plain", "a@", "@example.com", "Ann <ann@example.com>", "a b@example.com", strings.Repeat("a", 250) + "@x.io"}

	for _, s := range valid {
		require.True(t, ValidEmail(s), s)
	}
	for _, s := range invalid {
		require.False(t, ValidEmail(s), s)
	}
}

func TestBuildLinks(t *testing.T) {
	tests := []struct {
		name     string
		page     Page
		wantPrev string
		wantNext string
	}{
		{"single page", Page{CurrentPage: 1, PerPage: 10, TotalPages: 1}, "", ""},
		{"first of three", Page{CurrentPage: 1, PerPage: 10, TotalPages: 3}, "", "/users?page=2&per_page=10"},
		{"last of three", Page{CurrentPage: 3, PerPage: 10, TotalPages: 3}, "/users?page=2&per_page=10", ""},
		{"empty", Page{CurrentPage: 1, PerPage: 10, TotalPages: 0}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := buildLinks("/users", &tt.page)
			require.Equal(t, tt.wantPrev, links.Prev)
			require.Equal(t, tt.wantNext, links.Next)
		})
	}
}
