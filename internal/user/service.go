package user

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/redmonkez12/users-api/internal/logging"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

var (
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrPasswordTooLong   = errors.New("password is too long")
)

var tracer = otel.Tracer("github.com/redmonkez12/users-api/internal/user")

// Store is the persistence contract the service relies on. *Repository
// satisfies it.
type Store interface {
	List(ctx context.Context, page, perPage int) ([]*User, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) (*User, error)
	Update(ctx context.Context, u *User) (*User, error)
	Delete(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Service holds the user management business rules.
type Service struct {
	store  Store
	hasher PasswordHasher
	logger *logging.Logger
}

func NewService(store Store, hasher PasswordHasher, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		logger: logger,
	}
}

// ListUsers returns the requested page. page is clamped into
// [1, totalPages], a non-positive perPage becomes DefaultPerPage and
// perPage never exceeds MaxPerPage.
func (s *Service) ListUsers(ctx context.Context, page, perPage int) (*Page, error) {
	ctx, span := tracer.Start(ctx, "user.ListUsers")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	items, err := s.store.List(ctx, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	span.SetAttributes(
		attribute.Int("users.page", page),
		attribute.Int("users.per_page", perPage),
		attribute.Int("users.total", total),
	)

	return &Page{
		CurrentPage:  page,
		PerPage:      perPage,
		TotalRecords: total,
		TotalPages:   totalPages,
		Items:        items,
	}, nil
}

// CreateUser registers a new account with a hashed password.
func (s *Service) CreateUser(ctx context.Context, name, email, password string) (*User, error) {
	ctx, span := tracer.Start(ctx, "user.CreateUser")
	defer span.End()

	if err := s.ensureEmailAvailable(ctx, email, 0); err != nil {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			// Lost the race against a concurrent insert; the unique index caught it.
			s.logger.Warn("duplicate email rejected by storage", "email", email)
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", created.ID))
	return created, nil
}

func (s *Service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	ctx, span := tracer.Start(ctx, "user.GetUserByID")
	defer span.End()

	return s.store.GetByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, span := tracer.Start(ctx, "user.GetUserByEmail")
	defer span.End()

	return s.store.GetByEmail(ctx, email)
}

// UpdateUser changes name and/or email. Empty arguments are left untouched;
// the caller guarantees at least one is set.
func (s *Service) UpdateUser(ctx context.Context, id int64, name, email string) (*User, error) {
	ctx, span := tracer.Start(ctx, "user.UpdateUser")
	defer span.End()

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if email != "" {
		if email != existing.Email {
			if err := s.ensureEmailAvailable(ctx, email, existing.ID); err != nil {
				return nil, err
			}
		}
		existing.SetEmail(email)
	}

	if name != "" {
		existing.SetName(name)
	}

	// Persist even unchanged values so updated_at is refreshed.
	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return updated, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "user.DeleteUser")
	defer span.End()

	if _, err := s.store.GetByID(ctx, id); err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}

// UpdatePassword replaces the stored hash after verifying the old password.
func (s *Service) UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	ctx, span := tracer.Start(ctx, "user.UpdatePassword")
	defer span.End()

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(existing.PasswordHash, oldPassword) {
		return ErrIncorrectPassword
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.store.UpdatePassword(ctx, id, passwordHash)
}

// VerifyPassword reports whether password matches the user's stored hash.
func (s *Service) VerifyPassword(u *User, password string) bool {
	return s.hasher.Verify(u.PasswordHash, password)
}

// ensureEmailAvailable fails with ErrDuplicateEmail when email belongs to a
// user other than ownerID.
func (s *Service) ensureEmailAvailable(ctx context.Context, email string, ownerID int64) error {
	other, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check email: %w", err)
	}
	if other.ID != ownerID {
		return ErrDuplicateEmail
	}
	return nil
}
