package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/users-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNoChanges      = errors.New("no fields to update")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Repository handles user data persistence
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// List returns one page of users, newest id first.
func (r *Repository) List(ctx context.Context, page, perPage int) ([]*User, error) {
	var dbUsers []database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, mapDBUserToModel(&dbUsers[i]))
	}

	return users, nil
}

// Count returns the total number of users.
func (r *Repository) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	dbUser := &database.User{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Update writes the fields marked by SetName/SetEmail, refreshes updated_at
// and returns the stored row.
func (r *Repository) Update(ctx context.Context, u *User) (*User, error) {
	fields := u.ChangedFields()
	if len(fields) == 0 {
		return nil, ErrNoChanges
	}

	dbUser := new(database.User)
	q := r.db.NewUpdate().Model(dbUser)
	for _, field := range fields {
		switch field {
		case FieldName:
			q = q.Set("name = ?", u.Name)
		case FieldEmail:
			q = q.Set("email = ?", u.Email)
		}
	}

	_, err := q.
		Set("updated_at = NOW()").
		Where("id = ?", u.ID).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if dbUser.ID == 0 {
		return nil, ErrNotFound
	}

	return mapDBUserToModel(dbUser), nil
}

// Delete removes a user permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Name:         dbu.Name,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
