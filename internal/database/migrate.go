package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/redmonkez12/users-api/internal/database/migrations"
)

// gooseUp and gooseStatus are seams for tests.
var (
	gooseUp     = goose.UpContext
	gooseStatus = goose.StatusContext
)

func setupGoose() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return nil
}

// Migrate applies every pending embedded migration.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := gooseUp(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationStatus logs the applied/pending state of each migration.
func MigrationStatus(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := gooseStatus(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	return nil
}
