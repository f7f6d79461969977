package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// PoolConfig bounds the shared connection pool.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
}

// NewBunDB creates a new Bun DB instance from an existing sql.DB connection
func NewBunDB(sqlDB *sql.DB) *bun.DB {
	return bun.NewDB(sqlDB, pgdialect.New())
}

// Open connects to PostgreSQL through lib/pq, verifies the connection and
// returns a Bun DB backed by a pool that is safe for concurrent requests.
func Open(ctx context.Context, dsn string, pool PoolConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(pool.MaxIdleConns)

	return NewBunDB(sqlDB), nil
}
