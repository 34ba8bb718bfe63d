// Package sqlite implements storage.Storage on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"convertbot/migrations"
)

type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the database file at path
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("db path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// One writer; every statement commits on its own.
	s.SetMaxOpenConns(1)
	s.SetMaxIdleConns(1)
	s.SetConnMaxLifetime(0)

	db := &DB{sql: s}
	if err := db.ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return db, nil
}

func (d *DB) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return d.sql.PingContext(ctx)
}

// Initialize applies pending migrations
func (d *DB) Initialize(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, d.sql, migrations.SQLite())
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Snapshot writes a consistent copy of the database to dst.
// dst must not exist yet.
func (d *DB) Snapshot(ctx context.Context, dst string) error {
	if _, err := d.sql.ExecContext(ctx, "VACUUM INTO ?", dst); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.sql.Close()
}
