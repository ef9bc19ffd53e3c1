// Package sqlite is a SQLite storage backend. All keyspaces share one
// records table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tatianab/orb-cult/internal/storage"
	"github.com/tatianab/orb-cult/internal/storage/sqlite/migrations"
)

// Backend implements storage.Backend over a SQLite file.
type Backend struct {
	db *sql.DB
}

// Open opens the database at path and applies embedded migrations.
func Open(path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Backend{db: db}, nil
}

// Load implements storage.Backend.
func (b *Backend) Load(ctx context.Context, keyspace, id string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE keyspace = ? AND id = ?`, keyspace, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s/%s: %w", keyspace, id, err)
	}
	return data, nil
}

// Save implements storage.Backend.
func (b *Backend) Save(ctx context.Context, keyspace, id string, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
INSERT INTO records (keyspace, id, data, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (keyspace, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		keyspace, id, data, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", keyspace, id, err)
	}
	return nil
}

// Delete implements storage.Backend.
func (b *Backend) Delete(ctx context.Context, keyspace, id string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM records WHERE keyspace = ? AND id = ?`, keyspace, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", keyspace, id, err)
	}
	return nil
}

// Count returns the number of records in keyspace.
func (b *Backend) Count(ctx context.Context, keyspace string) (int, error) {
	var n int
	err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE keyspace = ?`, keyspace).Scan(&n)
	return n, err
}

// Close closes the SQLite handle.
func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
