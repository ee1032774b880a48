package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// sqlQueries are the statements for one SQL dialect.
type sqlQueries struct {
	get    string
	upsert string
	remove string
}

var postgresQueries = sqlQueries{
	get: `
SELECT value
FROM credentials
WHERE owner_hash = $1`,
	upsert: `
INSERT INTO credentials (owner_hash, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (owner_hash) DO UPDATE
SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
	remove: `
DELETE FROM credentials
WHERE owner_hash = $1`,
}

var sqliteQueries = sqlQueries{
	get: `
SELECT value
FROM credentials
WHERE owner_hash = ?`,
	upsert: `
INSERT INTO credentials (owner_hash, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (owner_hash) DO UPDATE
SET value = excluded.value, updated_at = excluded.updated_at`,
	remove: `
DELETE FROM credentials
WHERE owner_hash = ?`,
}

// SQLStore persists credentials in the credentials table.
type SQLStore struct {
	db      *sql.DB
	queries sqlQueries
}

// NewPGStore returns a store for a pgx-backed *sql.DB.
func NewPGStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, queries: postgresQueries}
}

// NewSQLiteStore returns a store for a modernc sqlite *sql.DB.
func NewSQLiteStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, queries: sqliteQueries}
}

func (s *SQLStore) Get(ctx context.Context, owner string) (string, error) {
	if s.db == nil {
		return "", fmt.Errorf("db is nil")
	}
	var value string
	err := s.db.QueryRowContext(ctx, s.queries.get, ownerKey(owner)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get credential: %w", err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, owner string, value string) error {
	if s.db == nil {
		return fmt.Errorf("db is nil")
	}
	if _, err := s.db.ExecContext(ctx, s.queries.upsert, ownerKey(owner), value); err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	return nil
}

func (s *SQLStore) Remove(ctx context.Context, owner string) error {
	if s.db == nil {
		return fmt.Errorf("db is nil")
	}
	if _, err := s.db.ExecContext(ctx, s.queries.remove, ownerKey(owner)); err != nil {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

var _ Store = (*SQLStore)(nil)
