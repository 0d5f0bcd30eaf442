// Package sqlite provides a single-file identity store for deployments that
// do not run PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/insider-one/push-relay/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id     INTEGER NOT NULL,
	chat_token  TEXT    NOT NULL UNIQUE,
	created_at  TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);
`

// IdentityRepository implements domain.IdentityStore on SQLite
type IdentityRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema
func Open(ctx context.Context, path string) (*IdentityRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Keep a single connection so ":memory:" databases are shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &IdentityRepository{db: db}, nil
}

// Close closes the database
func (r *IdentityRepository) Close() error {
	return r.db.Close()
}

// Health checks the database handle
func (r *IdentityRepository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// FindByToken retrieves the identity registered for a chat token
func (r *IdentityRepository) FindByToken(ctx context.Context, token string) (*domain.Identity, error) {
	query := `SELECT chat_token, chat_id, created_at FROM users WHERE chat_token = ?`

	identity := &domain.Identity{}
	var createdAt string
	err := r.db.QueryRowContext(ctx, query, token).Scan(&identity.Token, &identity.ChatID, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan identity: %w", err)
	}

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		identity.CreatedAt = t
	}

	return identity, nil
}
