package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/insider-one/push-relay/internal/domain"
)

// rowQuerier is the part of *pgxpool.Pool the repository uses
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IdentityRepository implements domain.IdentityStore using PostgreSQL
type IdentityRepository struct {
	q rowQuerier
}

// NewIdentityRepository creates a new IdentityRepository
func NewIdentityRepository(db *DB) *IdentityRepository {
	return &IdentityRepository{q: db.Pool}
}

// FindByToken retrieves the identity registered for a chat token
func (r *IdentityRepository) FindByToken(ctx context.Context, token string) (*domain.Identity, error) {
	query := `
		SELECT chat_token, chat_id, created_at
		FROM users
		WHERE chat_token = $1
	`

	identity := &domain.Identity{}
	err := r.q.QueryRow(ctx, query, token).Scan(
		&identity.Token, &identity.ChatID, &identity.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan identity: %w", err)
	}

	return identity, nil
}
