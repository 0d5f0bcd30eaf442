//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/domain"
)

// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func TestIdentityRepository_Integration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()

	require.NoError(t, Migrate(url))

	db, err := New(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: time.Minute})
	require.NoError(t, err)
	defer db.Close()

	token := "it-" + time.Now().Format("150405.000000000")
	_, err = db.Pool.Exec(ctx, `INSERT INTO users (chat_token, chat_id) VALUES ($1, $2)`, token, 4242)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Pool.Exec(context.Background(), `DELETE FROM users WHERE chat_token = $1`, token)
	})

	repo := NewIdentityRepository(db)

	identity, err := repo.FindByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), identity.ChatID)
	assert.Equal(t, token, identity.Token)

	_, err = repo.FindByToken(ctx, token+"-missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
