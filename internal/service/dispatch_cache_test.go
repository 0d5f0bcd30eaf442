package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/insider-one/push-relay/internal/domain"
	"github.com/insider-one/push-relay/internal/repository/memory"
	"github.com/insider-one/push-relay/internal/repository/redis"
)

func TestDispatcher_SendBypassesIdentityCache(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	mr := miniredis.RunT(t)
	client := redis.NewFromClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	defer client.Close()

	store, err := memory.ParseSeed("user42:4242")
	require.NoError(t, err)
	cache := redis.NewIdentityCache(client, store, 5*time.Minute, logger)

	transport := new(MockTransport)
	d := NewDispatcher(NewIdentityResolver(cache), transport, logger)

	code, err := d.Validate(ctx, &domain.MessageRequest{Text: "Hello"}, "user42")
	require.NoError(t, err)
	require.Equal(t, domain.CodeOK, code)

	store.Remove("user42")

	delivered, err := d.Send(ctx, &domain.MessageRequest{Text: "Hello"}, "user42")

	require.NoError(t, err)
	assert.False(t, delivered)
	transport.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)

	// The send-time lookup evicted the stale entry
	code, err = d.Validate(ctx, &domain.MessageRequest{Text: "Hello"}, "user42")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeUserNotExist, code)
}
