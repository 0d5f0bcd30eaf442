package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/insider-one/push-relay/internal/domain"
)

func TestIdentityResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("registered token", func(t *testing.T) {
		store := new(MockIdentityStore)
		store.On("FindByToken", ctx, "user42").Return(registered(), nil).Once()

		identity, found, err := NewIdentityResolver(store).Resolve(ctx, "user42")

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(4242), identity.ChatID)
	})

	t.Run("unknown token is not an error", func(t *testing.T) {
		store := new(MockIdentityStore)
		store.On("FindByToken", ctx, "abc123").Return(nil, domain.ErrNotFound).Once()

		identity, found, err := NewIdentityResolver(store).Resolve(ctx, "abc123")

		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, identity)
	})

	t.Run("nil identity without error is not found", func(t *testing.T) {
		store := new(MockIdentityStore)
		store.On("FindByToken", ctx, "odd").Return(nil, nil).Once()

		_, found, err := NewIdentityResolver(store).Resolve(ctx, "odd")

		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("storage fault is wrapped", func(t *testing.T) {
		store := new(MockIdentityStore)
		storeErr := errors.New("pool closed")
		store.On("FindByToken", ctx, "user42").Return(nil, storeErr).Once()

		_, found, err := NewIdentityResolver(store).Resolve(ctx, "user42")

		assert.False(t, found)
		assert.ErrorIs(t, err, storeErr)
		assert.Contains(t, err.Error(), "failed to resolve identity")
	})
}

// MockCachingStore is a mock domain.CachingIdentityStore
type MockCachingStore struct {
	MockIdentityStore
}

func (m *MockCachingStore) FindByTokenUncached(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func TestIdentityResolver_ResolveFresh(t *testing.T) {
	ctx := context.Background()

	t.Run("caching store is read through", func(t *testing.T) {
		store := new(MockCachingStore)
		store.On("FindByTokenUncached", ctx, "user42").Return(registered(), nil).Once()

		identity, found, err := NewIdentityResolver(store).ResolveFresh(ctx, "user42")

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(4242), identity.ChatID)
		store.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	})

	t.Run("plain store falls back to FindByToken", func(t *testing.T) {
		store := new(MockIdentityStore)
		store.On("FindByToken", ctx, "abc123").Return(nil, domain.ErrNotFound).Once()

		_, found, err := NewIdentityResolver(store).ResolveFresh(ctx, "abc123")

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("empty token never reaches the store", func(t *testing.T) {
		store := new(MockCachingStore)

		_, found, err := NewIdentityResolver(store).ResolveFresh(ctx, "")

		require.NoError(t, err)
		assert.False(t, found)
		store.AssertNotCalled(t, "FindByTokenUncached", mock.Anything, mock.Anything)
	})
}
