package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/insider-one/push-relay/internal/domain"
)

const (
	identityKeyPrefix = "identity:token:"
)

// IdentityCache is a read-through cache in front of a domain.IdentityStore.
// Only hits are cached so a freshly registered token resolves immediately.
type IdentityCache struct {
	client *Client
	store  domain.IdentityStore
	ttl    time.Duration
	logger *slog.Logger
}

// NewIdentityCache creates a new IdentityCache
func NewIdentityCache(client *Client, store domain.IdentityStore, ttl time.Duration, logger *slog.Logger) *IdentityCache {
	return &IdentityCache{
		client: client,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// identityKey returns the Redis key for a chat token
func identityKey(token string) string {
	return identityKeyPrefix + token
}

type cachedIdentity struct {
	ChatID    int64     `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

// FindByToken implements domain.IdentityStore. Redis failures degrade to a
// direct store lookup.
func (c *IdentityCache) FindByToken(ctx context.Context, token string) (*domain.Identity, error) {
	key := identityKey(token)

	data, err := c.client.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedIdentity
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return &domain.Identity{
				Token:     token,
				ChatID:    cached.ChatID,
				CreatedAt: cached.CreatedAt,
			}, nil
		}
		c.logger.Warn("dropping corrupt identity cache entry")
		if delErr := c.Invalidate(ctx, token); delErr != nil {
			c.logger.Warn("identity cache eviction failed", "error", delErr)
		}
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("identity cache read failed", "error", err)
	}

	identity, err := c.store.FindByToken(ctx, token)
	if err != nil || identity == nil {
		return identity, err
	}

	c.remember(ctx, token, identity)
	return identity, nil
}

// FindByTokenUncached reads the backing store directly. A hit refreshes the
// cached entry and a miss evicts it, so a token removed from the store stops
// validating from cache as soon as one send has looked it up.
func (c *IdentityCache) FindByTokenUncached(ctx context.Context, token string) (*domain.Identity, error) {
	identity, err := c.store.FindByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && identity == nil) {
		if invErr := c.Invalidate(ctx, token); invErr != nil {
			c.logger.Warn("identity cache eviction failed", "error", invErr)
		}
		return identity, err
	}
	if err != nil {
		return nil, err
	}

	c.remember(ctx, token, identity)
	return identity, nil
}

func (c *IdentityCache) remember(ctx context.Context, token string, identity *domain.Identity) {
	data, err := json.Marshal(cachedIdentity{ChatID: identity.ChatID, CreatedAt: identity.CreatedAt})
	if err != nil {
		return
	}
	if err := c.client.rdb.Set(ctx, identityKey(token), data, c.ttl).Err(); err != nil {
		c.logger.Warn("identity cache write failed", "error", err)
	}
}

// Invalidate removes a token from the cache
func (c *IdentityCache) Invalidate(ctx context.Context, token string) error {
	return c.client.rdb.Del(ctx, identityKey(token)).Err()
}
