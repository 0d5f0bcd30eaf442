package domain

import (
	"context"
	"time"
)

// Identity maps an opaque chat token to the Telegram chat it addresses
type Identity struct {
	Token     string    `json:"-"`
	ChatID    int64     `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

// IdentityStore is the read-only lookup the relay needs from user storage.
type IdentityStore interface {
	// FindByToken returns ErrNotFound when no identity is registered for token
	FindByToken(ctx context.Context, token string) (*Identity, error)
}

// CachingIdentityStore is an IdentityStore that may answer from a cache. The
// send path uses FindByTokenUncached so a cached validation is never trusted.
type CachingIdentityStore interface {
	IdentityStore
	// FindByTokenUncached reads the backing store and refreshes or evicts
	// the cached entry to match
	FindByTokenUncached(ctx context.Context, token string) (*Identity, error)
}
