package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/insider-one/push-relay/internal/domain"
)

// IdentityResolver turns an opaque chat token into the chat it addresses
type IdentityResolver struct {
	store domain.IdentityStore
}

// NewIdentityResolver creates a new IdentityResolver
func NewIdentityResolver(store domain.IdentityStore) *IdentityResolver {
	return &IdentityResolver{store: store}
}

// Resolve looks up token. An unknown token is reported as found == false with a
// nil error; the error is reserved for storage faults.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*domain.Identity, bool, error) {
	if token == "" {
		return nil, false, nil
	}
	return resolved(r.store.FindByToken(ctx, token))
}

// ResolveFresh is Resolve bypassing any identity cache in front of the store
func (r *IdentityResolver) ResolveFresh(ctx context.Context, token string) (*domain.Identity, bool, error) {
	if token == "" {
		return nil, false, nil
	}

	cached, ok := r.store.(domain.CachingIdentityStore)
	if !ok {
		return resolved(r.store.FindByToken(ctx, token))
	}
	return resolved(cached.FindByTokenUncached(ctx, token))
}

func resolved(identity *domain.Identity, err error) (*domain.Identity, bool, error) {
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to resolve identity: %w", err)
	}
	if identity == nil {
		return nil, false, nil
	}

	return identity, true, nil
}
