package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/insider-one/push-relay/internal/domain"
)

// IdentityStore is an in-process domain.IdentityStore
type IdentityStore struct {
	mu         sync.RWMutex
	identities map[string]domain.Identity
}

// NewIdentityStore creates an empty IdentityStore
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		identities: make(map[string]domain.Identity),
	}
}

// ParseSeed builds a store from "token:chatID" pairs separated by commas
func ParseSeed(seed string) (*IdentityStore, error) {
	s := NewIdentityStore()
	for _, pair := range strings.Split(seed, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		token, rawID, ok := strings.Cut(pair, ":")
		if !ok || token == "" {
			return nil, fmt.Errorf("invalid seed entry %q: want token:chatID", pair)
		}
		chatID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id in seed entry %q: %w", pair, err)
		}
		s.Put(token, chatID)
	}
	return s, nil
}

// Put registers token for chatID, replacing any previous mapping
func (s *IdentityStore) Put(token string, chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities[token] = domain.Identity{
		Token:     token,
		ChatID:    chatID,
		CreatedAt: time.Now().UTC(),
	}
}

// Remove drops token
func (s *IdentityStore) Remove(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.identities, token)
}

// Len returns the number of registered tokens
func (s *IdentityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.identities)
}

// FindByToken implements domain.IdentityStore
func (s *IdentityStore) FindByToken(ctx context.Context, token string) (*domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.identities[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &identity, nil
}

// Health always succeeds
func (s *IdentityStore) Health(ctx context.Context) error {
	return nil
}
