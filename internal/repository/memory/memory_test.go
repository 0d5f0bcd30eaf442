package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insider-one/push-relay/internal/domain"
)

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		seed    string
		wantLen int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"single", "user42:4242", 1, false},
		{"multiple with spaces", " user42:4242 , ops:-100123 ,", 2, false},
		{"missing separator", "user42", 0, true},
		{"missing token", ":4242", 0, true},
		{"bad chat id", "user42:abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := ParseSeed(tt.seed)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, store.Len())
		})
	}
}

func TestIdentityStore_FindByToken(t *testing.T) {
	ctx := context.Background()
	store, err := ParseSeed("user42:4242,group:-100123")
	require.NoError(t, err)

	identity, err := store.FindByToken(ctx, "group")
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), identity.ChatID)

	_, err = store.FindByToken(ctx, "abc123")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	store.Remove("user42")
	_, err = store.FindByToken(ctx, "user42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
