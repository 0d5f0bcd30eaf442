package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/domain"
)

func testConfig(webhookURL string) *config.Config {
	return &config.Config{
		Identity:  config.IdentityConfig{Backend: "memory", Seed: "user42:4242"},
		Transport: config.TransportConfig{Kind: "webhook"},
		Webhook:   config.WebhookConfig{URL: webhookURL, Timeout: time.Second, Enabled: true},
	}
}

func TestNew_MemoryStoreAndWebhook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":7}}`))
	}))
	defer server.Close()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	a, err := New(context.Background(), testConfig(server.URL), logger)
	defer a.Close()
	require.NoError(t, err)

	assert.Contains(t, a.Checkers, "identity_store")
	assert.NotContains(t, a.Checkers, "redis")

	result, err := a.Dispatcher.SendMessage(context.Background(), &domain.MessageRequest{Text: "Hello"}, "user42")
	require.NoError(t, err)
	assert.Equal(t, domain.CodeOK, result.Code)
	require.NotNil(t, result.Data)
	assert.True(t, *result.Data)
}

func TestNew_Errors(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{"bad seed", func(cfg *config.Config) { cfg.Identity.Seed = "user42:notanumber" }},
		{"unknown backend", func(cfg *config.Config) { cfg.Identity.Backend = "ldap" }},
		{"unknown transport", func(cfg *config.Config) { cfg.Transport.Kind = "carrier-pigeon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("http://127.0.0.1:1")
			tt.mutate(cfg)

			a, err := New(context.Background(), cfg, logger)
			defer a.Close()

			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	assert.True(t, NewLogger(io.Discard, "debug").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewLogger(io.Discard, "info").Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewLogger(io.Discard, "error").Enabled(context.Background(), slog.LevelWarn))
}
