package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/domain"
)

func TestWebhookTransport_Execute(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		status    int
		body      string
		wantOK    bool
		wantFault bool
	}{
		{"accepted", http.StatusOK, `{"ok":true,"result":{"message_id":9}}`, true, false},
		{"rejected", http.StatusOK, `{"ok":false,"description":"chat not found"}`, false, false},
		{"server error", http.StatusBadGateway, `upstream down`, false, true},
		{"malformed body", http.StatusOK, `not json`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var received domain.SendCommand
				_ = json.NewDecoder(r.Body).Decode(&received)
				assert.Equal(t, int64(4242), received.ChatID)
				assert.Equal(t, domain.FormattingHTML, received.ParseMode)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			transport := NewWebhookTransport(config.WebhookConfig{URL: server.URL, Timeout: time.Second})
			ack, err := transport.Execute(ctx, &domain.SendCommand{
				ChatID:    4242,
				Text:      "Hello",
				ParseMode: domain.FormattingHTML,
			})

			if tt.wantFault {
				assert.ErrorIs(t, err, domain.ErrTransportFault)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ack.OK)
		})
	}

	t.Run("unreachable endpoint", func(t *testing.T) {
		transport := NewWebhookTransport(config.WebhookConfig{URL: "http://127.0.0.1:1", Timeout: time.Second})

		_, err := transport.Execute(ctx, &domain.SendCommand{ChatID: 1, Text: "x"})

		assert.ErrorIs(t, err, domain.ErrTransportFault)
	})
}
