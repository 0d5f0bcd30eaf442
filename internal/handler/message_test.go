package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insider-one/push-relay/internal/domain"
	"github.com/insider-one/push-relay/internal/repository/memory"
	"github.com/insider-one/push-relay/internal/service"
)

type stubTransport struct {
	mu    sync.Mutex
	ack   *domain.Ack
	err   error
	calls []*domain.SendCommand
}

func (s *stubTransport) Execute(ctx context.Context, cmd *domain.SendCommand) (*domain.Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, cmd)
	return s.ack, s.err
}

func (s *stubTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestRouter(t *testing.T, transport *stubTransport) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	store, err := memory.ParseSeed("user42:4242")
	require.NoError(t, err)

	dispatcher := service.NewDispatcher(service.NewIdentityResolver(store), transport, logger)
	h := NewMessageHandler(dispatcher, logger)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Route("/api/v1", h.RegisterAPIRoutes)
	return r
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) domain.Result {
	t.Helper()

	var result domain.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	return result
}

func TestMessageHandler_SendByPath(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		body       string
		ack        *domain.Ack
		err        error
		wantStatus int
		wantCode   domain.ResultCode
		wantData   *bool
		wantSends  int
	}{
		{
			name:       "delivered",
			token:      "user42",
			body:       `{"text":"Hello"}`,
			ack:        &domain.Ack{OK: true},
			wantStatus: http.StatusOK,
			wantCode:   domain.CodeOK,
			wantData:   boolPtr(true),
			wantSends:  1,
		},
		{
			name:       "rejected by platform is still success",
			token:      "user42",
			body:       `{"text":"Hello"}`,
			ack:        &domain.Ack{OK: false},
			wantStatus: http.StatusOK,
			wantCode:   domain.CodeOK,
			wantData:   boolPtr(false),
			wantSends:  1,
		},
		{
			name:       "unknown fields are ignored",
			token:      "user42",
			body:       `{"text":"hi","chat_id":1,"disable_notification":true}`,
			ack:        &domain.Ack{OK: true},
			wantStatus: http.StatusOK,
			wantCode:   domain.CodeOK,
			wantData:   boolPtr(true),
			wantSends:  1,
		},
		{
			name:       "unknown token",
			token:      "abc123",
			body:       `{"text":"hi"}`,
			wantStatus: http.StatusNotFound,
			wantCode:   domain.CodeUserNotExist,
		},
		{
			name:       "unknown token with blank text",
			token:      "abc123",
			body:       `{"text":"  "}`,
			wantStatus: http.StatusNotFound,
			wantCode:   domain.CodeUserNotExist,
		},
		{
			name:       "blank text",
			token:      "user42",
			body:       `{"text":"   "}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeTextNull,
		},
		{
			name:       "empty body is an absent request",
			token:      "user42",
			body:       ``,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeTextNull,
		},
		{
			name:       "unknown parse mode",
			token:      "user42",
			body:       `{"text":"hi","parseMode":"bbcode"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeFailed,
		},
		{
			name:       "malformed JSON",
			token:      "user42",
			body:       `{"text":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.CodeFailed,
		},
		{
			name:       "transport fault",
			token:      "user42",
			body:       `{"text":"Hello"}`,
			err:        domain.NewTransportError("telegram", 0, "request failed", errors.New("timeout")),
			wantStatus: http.StatusBadGateway,
			wantCode:   domain.CodeFailed,
			wantSends:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &stubTransport{ack: tt.ack, err: tt.err}
			router := newTestRouter(t, transport)

			req := httptest.NewRequest(http.MethodPost, "/"+tt.token+"/sendMessage", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			result := decodeResult(t, rec)
			assert.Equal(t, tt.wantCode, result.Code)
			assert.Equal(t, tt.wantData, result.Data)
			assert.Equal(t, tt.wantSends, transport.callCount())
		})
	}
}

func TestMessageHandler_SendByQuery(t *testing.T) {
	transport := &stubTransport{ack: &domain.Ack{OK: true}}
	router := newTestRouter(t, transport)

	req := httptest.NewRequest(http.MethodGet, "/user42/sendMessage?text=Hello&parseMode=markdown", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeResult(t, rec)
	assert.Equal(t, domain.CodeOK, result.Code)
	require.Len(t, transport.calls, 1)
	assert.Equal(t, domain.FormattingMarkdown, transport.calls[0].ParseMode)
	assert.Equal(t, int64(4242), transport.calls[0].ChatID)
}

func TestMessageHandler_SendByHeader(t *testing.T) {
	t.Run("token from header", func(t *testing.T) {
		transport := &stubTransport{ack: &domain.Ack{OK: true}}
		router := newTestRouter(t, transport)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(`{"text":"<b>hi</b>","parseMode":"HTML"}`))
		req.Header.Set(ChatTokenHeader, "user42")
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, transport.calls, 1)
		assert.Equal(t, domain.FormattingHTML, transport.calls[0].ParseMode)
	})

	t.Run("missing header", func(t *testing.T) {
		transport := &stubTransport{ack: &domain.Ack{OK: true}}
		router := newTestRouter(t, transport)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(`{"text":"hi"}`))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.CodeUserNotExist, decodeResult(t, rec).Code)
		assert.Zero(t, transport.callCount())
	})
}

func boolPtr(b bool) *bool {
	return &b
}
