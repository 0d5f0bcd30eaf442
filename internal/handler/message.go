package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/insider-one/push-relay/internal/domain"
	"github.com/insider-one/push-relay/internal/service"
)

// ChatTokenHeader carries the chat token on the header-addressed endpoint
const ChatTokenHeader = "X-Chat-Token"

// MessageHandler handles message relay HTTP requests
type MessageHandler struct {
	dispatcher *service.Dispatcher
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(dispatcher *service.Dispatcher, logger *slog.Logger) *MessageHandler {
	validate := validator.New()
	validate.RegisterValidation("parsemode", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseFormattingMode(fl.Field().String())
		return err == nil
	})

	return &MessageHandler{
		dispatcher: dispatcher,
		validate:   validate,
		logger:     logger,
	}
}

// RegisterRoutes registers the token-in-path routes
func (h *MessageHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{token}/sendMessage", h.SendByPath)
	r.Get("/{token}/sendMessage", h.SendByQuery)
}

// RegisterAPIRoutes registers the header-addressed API routes
func (h *MessageHandler) RegisterAPIRoutes(r chi.Router) {
	r.Post("/messages", h.SendByHeader)
}

// SendMessageRequest represents a request to relay a message
// @Description Message to relay to the chat behind a token
type SendMessageRequest struct {
	Text      string `json:"text" example:"Build #42 finished"`
	ParseMode string `json:"parseMode,omitempty" validate:"omitempty,parsemode" example:"Markdown"`
}

// SendByPath relays a message addressed by the token in the URL path
// @Summary Send message
// @Description Relay a text message to the Telegram chat registered for the token
// @Tags messages
// @Accept json
// @Produce json
// @Param token path string true "Chat token"
// @Param message body SendMessageRequest false "Message"
// @Success 200 {object} domain.Result
// @Failure 400 {object} domain.Result
// @Failure 404 {object} domain.Result
// @Failure 502 {object} domain.Result
// @Router /{token}/sendMessage [post]
func (h *MessageHandler) SendByPath(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, chi.URLParam(r, "token"), req)
}

// SendByQuery relays a message given in the query string
// @Summary Send message (query)
// @Description Relay a text message passed as query parameters
// @Tags messages
// @Produce json
// @Param token path string true "Chat token"
// @Param text query string false "Message text"
// @Param parseMode query string false "Markdown, MarkdownV2 or HTML"
// @Success 200 {object} domain.Result
// @Failure 400 {object} domain.Result
// @Failure 404 {object} domain.Result
// @Failure 502 {object} domain.Result
// @Router /{token}/sendMessage [get]
func (h *MessageHandler) SendByQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req, ok := h.toMessageRequest(w, SendMessageRequest{
		Text:      query.Get("text"),
		ParseMode: query.Get("parseMode"),
	})
	if !ok {
		return
	}
	h.dispatch(w, r, chi.URLParam(r, "token"), req)
}

// SendByHeader relays a message addressed by the X-Chat-Token header
// @Summary Send message (header token)
// @Description Relay a text message; the chat token is read from X-Chat-Token
// @Tags messages
// @Accept json
// @Produce json
// @Param X-Chat-Token header string true "Chat token"
// @Param message body SendMessageRequest false "Message"
// @Success 200 {object} domain.Result
// @Failure 400 {object} domain.Result
// @Failure 404 {object} domain.Result
// @Failure 502 {object} domain.Result
// @Router /api/v1/messages [post]
func (h *MessageHandler) SendByHeader(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeBody(w, r)
	if !ok {
		return
	}
	h.dispatch(w, r, r.Header.Get(ChatTokenHeader), req)
}

// decodeBody reads the JSON body. An empty body is an absent request, which
// the dispatcher reports as TEXT_NULL once the token has been checked.
func (h *MessageHandler) decodeBody(w http.ResponseWriter, r *http.Request) (*domain.MessageRequest, bool) {
	var body SendMessageRequest
	if err := DecodeJSON(r, &body); err != nil {
		if errors.Is(err, errEmptyBody) {
			return nil, true
		}
		HandleError(w, err)
		return nil, false
	}
	return h.toMessageRequest(w, body)
}

func (h *MessageHandler) toMessageRequest(w http.ResponseWriter, body SendMessageRequest) (*domain.MessageRequest, bool) {
	if err := h.validate.Struct(body); err != nil {
		JSONError(w, http.StatusBadRequest, domain.CodeFailed, "parseMode must be one of Markdown, MarkdownV2, HTML")
		return nil, false
	}

	mode, err := domain.ParseFormattingMode(body.ParseMode)
	if err != nil {
		HandleError(w, err)
		return nil, false
	}

	return &domain.MessageRequest{
		Text:      body.Text,
		ParseMode: mode,
	}, true
}

func (h *MessageHandler) dispatch(w http.ResponseWriter, r *http.Request, token string, req *domain.MessageRequest) {
	result, err := h.dispatcher.SendMessage(r.Context(), req, token)
	if err != nil {
		h.logger.Error("message dispatch failed", "error", err)
		HandleError(w, err)
		return
	}

	WriteResult(w, result)
}
