package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/domain"
)

const telegramTransport = "telegram"

// TelegramTransport implements domain.MessageTransport on the Telegram Bot API
type TelegramTransport struct {
	bot    *tgbotapi.BotAPI
	logger *slog.Logger
}

// NewTelegramTransport connects to the Bot API and verifies the token with getMe
func NewTelegramTransport(cfg config.TelegramConfig, logger *slog.Logger) (*TelegramTransport, error) {
	client := &http.Client{
		Timeout: cfg.Timeout,
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	bot.Debug = cfg.Debug

	logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)

	return &TelegramTransport{
		bot:    bot,
		logger: logger,
	}, nil
}

// Execute sends one sendMessage request. The Bot API client is not
// context-aware, so ctx is only checked before the call.
func (t *TelegramTransport) Execute(ctx context.Context, cmd *domain.SendCommand) (*domain.Ack, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.NewTransportError(telegramTransport, 0, "request cancelled", err)
	}

	msg := tgbotapi.NewMessage(cmd.ChatID, cmd.Text)
	if cmd.ParseMode != domain.FormattingNone {
		msg.ParseMode = string(cmd.ParseMode)
	}

	resp, err := t.bot.Request(msg)
	if err != nil {
		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) {
			// The platform answered ok=false.
			return &domain.Ack{
				OK:          false,
				Description: apiErr.Message,
			}, nil
		}
		return nil, domain.NewTransportError(telegramTransport, 0, fmt.Sprintf("request failed: %v", err), err)
	}

	ack := &domain.Ack{
		OK:          resp.Ok,
		Description: resp.Description,
	}
	if resp.Ok && len(resp.Result) > 0 {
		var sent tgbotapi.Message
		if err := json.Unmarshal(resp.Result, &sent); err == nil {
			ack.MessageID = sent.MessageID
		}
	}

	return ack, nil
}

// Health checks that the bot token is still accepted
func (t *TelegramTransport) Health(ctx context.Context) error {
	if _, err := t.bot.GetMe(); err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	return nil
}
