package domain

import (
	"context"
	"strings"
)

// FormattingMode is a rich-text markup dialect understood by the transport
type FormattingMode string

const (
	FormattingNone       FormattingMode = ""
	FormattingMarkdown   FormattingMode = "Markdown"
	FormattingMarkdownV2 FormattingMode = "MarkdownV2"
	FormattingHTML       FormattingMode = "HTML"
)

func (m FormattingMode) IsValid() bool {
	switch m {
	case FormattingNone, FormattingMarkdown, FormattingMarkdownV2, FormattingHTML:
		return true
	}
	return false
}

// ParseFormattingMode resolves a caller-supplied mode name case-insensitively.
// "none" and the empty string both mean plain text.
func ParseFormattingMode(s string) (FormattingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FormattingNone, nil
	case "markdown":
		return FormattingMarkdown, nil
	case "markdownv2":
		return FormattingMarkdownV2, nil
	case "html":
		return FormattingHTML, nil
	}
	return FormattingNone, NewValidationError("parseMode", "unsupported parse mode "+s)
}

// MessageRequest is the outbound message a caller asks the relay to deliver
type MessageRequest struct {
	Text      string         `json:"text"`
	ParseMode FormattingMode `json:"parseMode,omitempty"`
}

// IsBlank reports whether the request is absent or carries only whitespace
func (r *MessageRequest) IsBlank() bool {
	return r == nil || strings.TrimSpace(r.Text) == ""
}

// SendCommand is what the relay hands to a MessageTransport
type SendCommand struct {
	ChatID    int64          `json:"chat_id"`
	Text      string         `json:"text"`
	ParseMode FormattingMode `json:"parse_mode,omitempty"`
}

// Ack is the transport's acknowledgment of a send
type Ack struct {
	OK          bool   `json:"ok"`
	MessageID   int    `json:"message_id,omitempty"`
	Description string `json:"description,omitempty"`
}

// MessageTransport delivers a SendCommand to the messaging platform.
type MessageTransport interface {
	// Execute performs exactly one send. A returned error is a transport fault;
	// a platform-level rejection is reported as Ack.OK == false.
	Execute(ctx context.Context, cmd *SendCommand) (*Ack, error)
}
