package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/insider-one/push-relay/internal/config"
	"github.com/insider-one/push-relay/internal/domain"
)

const webhookTransport = "webhook"

// WebhookTransport implements domain.MessageTransport by POSTing the send
// command to an HTTP endpoint that answers in the Bot API's response shape
type WebhookTransport struct {
	client  *http.Client
	baseURL string
}

// NewWebhookTransport creates a new WebhookTransport
func NewWebhookTransport(cfg config.WebhookConfig) *WebhookTransport {
	return &WebhookTransport{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.URL,
	}
}

type webhookResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	Result      struct {
		MessageID int `json:"message_id"`
	} `json:"result"`
}

// Execute sends the command to the webhook
func (p *WebhookTransport) Execute(ctx context.Context, cmd *domain.SendCommand) (*domain.Ack, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, domain.NewTransportError(webhookTransport, 0, fmt.Sprintf("request failed: %v", err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError(webhookTransport, resp.StatusCode, "failed to read response body", err)
	}

	// Check status code
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewTransportError(webhookTransport, resp.StatusCode, string(respBody), nil)
	}

	var webhookResp webhookResponse
	if err := json.Unmarshal(respBody, &webhookResp); err != nil {
		return nil, domain.NewTransportError(webhookTransport, resp.StatusCode, "malformed response", err)
	}

	return &domain.Ack{
		OK:          webhookResp.OK,
		MessageID:   webhookResp.Result.MessageID,
		Description: webhookResp.Description,
	}, nil
}
