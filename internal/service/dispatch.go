package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/insider-one/push-relay/internal/domain"
)

// Dispatcher validates message requests and forwards them to the transport
type Dispatcher struct {
	resolver  *IdentityResolver
	transport domain.MessageTransport
	logger    *slog.Logger
	observer  func(event *domain.DispatchEvent)
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	resolver *IdentityResolver,
	transport domain.MessageTransport,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		resolver:  resolver,
		transport: transport,
		logger:    logger,
	}
}

// SetObserver sets the function notified after every SendMessage call.
// It must be called before the dispatcher is shared between goroutines.
func (d *Dispatcher) SetObserver(fn func(event *domain.DispatchEvent)) {
	d.observer = fn
}

// Validate checks a request in a fixed order: the token must resolve first,
// then the text must be non-blank.
func (d *Dispatcher) Validate(ctx context.Context, req *domain.MessageRequest, token string) (domain.ResultCode, error) {
	_, found, err := d.resolver.Resolve(ctx, token)
	if err != nil {
		return domain.CodeFailed, err
	}
	if !found {
		return domain.CodeUserNotExist, nil
	}

	if req.IsBlank() {
		return domain.CodeTextNull, nil
	}

	return domain.CodeOK, nil
}

// Send performs a single delivery attempt and reports the platform's
// acknowledgment. The token is resolved again here, bypassing any identity
// cache; if it no longer resolves Send returns false without an error code,
// unlike Validate which reports USER_NOT_EXIST for the same condition.
// Callers rely on that difference.
func (d *Dispatcher) Send(ctx context.Context, req *domain.MessageRequest, token string) (bool, error) {
	identity, found, err := d.resolver.ResolveFresh(ctx, token)
	if err != nil {
		return false, err
	}
	if !found {
		d.logger.Warn("message not sent, identity no longer resolves")
		return false, nil
	}
	if req == nil {
		d.logger.Warn("message not sent, request is absent")
		return false, nil
	}

	cmd := &domain.SendCommand{
		ChatID: identity.ChatID,
		Text:   req.Text,
	}
	if req.ParseMode != domain.FormattingNone {
		cmd.ParseMode = req.ParseMode
	}

	ack, err := d.transport.Execute(ctx, cmd)
	if err != nil {
		var transportErr domain.TransportError
		if !errors.As(err, &transportErr) {
			err = domain.NewTransportError("unknown", 0, err.Error(), err)
		}
		d.logger.Error("transport fault",
			"chat_id", identity.ChatID,
			"error", err,
		)
		return false, err
	}

	if ack == nil || !ack.OK {
		description := ""
		if ack != nil {
			description = ack.Description
		}
		d.logger.Warn("transport rejected message",
			"chat_id", identity.ChatID,
			"description", description,
		)
		return false, nil
	}

	d.logger.Info("message delivered",
		"chat_id", identity.ChatID,
		"message_id", ack.MessageID,
		"parse_mode", cmd.ParseMode,
	)

	return true, nil
}

// SendMessage validates the request and, only if it passes, sends it. Any
// completed send is a success result, including one whose payload is false.
// Storage and transport faults are returned as errors.
func (d *Dispatcher) SendMessage(ctx context.Context, req *domain.MessageRequest, token string) (*domain.Result, error) {
	start := time.Now()
	mode := domain.FormattingNone
	if req != nil {
		mode = req.ParseMode
	}

	code, err := d.Validate(ctx, req, token)
	if err != nil {
		d.notify(domain.OutcomeFault, domain.CodeFailed, mode, start)
		return nil, err
	}
	if code != domain.CodeOK {
		d.logger.Info("message rejected", "code", code.Name())
		d.notify(domain.OutcomeRejected, code, mode, start)
		return domain.Failure(code), nil
	}

	delivered, err := d.Send(ctx, req, token)
	if err != nil {
		d.notify(domain.OutcomeFault, domain.CodeFailed, mode, start)
		return nil, err
	}

	outcome := domain.OutcomeUndelivered
	if delivered {
		outcome = domain.OutcomeDelivered
	}
	d.notify(outcome, domain.CodeOK, mode, start)

	return domain.Success(delivered), nil
}

func (d *Dispatcher) notify(outcome domain.Outcome, code domain.ResultCode, mode domain.FormattingMode, start time.Time) {
	if d.observer == nil {
		return
	}
	event := domain.NewDispatchEvent(outcome, code, mode)
	event.Duration = time.Since(start)
	d.observer(event)
}
