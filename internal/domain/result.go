package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResultCode is the business code carried in every relay response
type ResultCode int

const (
	CodeOK           ResultCode = 0
	CodeFailed       ResultCode = -1
	CodeUserNotExist ResultCode = 1001
	CodeTextNull     ResultCode = 1002
)

// Message returns the fixed human-readable text for a code
func (c ResultCode) Message() string {
	switch c {
	case CodeOK:
		return "success"
	case CodeUserNotExist:
		return "user does not exist"
	case CodeTextNull:
		return "message text cannot be empty"
	}
	return "operation failed"
}

// Name returns the symbolic name of a code
func (c ResultCode) Name() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeUserNotExist:
		return "USER_NOT_EXIST"
	case CodeTextNull:
		return "TEXT_NULL"
	}
	return "FAILED"
}

// Result is the uniform response envelope
type Result struct {
	Code    ResultCode `json:"code"`
	Message string     `json:"message,omitempty"`
	Data    *bool      `json:"data,omitempty"`
}

func (r *Result) OK() bool {
	return r.Code == CodeOK
}

// Success wraps a delivery flag. A false flag is still a success envelope.
func Success(delivered bool) *Result {
	return &Result{
		Code:    CodeOK,
		Message: CodeOK.Message(),
		Data:    &delivered,
	}
}

// Failure builds an error-coded envelope
func Failure(code ResultCode) *Result {
	return &Result{
		Code:    code,
		Message: code.Message(),
	}
}

// Outcome classifies a finished dispatch
type Outcome string

const (
	OutcomeRejected    Outcome = "rejected"
	OutcomeDelivered   Outcome = "delivered"
	OutcomeUndelivered Outcome = "undelivered"
	OutcomeFault       Outcome = "fault"
)

// DispatchEvent describes one SendMessage call. It never carries the token or text.
type DispatchEvent struct {
	ID        uuid.UUID      `json:"id"`
	Outcome   Outcome        `json:"outcome"`
	Code      ResultCode     `json:"code"`
	ParseMode FormattingMode `json:"parse_mode,omitempty"`
	Delivered bool           `json:"delivered"`
	Duration  time.Duration  `json:"duration_ns"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewDispatchEvent(outcome Outcome, code ResultCode, mode FormattingMode) *DispatchEvent {
	return &DispatchEvent{
		ID:        uuid.New(),
		Outcome:   outcome,
		Code:      code,
		ParseMode: mode,
		Delivered: outcome == OutcomeDelivered,
		Timestamp: time.Now().UTC(),
	}
}
