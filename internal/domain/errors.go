package domain

import (
	"errors"
	"fmt"
)

// Domain Const errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrTransportFault = errors.New("message transport fault")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// TransportError is returned when the message transport could not complete a
// send at all (network failure, malformed reply, non-2xx status). It is never
// retried by the relay.
type TransportError struct {
	Transport  string
	StatusCode int
	Message    string
	Err        error
}

func (e TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s transport error (status %d): %s", e.Transport, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s transport error: %s", e.Transport, e.Message)
}

// Is makes errors.Is(err, ErrTransportFault) true for any TransportError.
func (e TransportError) Is(target error) bool {
	return target == ErrTransportFault
}

func (e TransportError) Unwrap() error {
	return e.Err
}

func NewTransportError(transport string, statusCode int, message string, err error) TransportError {
	return TransportError{
		Transport:  transport,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
