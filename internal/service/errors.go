package service

import (
	"errors"
	"fmt"
)

// Code is a machine-readable chat error code
type Code string

const (
	CodeInputRequired          Code = "INPUT_REQUIRED"
	CodeAuthenticationRequired Code = "AUTHENTICATION_REQUIRED"
	CodeEmptyOrder             Code = "EMPTY_ORDER"
	CodePersistenceFailed      Code = "PERSISTENCE_FAILED"
	CodeConcurrencyConflict    Code = "CONCURRENCY_CONFLICT"
)

// ChatError is an error surfaced to the chat user
type ChatError struct {
	Code    Code
	Message string
	Err     error
}

func (e *ChatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Err
}

// Is matches any ChatError with the same code
func (e *ChatError) Is(target error) bool {
	var t *ChatError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

var (
	ErrInputRequired          = &ChatError{Code: CodeInputRequired, Message: "Message is required"}
	ErrAuthenticationRequired = &ChatError{Code: CodeAuthenticationRequired, Message: "Please log in to place your order."}
	ErrEmptyOrder             = &ChatError{Code: CodeEmptyOrder, Message: "Your order is empty. Please add items before checking out."}
	ErrPersistence            = &ChatError{Code: CodePersistenceFailed, Message: "Sorry, there was an error processing your order. Please try again."}
	ErrConcurrencyConflict    = &ChatError{Code: CodeConcurrencyConflict, Message: "This order is already being placed. Please wait a moment."}
)

func persistenceError(err error) *ChatError {
	return &ChatError{Code: CodePersistenceFailed, Message: ErrPersistence.Message, Err: err}
}

// ErrorCode extracts the chat error code, if err carries one
func ErrorCode(err error) (Code, bool) {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}
