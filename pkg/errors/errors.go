// Copyright 2026 © The Vigil Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed error handling for the Vigil core.
//
// The core distinguishes protocol errors (typed, returned from memory
// operations) from policy rejections (layers.Result values) and consent
// gaps (defined no-ops). Only the first category is represented as a Go
// error; the other two are expected outcomes the caller branches on.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode classifies Vigil errors for monitoring and caller branching.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNotFound indicates no record exists for the given id.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeInvalidTransition indicates an operation was applied to a record
	// that is not in the state the operation requires.
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// CodeLayerImmutable indicates a write targeted an immutable
	// configuration layer and was blocked by the layer guard.
	CodeLayerImmutable ErrorCode = "LAYER_IMMUTABLE"

	// CodeStorage indicates a durable persistence failure.
	CodeStorage ErrorCode = "STORAGE_ERROR"
)

// VigilError is a typed error with context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type VigilError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]any
	Recoverable bool
}

// Error implements the error interface.
func (e *VigilError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *VigilError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *VigilError) MarshalJSON() ([]byte, error) {
	payload := map[string]any{
		"code":        string(e.Code),
		"message":     e.Message,
		"recoverable": e.Recoverable,
	}
	if e.Err != nil {
		payload["error"] = e.Err.Error()
	}
	if len(e.Context) > 0 {
		payload["context"] = e.Context
	}
	return json.Marshal(payload)
}

// New creates a new VigilError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *VigilError {
	return &VigilError{
		Code:    code,
		Message: msg,
		Err:     cause,
		Context: make(map[string]any),
	}
}

// Newf creates a VigilError with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...any) *VigilError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *VigilError) WithContext(key string, value any) *VigilError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *VigilError) WithRecoverable(recoverable bool) *VigilError {
	e.Recoverable = recoverable
	return e
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *VigilError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// AsVigilError attempts to convert an error to a VigilError.
// Returns the error as VigilError if it is one, or wraps it otherwise.
func AsVigilError(err error) *VigilError {
	if err == nil {
		return nil
	}
	var ve *VigilError
	if errors.As(err, &ve) {
		return ve
	}
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the error code of err, or CodeInternal for untyped errors.
// Returns "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ve *VigilError
	if errors.As(err, &ve) {
		return ve.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var ve *VigilError
	return errors.As(err, &ve) && ve.Code == code
}
