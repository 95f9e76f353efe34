// Package domainerrors carries the client's error taxonomy. Every failure that
// reaches a user is one of these codes; the code decides how it is presented
// (inline validation, toast, silent defocus) and which HTTP status the local
// control API answers with.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error.
type Code string

const (
	// CodeValidation marks a missing or malformed field. Handled locally and
	// blocks the action.
	CodeValidation Code = "validation"
	// CodeRemote marks a non-2xx response or a network failure from the
	// backend. State is left unchanged.
	CodeRemote Code = "remote"
	// CodeStaleSelection marks a focused item that no longer exists.
	CodeStaleSelection Code = "stale_selection"
	CodeNotFound       Code = "not_found"
	CodeConflict       Code = "conflict"
	CodeNotConfirmed   Code = "not_confirmed"
	CodeForbidden      Code = "forbidden"
	CodeUnauthorized   Code = "unauthorized"
	CodeUnavailable    Code = "unavailable"
	CodeInternal       Code = "internal"
)

// Error is a coded error with a user-presentable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.Err
			continue
		}
		return false
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Message returns the user-presentable message of the outermost coded error,
// falling back to err.Error().
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
