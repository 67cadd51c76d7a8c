// Package dErrors defines the code-tagged error type shared by every service.
//
// Services create or wrap errors with a Code; the HTTP layer translates the
// code into a status and a {kind, message} envelope. Stores never use this
// package directly — they return sentinel errors (pkg/platform/sentinel) and
// the owning service decides which domain code applies.
package dErrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure. The string values are the wire-level
// error kinds returned to clients.
type Code string

const (
	// CodeValidation covers missing or malformed fields and unknown entity
	// references supplied by the caller.
	CodeValidation Code = "ValidationError"

	// CodeUnauthorized means no usable identity accompanied the request
	// (missing, malformed, or expired token).
	CodeUnauthorized Code = "Unauthorized"

	// CodeInvalidCredentials is the single login failure. Unknown email and
	// wrong password collapse into this code deliberately.
	CodeInvalidCredentials Code = "InvalidCredentials"

	// CodeForbidden means the identity is authenticated but its role or
	// ownership does not permit the operation.
	CodeForbidden Code = "Forbidden"

	CodeNotFound Code = "NotFound"

	// CodeConflict is an optimistic-version mismatch. The caller should
	// re-fetch and retry.
	CodeConflict Code = "Conflict"

	// CodeInvalidTransition means the requested lifecycle event is not valid
	// from the aggregate's current state.
	CodeInvalidTransition Code = "InvalidTransition"

	CodeDuplicateEmail Code = "DuplicateEmail"

	CodeInternal Code = "Internal"
)

// Error carries a Code alongside the message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two domain errors by code (and message, when the target sets
// one), so errors.Is works against freshly constructed sentinels.
func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	if te.Message != "" && te.Message != e.Message {
		return false
	}
	return e.Code == te.Code
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is / errors.As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
		de = nil
	}
	return false
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries no code at all.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain message, or empty for untagged errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
