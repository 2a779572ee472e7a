package domain

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy from the error-handling design: a fixed,
// closed set of classifications the HTTP layer maps to status codes. Kinds,
// not Go types — callers switch on Kind rather than type-asserting concrete
// error structs.
type Kind string

const (
	KindNotFound        Kind = "not-found"
	KindInvalidInput    Kind = "invalid-input"
	KindConflict        Kind = "conflict"
	KindUpstreamFailure Kind = "upstream-failure"
	KindConfigError     Kind = "config-error"
	KindCancelled       Kind = "cancelled"
)

// Error wraps a Kind with a message and an optional cause, following the
// orchestrator's EngagementError/RetryableError/FatalError split: Kind tells
// the caller whether this is retryable (upstream-failure) or terminal.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func NotFound(message string) *Error        { return NewError(KindNotFound, message, nil) }
func InvalidInput(message string) *Error    { return NewError(KindInvalidInput, message, nil) }
func Conflict(message string) *Error        { return NewError(KindConflict, message, nil) }
func ConfigError(message string, cause error) *Error {
	return NewError(KindConfigError, message, cause)
}
func UpstreamFailure(message string, cause error) *Error {
	return NewError(KindUpstreamFailure, message, cause)
}
func Cancelled(message string) *Error { return NewError(KindCancelled, message, nil) }

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *Error; otherwise it returns "" and ok=false.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// ErrNotSupported is a sentinel a connector returns for an operation it
// deliberately does not implement (e.g. ServiceNow's find_logs). Distinct
// from a generic upstream-failure so callers can tell the two apart with
// errors.Is; the orchestrator's graph logs both at warning level.
var ErrNotSupported = errors.New("operation not supported by this connector")
