package errx

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the failure categories the toolkit
// reports to callers.
type Kind int

const (
	// KindInvalidArgument marks caller mistakes: out-of-range preference
	// scores, mismatched parallel lists, malformed inputs.
	KindInvalidArgument Kind = iota + 1
	// KindNotFound marks lookups of directories, files or keys that do not exist.
	KindNotFound
	// KindGenerationFailure marks NLG runs where filtering removed every
	// candidate template for a known intent.
	KindGenerationFailure
	// KindFatal marks unrecoverable I/O failures, e.g. during dialogue export.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindGenerationFailure:
		return "generation_failure"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes missing Redis keys.
	RedisNotFoundMessage = "redis key not found"
)

// Error wraps an underlying error with a kind and safe message.
type Error struct {
	Err     error
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the provided information.
func New(err error, kind Kind, message string) *Error {
	return &Error{
		Err:     err,
		Kind:    kind,
		Message: message,
	}
}

// Invalid creates an invalid-argument error from a formatted message.
func Invalid(format string, args ...any) *Error {
	return New(nil, KindInvalidArgument, fmt.Sprintf(format, args...))
}

// NotFound creates a not-found error from a formatted message.
func NotFound(format string, args ...any) *Error {
	return New(nil, KindNotFound, fmt.Sprintf(format, args...))
}

// GenerationFailure creates a generation-failure error from a formatted message.
func GenerationFailure(format string, args ...any) *Error {
	return New(nil, KindGenerationFailure, fmt.Sprintf(format, args...))
}

// Fatal wraps an unrecoverable error with a safe message.
func Fatal(err error, message string) *Error {
	return New(err, KindFatal, message)
}

// IsKind reports whether err or any error in its chain is an Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Is reports whether the target matches the underlying error or the Error itself.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && e.Message == t.Message
	}
	return errors.Is(e.Err, target)
}

// As allows casting to Error or the wrapped error in a chain.
func (e *Error) As(target any) bool {
	if t, ok := target.(**Error); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}
