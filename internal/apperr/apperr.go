package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error for transport mapping and tests.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindExpired
	KindInvalidInput
	KindUnauthenticated
)

// Hint tags an error with a recovery the API layer can suggest alongside the
// error payload.
type Hint string

const HintJoinWaitlist Hint = "join_waitlist"

// Error carries a Kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Hint    Hint
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// WithHint attaches a recovery suggestion and returns the error.
func (e *Error) WithHint(h Hint) *Error {
	e.Hint = h
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the underlying cause while presenting message to the caller.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func Expired(message string) *Error         { return New(KindExpired, message) }
func InvalidInput(message string) *Error    { return New(KindInvalidInput, message) }
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// KindOf returns the Kind of err, or KindInternal for non-apperr errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an apperr.Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HintOf returns the hint carried by err, or the empty hint.
func HintOf(err error) Hint {
	var e *Error
	if errors.As(err, &e) {
		return e.Hint
	}
	return ""
}

// HTTPStatus maps an error to the status code the handlers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	case KindExpired:
		return http.StatusGone
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message safe to show the caller. Internal errors
// are masked.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}
