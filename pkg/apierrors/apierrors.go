// Package apierrors defines the error taxonomy for the Instagram token
// lifecycle. Provider payloads are normalized into these kinds at the
// HTTP boundary; nothing past that point inspects raw provider JSON.
package apierrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by which leg of the flow produced it.
type Kind string

const (
	KindExchange     Kind = "exchange"
	KindProfileFetch Kind = "profile_fetch"
	KindMediaFetch   Kind = "media_fetch"
	KindRefresh      Kind = "refresh"
	KindValidation   Kind = "validation"
	KindPersistence  Kind = "persistence"
)

// Error carries the kind, the human-readable provider message and the
// HTTP status the provider answered with (0 for transport failures).
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func New(kind Kind, code int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap normalizes an arbitrary error into the given kind, preserving an
// already-classified *Error untouched.
func Wrap(kind Kind, err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Kind: kind, Message: err.Error()}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// IsFatal reports whether the kind aborts the exchange. Media fetch
// degrades to an empty list and persistence failures are swallowed.
func IsFatal(kind Kind) bool {
	switch kind {
	case KindMediaFetch, KindPersistence:
		return false
	}
	return true
}
