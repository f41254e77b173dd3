package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error so the transport layer can map it to a status code
// without inspecting message strings.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindAccessDenied
	KindInvalidInput
	KindPolicyViolation
	KindDeprecated
)

// Error is a typed application error carrying a kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound signals that a resource does not exist or that the caller has no
// standing relationship to it. The two cases are deliberately identical so the
// response does not leak which rides exist.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// AccessDenied signals an authenticated caller without grounds for an operation.
func AccessDenied(msg string) *Error {
	return &Error{Kind: KindAccessDenied, Message: msg}
}

// InvalidInput signals malformed or rejected input.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// PolicyViolation signals a well-formed request that a business rule rejects,
// like an expired edit window or a conversation with no counterparty.
func PolicyViolation(msg string) *Error {
	return &Error{Kind: KindPolicyViolation, Message: msg}
}

// Deprecated signals a legacy endpoint that must no longer be used.
func Deprecated(msg string) *Error {
	return &Error{Kind: KindDeprecated, Message: msg}
}

// Internal wraps an unexpected error.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the kind from an error chain; unknown errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusCode maps an error to the HTTP status the transport should return.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindPolicyViolation:
		return http.StatusConflict
	case KindDeprecated:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
