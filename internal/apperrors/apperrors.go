package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so the HTTP boundary can pick a status code
// without inspecting message text.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindPermission
	KindNotFound
	KindConflict
)

// Error is a classified application error
type Error struct {
	Kind    Kind
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

// Validation reports malformed or missing input
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// Permission reports an authenticated but unauthorized request
func Permission(message string) error {
	return &Error{Kind: KindPermission, Message: message}
}

// NotFound reports an absent entity
func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict reports a state-dependent rule violation
func Conflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unexpected wraps a store or infrastructure failure
func Unexpected(message string, err error) error {
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// KindOf extracts the classification from err. Unclassified errors are
// treated as unexpected.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

// MessageOf returns the caller-facing message for err
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// HTTPStatus maps a classified error to its response status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindPermission:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
