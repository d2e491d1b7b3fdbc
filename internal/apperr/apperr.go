// Package apperr defines the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindExpired
	KindDelivery
	KindStorage
	KindNotFoundOrForbidden
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindConflict:            "conflict",
	KindNotFound:            "not_found",
	KindUnauthorized:        "unauthorized",
	KindForbidden:           "forbidden",
	KindExpired:             "expired",
	KindDelivery:            "delivery",
	KindStorage:             "storage",
	KindNotFoundOrForbidden: "not_found_or_forbidden",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status maps a kind to the HTTP status code it is reported with.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindExpired:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound, KindNotFoundOrForbidden:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to clients; Err is the
// underlying cause and is only ever logged.
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

func newError(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) error { return newError(KindValidation, msg, nil) }
func Conflict(msg string) error   { return newError(KindConflict, msg, nil) }
func NotFound(msg string) error   { return newError(KindNotFound, msg, nil) }
func Expired(msg string) error    { return newError(KindExpired, msg, nil) }

// Unauthorized is an AuthError reported as 401.
func Unauthorized(msg string) error { return newError(KindUnauthorized, msg, nil) }

// Forbidden is an AuthError reported as 403.
func Forbidden(msg string) error { return newError(KindForbidden, msg, nil) }

func NotFoundOrForbidden(msg string) error {
	return newError(KindNotFoundOrForbidden, msg, nil)
}

func Delivery(msg string, err error) error { return newError(KindDelivery, msg, err) }
func Storage(msg string, err error) error  { return newError(KindStorage, msg, err) }
func Internal(msg string, err error) error { return newError(KindInternal, msg, err) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// MessageOf returns the client-facing message for err. Unclassified errors get
// fallback so that driver messages never leak.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
