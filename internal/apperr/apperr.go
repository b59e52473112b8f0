// Package apperr defines the error kinds shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind discriminates application errors.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindUnauthorized     Kind = "unauthorized"
	KindPersistence      Kind = "persistence"
	KindSignatureInvalid Kind = "signature_invalid"
	KindUpstream         Kind = "upstream"
	KindInvalid          Kind = "invalid"
	KindInternal         Kind = "internal"
)

// Sentinel errors, one per kind. Any *Error matches the sentinel of its kind
// under errors.Is.
var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized}
	ErrPersistence      = &Error{Kind: KindPersistence}
	ErrSignatureInvalid = &Error{Kind: KindSignatureInvalid}
	ErrUpstream         = &Error{Kind: KindUpstream}
	ErrInvalid          = &Error{Kind: KindInvalid}
)

// Error is an application error carrying a kind, the failing operation and
// the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

// Error implements error.
func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == "" && t.Err == nil
}

// New creates an error of the given kind.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap creates an error of the given kind around err.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// NotFound is shorthand for New(KindNotFound, op, msg).
func NotFound(op, msg string) *Error {
	return New(KindNotFound, op, msg)
}

// Unauthorized is shorthand for New(KindUnauthorized, op, msg).
func Unauthorized(op, msg string) *Error {
	return New(KindUnauthorized, op, msg)
}

// Persistence wraps a store failure.
func Persistence(op string, err error) *Error {
	return Wrap(KindPersistence, op, err)
}

// Upstream wraps a payment or identity provider failure. msg is safe to show
// to clients.
func Upstream(op, msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Msg: msg, Err: err}
}

// SignatureInvalid wraps a failed webhook signature check.
func SignatureInvalid(op string, err error) *Error {
	return &Error{Kind: KindSignatureInvalid, Op: op, Msg: "signature verification failed", Err: err}
}

// Invalidf creates a validation error.
func Invalidf(op, format string, args ...any) *Error {
	return New(KindInvalid, op, fmt.Sprintf(format, args...))
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
