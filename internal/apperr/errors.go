// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperr defines the typed errors returned by the store, auth and
// handler layers. Errors carry a Kind which the HTTP boundary maps to a
// status code exactly once.
package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is the zero value so unclassified errors default to 500.
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindBadRequest
	KindNotFound
	KindConflict
	KindTooManyRequests
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTooManyRequests:
		return "too_many_requests"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
// Forbidden is collapsed into 401 on the admin surface.
func (k Kind) Status() int {
	switch k {
	case KindUnauthorized, KindForbidden:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application error with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending request field for validation errors.
	Field string
	// Details lists every field problem when more than one was found.
	Details []string
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

// Is reports whether target is an *Error of the same kind.
// This lets callers write errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrBadRequest   = &Error{Kind: KindBadRequest}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrConflict     = &Error{Kind: KindConflict}
)

// Unauthorized returns a 401 error.
func Unauthorized(msg string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Err: err}
}

// Forbidden returns an authorization error.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// BadRequest returns a 400 error.
func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

// Invalid returns a 400 error naming the offending field.
func Invalid(field, msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg, Field: field}
}

// Validation returns a 400 error whose message is the first problem and
// whose details list all of them.
func Validation(details []string) *Error {
	if len(details) == 0 {
		return BadRequest("Invalid request")
	}
	return &Error{Kind: KindBadRequest, Message: details[0], Details: details}
}

// NotFound returns a 404 error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// NotFoundf returns a 404 error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict returns a 409 error.
func Conflict(msg string, err error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// TooManyRequests returns a 429 error.
func TooManyRequests(msg string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: msg}
}

// Internal wraps an unexpected error.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// From returns err as an *Error, wrapping unknown errors as Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Internal server error", err)
}

// FromNoRows translates sql.ErrNoRows into a NotFound error with msg.
// Any other error is returned unchanged.
func FromNoRows(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	}
	return err
}
