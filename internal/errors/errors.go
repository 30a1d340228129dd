// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure raised while logging in or querying the CRM carries a Kind so that
// callers can tell a dead network from a rejected password or a bad query.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// TransportError indicates the remote host could not be reached.
	TransportError Kind = "transport_error"
	// AuthFailure indicates every login attempt was rejected.
	AuthFailure Kind = "auth_failure"
	// SessionExpired indicates the server no longer accepts the session token.
	SessionExpired Kind = "session_expired"
	// ApplicationError indicates a structured error returned by the remote API.
	ApplicationError Kind = "application_error"
	// MalformedResponse indicates a body that could not be parsed as expected.
	MalformedResponse Kind = "malformed_response"
)

// E wraps an error with kind, remote error code and human-friendly message.
type E struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *E) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// WithCode builds an error carrying the remote API's error code.
func WithCode(kind Kind, code, msg string) *E {
	return &E{Kind: kind, Code: code, Message: msg}
}

// KindOf returns the Kind of the first *E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
