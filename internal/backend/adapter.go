// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides the wire-level client for the CRM platform.
// It speaks the SOAP login call and bearer-authenticated REST GETs and leaves
// the interpretation of status codes and bodies to its callers.
package backend

import (
	"context"
	"net/http"
)

// API defines the remote operations the CLI depends on.
// Implementations may call the real endpoints or provide fakes for tests.
type API interface {
	// Login posts the SOAP login envelope and returns the raw reply.
	// Only failures to reach the server are returned as errors.
	Login(ctx context.Context, username, password string) (*Response, error)
	// Get issues a REST GET with the bearer token attached.
	Get(ctx context.Context, url, token string) (*Response, error)
}

// Response is a fully read HTTP reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 200 status.
func (r *Response) OK() bool { return r.StatusCode == http.StatusOK }
