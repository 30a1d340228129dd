// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package crm is the client context for one process: it owns the current
// session, runs paginated REST requests with transparent re-login, and exposes
// the query, object listing and describe operations built on top of them.
package crm

import (
	"context"

	"github.com/rs/zerolog"

	"sfquery/cli/internal/auth"
	"sfquery/cli/internal/backend"
	sferr "sfquery/cli/internal/errors"
	"sfquery/cli/internal/session"
)

// Options wires a Client.
type Options struct {
	Backend       backend.API
	Authenticator *auth.Authenticator
	// Credentials feed every login the client performs, including re-logins
	// after the server expires the session.
	Credentials auth.CredentialSource
	// Store is the session cache consulted by Connect; nil disables it.
	Store      *session.Store
	RESTPrefix string
	Logger     zerolog.Logger
}

// Client runs CRM operations with a single session. It is not safe for
// concurrent use.
type Client struct {
	be         backend.API
	auth       *auth.Authenticator
	creds      auth.CredentialSource
	store      *session.Store
	restPrefix string
	log        zerolog.Logger

	sess session.Session
}

// New builds a Client. No network call is made until the first operation or
// an explicit Connect.
func New(opts Options) *Client {
	return &Client{
		be:         opts.Backend,
		auth:       opts.Authenticator,
		creds:      opts.Credentials,
		store:      opts.Store,
		restPrefix: opts.RESTPrefix,
		log:        opts.Logger,
	}
}

// Session returns a copy of the current session.
func (c *Client) Session() session.Session { return c.sess }

// Connect makes sure the client holds a session. A cached login response is
// tried first; when it is missing or unreadable the client logs in.
func (c *Client) Connect(ctx context.Context) error {
	if c.sess.Valid() {
		return nil
	}
	if c.store != nil && c.store.Exists() {
		s, err := c.store.Load(c.restPrefix)
		if err == nil {
			c.log.Debug().Str("path", c.store.Path).Str("user", s.UserName).Msg("using cached session")
			c.sess = s
			return nil
		}
		c.log.Warn().Err(err).Str("path", c.store.Path).Msg("ignoring unreadable session cache")
	}
	return c.Refresh(ctx)
}

// Refresh logs in again and replaces the current session.
func (c *Client) Refresh(ctx context.Context) error {
	if c.auth == nil {
		return sferr.New(sferr.AuthFailure, "client has no authenticator")
	}
	s, err := c.auth.Authenticate(ctx, c.creds)
	if err != nil {
		return err
	}
	c.sess = s
	return nil
}

// restURL returns the REST base for the current session, connecting first.
func (c *Client) restURL(ctx context.Context) (string, error) {
	if err := c.Connect(ctx); err != nil {
		return "", err
	}
	return c.sess.RESTBaseURL(), nil
}
