// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth logs in to the CRM platform with a username and password.
// It drives the bounded retry loop over the SOAP login call, hands every
// successful reply to the session cache, and defines the credential sources
// that feed the loop (configuration, OS keychain, interactive prompt).
package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sfquery/cli/internal/backend"
	sferr "sfquery/cli/internal/errors"
	"sfquery/cli/internal/session"
)

// DefaultRetryLimit is the number of login attempts when none is configured.
const DefaultRetryLimit = 3

// Authenticator performs credential-based login and caches the result.
type Authenticator struct {
	be         backend.API
	store      *session.Store
	restPrefix string
	retryLimit int
	log        zerolog.Logger
}

// NewAuthenticator builds an Authenticator. store may be nil to skip caching;
// a non-positive retryLimit means DefaultRetryLimit.
func NewAuthenticator(be backend.API, store *session.Store, restPrefix string, retryLimit int, log zerolog.Logger) *Authenticator {
	if retryLimit <= 0 {
		retryLimit = DefaultRetryLimit
	}
	return &Authenticator{be: be, store: store, restPrefix: restPrefix, retryLimit: retryLimit, log: log}
}

// RetryLimit returns the configured number of attempts.
func (a *Authenticator) RetryLimit() int { return a.retryLimit }

// Authenticate tries to log in up to RetryLimit times and returns the first
// session the server grants. Unreachable servers and SOAP faults count as
// failed attempts. Running out of attempts yields an AuthFailure; a 200 reply
// that cannot be parsed is a MalformedResponse and ends the loop.
func (a *Authenticator) Authenticate(ctx context.Context, src CredentialSource) (session.Session, error) {
	var last error
	for attempt := 0; attempt < a.retryLimit; attempt++ {
		creds, err := src.Credentials(ctx, attempt)
		if err != nil {
			return session.Session{}, sferr.Wrap(sferr.AuthFailure, "no credentials for login", err)
		}

		resp, err := a.be.Login(ctx, creds.Username, creds.Password)
		if err != nil {
			a.log.Error().Err(err).Int("attempt", attempt+1).Msg("could not connect to server")
			last = err
			continue
		}

		if !resp.OK() {
			last = a.describeFault(resp)
			a.log.Error().Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg(last.Error())
			continue
		}

		s, err := session.ParseLoginResponse(resp.Body, a.restPrefix)
		if err != nil {
			return session.Session{}, err
		}
		if a.store != nil {
			if err := a.store.Save(resp.Body); err != nil {
				a.log.Warn().Err(err).Msg("could not cache session")
			}
		}
		a.log.Info().Str("user", s.UserName).Str("server", s.ServerURL).Msg("login succeeded")
		return s, nil
	}

	msg := fmt.Sprintf("login failed after %d attempts", a.retryLimit)
	if e, ok := last.(*sferr.E); ok && e.Kind == sferr.AuthFailure {
		return session.Session{}, &sferr.E{Kind: sferr.AuthFailure, Code: e.Code, Message: msg + ": " + e.Message}
	}
	return session.Session{}, sferr.Wrap(sferr.AuthFailure, msg, last)
}

// describeFault turns a rejected login reply into an AuthFailure carrying the
// fault code and message when the body has them.
func (a *Authenticator) describeFault(resp *backend.Response) error {
	fault, err := session.ParseFault(resp.Body)
	if err != nil {
		return sferr.Wrap(sferr.AuthFailure, fmt.Sprintf("login rejected with status %d", resp.StatusCode), err)
	}
	msg := fault.Message
	if msg == "" {
		msg = fmt.Sprintf("login rejected with status %d", resp.StatusCode)
	}
	return sferr.WithCode(sferr.AuthFailure, fault.Code, msg)
}
