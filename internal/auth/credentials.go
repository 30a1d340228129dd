// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
)

// Credentials is a username/password pair for one login attempt.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both values are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// CredentialSource yields credentials for a login attempt. attempt counts from
// zero within a single Authenticate call.
type CredentialSource interface {
	Credentials(ctx context.Context, attempt int) (Credentials, error)
}

// Prompter asks a human for credentials.
type Prompter interface {
	Prompt(ctx context.Context) (Credentials, error)
}

// ErrNoCredentials is returned by sources that have nothing to offer.
var ErrNoCredentials = errors.New("no credentials available")

// StaticSource returns the same pair on every attempt.
type StaticSource Credentials

func (s StaticSource) Credentials(ctx context.Context, attempt int) (Credentials, error) {
	c := Credentials(s)
	if !c.Complete() {
		return Credentials{}, ErrNoCredentials
	}
	return c, nil
}

// ConfiguredSource uses pre-supplied credentials on the first attempt and asks
// the Prompter on every later attempt, or on the first one when nothing was
// configured.
type ConfiguredSource struct {
	Configured Credentials
	Prompter   Prompter
}

func (s *ConfiguredSource) Credentials(ctx context.Context, attempt int) (Credentials, error) {
	if attempt == 0 && s.Configured.Complete() {
		return s.Configured, nil
	}
	if s.Prompter == nil {
		return Credentials{}, ErrNoCredentials
	}
	return s.Prompter.Prompt(ctx)
}
