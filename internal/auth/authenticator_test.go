// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfquery/cli/internal/backend"
	sferr "sfquery/cli/internal/errors"
	"sfquery/cli/internal/session"
)

const okBody = `<Envelope><Body><loginResponse><result>` +
	`<serverUrl>https://na1.example.com/services/Soap/u/35.0/00D</serverUrl>` +
	`<sessionId>SESSION-1</sessionId><userId>005A</userId><userFullName>Jane Doe</userFullName>` +
	`</result></loginResponse></Body></Envelope>`

const faultBody = `<Envelope><Body><Fault><faultcode>INVALID_LOGIN</faultcode>` +
	`<faultstring>Invalid username, password, security token; or user locked out.</faultstring></Fault></Body></Envelope>`

// scriptedLogin replays one reply per Login call.
type scriptedLogin struct {
	replies []func() (*backend.Response, error)
	calls   int
	users   []string
}

func (s *scriptedLogin) Login(ctx context.Context, username, password string) (*backend.Response, error) {
	s.users = append(s.users, username)
	i := s.calls
	s.calls++
	if i >= len(s.replies) {
		return &backend.Response{StatusCode: http.StatusInternalServerError, Body: []byte(faultBody)}, nil
	}
	return s.replies[i]()
}

func (s *scriptedLogin) Get(ctx context.Context, url, token string) (*backend.Response, error) {
	return nil, errors.New("not used")
}

func fault() (*backend.Response, error) {
	return &backend.Response{StatusCode: http.StatusInternalServerError, Body: []byte(faultBody)}, nil
}

func success() (*backend.Response, error) {
	return &backend.Response{StatusCode: http.StatusOK, Body: []byte(okBody)}, nil
}

func unreachable() (*backend.Response, error) {
	return nil, sferr.Wrap(sferr.TransportError, "could not connect to server", errors.New("connection refused"))
}

// countingPrompter hands out numbered users.
type countingPrompter struct{ n int }

func (p *countingPrompter) Prompt(ctx context.Context) (Credentials, error) {
	p.n++
	return Credentials{Username: "prompted", Password: "pw"}, nil
}

func TestAuthenticateStopsAfterRetryLimit(t *testing.T) {
	be := &scriptedLogin{replies: []func() (*backend.Response, error){fault, fault, fault, success}}
	a := NewAuthenticator(be, nil, "/services/data/v35.0/", 3, zerolog.Nop())

	_, err := a.Authenticate(context.Background(), StaticSource{Username: "jane", Password: "bad"})

	require.Error(t, err)
	assert.True(t, sferr.Is(err, sferr.AuthFailure), "got %v", err)
	assert.Equal(t, 3, be.calls, "exactly retry-limit attempts")
	var e *sferr.E
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "INVALID_LOGIN", e.Code)
}

func TestAuthenticateReturnsFirstSuccess(t *testing.T) {
	be := &scriptedLogin{replies: []func() (*backend.Response, error){fault, success, success}}
	store := session.NewStore(filepath.Join(t.TempDir(), "login.xml"))
	a := NewAuthenticator(be, store, "/services/data/v35.0/", 3, zerolog.Nop())

	s, err := a.Authenticate(context.Background(), StaticSource{Username: "jane", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, 2, be.calls)
	assert.Equal(t, "SESSION-1", s.Token)
	assert.Equal(t, "https://na1.example.com", s.ServerURL)
	assert.Equal(t, "Jane Doe", s.UserName)

	cached, err := store.Load("/services/data/v35.0/")
	require.NoError(t, err)
	assert.Equal(t, s, cached)
}

func TestAuthenticateTransportFailureCountsAsAttempt(t *testing.T) {
	be := &scriptedLogin{replies: []func() (*backend.Response, error){unreachable, unreachable, success}}
	a := NewAuthenticator(be, nil, "/", 3, zerolog.Nop())

	s, err := a.Authenticate(context.Background(), StaticSource{Username: "jane", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, 3, be.calls)
	assert.True(t, s.Valid())
}

func TestAuthenticateAllUnreachable(t *testing.T) {
	be := &scriptedLogin{replies: []func() (*backend.Response, error){unreachable, unreachable, unreachable}}
	a := NewAuthenticator(be, nil, "/", 0, zerolog.Nop())

	_, err := a.Authenticate(context.Background(), StaticSource{Username: "jane", Password: "pw"})

	assert.True(t, sferr.Is(err, sferr.AuthFailure))
	assert.Equal(t, DefaultRetryLimit, be.calls)
}

func TestAuthenticateMalformedSuccessIsFatal(t *testing.T) {
	bad := func() (*backend.Response, error) {
		return &backend.Response{StatusCode: http.StatusOK, Body: []byte(`<result><userId>005</userId></result>`)}, nil
	}
	be := &scriptedLogin{replies: []func() (*backend.Response, error){bad, success}}
	a := NewAuthenticator(be, nil, "/", 3, zerolog.Nop())

	_, err := a.Authenticate(context.Background(), StaticSource{Username: "jane", Password: "pw"})

	assert.True(t, sferr.Is(err, sferr.MalformedResponse), "got %v", err)
	assert.Equal(t, 1, be.calls)
}

func TestConfiguredSourcePromptsAfterFirstAttempt(t *testing.T) {
	be := &scriptedLogin{replies: []func() (*backend.Response, error){fault, fault, success}}
	p := &countingPrompter{}
	src := &ConfiguredSource{Configured: Credentials{Username: "configured", Password: "pw"}, Prompter: p}
	a := NewAuthenticator(be, nil, "/", 3, zerolog.Nop())

	_, err := a.Authenticate(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, []string{"configured", "prompted", "prompted"}, be.users)
	assert.Equal(t, 2, p.n)
}

func TestConfiguredSourceWithoutConfigPromptsImmediately(t *testing.T) {
	p := &countingPrompter{}
	src := &ConfiguredSource{Configured: Credentials{Username: "only-user"}, Prompter: p}

	c, err := src.Credentials(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, "prompted", c.Username)
	assert.Equal(t, 1, p.n)
}

func TestCredentialSourceErrorEndsLoop(t *testing.T) {
	be := &scriptedLogin{}
	a := NewAuthenticator(be, nil, "/", 3, zerolog.Nop())

	_, err := a.Authenticate(context.Background(), &ConfiguredSource{})

	assert.True(t, sferr.Is(err, sferr.AuthFailure))
	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.Equal(t, 0, be.calls)
}
