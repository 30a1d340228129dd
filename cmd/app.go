// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sfquery/cli/internal/auth"
	"sfquery/cli/internal/backend"
	"sfquery/cli/internal/config"
	"sfquery/cli/internal/crm"
	sferr "sfquery/cli/internal/errors"
	"sfquery/cli/internal/httperrors"
	"sfquery/cli/internal/keychain"
	"sfquery/cli/internal/logging"
	"sfquery/cli/internal/session"
	"sfquery/cli/internal/xdg"
)

// app bundles what a command needs to talk to the CRM.
type app struct {
	cfg    config.Config
	log    zerolog.Logger
	store  *session.Store
	creds  *recordingSource
	client *crm.Client
	ui     *progress
}

// newApp loads configuration and wires the client. Nothing touches the
// network until the client is used.
func newApp(cmd *cobra.Command) (*app, error) {
	var (
		cfg     config.Config
		loadErr error
	)
	if configPath != "" {
		cfg, loadErr = config.LoadFrom(configPath)
	} else {
		cfg, loadErr = config.Load()
	}
	log := logging.New(os.Stderr, cfg.LogLevel, verbose)
	if loadErr != nil {
		log.Warn().Err(loadErr).Msg("could not read config file, using defaults")
	}

	sessionPath, err := xdg.SessionFile()
	if err != nil {
		return nil, err
	}
	store := session.NewStore(sessionPath)

	be := backend.New(cfg.SOAPURL, backend.Options{
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            log,
	})

	a := &app{cfg: cfg, log: log, store: store, ui: newProgress()}
	a.creds = &recordingSource{inner: &auth.ConfiguredSource{
		Configured: configuredCredentials(cfg, log),
		Prompter:   &pausingPrompter{inner: auth.NewTerminalPrompter(), ui: a.ui},
	}}
	a.client = crm.New(crm.Options{
		Backend:       be,
		Authenticator: auth.NewAuthenticator(be, store, cfg.RESTPathVersion, cfg.LoginRetries, log),
		Credentials:   a.creds,
		Store:         store,
		RESTPrefix:    cfg.RESTPathVersion,
		Logger:        log,
	})
	return a, nil
}

// configuredCredentials prefers config and environment, then the keychain.
func configuredCredentials(cfg config.Config, log zerolog.Logger) auth.Credentials {
	c := auth.Credentials{Username: cfg.Username, Password: cfg.Password}
	if c.Complete() {
		return c
	}
	km, err := keychain.GetManager()
	if err != nil {
		log.Debug().Err(err).Msg("keychain unavailable")
		return c
	}
	saved, err := km.LoadCredentials()
	if err != nil {
		if !errors.Is(err, keychain.ErrNotFound) {
			log.Debug().Err(err).Msg("could not read saved credentials")
		}
		return c
	}
	if c.Username != "" && c.Username != saved.Username {
		return c
	}
	return auth.Credentials{Username: saved.Username, Password: saved.Password}
}

// report prints friendly advice for network failures and returns err.
func (a *app) report(err error, action string) error {
	a.ui.Stop()
	if sferr.Is(err, sferr.TransportError) {
		return httperrors.FormatNetworkError(err, action, a.cfg.SOAPURL)
	}
	return err
}

// recordingSource remembers the last credentials handed out so that a
// successful login can be saved to the keychain.
type recordingSource struct {
	inner auth.CredentialSource
	last  auth.Credentials
}

func (s *recordingSource) Credentials(ctx context.Context, attempt int) (auth.Credentials, error) {
	c, err := s.inner.Credentials(ctx, attempt)
	if err == nil {
		s.last = c
	}
	return c, err
}

// pausingPrompter stops the progress spinner before asking for input.
type pausingPrompter struct {
	inner auth.Prompter
	ui    *progress
}

func (p *pausingPrompter) Prompt(ctx context.Context) (auth.Credentials, error) {
	p.ui.Stop()
	return p.inner.Prompt(ctx)
}
