// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	sferr "sfquery/cli/internal/errors"
)

// Options tune the HTTP client.
type Options struct {
	// Timeout bounds each round-trip; zero keeps the net/http default (none).
	Timeout time.Duration
	// RequestsPerSecond throttles REST calls; zero disables throttling.
	RequestsPerSecond float64
	Logger            zerolog.Logger
	// Client overrides the underlying http.Client, mainly for tests.
	Client *http.Client
}

// HTTP implements API over net/http.
type HTTP struct {
	// soapURL is the login endpoint, e.g. https://login.salesforce.com/services/Soap/u/35.0
	soapURL string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New creates an HTTP backend for the given SOAP login endpoint.
func New(soapURL string, opts Options) *HTTP {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	h := &HTTP{
		soapURL: strings.TrimSpace(soapURL),
		client:  client,
		log:     opts.Logger,
	}
	if opts.RequestsPerSecond > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return h
}

// Get calls GET url with Authorization: Bearer <token>.
func (h *HTTP) Get(ctx context.Context, url, token string) (*Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, sferr.Wrap(sferr.TransportError, "request throttling aborted", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, sferr.Wrap(sferr.TransportError, "could not build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	h.log.Debug().Str("url", url).Msg("GET")
	return h.do(req)
}

// do sends req and reads the whole body.
func (h *HTTP) do(req *http.Request) (*Response, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, sferr.Wrap(sferr.TransportError, "could not connect to server", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, sferr.Wrap(sferr.TransportError, fmt.Sprintf("reading %d response", resp.StatusCode), err)
	}
	h.log.Debug().Int("status", resp.StatusCode).Int("bytes", len(b)).Msg("response")
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, nil
}
