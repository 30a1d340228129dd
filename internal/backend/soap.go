// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"

	sferr "sfquery/cli/internal/errors"
)

// loginEnvelope is the partner API login request.
type loginEnvelope struct {
	XMLName xml.Name `xml:"env:Envelope"`
	XSD     string   `xml:"xmlns:xsd,attr"`
	XSI     string   `xml:"xmlns:xsi,attr"`
	Env     string   `xml:"xmlns:env,attr"`
	Body    struct {
		Login struct {
			NS       string `xml:"xmlns:n1,attr"`
			Username string `xml:"n1:username"`
			Password string `xml:"n1:password"`
		} `xml:"n1:login"`
	} `xml:"env:Body"`
}

// LoginEnvelope renders the SOAP login request with credentials XML-escaped.
func LoginEnvelope(username, password string) ([]byte, error) {
	var env loginEnvelope
	env.XSD = "http://www.w3.org/2001/XMLSchema"
	env.XSI = "http://www.w3.org/2001/XMLSchema-instance"
	env.Env = "http://schemas.xmlsoap.org/soap/envelope/"
	env.Body.Login.NS = "urn:partner.soap.sforce.com"
	env.Body.Login.Username = username
	env.Body.Login.Password = password

	b, err := xml.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), b...), nil
}

// Login posts the login envelope to the SOAP endpoint.
func (h *HTTP) Login(ctx context.Context, username, password string) (*Response, error) {
	body, err := LoginEnvelope(username, password)
	if err != nil {
		return nil, sferr.Wrap(sferr.MalformedResponse, "could not encode login request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.soapURL, bytes.NewReader(body))
	if err != nil {
		return nil, sferr.Wrap(sferr.TransportError, "could not build login request", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("SOAPAction", "login")
	h.log.Debug().Str("url", h.soapURL).Str("username", username).Msg("POST login")
	return h.do(req)
}
