// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session holds the CRM session descriptor and its on-disk cache.
//
// The cache is the raw SOAP login response exactly as the server sent it; it is
// a convenience for the next process, never the source of truth.
package session

import (
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"strings"

	sferr "sfquery/cli/internal/errors"
)

// Session describes an authenticated CRM session. Values are replaced, never
// mutated, when the server issues a new token.
type Session struct {
	Token      string
	ServerURL  string // scheme://host, no path
	RESTPrefix string // e.g. /services/data/v35.0/
	UserID     string
	UserName   string
}

// Valid reports whether the session can be used for requests.
func (s Session) Valid() bool {
	return s.Token != "" && s.ServerURL != ""
}

// RESTBaseURL returns the base URL that REST resource paths are appended to.
func (s Session) RESTBaseURL() string {
	prefix := s.RESTPrefix
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return s.ServerURL + prefix
}

// ResolveURL joins a server-relative path such as a nextRecordsUrl onto the
// server base.
func (s Session) ResolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.ServerURL + path
}

var reServerBase = regexp.MustCompile(`^([^:/]+://[^/]+)`)

// ParseLoginResponse extracts a Session from a SOAP login response body.
// A body without sessionId or serverUrl is a malformed response.
func ParseLoginResponse(raw []byte, restPrefix string) (Session, error) {
	fields, err := scanElements(raw, "sessionId", "serverUrl", "userId", "userFullName")
	if err != nil {
		return Session{}, sferr.Wrap(sferr.MalformedResponse, "login response is not valid XML", err)
	}

	token := fields["sessionId"]
	if token == "" {
		return Session{}, sferr.New(sferr.MalformedResponse, "session ID not found in login response")
	}
	serverURL := fields["serverUrl"]
	if serverURL == "" {
		return Session{}, sferr.New(sferr.MalformedResponse, "server URL not found in login response")
	}
	m := reServerBase.FindStringSubmatch(serverURL)
	if m == nil {
		return Session{}, sferr.New(sferr.MalformedResponse, "server URL has no scheme and host: "+serverURL)
	}

	return Session{
		Token:      token,
		ServerURL:  m[1],
		RESTPrefix: restPrefix,
		UserID:     fields["userId"],
		UserName:   fields["userFullName"],
	}, nil
}

// scanElements returns the text of the first occurrence of each named element,
// matched by local name so that namespace prefixes do not matter.
func scanElements(raw []byte, names ...string) (map[string]string, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := make(map[string]string, len(names))

	dec := xml.NewDecoder(bytes.NewReader(raw))
	var current string
	var text strings.Builder
	sawElement := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			sawElement = true
			if current == "" && wanted[t.Name.Local] {
				if _, seen := out[t.Name.Local]; !seen {
					current = t.Name.Local
					text.Reset()
				}
			}
		case xml.CharData:
			if current != "" {
				text.Write(t)
			}
		case xml.EndElement:
			if current != "" && t.Name.Local == current {
				out[current] = strings.TrimSpace(text.String())
				current = ""
			}
		}
	}
	if !sawElement {
		return nil, io.ErrUnexpectedEOF
	}
	return out, nil
}

// Fault is the error payload of a rejected SOAP request.
type Fault struct {
	Code    string
	Message string
}

// ParseFault reads faultcode and faultstring from a SOAP fault body. Missing
// elements are left empty.
func ParseFault(raw []byte) (Fault, error) {
	fields, err := scanElements(raw, "faultcode", "faultstring")
	if err != nil {
		return Fault{}, sferr.Wrap(sferr.MalformedResponse, "login fault is not valid XML", err)
	}
	return Fault{Code: fields["faultcode"], Message: fields["faultstring"]}, nil
}
