// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sferr "sfquery/cli/internal/errors"
)

func TestLoginEnvelopeEscapesCredentials(t *testing.T) {
	b, err := LoginEnvelope("jane@example.com", `p<&>"ss`)
	if err != nil {
		t.Fatal(err)
	}
	s := string(b)
	if strings.Contains(s, `p<&>"ss`) {
		t.Errorf("password was not escaped: %s", s)
	}
	if !strings.Contains(s, "<n1:username>jane@example.com</n1:username>") {
		t.Errorf("username element missing: %s", s)
	}
	if !strings.Contains(s, `xmlns:n1="urn:partner.soap.sforce.com"`) {
		t.Errorf("partner namespace missing: %s", s)
	}
	if err := xml.Unmarshal(b, new(struct{})); err != nil {
		t.Errorf("envelope is not well-formed XML: %v", err)
	}
}

func TestHTTPLoginSendsSOAPHeaders(t *testing.T) {
	var gotAction, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.Header.Get("SOAPAction")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<faultcode>INVALID_LOGIN</faultcode>`))
	}))
	defer srv.Close()

	h := New(srv.URL, Options{})
	resp, err := h.Login(context.Background(), "jane", "secret")
	if err != nil {
		t.Fatalf("a fault reply is not a transport error: %v", err)
	}
	if resp.OK() {
		t.Error("expected non-200 response")
	}
	if gotAction != "login" {
		t.Errorf("SOAPAction = %q", gotAction)
	}
	if !strings.HasPrefix(gotType, "text/xml") {
		t.Errorf("Content-Type = %q", gotType)
	}
	if !strings.Contains(gotBody, "<n1:password>secret</n1:password>") {
		t.Errorf("body = %s", gotBody)
	}
}

func TestHTTPGetAttachesBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.Header().Set("WWW-Authenticate", `Token realm="x"`)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"done":true,"records":[]}`))
	}))
	defer srv.Close()

	h := New("", Options{RequestsPerSecond: 100})
	resp, err := h.Get(context.Background(), srv.URL, "tok")
	if err != nil {
		t.Fatal(err)
	}
	if !resp.OK() {
		t.Errorf("status = %d", resp.StatusCode)
	}

	resp, err = h.Get(context.Background(), srv.URL, "stale")
	if err != nil {
		t.Fatal(err)
	}
	if !resp.AuthChallenged() {
		t.Error("expected auth challenge on stale token")
	}
}

func TestHTTPGetUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New("", Options{}).Get(context.Background(), url, "tok")
	if !sferr.Is(err, sferr.TransportError) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestDecodeAPIError(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  string
		malformed bool
	}{
		{"array envelope", `[{"message":"Session expired or invalid","errorCode":"INVALID_SESSION_ID"}]`, InvalidSessionCode, false},
		{"object envelope", `{"message":"bad field","errorCode":"INVALID_FIELD"}`, "INVALID_FIELD", false},
		{"empty array", `[]`, "", true},
		{"html", `<html>gateway</html>`, "", true},
		{"blank", ``, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := DecodeAPIError([]byte(tt.body))
			if tt.malformed {
				if !sferr.Is(err, sferr.MalformedResponse) {
					t.Errorf("expected malformed response, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if e.ErrorCode != tt.wantCode {
				t.Errorf("ErrorCode = %q, want %q", e.ErrorCode, tt.wantCode)
			}
		})
	}
}
