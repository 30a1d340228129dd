// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"path/filepath"
	"testing"

	sferr "sfquery/cli/internal/errors"
)

const loginOK = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns="urn:partner.soap.sforce.com">
 <soapenv:Body>
  <loginResponse>
   <result>
    <serverUrl>https://na42.salesforce.com/services/Soap/u/35.0/00D000000000001</serverUrl>
    <sessionId>00D000000000001!AQ4AQ.token</sessionId>
    <userId>005000000000001</userId>
    <userInfo>
     <userFullName>Jane Doe</userFullName>
    </userInfo>
   </result>
  </loginResponse>
 </soapenv:Body>
</soapenv:Envelope>`

func TestParseLoginResponse(t *testing.T) {
	s, err := ParseLoginResponse([]byte(loginOK), "/services/data/v35.0/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Token != "00D000000000001!AQ4AQ.token" {
		t.Errorf("Token = %q", s.Token)
	}
	if s.ServerURL != "https://na42.salesforce.com" {
		t.Errorf("ServerURL = %q", s.ServerURL)
	}
	if s.UserID != "005000000000001" || s.UserName != "Jane Doe" {
		t.Errorf("user = %q / %q", s.UserID, s.UserName)
	}
	if got := s.RESTBaseURL(); got != "https://na42.salesforce.com/services/data/v35.0/" {
		t.Errorf("RESTBaseURL = %q", got)
	}
	if got := s.ResolveURL("/services/data/v35.0/query/01g-2000"); got != "https://na42.salesforce.com/services/data/v35.0/query/01g-2000" {
		t.Errorf("ResolveURL = %q", got)
	}
}

func TestParseLoginResponseMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no session id", `<r><serverUrl>https://x.example.com/a</serverUrl></r>`},
		{"no server url", `<r><sessionId>abc</sessionId></r>`},
		{"server url without scheme", `<r><sessionId>abc</sessionId><serverUrl>x.example.com</serverUrl></r>`},
		{"not xml", `service unavailable`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLoginResponse([]byte(tt.body), "/")
			if !sferr.Is(err, sferr.MalformedResponse) {
				t.Errorf("expected malformed response, got %v", err)
			}
		})
	}
}

func TestParseLoginResponseServerURLWithoutPath(t *testing.T) {
	s, err := ParseLoginResponse([]byte(`<r><sessionId>abc</sessionId><serverUrl>https://eu5.example.com</serverUrl></r>`), "")
	if err != nil {
		t.Fatal(err)
	}
	if s.ServerURL != "https://eu5.example.com" {
		t.Errorf("ServerURL = %q", s.ServerURL)
	}
	if s.RESTBaseURL() != "https://eu5.example.com/" {
		t.Errorf("RESTBaseURL = %q", s.RESTBaseURL())
	}
}

func TestParseFault(t *testing.T) {
	body := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/"><soapenv:Body><soapenv:Fault>` +
		`<faultcode>INVALID_LOGIN</faultcode><faultstring>INVALID_LOGIN: Invalid username, password, security token; or user locked out.</faultstring>` +
		`</soapenv:Fault></soapenv:Body></soapenv:Envelope>`
	f, err := ParseFault([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if f.Code != "INVALID_LOGIN" {
		t.Errorf("Code = %q", f.Code)
	}
	if f.Message == "" {
		t.Error("expected fault message")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "state", "login.xml"))
	if st.Exists() {
		t.Fatal("fresh store should be empty")
	}
	if err := st.Save([]byte(loginOK)); err != nil {
		t.Fatal(err)
	}
	if !st.Exists() {
		t.Fatal("expected cache file after Save")
	}
	s, err := st.Load("/services/data/v35.0/")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Valid() {
		t.Errorf("loaded session not valid: %+v", s)
	}
	if err := st.Clear(); err != nil {
		t.Fatal(err)
	}
	if err := st.Clear(); err != nil {
		t.Errorf("second Clear should be a no-op, got %v", err)
	}
	if st.Exists() {
		t.Error("expected cache file to be gone")
	}
}
