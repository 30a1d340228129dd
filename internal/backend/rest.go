// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"encoding/json"
	"net/http"
	"strings"

	sferr "sfquery/cli/internal/errors"
)

// InvalidSessionCode is the errorCode the REST API uses for a dead token.
const InvalidSessionCode = "INVALID_SESSION_ID"

// APIError is one entry of the REST error envelope.
type APIError struct {
	ErrorCode string   `json:"errorCode"`
	Message   string   `json:"message"`
	Fields    []string `json:"fields,omitempty"`
}

// DecodeAPIError reads the first entry of a REST error body. The API answers
// with a JSON array; a bare object is accepted too.
func DecodeAPIError(body []byte) (APIError, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return APIError{}, sferr.New(sferr.MalformedResponse, "empty error body")
	}

	var list []APIError
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			return APIError{}, sferr.Wrap(sferr.MalformedResponse, trimmed, err)
		}
	} else {
		var one APIError
		if err := json.Unmarshal([]byte(trimmed), &one); err != nil {
			return APIError{}, sferr.Wrap(sferr.MalformedResponse, trimmed, err)
		}
		list = append(list, one)
	}
	if len(list) == 0 {
		return APIError{}, sferr.New(sferr.MalformedResponse, "error body has no entries")
	}
	return list[0], nil
}

// AuthChallenged reports the transport-level sign of an expired session: a
// 401 carrying a WWW-Authenticate header.
func (r *Response) AuthChallenged() bool {
	return r.StatusCode == http.StatusUnauthorized && r.Header.Get("WWW-Authenticate") != ""
}
