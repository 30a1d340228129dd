// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"sfquery/cli/internal/backend"
	sferr "sfquery/cli/internal/errors"
)

// Keys under which endpoints nest their items.
const (
	KeyRecords            = "records"
	KeySObjects           = "sobjects"
	KeyFields             = "fields"
	KeyChildRelationships = "childRelationships"
)

// RunPaginated fetches url and every continuation page, returning the items
// found under key in server order. An expired session is renewed and the
// current page retried as often as needed. Any other failure aborts the call
// and nothing fetched so far is returned.
func (c *Client) RunPaginated(ctx context.Context, url, key string) ([]map[string]any, error) {
	pages, err := c.collect(ctx, url, key)
	if err != nil {
		return nil, err
	}
	return decodeObjects(pages[key], key)
}

// collect walks the pages starting at url and gathers the raw items under
// each key.
func (c *Client) collect(ctx context.Context, url string, keys ...string) (map[string][]json.RawMessage, error) {
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}

	out := make(map[string][]json.RawMessage, len(keys))
	page := 0
	for {
		body, err := c.fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		page++

		p, err := decodePage(body, keys)
		if err != nil {
			return nil, err
		}
		n := 0
		for _, k := range keys {
			out[k] = append(out[k], p.items[k]...)
			n += len(p.items[k])
		}
		c.log.Debug().Int("page", page).Int("items", n).Bool("done", p.done).Msg("page fetched")

		if p.done {
			return out, nil
		}
		url = c.sess.ResolveURL(p.next)
	}
}

// fetch GETs one page, renewing the session whenever the server reports it
// expired.
func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	for renewals := 0; ; renewals++ {
		resp, err := c.be.Get(ctx, url, c.sess.Token)
		if err != nil {
			return nil, err
		}
		if resp.OK() {
			return resp.Body, nil
		}

		err = classify(resp)
		if !sferr.Is(err, sferr.SessionExpired) {
			return nil, err
		}
		c.log.Info().Int("renewals", renewals+1).Msg("session expired, logging in again")
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}
}

// classify maps a non-200 reply onto the error taxonomy.
func classify(resp *backend.Response) error {
	if resp.AuthChallenged() {
		return sferr.New(sferr.SessionExpired, "server rejected the session token")
	}
	apiErr, err := backend.DecodeAPIError(resp.Body)
	if err != nil {
		return sferr.Wrap(sferr.MalformedResponse, fmt.Sprintf("unreadable error reply (status %d)", resp.StatusCode), err)
	}
	if apiErr.ErrorCode == backend.InvalidSessionCode {
		return sferr.WithCode(sferr.SessionExpired, apiErr.ErrorCode, apiErr.Message)
	}
	return sferr.WithCode(sferr.ApplicationError, apiErr.ErrorCode, apiErr.Message)
}

type page struct {
	items map[string][]json.RawMessage
	done  bool
	next  string
}

// decodePage reads one JSON page. A page without "done" is the last one.
func decodePage(body []byte, keys []string) (page, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return page{}, sferr.Wrap(sferr.MalformedResponse, "page is not a JSON object", err)
	}

	p := page{items: make(map[string][]json.RawMessage, len(keys)), done: true}
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || string(v) == "null" {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err != nil {
			return page{}, sferr.Wrap(sferr.MalformedResponse, fmt.Sprintf("%q is not a list", k), err)
		}
		p.items[k] = items
	}

	if v, ok := raw["done"]; ok {
		if err := json.Unmarshal(v, &p.done); err != nil {
			return page{}, sferr.Wrap(sferr.MalformedResponse, `"done" is not a boolean`, err)
		}
	}
	if p.done {
		return p, nil
	}
	if v, ok := raw["nextRecordsUrl"]; ok {
		_ = json.Unmarshal(v, &p.next)
	}
	if p.next == "" {
		return page{}, sferr.New(sferr.MalformedResponse, "page is not done but has no nextRecordsUrl")
	}
	return p, nil
}

// decodeObjects turns raw items into generic maps. Numbers stay json.Number
// at every depth so that long integer values keep all their digits.
func decodeObjects(items []json.RawMessage, key string) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(items))
	for i, it := range items {
		var m map[string]any
		dec := json.NewDecoder(bytes.NewReader(it))
		dec.UseNumber()
		if err := dec.Decode(&m); err != nil || m == nil {
			return nil, sferr.Wrap(sferr.MalformedResponse, fmt.Sprintf("%s[%d] is not an object", key, i), err)
		}
		out = append(out, m)
	}
	return out, nil
}
