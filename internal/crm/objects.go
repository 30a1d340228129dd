// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	sferr "sfquery/cli/internal/errors"
)

// SObject is one entry of the object list.
type SObject struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Queryable  bool   `json:"queryable"`
	Custom     bool   `json:"custom"`
	KeyPrefix  string `json:"keyPrefix"`
	Searchable bool   `json:"searchable"`
}

// Field describes one column of an object.
type Field struct {
	Name             string   `json:"name"`
	Label            string   `json:"label"`
	Type             string   `json:"type"`
	Filterable       bool     `json:"filterable"`
	RelationshipName string   `json:"relationshipName"`
	ReferenceTo      []string `json:"referenceTo"`
}

// ParentRelation reports the relationship name and targets when the field
// references other objects.
func (f Field) ParentRelation() (string, []string, bool) {
	if f.RelationshipName == "" || len(f.ReferenceTo) == 0 {
		return "", nil, false
	}
	return f.RelationshipName, f.ReferenceTo, true
}

// ChildRelationship links an object to the children that reference it.
type ChildRelationship struct {
	RelationshipName string `json:"relationshipName"`
	ChildSObject     string `json:"childSObject"`
	Field            string `json:"field"`
}

// Description is the describe result of one object.
type Description struct {
	Object             string
	Fields             []Field
	ChildRelationships []ChildRelationship
}

// FieldNames lists the field names in server order.
func (d Description) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		names = append(names, f.Name)
	}
	return names
}

// ListObjects returns every object available to the user.
func (c *Client) ListObjects(ctx context.Context) ([]SObject, error) {
	base, err := c.restURL(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := c.collect(ctx, base+"sobjects", KeySObjects)
	if err != nil {
		return nil, err
	}
	var out []SObject
	if err := decodeInto(pages[KeySObjects], &out, KeySObjects); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchOptions tune SearchObjects.
type SearchOptions struct {
	CaseSensitive bool
	// Fuzzy matches when the term's characters appear in order, e.g. "cshist"
	// finds CaseHistory. Results are then ranked by closeness.
	Fuzzy bool
}

// SearchObjects returns the objects whose name contains term.
func (c *Client) SearchObjects(ctx context.Context, term string, opts SearchOptions) ([]SObject, error) {
	all, err := c.ListObjects(ctx)
	if err != nil {
		return nil, err
	}
	return MatchObjects(all, term, opts), nil
}

// MatchObjects filters objects by name. Substring matches keep server order;
// fuzzy matches are ordered by edit distance.
func MatchObjects(objects []SObject, term string, opts SearchOptions) []SObject {
	if opts.Fuzzy {
		names := make([]string, len(objects))
		for i, o := range objects {
			names[i] = o.Name
		}
		var ranks fuzzy.Ranks
		if opts.CaseSensitive {
			ranks = fuzzy.RankFind(term, names)
		} else {
			ranks = fuzzy.RankFindFold(term, names)
		}
		sort.Stable(ranks)
		out := make([]SObject, 0, len(ranks))
		for _, r := range ranks {
			out = append(out, objects[r.OriginalIndex])
		}
		return out
	}

	needle := term
	if !opts.CaseSensitive {
		needle = strings.ToLower(term)
	}
	var out []SObject
	for _, o := range objects {
		name := o.Name
		if !opts.CaseSensitive {
			name = strings.ToLower(name)
		}
		if strings.Contains(name, needle) {
			out = append(out, o)
		}
	}
	return out
}

// Describe fetches the fields and child relationships of object. Both come
// from the same describe reply.
func (c *Client) Describe(ctx context.Context, object string) (*Description, error) {
	if strings.TrimSpace(object) == "" {
		return nil, sferr.New(sferr.ApplicationError, "describe needs an object name")
	}
	base, err := c.restURL(ctx)
	if err != nil {
		return nil, err
	}
	u := base + "sobjects/" + url.PathEscape(object) + "/describe"
	pages, err := c.collect(ctx, u, KeyFields, KeyChildRelationships)
	if err != nil {
		return nil, err
	}

	d := &Description{Object: object}
	if err := decodeInto(pages[KeyFields], &d.Fields, KeyFields); err != nil {
		return nil, err
	}
	if err := decodeInto(pages[KeyChildRelationships], &d.ChildRelationships, KeyChildRelationships); err != nil {
		return nil, err
	}
	return d, nil
}

// decodeInto unmarshals raw list items into the slice pointed to by dst.
func decodeInto(items []json.RawMessage, dst any, key string) error {
	b, err := json.Marshal(items)
	if err != nil {
		return sferr.Wrap(sferr.MalformedResponse, key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return sferr.Wrap(sferr.MalformedResponse, fmt.Sprintf("unexpected %s layout", key), err)
	}
	return nil
}
