// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package crm

import (
	"context"
	"strings"

	sferr "sfquery/cli/internal/errors"
	"sfquery/cli/internal/filter"
	"sfquery/cli/internal/query"
)

// Query builds SOQL from req, runs it and returns flattened records that pass
// req.Filters.
func (c *Client) Query(ctx context.Context, req query.Request) ([]query.Record, error) {
	soql, err := req.SOQL()
	if err != nil {
		return nil, sferr.Wrap(sferr.ApplicationError, "invalid query", err)
	}
	return c.QuerySOQL(ctx, soql, req.Filters...)
}

// QuerySOQL runs a SOQL statement as written.
func (c *Client) QuerySOQL(ctx context.Context, soql string, filters ...filter.Filter) ([]query.Record, error) {
	if strings.TrimSpace(soql) == "" {
		return nil, sferr.New(sferr.ApplicationError, "empty SOQL statement")
	}
	base, err := c.restURL(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("soql", soql).Msg("running query")

	raw, err := c.RunPaginated(ctx, query.URL(base, soql), KeyRecords)
	if err != nil {
		return nil, err
	}
	records := filter.Apply(query.FlattenAll(raw), filters...)
	c.log.Debug().Int("fetched", len(raw)).Int("kept", len(records)).Msg("query finished")
	return records, nil
}

// SelectAll queries every field of table.
func (c *Client) SelectAll(ctx context.Context, table string, conditions []query.Condition, filters ...filter.Filter) ([]query.Record, error) {
	d, err := c.Describe(ctx, table)
	if err != nil {
		return nil, err
	}
	return c.Query(ctx, query.Request{
		Table:      table,
		Columns:    d.FieldNames(),
		Conditions: conditions,
		Filters:    filters,
	})
}
