// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"sfquery/cli/internal/dsn"
)

// copier is the slice of *pgx.Conn the sink needs.
type copier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// PostgresSink loads records into a PostgreSQL table, one text column per
// result column.
type PostgresSink struct {
	conn  copier
	close func(context.Context) error
	table pgx.Identifier
	log   zerolog.Logger
}

// OpenPostgres connects to rawDSN and targets table, which may be
// schema-qualified ("reports.case_history").
func OpenPostgres(ctx context.Context, rawDSN, table string, log zerolog.Logger) (*PostgresSink, error) {
	info, err := dsn.Parse(rawDSN)
	if err != nil {
		return nil, err
	}
	ident, err := parseTable(table)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("dsn", info.Redacted()).Str("table", ident.Sanitize()).Msg("connecting to PostgreSQL")
	conn, err := pgx.Connect(ctx, info.String())
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", info.Host, err)
	}
	return &PostgresSink{conn: conn, close: conn.Close, table: ident, log: log}, nil
}

func newSink(conn copier, table pgx.Identifier, log zerolog.Logger) *PostgresSink {
	return &PostgresSink{conn: conn, table: table, log: log}
}

func parseTable(table string) (pgx.Identifier, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("target table name is empty")
	}
	parts := strings.Split(table, ".")
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}
	return pgx.Identifier(parts), nil
}

// Write creates the table when missing and copies the records in. It returns
// the number of rows copied.
func (s *PostgresSink) Write(ctx context.Context, records []map[string]any, order []string) (int64, error) {
	cols, err := Columns(records, order)
	if err != nil {
		return 0, err
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = pgx.Identifier{c}.Sanitize() + " text"
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.table.Sanitize(), strings.Join(defs, ", "))
	if _, err := s.conn.Exec(ctx, ddl); err != nil {
		return 0, fmt.Errorf("create table %s: %w", s.table.Sanitize(), err)
	}

	rows := make([][]any, len(records))
	for i, r := range records {
		row := make([]any, len(cols))
		for j, c := range cols {
			if v, ok := r[c]; ok && v != nil {
				row[j] = FormatValue(v)
			}
		}
		rows[i] = row
	}
	n, err := s.conn.CopyFrom(ctx, s.table, cols, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", s.table.Sanitize(), err)
	}
	s.log.Info().Int64("rows", n).Str("table", s.table.Sanitize()).Msg("export finished")
	return n, nil
}

// Close releases the connection.
func (s *PostgresSink) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
