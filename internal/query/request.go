// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package query turns structured query requests into SOQL and flattens the
// nested records the REST API returns.
package query

import (
	"errors"
	"net/url"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"sfquery/cli/internal/filter"
)

// Condition is one WHERE clause. A single entry is used as-is; several entries
// are alternatives joined with OR inside parentheses. Conditions of a Request
// are joined with AND.
type Condition []string

// Or builds a Condition from alternatives.
func Or(alternatives ...string) Condition { return Condition(alternatives) }

// Where builds a single-clause Condition.
func Where(clause string) Condition { return Condition{clause} }

// ParseCondition splits text on '|' into OR alternatives. A '|' inside a
// single- or double-quoted literal belongs to the literal; backslash escapes a
// character inside quotes. Blank alternatives are dropped.
func ParseCondition(text string) Condition {
	var (
		out   Condition
		start int
		quote byte
	)
	add := func(part string) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '|':
			add(text[start:i])
			start = i + 1
		}
	}
	add(text[start:])
	return out
}

// Request describes a structured query against one object.
type Request struct {
	Table      string
	Columns    []string // may hold parent-relation paths such as Owner.Name
	Conditions []Condition
	Filters    []filter.Filter
}

// SOQL renders the request as a SOQL statement.
func (r Request) SOQL() (string, error) {
	return BuildSOQL(r.Table, r.Columns, r.Conditions)
}

// BuildSOQL renders SELECT columns FROM table WHERE conditions.
func BuildSOQL(table string, columns []string, conditions []Condition) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", errors.New("query needs an object name")
	}
	b := sq.Select(columns...).From(table)
	for _, c := range conditions {
		switch len(c) {
		case 0:
			continue
		case 1:
			b = b.Where(sq.Expr(c[0]))
		default:
			or := make(sq.Or, 0, len(c))
			for _, alt := range c {
				or = append(or, sq.Expr(alt))
			}
			b = b.Where(or)
		}
	}
	stmt, _, err := b.ToSql()
	if err != nil {
		return "", err
	}
	return stmt, nil
}

// URL returns the REST query URL for soql under restBase (which ends in '/').
func URL(restBase, soql string) string {
	return restBase + "query/?q=" + url.QueryEscape(strings.TrimSpace(soql))
}
