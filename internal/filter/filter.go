// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package filter applies client-side predicates to flattened records.
//
// Some fields (CaseHistory.NewValue for instance) cannot appear in a SOQL WHERE
// clause, so they are filtered after the fetch. A predicate is a comparison
// operator followed by a literal, e.g. `=='John.Smith'` or `in ('a', 'b')`.
// Predicates are parsed into a closed set of operators and interpreted; caller
// text is never executed.
package filter

import (
	"encoding/json"
	"fmt"
)

// Op is a comparison operator.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpIn
	OpNotIn
)

var opNames = map[Op]string{
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=", OpIn: "in", OpNotIn: "not in",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Filter tests one column of a record against a literal.
type Filter struct {
	Column string
	Op     Op
	// Value is the literal for comparison operators: string, float64, bool or nil.
	Value any
	// Values holds the list literal for OpIn and OpNotIn.
	Values []any
}

func (f Filter) String() string {
	if f.Op == OpIn || f.Op == OpNotIn {
		return fmt.Sprintf("%s %s %v", f.Column, f.Op, f.Values)
	}
	return fmt.Sprintf("%s %s %v", f.Column, f.Op, f.Value)
}

// Match reports whether record passes the filter. A record without the column
// never matches.
func (f Filter) Match(record map[string]any) bool {
	v, ok := record[f.Column]
	if !ok {
		return false
	}
	switch f.Op {
	case OpEq:
		return equal(v, f.Value)
	case OpNe:
		return !equal(v, f.Value)
	case OpIn, OpNotIn:
		found := false
		for _, want := range f.Values {
			if equal(v, want) {
				found = true
				break
			}
		}
		return found == (f.Op == OpIn)
	case OpLt, OpLe, OpGt, OpGe:
		c, ok := compare(v, f.Value)
		if !ok {
			return false
		}
		switch f.Op {
		case OpLt:
			return c < 0
		case OpLe:
			return c <= 0
		case OpGt:
			return c > 0
		default:
			return c >= 0
		}
	}
	return false
}

// Apply keeps the records that pass every filter, in order. Filters narrow the
// result one after another.
func Apply(records []map[string]any, filters ...Filter) []map[string]any {
	out := records
	for _, f := range filters {
		kept := make([]map[string]any, 0, len(out))
		for _, r := range out {
			if f.Match(r) {
				kept = append(kept, r)
			}
		}
		out = kept
	}
	return out
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return ok && x == y
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	}
	return false
}

// compare orders two numbers or two strings; anything else is incomparable.
func compare(a, b any) (int, bool) {
	if x, ok := number(a); ok {
		y, ok := number(b)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	}
	x, ok := a.(string)
	if !ok {
		return 0, false
	}
	y, ok := b.(string)
	if !ok {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
