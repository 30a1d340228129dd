// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// SyntaxError reports a predicate that does not fit the grammar.
type SyntaxError struct {
	Expr   string
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid filter %q at offset %d: %s", e.Expr, e.Pos, e.Reason)
}

var reExpr = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_.]*)\s*(.*)$`)

// ParseExpr parses a column name immediately followed by its predicate, such
// as `NewValue=='John.Smith'` or `Amount >= 1000`.
func ParseExpr(s string) (Filter, error) {
	m := reExpr.FindStringSubmatch(s)
	if m == nil {
		return Filter{}, &SyntaxError{Expr: s, Reason: "expected a column name"}
	}
	return Parse(m[1], m[2])
}

// Parse builds a Filter for column from a predicate fragment.
//
//	predicate := op literal | ("in" | "not in") list
//	op        := "==" | "=" | "!=" | "<>" | "<" | "<=" | ">" | ">="
//	literal   := 'text' | "text" | number | true | false | null | None
//	list      := "[" literal {"," literal} "]" | "(" ... ")"
func Parse(column, expr string) (Filter, error) {
	if strings.TrimSpace(column) == "" {
		return Filter{}, &SyntaxError{Expr: expr, Reason: "empty column name"}
	}
	p := &parser{src: expr}
	f := Filter{Column: column}

	p.skipSpace()
	op, err := p.op()
	if err != nil {
		return Filter{}, err
	}
	f.Op = op

	p.skipSpace()
	if op == OpIn || op == OpNotIn {
		f.Values, err = p.list()
	} else {
		f.Value, err = p.literal()
	}
	if err != nil {
		return Filter{}, err
	}

	p.skipSpace()
	if !p.eof() {
		return Filter{}, p.errorf("unexpected trailing text %q", p.src[p.pos:])
	}
	return f, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) rest() string { return p.src[p.pos:] }

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Expr: p.src, Pos: p.pos, Reason: fmt.Sprintf(format, args...)}
}

// keyword consumes word when it stands alone (followed by space, bracket or end).
func (p *parser) keyword(word string) bool {
	r := p.rest()
	if len(r) < len(word) || !strings.EqualFold(r[:len(word)], word) {
		return false
	}
	if len(r) > len(word) {
		switch r[len(word)] {
		case ' ', '\t', '(', '[':
		default:
			return false
		}
	}
	p.pos += len(word)
	return true
}

func (p *parser) op() (Op, error) {
	for _, c := range []struct {
		tok string
		op  Op
	}{
		{"==", OpEq}, {"!=", OpNe}, {"<>", OpNe}, {"<=", OpLe}, {">=", OpGe},
		{"<", OpLt}, {">", OpGt}, {"=", OpEq},
	} {
		if strings.HasPrefix(p.rest(), c.tok) {
			p.pos += len(c.tok)
			return c.op, nil
		}
	}
	if p.keyword("in") {
		return OpIn, nil
	}
	start := p.pos
	if p.keyword("not") {
		p.skipSpace()
		if p.keyword("in") {
			return OpNotIn, nil
		}
		p.pos = start
	}
	return 0, p.errorf("expected a comparison operator")
}

func (p *parser) list() ([]any, error) {
	var closer byte
	switch p.peek() {
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return nil, p.errorf("expected a list in [...] or (...)")
	}
	p.pos++

	var out []any
	for {
		p.skipSpace()
		if p.peek() == closer && len(out) == 0 {
			p.pos++
			return out, nil
		}
		v, err := p.literal()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return out, nil
		default:
			return nil, p.errorf("expected ',' or %q", closer)
		}
	}
}

func (p *parser) literal() (any, error) {
	switch c := p.peek(); {
	case c == 0:
		return nil, p.errorf("expected a literal")
	case c == '\'' || c == '"':
		return p.quoted(c)
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	}
	for _, kw := range []struct {
		word string
		val  any
	}{
		{"true", true}, {"false", false}, {"null", nil}, {"none", nil},
	} {
		if p.keywordLiteral(kw.word) {
			return kw.val, nil
		}
	}
	return nil, p.errorf("expected a quoted string, number, boolean or null")
}

// keywordLiteral consumes a bare word literal followed by a delimiter.
func (p *parser) keywordLiteral(word string) bool {
	r := p.rest()
	if len(r) < len(word) || !strings.EqualFold(r[:len(word)], word) {
		return false
	}
	if len(r) > len(word) {
		switch r[len(word)] {
		case ' ', '\t', ',', ']', ')':
		default:
			return false
		}
	}
	p.pos += len(word)
	return true
}

func (p *parser) quoted(q byte) (string, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == q:
			p.pos++
			return b.String(), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", p.errorf("unterminated string")
}

func (p *parser) number() (float64, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	for !p.eof() {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		if (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E') {
			p.pos++
			continue
		}
		break
	}
	text := p.src[start:p.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.pos = start
		return 0, p.errorf("bad number %q", text)
	}
	return f, nil
}
