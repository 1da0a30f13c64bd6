// Package spdx parses SPDX license expressions and decomposes them into
// their constituent license identifiers.
//
// The grammar follows the SPDX expression syntax:
//
//	expression  := and-expr ( "OR" and-expr )*
//	and-expr    := with-expr ( "AND" with-expr )*
//	with-expr   := simple ( "WITH" exception-id )?
//	simple      := license-id ( "+" )? | "(" expression ")"
//
// Operators are accepted case-insensitively since they appear lower-cased
// in manifests in the wild.
package spdx

import (
	"fmt"
	"strings"

	"github.com/licomply/toolkit/pkg/errors"
)

// Operator is the node type of a compound expression.
type Operator string

const (
	// OpNone marks a leaf node holding a single license.
	OpNone Operator = ""

	// OpAnd is the conjunction of two expressions.
	OpAnd Operator = "AND"

	// OpOr is the disjunction of two expressions.
	OpOr Operator = "OR"
)

// License is a single license identifier, optionally with an "or later"
// marker and a WITH exception.
type License struct {
	// ID is the SPDX license identifier, e.g. "Apache-2.0" or "LicenseRef-x"
	ID string `json:"id"`

	// OrLater is set for "X+" style identifiers; the "+" is stripped from ID
	OrLater bool `json:"or_later,omitempty"`

	// Exception is the WITH exception identifier, if any
	Exception string `json:"exception,omitempty"`
}

// String renders the license back to SPDX syntax.
func (l License) String() string {
	s := l.ID
	if l.OrLater {
		s += "+"
	}
	if l.Exception != "" {
		s += " WITH " + l.Exception
	}
	return s
}

// Base renders the license without the or-later marker, keeping any WITH
// exception. Callers tracking or-later as a separate flag use this form.
func (l License) Base() string {
	s := l.ID
	if l.Exception != "" {
		s += " WITH " + l.Exception
	}
	return s
}

// Expression is a parsed SPDX expression tree. Leaves carry a License;
// inner nodes carry an Operator with left/right children.
type Expression struct {
	Op      Operator
	License License
	Left    *Expression
	Right   *Expression
}

// Decompose returns the leaf licenses of the expression in left-to-right
// order. AND/OR structure is discarded; each leaf appears once per
// occurrence in the expression.
func (e *Expression) Decompose() []License {
	if e == nil {
		return nil
	}
	if e.Op == OpNone {
		return []License{e.License}
	}
	return append(e.Left.Decompose(), e.Right.Decompose()...)
}

// String renders the expression back to SPDX syntax.
func (e *Expression) String() string {
	if e == nil {
		return ""
	}
	if e.Op == OpNone {
		return e.License.String()
	}
	left := e.Left.String()
	right := e.Right.String()
	if e.Left.Op == OpOr && e.Op == OpAnd {
		left = "(" + left + ")"
	}
	if e.Right.Op == OpOr && e.Op == OpAnd {
		right = "(" + right + ")"
	}
	return fmt.Sprintf("%s %s %s", left, e.Op, right)
}

// Valid reports whether s parses as an SPDX expression.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse parses an SPDX license expression.
func Parse(s string) (*Expression, error) {
	const op = "spdx.Parse"

	tokens, err := scan(s)
	if err != nil {
		return nil, errors.E(op, errors.KindMalformedExpression, err.Error())
	}
	if len(tokens) == 0 {
		return nil, errors.E(op, errors.KindMalformedExpression, "empty expression")
	}

	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, errors.E(op, errors.KindMalformedExpression, err.Error())
	}
	if p.pos != len(p.tokens) {
		return nil, errors.E(op, errors.KindMalformedExpression,
			fmt.Sprintf("unexpected token %q", p.tokens[p.pos].text))
	}
	return expr, nil
}

// =============================================================================
// Scanner
// =============================================================================

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokPlus
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokWith
)

type token struct {
	kind tokenKind
	text string
}

func isIdentRune(r rune) bool {
	return r == '-' || r == '.' ||
		(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func scan(s string) ([]token, error) {
	var tokens []token
	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == ' ' || r == '\t' || r == '\n':
			i++
		case r == '(':
			tokens = append(tokens, token{tokLParen, "("})
			i++
		case r == ')':
			tokens = append(tokens, token{tokRParen, ")"})
			i++
		case r == '+':
			tokens = append(tokens, token{tokPlus, "+"})
			i++
		case isIdentRune(r):
			start := i
			for i < len(runes) && isIdentRune(runes[i]) {
				i++
			}
			text := string(runes[start:i])
			switch strings.ToUpper(text) {
			case "AND":
				tokens = append(tokens, token{tokAnd, text})
			case "OR":
				tokens = append(tokens, token{tokOr, text})
			case "WITH":
				tokens = append(tokens, token{tokWith, text})
			default:
				tokens = append(tokens, token{tokIdent, text})
			}
		default:
			return nil, fmt.Errorf("invalid character %q", r)
		}
	}
	return tokens, nil
}

// =============================================================================
// Parser
// =============================================================================

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) parseOr() (*Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOr {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Expression{Op: OpOr, Left: left, Right: right}
	}
}

func (p *parser) parseAnd() (*Expression, error) {
	left, err := p.parseWith()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokAnd {
			return left, nil
		}
		p.pos++
		right, err := p.parseWith()
		if err != nil {
			return nil, err
		}
		left = &Expression{Op: OpAnd, Left: left, Right: right}
	}
}

func (p *parser) parseWith() (*Expression, error) {
	expr, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	t, ok := p.peek()
	if !ok || t.kind != tokWith {
		return expr, nil
	}
	p.pos++
	exc, ok := p.next()
	if !ok || exc.kind != tokIdent {
		return nil, fmt.Errorf("WITH must be followed by an exception identifier")
	}
	if expr.Op != OpNone {
		return nil, fmt.Errorf("WITH applies to a single license, not a compound expression")
	}
	expr.License.Exception = exc.text
	return expr, nil
}

func (p *parser) parseSimple() (*Expression, error) {
	t, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("unexpected end of expression")
	}
	switch t.kind {
	case tokLParen:
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok || closing.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return expr, nil
	case tokIdent:
		lic := License{ID: t.text}
		if nxt, ok := p.peek(); ok && nxt.kind == tokPlus {
			p.pos++
			lic.OrLater = true
		}
		return &Expression{License: lic}, nil
	default:
		return nil, fmt.Errorf("unexpected token %q", t.text)
	}
}
