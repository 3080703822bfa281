//
//  Copyright © Manetu Inc. All rights reserved.
//

package kb

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokOpen tokenKind = iota
	tokClose
	tokQuoted
	tokIRI
	tokWord
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(text string) ([]token, error) {
	var toks []token
	runes := []rune(text)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokOpen, "("})
			i++
		case r == ')':
			toks = append(toks, token{tokClose, ")"})
			i++
		case r == '\'':
			end := indexRune(runes, '\'', i+1)
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote in %q", text)
			}
			toks = append(toks, token{tokQuoted, string(runes[i+1 : end])})
			i = end + 1
		case r == '<':
			end := indexRune(runes, '>', i+1)
			if end < 0 {
				return nil, fmt.Errorf("unterminated IRI in %q", text)
			}
			toks = append(toks, token{tokIRI, string(runes[i+1 : end])})
			i = end + 1
		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && !strings.ContainsRune("()'", runes[i]) {
				i++
			}
			toks = append(toks, token{tokWord, string(runes[start:i])})
		}
	}
	return toks, nil
}

func indexRune(runes []rune, r rune, from int) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

type parser struct {
	k    *KnowledgeBase
	toks []token
	pos  int
}

func (p *parser) peek() *token {
	if p.pos < len(p.toks) {
		return &p.toks[p.pos]
	}
	return nil
}

func (p *parser) keyword(word string) bool {
	t := p.peek()
	if t != nil && t.kind == tokWord && strings.EqualFold(t.text, word) {
		p.pos++
		return true
	}
	return false
}

func isName(t *token) bool {
	return t != nil && (t.kind == tokQuoted || t.kind == tokIRI || t.kind == tokWord)
}

// ParseExpression parses a Manchester-style class expression:
//
//	expr    := and ('or' and)*
//	and     := unary ('and' unary)*
//	unary   := 'not' unary | name 'some' unary | primary
//	primary := '(' expr ')' | name
//
// Names are single-quoted labels, <full IRIs> or bare tokens (labels, ids or
// short forms).  Keywords are case-insensitive.
func (k *KnowledgeBase) ParseExpression(text string) (Expression, error) {
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty class expression")
	}

	p := &parser{k: k, toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t != nil {
		return nil, fmt.Errorf("unexpected %q in %q", t.text, text)
	}
	return expr, nil
}

func (p *parser) parseOr() (Expression, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	ops := []Expression{first}
	for p.keyword("or") {
		next, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		ops = append(ops, next)
	}
	if len(ops) == 1 {
		return first, nil
	}
	return Or{Operands: ops}, nil
}

func (p *parser) parseAnd() (Expression, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	ops := []Expression{first}
	for p.keyword("and") {
		next, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		ops = append(ops, next)
	}
	if len(ops) == 1 {
		return first, nil
	}
	return And{Operands: ops}, nil
}

func (p *parser) parseUnary() (Expression, error) {
	if p.keyword("not") {
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not{Operand: operand}, nil
	}

	t := p.peek()
	if isName(t) && p.pos+1 < len(p.toks) {
		next := p.toks[p.pos+1]
		if next.kind == tokWord && strings.EqualFold(next.text, "some") {
			p.pos += 2
			prop, err := p.resolve(*t, PropertyKind)
			if err != nil {
				return nil, err
			}
			filler, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return Some{Property: prop, Filler: filler}, nil
		}
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expression, error) {
	t := p.peek()
	if t == nil {
		return nil, fmt.Errorf("unexpected end of class expression")
	}

	switch t.kind {
	case tokOpen:
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if c := p.peek(); c == nil || c.kind != tokClose {
			return nil, fmt.Errorf("missing ')'")
		}
		p.pos++
		return expr, nil
	case tokClose:
		return nil, fmt.Errorf("unexpected ')'")
	}

	p.pos++
	id, err := p.resolve(*t, ClassKind)
	if err != nil {
		return nil, err
	}
	return Class{ID: id}, nil
}

func (p *parser) resolve(t token, kind Kind) (string, error) {
	name := t.text
	if t.kind == tokIRI {
		name = "<" + name + ">"
	}
	e, ok := p.k.EntityForTerm(name)
	if !ok {
		return "", fmt.Errorf("unknown entity %q", t.text)
	}
	if e.Kind != kind {
		return "", fmt.Errorf("%q is a %s, expected a %s", t.text, e.Kind, kind)
	}
	return e.ID, nil
}
