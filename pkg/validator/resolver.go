//
//  Copyright © Manetu Inc. All rights reserved.
//

package validator

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/manetu/tablevalidator/pkg/common"
	"github.com/manetu/tablevalidator/pkg/kb"
)

var wildcardPattern = regexp.MustCompile(`%(\d+)`)

// nullTerm stands in for the content of an empty cell named by a wildcard.
const nullTerm = "(null)"

// resolver turns table text into knowledge base terms.  It never queries the
// oracle.
type resolver struct {
	kb *kb.KnowledgeBase
}

// label returns the label of the entity named by term, which may be a
// label, an id, an IRI or a short form, optionally single-quoted.
func (r *resolver) label(term string) (string, bool) {
	e, ok := r.kb.EntityForTerm(term)
	if !ok || e.Label == "" {
		return "", false
	}
	return e.Label, true
}

// entity returns the named class or individual a subject refers to.
func (r *resolver) entity(subject string) (*kb.Entity, bool) {
	e, ok := r.kb.EntityForTerm(subject)
	if !ok || e.Kind == kb.PropertyKind {
		return nil, false
	}
	return e, true
}

// expression resolves text to a class expression.  A failed parse is retried
// with the whole text quoted, so that an unquoted multi-word label resolves.
func (r *resolver) expression(text string) (kb.Expression, error) {
	text = strings.TrimSpace(text)
	if e, ok := r.kb.EntityForTerm(text); ok && e.Kind == kb.ClassKind {
		return kb.Class{ID: e.ID}, nil
	}

	expr, err := r.kb.ParseExpression(text)
	if err == nil {
		return expr, nil
	}
	if retry, rerr := r.kb.ParseExpression("'" + text + "'"); rerr == nil {
		return retry, nil
	}

	logger.Debugf(agent, "Resolve", "could not determine class expression from \"%s\": %v", text, err)
	return nil, err
}

// substitution is the text a wildcard term is replaced with: the quoted label
// when the term names a labelled entity, otherwise the parenthesised term.
func (r *resolver) substitution(term string) string {
	if term == "" {
		return nullTerm
	}
	if l, ok := r.label(term); ok {
		return "'" + l + "'"
	}
	return "(" + term + ")"
}

// interpolate expands the %N wildcards of rule with the terms of column N of
// row.  A cell holding several '|'-separated terms multiplies the rules, so
// wildcards over cells with 2 and 3 terms yield 6 rules.  Wildcards are
// expanded in ascending column order; column is only used for errors.
func (r *resolver) interpolate(rule string, row []string, column int) ([]string, error) {
	if strings.TrimSpace(rule) == "" {
		return []string{""}, nil
	}

	matches := wildcardPattern.FindAllStringSubmatch(rule, -1)
	if len(matches) == 0 {
		return []string{rule}, nil
	}

	terms := make(map[int][]string)
	var keys []int
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(row) {
			return nil, common.NewStructuralError(common.ColumnOutOfRange, column,
				"rule \"%s\" indicates a column number that is greater than the row length (%d).", m[0], len(row))
		}
		if _, seen := terms[n]; seen {
			continue
		}

		content := strings.TrimSpace(row[n-1])
		if content == "" {
			logger.Debugf(agent, "Interpolate", "no term at position %d of this row for wildcard %s", n, m[0])
			terms[n] = []string{""}
		} else {
			for _, t := range strings.Split(content, "|") {
				terms[n] = append(terms[n], strings.TrimSpace(t))
			}
		}
		keys = append(keys, n)
	}
	sort.Ints(keys)

	results := []string{rule}
	for _, n := range keys {
		var next []string
		for _, term := range terms[n] {
			sub := r.substitution(term)
			for _, partial := range results {
				next = append(next, replaceWildcard(partial, n, sub))
			}
		}
		results = next
	}

	return results, nil
}

// replaceWildcard replaces every %n in s, leaving longer numbers such as
// %n0 alone.
func replaceWildcard(s string, n int, sub string) string {
	return wildcardPattern.ReplaceAllStringFunc(s, func(m string) string {
		if k, err := strconv.Atoi(m[1:]); err == nil && k == n {
			return sub
		}
		return m
	})
}
