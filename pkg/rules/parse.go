//
//  Copyright © Manetu Inc. All rights reserved.
//

package rules

import (
	"regexp"
	"strings"

	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/common"
)

var logger = logging.GetLogger("tablevalidator.rules")

const agent = "rules"

var (
	statementSep  = regexp.MustCompile(`\s*;\s*`)
	whenGroup     = regexp.MustCompile(`(\(\s*when\s+.+\))(.*)`)
	whenPrefix    = regexp.MustCompile(`^\(\s*when\s+`)
	whenSep       = regexp.MustCompile(`\s*&\s*`)
	whenSubClause = regexp.MustCompile(`^([^'\s()]+|'[^']+'|\(.+?\))\s+([a-z\-|]+)\s+(.*)$`)
)

// Group holds every statement of one rule type, in the order written.
type Group struct {
	Type     string
	Contents []string
}

// RuleMap is the parsed form of a rule cell: one Group per distinct rule
// type, ordered by first appearance.
type RuleMap []Group

// Get returns the contents recorded for a rule type.
func (m RuleMap) Get(ruleType string) ([]string, bool) {
	for _, g := range m {
		if g.Type == ruleType {
			return g.Contents, true
		}
	}
	return nil, false
}

func (m RuleMap) add(ruleType, content string) RuleMap {
	for i := range m {
		if m[i].Type == ruleType {
			m[i].Contents = append(m[i].Contents, content)
			return m
		}
	}
	return append(m, Group{Type: ruleType, Contents: []string{content}})
}

// Parse turns a rule cell into a RuleMap.  An empty cell, or one starting with
// "##", declares no rules.  Statements starting with '#' are comments.
// Presence rules without content default to "true".
func (v *Vocabulary) Parse(ruleString string) (RuleMap, error) {
	ruleString = strings.TrimSpace(ruleString)
	if ruleString == "" || strings.HasPrefix(ruleString, "##") {
		return nil, nil
	}

	var m RuleMap
	for _, statement := range statementSep.Split(ruleString, -1) {
		if statement == "" || strings.HasPrefix(statement, "#") {
			continue
		}

		ruleType, content := splitStatement(statement)
		if content == "" {
			// unknown types with content are reported later, when a cell is evaluated
			if def, ok := v.Lookup(ruleType); !ok || def.Category != Presence {
				return nil, common.NewStructuralError(common.MalformedRule, 0, "malformed rule: %s", statement)
			}
			content = "true"
		}

		m = m.add(ruleType, content)
	}

	return m, nil
}

func splitStatement(statement string) (string, string) {
	idx := strings.IndexFunc(statement, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
	})
	if idx < 0 {
		return statement, ""
	}
	return statement[:idx], strings.TrimSpace(statement[idx:])
}

// WhenClause is one guard condition: Subject must stand in RuleType relation
// to Axiom for the main clause to apply.
type WhenClause struct {
	Subject  string
	RuleType string
	Axiom    string
}

// Separated is a rule split into its main clause and its guards.
type Separated struct {
	Main string
	When []WhenClause
}

// Separate splits an (already interpolated) rule into its main clause and
// when-clauses.  column is the 1-based column the rule came from and is only
// used for error reporting.
//
// A presence rule may consist of a when-group alone, in which case Main is
// "true".  Anything after the closing parenthesis of the when-group is ignored
// with a warning.
func (v *Vocabulary) Separate(rule, ruleType string, column int) (*Separated, error) {
	loc := whenGroup.FindStringSubmatchIndex(rule)
	if loc == nil {
		return &Separated{Main: rule}, nil
	}

	def, known := v.Primary(ruleType)
	presence := known && def.Category == Presence
	if loc[0] == 0 && !presence {
		return nil, common.NewStructuralError(common.NoMainClause, column,
			"rule: \"%s\" has when clause but no main clause.", rule)
	}

	group := rule[loc[2]:loc[3]]
	if trailing := strings.TrimSpace(rule[loc[4]:loc[5]]); trailing != "" {
		logger.Warnf(agent, "Separate", "column %d: ignoring '%s' after when clause in rule '%s'", column, trailing, rule)
	}

	body := whenPrefix.ReplaceAllString(group, "")
	body = strings.TrimSuffix(body, ")")

	var clauses []WhenClause
	for _, part := range whenSep.Split(strings.TrimSpace(body), -1) {
		match := whenSubClause.FindStringSubmatch(part)
		if match == nil {
			return nil, common.NewStructuralError(common.MalformedWhenClause, column,
				"unable to decompose when-clause: \"%s\".", part)
		}
		clause := WhenClause{Subject: match[1], RuleType: match[2], Axiom: strings.TrimSpace(match[3])}
		for _, t := range SplitTypes(clause.RuleType) {
			if d, ok := v.Lookup(t); !ok || d.Category != Query {
				return nil, common.NewStructuralError(common.InvalidWhenType, column,
					"in clause: \"%s\": Only rules of type: [%s] are allowed in a when clause.",
					part, strings.Join(v.QueryTypeNames(), ", "))
			}
		}
		clauses = append(clauses, clause)
	}

	main := strings.TrimSpace(rule[:loc[0]])
	if main == "" {
		main = "true"
	}

	return &Separated{Main: main, When: clauses}, nil
}
