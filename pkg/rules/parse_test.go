//
//  Copyright © Manetu Inc. All rights reserved.
//

package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manetu/tablevalidator/pkg/common"
)

func structuralKind(t *testing.T, err error) common.StructuralKind {
	t.Helper()
	var se *common.StructuralError
	require.True(t, errors.As(err, &se), "expected a structural error, got %v", err)
	return se.Kind
}

func TestParse(t *testing.T) {
	v := NewVocabulary()

	tests := []struct {
		name     string
		input    string
		expected RuleMap
	}{
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"double hash", "## notes for humans", nil},
		{"presence default", "is-required", RuleMap{{Type: "is-required", Contents: []string{"true"}}}},
		{"presence explicit", "is-excluded false", RuleMap{{Type: "is-excluded", Contents: []string{"false"}}}},
		{"query", "subclass-of 'Foo'", RuleMap{{Type: "subclass-of", Contents: []string{"'Foo'"}}}},
		{
			"comment statement skipped",
			"# not a rule ; subclass-of 'Foo'",
			RuleMap{{Type: "subclass-of", Contents: []string{"'Foo'"}}},
		},
		{
			"grouped by type in order of appearance",
			"subclass-of %1 ; is-required; subclass-of 'Bar'",
			RuleMap{
				{Type: "subclass-of", Contents: []string{"%1", "'Bar'"}},
				{Type: "is-required", Contents: []string{"true"}},
			},
		},
		{
			"unknown type with content is kept",
			"bogus 'Foo'",
			RuleMap{{Type: "bogus", Contents: []string{"'Foo'"}}},
		},
		{
			"alternatives keep the joined type",
			"subclass-of|equivalent-to 'Foo'",
			RuleMap{{Type: "subclass-of|equivalent-to", Contents: []string{"'Foo'"}}},
		},
		{
			"content keeps inner whitespace",
			"instance-of  'part of'   some  'heart'",
			RuleMap{{Type: "instance-of", Contents: []string{"'part of'   some  'heart'"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := v.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	v := NewVocabulary()

	for _, input := range []string{"bogus", "subclass-of", "is-required; frobnicate", "is-required|subclass-of"} {
		t.Run(input, func(t *testing.T) {
			_, err := v.Parse(input)
			require.Error(t, err)
			assert.Equal(t, common.MalformedRule, structuralKind(t, err))
			assert.Contains(t, err.Error(), "malformed rule")
		})
	}
}

func TestRuleMapGet(t *testing.T) {
	m := RuleMap{{Type: "is-required", Contents: []string{"true"}}}

	c, ok := m.Get("is-required")
	assert.True(t, ok)
	assert.Equal(t, []string{"true"}, c)

	_, ok = m.Get("subclass-of")
	assert.False(t, ok)
}

func TestSeparate(t *testing.T) {
	v := NewVocabulary()

	tests := []struct {
		name     string
		rule     string
		ruleType string
		expected *Separated
	}{
		{
			"no when clause",
			"'Foo'",
			"subclass-of",
			&Separated{Main: "'Foo'"},
		},
		{
			"single when clause",
			"'Foo' (when 'Bar' subclass-of 'Baz')",
			"subclass-of",
			&Separated{
				Main: "'Foo'",
				When: []WhenClause{{Subject: "'Bar'", RuleType: "subclass-of", Axiom: "'Baz'"}},
			},
		},
		{
			"conjunction",
			"'Foo' (when (C1) instance-of 'Bar' & 'Qux' not-subclass-of|equivalent-to 'Baz')",
			"subclass-of",
			&Separated{
				Main: "'Foo'",
				When: []WhenClause{
					{Subject: "(C1)", RuleType: "instance-of", Axiom: "'Bar'"},
					{Subject: "'Qux'", RuleType: "not-subclass-of|equivalent-to", Axiom: "'Baz'"},
				},
			},
		},
		{
			"presence without main clause",
			"(when 'Bar' subclass-of 'Baz')",
			"is-required",
			&Separated{
				Main: "true",
				When: []WhenClause{{Subject: "'Bar'", RuleType: "subclass-of", Axiom: "'Baz'"}},
			},
		},
		{
			"presence with main clause",
			"false (when 'Bar' subclass-of 'Baz')",
			"is-required",
			&Separated{
				Main: "false",
				When: []WhenClause{{Subject: "'Bar'", RuleType: "subclass-of", Axiom: "'Baz'"}},
			},
		},
		{
			"trailing text is ignored",
			"'Foo' (when 'Bar' subclass-of 'Baz') extra",
			"subclass-of",
			&Separated{
				Main: "'Foo'",
				When: []WhenClause{{Subject: "'Bar'", RuleType: "subclass-of", Axiom: "'Baz'"}},
			},
		},
		{
			"bare subject",
			"'Foo' (when Bar subclass-of 'part of' some 'Baz')",
			"subclass-of",
			&Separated{
				Main: "'Foo'",
				When: []WhenClause{{Subject: "Bar", RuleType: "subclass-of", Axiom: "'part of' some 'Baz'"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := v.Separate(tt.rule, tt.ruleType, 2)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestSeparateErrors(t *testing.T) {
	v := NewVocabulary()

	tests := []struct {
		name     string
		rule     string
		ruleType string
		kind     common.StructuralKind
	}{
		{"no main clause", "(when 'Bar' subclass-of 'Baz')", "subclass-of", common.NoMainClause},
		{"malformed sub-clause", "'Foo' (when 'Bar')", "subclass-of", common.MalformedWhenClause},
		{"presence type in when", "'Foo' (when 'Bar' is-required true)", "subclass-of", common.InvalidWhenType},
		{"unknown type in when", "'Foo' (when 'Bar' sibling-of 'Baz')", "subclass-of", common.InvalidWhenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Separate(tt.rule, tt.ruleType, 3)
			require.Error(t, err)
			assert.Equal(t, tt.kind, structuralKind(t, err))
			assert.Contains(t, err.Error(), "column 3")
		})
	}
}
