//
//  Copyright © Manetu Inc. All rights reserved.
//

package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKB(t *testing.T) *KnowledgeBase {
	t.Helper()

	k := New("test", map[string]string{"ex": "http://example.org/"})
	for _, d := range []struct {
		id, label string
		kind      Kind
	}{
		{"ex:part_of", "part of", PropertyKind},
		{"ex:organ", "organ", ClassKind},
		{"ex:heart", "heart", ClassKind},
		{"ex:system", "cardiovascular system", ClassKind},
		{"ex:unlabelled", "", ClassKind},
		{"ex:h1", "heart one", IndividualKind},
	} {
		_, err := k.Declare(d.id, d.label, d.kind)
		require.NoError(t, err)
	}
	return k
}

func TestDeclare(t *testing.T) {
	k := newTestKB(t)

	_, err := k.Declare("ex:organ", "other", ClassKind)
	assert.Error(t, err)

	_, err = k.Declare("ex:other", "organ", ClassKind)
	assert.Error(t, err)

	_, err = k.Declare("", "nameless", ClassKind)
	assert.Error(t, err)

	e, ok := k.Entity("ex:heart")
	require.True(t, ok)
	assert.Equal(t, "http://example.org/heart", e.IRI)
	assert.Equal(t, ClassKind, e.Kind)

	assert.Len(t, k.Entities(IndividualKind), 1)
	assert.Len(t, k.Entities(PropertyKind), 1)
	// the two built-ins plus four declared classes
	assert.Len(t, k.Entities(ClassKind), 6)
}

func TestLabels(t *testing.T) {
	k := newTestKB(t)

	l, ok := k.LabelFor("ex:heart")
	assert.True(t, ok)
	assert.Equal(t, "heart", l)

	_, ok = k.LabelFor("ex:unlabelled")
	assert.False(t, ok)

	_, ok = k.LabelFor("ex:missing")
	assert.False(t, ok)

	e, ok := k.EntityForLabel("heart one")
	require.True(t, ok)
	assert.Equal(t, "ex:h1", e.ID)

	_, ok = k.EntityForLabel("'heart one'")
	assert.False(t, ok)
}

func TestEntityForTerm(t *testing.T) {
	k := newTestKB(t)

	tests := []struct {
		term     string
		expected string
	}{
		{"heart", "ex:heart"},
		{"'heart'", "ex:heart"},
		{"'cardiovascular system'", "ex:system"},
		{"ex:heart", "ex:heart"},
		{"http://example.org/heart", "ex:heart"},
		{"<http://example.org/heart>", "ex:heart"},
		{"unlabelled", "ex:unlabelled"},
		{"owl:Thing", ThingID},
		{"Thing", ThingID},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			e, ok := k.EntityForTerm(tt.term)
			require.True(t, ok)
			assert.Equal(t, tt.expected, e.ID)
		})
	}

	for _, term := range []string{"", "''", "spleen", "'heart"} {
		_, ok := k.EntityForTerm(term)
		assert.False(t, ok, term)
	}
}

func TestAmbiguousShortForm(t *testing.T) {
	k := New("test", map[string]string{"a": "http://a.org/", "b": "http://b.org/"})
	_, err := k.Declare("a:x", "", ClassKind)
	require.NoError(t, err)
	_, err = k.Declare("b:x", "", ClassKind)
	require.NoError(t, err)

	_, ok := k.EntityForTerm("x")
	assert.False(t, ok)

	e, ok := k.EntityForTerm("b:x")
	require.True(t, ok)
	assert.Equal(t, "b:x", e.ID)
}

func TestAxioms(t *testing.T) {
	k := newTestKB(t)

	require.NoError(t, k.AddSubClassOf("ex:heart", Class{ID: "ex:organ"}))
	require.NoError(t, k.AddEquivalentClass("ex:unlabelled", Class{ID: "ex:organ"}))
	require.NoError(t, k.AddDisjointClass("ex:heart", Class{ID: "ex:system"}))
	require.NoError(t, k.AddType("ex:h1", Class{ID: "ex:heart"}))

	assert.Equal(t, []Expression{Class{ID: "ex:organ"}}, k.SuperClassAxioms("ex:heart"))
	assert.Equal(t, []Expression{Class{ID: "ex:organ"}}, k.EquivalentAxioms("ex:unlabelled"))
	assert.Equal(t, []Expression{Class{ID: "ex:system"}}, k.DisjointAxioms("ex:heart"))
	assert.Equal(t, []Expression{Class{ID: "ex:heart"}}, k.TypeAxioms("ex:h1"))

	assert.Error(t, k.AddSubClassOf("ex:h1", Class{ID: "ex:organ"}))
	assert.Error(t, k.AddType("ex:heart", Class{ID: "ex:organ"}))
	assert.Error(t, k.AddSubPropertyOf("ex:part_of", "ex:heart"))
	assert.Error(t, k.AddSubClassOf("ex:missing", Class{ID: "ex:organ"}))
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "a b", Unquote("'a b'"))
	assert.Equal(t, "'a", Unquote("'a"))
	assert.Equal(t, "", Unquote("''"))
	assert.Equal(t, "'", Unquote("'"))
}
