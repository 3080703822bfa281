//
//  Copyright © Manetu Inc. All rights reserved.
//

package structural

import (
	"context"
	"testing"

	"github.com/manetu/tablevalidator/internal/test"
	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/opa"
	"github.com/manetu/tablevalidator/pkg/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	materialEntity = "obo:BFO_0000040"
	anatomical     = "obo:UBERON_0000061"
	organ          = "obo:UBERON_0000062"
	system         = "obo:UBERON_0004535"
	heart          = "obo:UBERON_0000948"
	liver          = "obo:UBERON_0002107"
	cardiacOrgan   = "ex:cardiac_organ"
	organism       = "obo:UBERON_0000468"
	wholeBody      = "ex:whole_body"
	heart1         = "ex:heart1"
	liver1         = "ex:liver1"
)

func newReasoner(t *testing.T) (*Reasoner, *kb.KnowledgeBase) {
	t.Helper()

	k, err := test.LoadKnowledgeBase()
	require.NoError(t, err)

	o, err := NewFactory().NewOracle(k, opa.NewCompiler())
	require.NoError(t, err)

	return o.(*Reasoner), k
}

func parse(t *testing.T, k *kb.KnowledgeBase, text string) kb.Expression {
	t.Helper()
	e, err := k.ParseExpression(text)
	require.NoError(t, err)
	return e
}

func TestClosure(t *testing.T) {
	r, _ := newReasoner(t)

	assert.True(t, r.ancestors[heart].has(organ))
	assert.True(t, r.ancestors[heart].has(materialEntity))
	assert.True(t, r.ancestors[heart].has(kb.ThingID))
	assert.True(t, r.ancestors[heart].has(heart))
	assert.False(t, r.ancestors[organ].has(heart))

	// named equivalents close in both directions
	assert.True(t, r.ancestors[wholeBody].has(organism))
	assert.True(t, r.ancestors[organism].has(wholeBody))

	// named conjuncts of a definition
	assert.True(t, r.ancestors[cardiacOrgan].has(organ))

	assert.True(t, r.subProperty("obo:BFO_0000050", "obo:RO_0002131"))
	assert.False(t, r.subProperty("obo:RO_0002131", "obo:BFO_0000050"))
}

func TestSubsumes(t *testing.T) {
	r, k := newReasoner(t)
	ctx := context.Background()

	tests := []struct {
		x, y     string
		expected bool
	}{
		{"heart", "organ", true},
		{"heart", "'material entity'", true},
		{"organ", "heart", false},
		{"heart", "'cardiac organ'", true},
		{"liver", "'cardiac organ'", false},
		{"'cardiac organ'", "organ", true},
		{"heart", "'part of' some 'cardiovascular system'", true},
		{"heart", "'part of' some 'anatomical structure'", true},
		{"heart", "overlaps some 'cardiovascular system'", true},
		{"heart", "'part of' some liver", false},
		{"heart", "not liver", true},
		{"liver", "not heart", true},
		{"heart", "not organ", false},
		{"heart", "organ and not liver", true},
		{"heart", "liver or organ", true},
		{"heart or liver", "organ", true},
		{"heart or 'cardiovascular system'", "organ", false},
		{"organ and 'part of' some 'cardiovascular system'", "'cardiac organ'", true},
		{"heart and liver", "owl:Nothing", true},
		{"heart and organ", "owl:Nothing", false},
		{"owl:Nothing", "heart", true},
		{"heart", "owl:Thing", true},
		{"'whole body'", "'multicellular organism'", true},
		{"'multicellular organism'", "'whole body'", true},
	}

	for _, tt := range tests {
		t.Run(tt.x+" <= "+tt.y, func(t *testing.T) {
			ok, err := r.Subsumes(ctx, parse(t, k, tt.x), parse(t, k, tt.y))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestSubClasses(t *testing.T) {
	r, k := newReasoner(t)
	ctx := context.Background()

	subs, err := r.SubClasses(ctx, parse(t, k, "organ"), false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{heart, liver, cardiacOrgan}, subs)

	subs, err = r.SubClasses(ctx, parse(t, k, "organ"), true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{liver, cardiacOrgan}, subs)

	subs, err = r.SubClasses(ctx, parse(t, k, "'anatomical structure'"), true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{organ, system, organism, wholeBody}, subs)

	subs, err = r.SubClasses(ctx, parse(t, k, "'part of' some 'cardiovascular system'"), false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{heart, cardiacOrgan}, subs)
}

func TestSuperClasses(t *testing.T) {
	r, k := newReasoner(t)
	ctx := context.Background()

	supers, err := r.SuperClasses(ctx, parse(t, k, "heart"), false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cardiacOrgan, organ, anatomical, materialEntity, kb.ThingID}, supers)

	supers, err = r.SuperClasses(ctx, parse(t, k, "heart"), true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cardiacOrgan}, supers)

	supers, err = r.SuperClasses(ctx, parse(t, k, "'material entity'"), true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{kb.ThingID}, supers)
}

func TestEquivalentClasses(t *testing.T) {
	r, k := newReasoner(t)
	ctx := context.Background()

	eq, err := r.EquivalentClasses(ctx, parse(t, k, "'whole body'"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{organism, wholeBody}, eq)

	eq, err = r.EquivalentClasses(ctx, parse(t, k, "organ and 'part of' some 'cardiovascular system'"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cardiacOrgan}, eq)

	eq, err = r.EquivalentClasses(ctx, parse(t, k, "heart or liver"))
	require.NoError(t, err)
	assert.Empty(t, eq)
}

func TestInstances(t *testing.T) {
	r, k := newReasoner(t)
	ctx := context.Background()

	inst, err := r.Instances(ctx, parse(t, k, "organ"), false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{heart1, liver1}, inst)

	inst, err = r.Instances(ctx, parse(t, k, "organ"), true)
	require.NoError(t, err)
	assert.Empty(t, inst)

	inst, err = r.Instances(ctx, parse(t, k, "heart"), true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{heart1}, inst)

	inst, err = r.Instances(ctx, parse(t, k, "not heart"), false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{liver1}, inst)

	assert.True(t, oracle.Contains(inst, liver1))
	assert.False(t, oracle.Contains(inst, heart1))
}

func TestIsEntailed(t *testing.T) {
	r, k := newReasoner(t)
	ctx := context.Background()

	ok, err := r.IsEntailed(ctx, kb.Axiom{Kind: kb.SubClassOf, Left: parse(t, k, "heart and liver"), Right: parse(t, k, "'cardiac organ'")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsEntailed(ctx, kb.Axiom{Kind: kb.EquivalentClasses, Left: parse(t, k, "organ and 'part of' some 'cardiovascular system'"), Right: parse(t, k, "'cardiac organ'")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsEntailed(ctx, kb.Axiom{Kind: kb.EquivalentClasses, Left: parse(t, k, "heart"), Right: parse(t, k, "organ")})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCancelledContext(t *testing.T) {
	r, k := newReasoner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.SubClasses(ctx, parse(t, k, "organ"), true)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = r.IsEntailed(ctx, kb.Axiom{Left: parse(t, k, "heart"), Right: parse(t, k, "organ")})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = r.Instances(ctx, parse(t, k, "organ"), false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMaxDepth(t *testing.T) {
	k, err := test.LoadKnowledgeBase()
	require.NoError(t, err)

	o, err := NewFactory(WithMaxDepth(1)).NewOracle(k, opa.NewCompiler())
	require.NoError(t, err)

	// named subsumption is a closure lookup and needs no nesting
	ok, err := o.IsEntailed(context.Background(), kb.Axiom{Left: parse(t, k, "heart"), Right: parse(t, k, "organ")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = o.IsEntailed(context.Background(), kb.Axiom{Left: parse(t, k, "heart"), Right: parse(t, k, "'cardiac organ'")})
	require.NoError(t, err)
	assert.False(t, ok)
}
