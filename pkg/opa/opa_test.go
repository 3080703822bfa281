//
//  Copyright © Manetu Inc. All rights reserved.
//

package opa

import (
	"context"
	"testing"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reachability = `
package test.graph

ancestors[node] := graph.reachable(input.edges, input.edges[node]) if {
	some node, _ in input.edges
}
`

func TestCompileSuccess(t *testing.T) {
	compiler := NewCompiler()

	a, err := compiler.Compile("graph", Modules{"graph.rego": reachability})
	require.NoError(t, err)
	assert.Equal(t, "graph", a.Name())
	assert.NotNil(t, a.compiler)
}

func TestCompileWithSyntaxError(t *testing.T) {
	compiler := NewCompiler()

	a, err := compiler.Compile("broken", Modules{"broken.rego": "package x\nallow if { this is invalid }"})
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestCompileRegoV0(t *testing.T) {
	module := "package x\nallow = true { input.user == \"admin\" }\n"

	_, err := NewCompiler().Compile("v0", Modules{"x.rego": module})
	assert.Error(t, err)

	a, err := NewCompiler(WithRegoVersion(ast.RegoV0)).Compile("v0", Modules{"x.rego": module})
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestCompileWithUnsafeBuiltins(t *testing.T) {
	modules := Modules{
		"net.rego": `
package net
allow if {
	response := http.send({"method": "get", "url": "http://example.com"})
	response.status_code == 200
}
`,
	}

	restricted := NewCompiler(WithUnsafeBuiltins(Builtins{"http.send": {}}))
	_, err := restricted.Compile("net", modules)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined function http.send")

	// clones inherit the restriction
	_, err = restricted.Clone().Compile("net", modules)
	assert.Error(t, err)

	// unless capabilities are reset
	a, err := restricted.Clone(WithDefaultCapabilities()).Compile("net", modules)
	assert.NoError(t, err)
	assert.NotNil(t, a)
}

func TestEvaluate(t *testing.T) {
	a, err := NewCompiler().Compile("graph", Modules{"graph.rego": reachability})
	require.NoError(t, err)

	input := map[string]interface{}{
		"edges": map[string]interface{}{
			"a": []string{"b"},
			"b": []string{"c"},
			"c": []string{},
		},
	}

	result, err := a.Evaluate(context.Background(), "data.test.graph.ancestors", input)
	require.NoError(t, err)
	require.Len(t, result.Expressions, 1)

	ancestors, ok := result.Expressions[0].Value.(map[string]interface{})
	require.True(t, ok)
	assert.ElementsMatch(t, []interface{}{"b", "c"}, ancestors["a"])
	assert.ElementsMatch(t, []interface{}{}, ancestors["c"])
}

func TestCloneEvaluate(t *testing.T) {
	base := NewCompiler(WithUnsafeBuiltins(Builtins{"http.send": {}}))
	input := map[string]interface{}{
		"edges": map[string]interface{}{
			"a": []string{"b"},
			"b": []string{},
		},
	}

	for _, compiler := range []*Compiler{base, base.Clone(), base.Clone().Clone(WithDefaultTracing(true))} {
		a, err := compiler.Compile("graph", Modules{"graph.rego": reachability})
		require.NoError(t, err)

		result, err := a.Evaluate(context.Background(), "data.test.graph.ancestors", input)
		require.NoError(t, err)
		require.Len(t, result.Expressions, 1)

		ancestors, ok := result.Expressions[0].Value.(map[string]interface{})
		require.True(t, ok)
		assert.ElementsMatch(t, []interface{}{"b"}, ancestors["a"])
	}

	// narrowing a clone leaves the original untouched
	clone := base.Clone(WithUnsafeBuiltins(Builtins{"graph.reachable": {}}))
	_, err := clone.Compile("graph", Modules{"graph.rego": reachability})
	assert.Error(t, err)
	_, err = base.Compile("graph", Modules{"graph.rego": reachability})
	assert.NoError(t, err)
}

func TestEvaluateWithTrace(t *testing.T) {
	a, err := NewCompiler(WithDefaultTracing(true)).Compile("graph", Modules{"graph.rego": reachability})
	require.NoError(t, err)

	_, err = a.Evaluate(context.Background(), "data.test.graph.ancestors", map[string]interface{}{"edges": map[string]interface{}{}}, WithTrace(false))
	assert.NoError(t, err)
}

func TestEvaluateNoResults(t *testing.T) {
	a, err := NewCompiler().Compile("graph", Modules{"graph.rego": reachability})
	require.NoError(t, err)

	_, err = a.Evaluate(context.Background(), "data.test.graph.missing", nil)
	assert.Error(t, err)
}
