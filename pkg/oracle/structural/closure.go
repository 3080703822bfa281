//
//  Copyright © Manetu Inc. All rights reserved.
//

package structural

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/opa"
)

//go:embed hierarchy.rego
var hierarchyModule string

const hierarchyQuery = "data.tablevalidator.hierarchy"

// builtins the closure module never needs
var unsafeBuiltins = opa.Builtins{
	"http.send":          {},
	"net.lookup_ip_addr": {},
	"opa.runtime":        {},
}

type set map[string]struct{}

func (s set) has(id string) bool {
	_, ok := s[id]
	return ok
}

// namedParents returns the told named parents of a class: named superclasses,
// named conjuncts of superclass or definition intersections, and named
// equivalents in both directions.
func namedParents(k *kb.KnowledgeBase) map[string][]string {
	parents := make(map[string][]string)
	for _, c := range k.Entities(kb.ClassKind) {
		if parents[c.ID] == nil {
			parents[c.ID] = []string{}
		}

		add := func(e kb.Expression) {
			switch v := e.(type) {
			case kb.Class:
				parents[c.ID] = append(parents[c.ID], v.ID)
			case kb.And:
				for _, op := range v.Operands {
					if n, ok := op.(kb.Class); ok {
						parents[c.ID] = append(parents[c.ID], n.ID)
					}
				}
			}
		}

		for _, e := range k.SuperClassAxioms(c.ID) {
			add(e)
		}
		for _, e := range k.EquivalentAxioms(c.ID) {
			add(e)
			if n, ok := e.(kb.Class); ok {
				parents[n.ID] = append(parents[n.ID], c.ID)
			}
		}
	}
	return parents
}

func propertyParents(k *kb.KnowledgeBase) map[string][]string {
	parents := make(map[string][]string)
	for _, p := range k.Entities(kb.PropertyKind) {
		parents[p.ID] = append([]string{}, k.SuperProperties(p.ID)...)
	}
	return parents
}

// closures materialises the reflexive ancestor sets of every named class and
// property with the embedded Rego module.
func closures(ctx context.Context, k *kb.KnowledgeBase, compiler *opa.Compiler) (map[string]set, map[string]set, error) {
	a, err := compiler.Clone(opa.WithUnsafeBuiltins(unsafeBuiltins)).Compile("hierarchy", opa.Modules{"hierarchy.rego": hierarchyModule})
	if err != nil {
		return nil, nil, err
	}

	input := map[string]interface{}{
		"classes":    namedParents(k),
		"properties": propertyParents(k),
	}

	result, err := a.Evaluate(ctx, hierarchyQuery, input)
	if err != nil {
		return nil, nil, err
	}
	if len(result.Expressions) == 0 {
		return nil, nil, fmt.Errorf("%s: empty result", hierarchyQuery)
	}

	doc, ok := result.Expressions[0].Value.(map[string]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("%s: unexpected result %T", hierarchyQuery, result.Expressions[0].Value)
	}

	classes, err := decode(doc["class_ancestors"])
	if err != nil {
		return nil, nil, err
	}
	properties, err := decode(doc["property_ancestors"])
	if err != nil {
		return nil, nil, err
	}

	for _, c := range k.Entities(kb.ClassKind) {
		if classes[c.ID] == nil {
			classes[c.ID] = make(set)
		}
		classes[c.ID][c.ID] = struct{}{}
		classes[c.ID][kb.ThingID] = struct{}{}
	}
	for _, p := range k.Entities(kb.PropertyKind) {
		if properties[p.ID] == nil {
			properties[p.ID] = make(set)
		}
		properties[p.ID][p.ID] = struct{}{}
	}

	return classes, properties, nil
}

func decode(value interface{}) (map[string]set, error) {
	result := make(map[string]set)
	if value == nil {
		return result, nil
	}

	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected closure %T", value)
	}

	for node, raw := range m {
		members, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("unexpected ancestors of %s: %T", node, raw)
		}
		s := make(set, len(members)+2)
		for _, member := range members {
			id, ok := member.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected ancestor of %s: %v", node, member)
			}
			s[id] = struct{}{}
		}
		result[node] = s
	}
	return result, nil
}
