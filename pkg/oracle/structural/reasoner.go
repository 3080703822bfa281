//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package structural implements an [oracle.Oracle] by structural reasoning
// over the told axioms of a knowledge base.
//
// The named class and property hierarchies are closed once, at construction,
// by an embedded Rego module.  Questions about anonymous expressions are then
// answered by a bounded structural subsumption proof covering intersections,
// unions, complements, existential restrictions, class definitions and
// disjointness.  The proof is sound with respect to the told axioms but not
// complete: it never reports a subsumption that does not hold, but may miss
// some that do.
package structural

import (
	"context"
	"sort"

	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/opa"
	"github.com/manetu/tablevalidator/pkg/oracle"
)

var logger = logging.GetLogger("tablevalidator.oracle.structural")

const agent = "structural"

// DefaultMaxDepth bounds the nesting of a single subsumption proof.
const DefaultMaxDepth = 32

// Factory creates structural reasoners.
type Factory struct {
	maxDepth int
}

// FactoryOption customises a Factory.
type FactoryOption func(*Factory)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(depth int) FactoryOption {
	return func(f *Factory) {
		f.maxDepth = depth
	}
}

// NewFactory creates a new Factory for structural reasoners.
func NewFactory(options ...FactoryOption) oracle.Factory {
	f := &Factory{maxDepth: DefaultMaxDepth}
	for _, o := range options {
		o(f)
	}
	return f
}

// NewOracle builds a reasoner for the knowledge base.
func (f *Factory) NewOracle(k *kb.KnowledgeBase, compiler *opa.Compiler) (oracle.Oracle, error) {
	return New(context.Background(), k, compiler, f.maxDepth)
}

// Reasoner is the structural oracle.  It is immutable after construction.
type Reasoner struct {
	kb       *kb.KnowledgeBase
	maxDepth int

	classes     []string
	individuals []string

	ancestors     map[string]set
	ancestorList  map[string][]string
	propAncestors map[string]set

	// told superclass expressions that are not plain named classes,
	// including the complements implied by disjointness
	anonymousSupers map[string][]kb.Expression
	// expressions a class is equivalent to
	definitions map[string][]kb.Expression
}

var _ oracle.Oracle = &Reasoner{}

// New builds a reasoner, closing the named hierarchies with the compiler.
func New(ctx context.Context, k *kb.KnowledgeBase, compiler *opa.Compiler, maxDepth int) (*Reasoner, error) {
	classes, properties, err := closures(ctx, k, compiler)
	if err != nil {
		return nil, err
	}

	r := &Reasoner{
		kb:              k,
		maxDepth:        maxDepth,
		ancestors:       classes,
		ancestorList:    make(map[string][]string, len(classes)),
		propAncestors:   properties,
		anonymousSupers: make(map[string][]kb.Expression),
		definitions:     make(map[string][]kb.Expression),
	}

	for _, c := range k.Entities(kb.ClassKind) {
		r.classes = append(r.classes, c.ID)
	}
	for _, i := range k.Entities(kb.IndividualKind) {
		r.individuals = append(r.individuals, i.ID)
	}

	for id, s := range classes {
		list := make([]string, 0, len(s))
		for a := range s {
			list = append(list, a)
		}
		sort.Strings(list)
		r.ancestorList[id] = list
	}

	for _, c := range r.classes {
		for _, e := range k.SuperClassAxioms(c) {
			if !kb.IsNamed(e) {
				r.anonymousSupers[c] = append(r.anonymousSupers[c], e)
			}
		}
		for _, e := range k.EquivalentAxioms(c) {
			r.definitions[c] = append(r.definitions[c], e)
			if n, ok := e.(kb.Class); ok {
				r.definitions[n.ID] = append(r.definitions[n.ID], kb.Class{ID: c})
			} else {
				r.anonymousSupers[c] = append(r.anonymousSupers[c], e)
			}
		}
		for _, e := range k.DisjointAxioms(c) {
			r.anonymousSupers[c] = append(r.anonymousSupers[c], kb.Not{Operand: e})
			if n, ok := e.(kb.Class); ok {
				r.anonymousSupers[n.ID] = append(r.anonymousSupers[n.ID], kb.Not{Operand: kb.Class{ID: c}})
			}
		}
	}

	logger.Debugf(agent, "New", "reasoner ready: %d classes, %d individuals", len(r.classes), len(r.individuals))

	return r, nil
}

func (r *Reasoner) subProperty(p, super string) bool {
	return p == super || r.propAncestors[p].has(super)
}

// Subsumes reports whether x is subsumed by y.
func (r *Reasoner) Subsumes(ctx context.Context, x, y kb.Expression) (bool, error) {
	q := r.newQuery(ctx)
	ok := q.sub(x, y)
	return ok, q.err
}

func (r *Reasoner) related(ctx context.Context, expr kb.Expression, below bool) ([]string, *query, error) {
	q := r.newQuery(ctx)
	var result []string
	for _, c := range r.classes {
		if c == kb.NothingID {
			continue
		}
		var strict bool
		if below {
			strict = q.sub(kb.Class{ID: c}, expr) && !q.sub(expr, kb.Class{ID: c})
		} else {
			strict = q.sub(expr, kb.Class{ID: c}) && !q.sub(kb.Class{ID: c}, expr)
		}
		if q.err != nil {
			return nil, nil, q.err
		}
		if strict {
			result = append(result, c)
		}
	}
	return result, q, nil
}

// direct keeps the members of candidates that have no strictly closer member
// between them and the query expression.
func (q *query) direct(candidates []string, below bool) []string {
	var result []string
	for _, c := range candidates {
		closest := true
		for _, d := range candidates {
			if c == d {
				continue
			}
			cc, dc := kb.Class{ID: c}, kb.Class{ID: d}
			var between bool
			if below {
				between = q.sub(cc, dc) && !q.sub(dc, cc)
			} else {
				between = q.sub(dc, cc) && !q.sub(cc, dc)
			}
			if between {
				closest = false
				break
			}
		}
		if closest {
			result = append(result, c)
		}
	}
	return result
}

// SubClasses implements oracle.Oracle.  Classes equivalent to expr and
// owl:Nothing are not included.
func (r *Reasoner) SubClasses(ctx context.Context, expr kb.Expression, direct bool) ([]string, error) {
	subs, q, err := r.related(ctx, expr, true)
	if err != nil || !direct {
		return subs, err
	}
	result := q.direct(subs, true)
	return result, q.err
}

// SuperClasses implements oracle.Oracle.  Classes equivalent to expr are not
// included.
func (r *Reasoner) SuperClasses(ctx context.Context, expr kb.Expression, direct bool) ([]string, error) {
	supers, q, err := r.related(ctx, expr, false)
	if err != nil || !direct {
		return supers, err
	}
	result := q.direct(supers, false)
	return result, q.err
}

// EquivalentClasses implements oracle.Oracle.
func (r *Reasoner) EquivalentClasses(ctx context.Context, expr kb.Expression) ([]string, error) {
	q := r.newQuery(ctx)
	var result []string
	for _, c := range r.classes {
		if q.sub(kb.Class{ID: c}, expr) && q.sub(expr, kb.Class{ID: c}) {
			result = append(result, c)
		}
		if q.err != nil {
			return nil, q.err
		}
	}
	return result, nil
}

func (q *query) member(individual string, expr kb.Expression) bool {
	for _, t := range q.r.kb.TypeAxioms(individual) {
		if q.sub(t, expr) {
			return true
		}
	}
	return expr.String() == kb.ThingID
}

// Instances implements oracle.Oracle.  A direct instance of expr is not an
// instance of any named class strictly subsumed by expr.
func (r *Reasoner) Instances(ctx context.Context, expr kb.Expression, direct bool) ([]string, error) {
	q := r.newQuery(ctx)

	var narrower []string
	if direct {
		var err error
		narrower, _, err = r.related(ctx, expr, true)
		if err != nil {
			return nil, err
		}
	}

	var result []string
	for _, i := range r.individuals {
		if !q.member(i, expr) {
			continue
		}
		isDirect := true
		for _, n := range narrower {
			if q.member(i, kb.Class{ID: n}) {
				isDirect = false
				break
			}
		}
		if q.err != nil {
			return nil, q.err
		}
		if isDirect {
			result = append(result, i)
		}
	}
	return result, q.err
}

// IsEntailed implements oracle.Oracle.
func (r *Reasoner) IsEntailed(ctx context.Context, axiom kb.Axiom) (bool, error) {
	q := r.newQuery(ctx)
	ok := q.sub(axiom.Left, axiom.Right)
	if ok && axiom.Kind == kb.EquivalentClasses {
		ok = q.sub(axiom.Right, axiom.Left)
	}
	return ok, q.err
}
