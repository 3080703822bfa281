//
//  Copyright © Manetu Inc. All rights reserved.
//

package structural

import (
	"context"

	"github.com/manetu/tablevalidator/pkg/kb"
)

// query carries the state of one structural subsumption proof.  It is not
// shared between goroutines.
type query struct {
	r        *Reasoner
	ctx      context.Context
	err      error
	steps    int
	depth    int
	visiting map[string]bool
	proven   map[string]bool
}

func (r *Reasoner) newQuery(ctx context.Context) *query {
	return &query{
		r:        r,
		ctx:      ctx,
		err:      ctx.Err(),
		visiting: make(map[string]bool),
		proven:   make(map[string]bool),
	}
}

func (q *query) cancelled() bool {
	if q.err != nil {
		return true
	}
	q.steps++
	if q.steps%64 == 0 {
		q.err = q.ctx.Err()
	}
	return q.err != nil
}

// sub reports whether x is subsumed by y.  The proof is sound for the told
// axioms but not complete; an unproven subsumption is reported as false.
func (q *query) sub(x, y kb.Expression) bool {
	if q.cancelled() {
		return false
	}

	xs, ys := x.String(), y.String()
	if xs == ys || ys == kb.ThingID || xs == kb.NothingID {
		return true
	}

	key := xs + "\x00" + ys
	if q.proven[key] {
		return true
	}
	// a goal met again on its own proof path proves nothing
	if q.visiting[key] || q.depth >= q.r.maxDepth {
		return false
	}

	q.visiting[key] = true
	q.depth++
	ok := q.prove(x, y)
	q.depth--
	delete(q.visiting, key)

	if ok {
		q.proven[key] = true
	}
	return ok
}

func (q *query) prove(x, y kb.Expression) bool {
	if ya, ok := y.(kb.And); ok {
		for _, op := range ya.Operands {
			if !q.sub(x, op) {
				return false
			}
		}
		return true
	}
	if xo, ok := x.(kb.Or); ok {
		for _, op := range xo.Operands {
			if !q.sub(op, y) {
				return false
			}
		}
		return true
	}

	if yo, ok := y.(kb.Or); ok {
		for _, op := range yo.Operands {
			if q.sub(x, op) {
				return true
			}
		}
	}

	switch xv := x.(type) {
	case kb.And:
		for _, op := range xv.Operands {
			if q.sub(op, y) {
				return true
			}
		}
		if y.String() == kb.NothingID && q.clash(xv) {
			return true
		}
	case kb.Class:
		if q.proveNamed(xv.ID, y) {
			return true
		}
	case kb.Some:
		if ys, ok := y.(kb.Some); ok && q.r.subProperty(xv.Property, ys.Property) && q.sub(xv.Filler, ys.Filler) {
			return true
		}
	case kb.Not:
		if yn, ok := y.(kb.Not); ok && q.sub(yn.Operand, xv.Operand) {
			return true
		}
	}

	if yn, ok := y.(kb.Not); ok {
		// disjointness is symmetric
		if q.sub(yn.Operand, kb.Not{Operand: x}) {
			return true
		}
	}

	if yc, ok := y.(kb.Class); ok {
		for _, def := range q.r.definitions[yc.ID] {
			if q.sub(x, def) {
				return true
			}
		}
	}

	return false
}

func (q *query) proveNamed(c string, y kb.Expression) bool {
	ancestors := q.r.ancestors[c]
	if ancestors.has(kb.NothingID) {
		return true
	}
	if yc, ok := y.(kb.Class); ok && ancestors.has(yc.ID) {
		return true
	}
	for _, a := range q.r.ancestorList[c] {
		for _, s := range q.r.anonymousSupers[a] {
			if q.sub(s, y) {
				return true
			}
		}
	}
	return false
}

// clash reports whether two operands of an intersection are disjoint.
func (q *query) clash(a kb.And) bool {
	for i, x := range a.Operands {
		for _, y := range a.Operands[i+1:] {
			if q.sub(x, kb.Not{Operand: y}) {
				return true
			}
		}
	}
	return false
}
