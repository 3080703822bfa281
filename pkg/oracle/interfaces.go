//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package oracle defines the reasoning interface the validator queries.
//
// An oracle answers subsumption, equivalence and instance-membership
// questions about class expressions over a knowledge base.  The validator
// treats every call as potentially expensive and blocking, and makes no
// assumption about caching inside the oracle.
//
// # Built-in Oracles
//
//   - [structural]: a structural reasoner over the told axioms of a
//     [kb.KnowledgeBase]
//   - Mock oracle (internal): answers from a script, used in tests
//
// # Implementing a Custom Oracle
//
//  1. Implement the [Factory] interface to create oracle instances
//  2. Implement the [Oracle] interface
//  3. Pass the factory to the engine builder in place of the structural one
package oracle

import (
	"context"
	"errors"

	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/opa"
)

// ErrUnsupported is returned (possibly wrapped) by an oracle that cannot
// answer a particular kind of question.  The validator logs a capability
// warning and treats the question as unsatisfied.
var ErrUnsupported = errors.New("operation not supported by this oracle")

// Factory creates [Oracle] instances.
//
// Construction of the factory happens before configuration is loaded;
// [NewOracle] is called once the knowledge base has been read and the OPA
// compiler is available.
type Factory interface {
	NewOracle(k *kb.KnowledgeBase, c *opa.Compiler) (Oracle, error)
}

// Oracle answers reasoning questions.  Results are sets of entity ids in no
// particular order.  All methods are safe for concurrent use and return
// ctx.Err() once the context is done.
type Oracle interface {
	// SubClasses returns the named classes subsumed by expr.  With direct set
	// only the most general of them are returned.
	SubClasses(ctx context.Context, expr kb.Expression, direct bool) ([]string, error)

	// SuperClasses returns the named classes subsuming expr.  With direct set
	// only the most specific of them are returned.
	SuperClasses(ctx context.Context, expr kb.Expression, direct bool) ([]string, error)

	// EquivalentClasses returns the named classes equivalent to expr.
	EquivalentClasses(ctx context.Context, expr kb.Expression) ([]string, error)

	// Instances returns the named individuals that are members of expr.  With
	// direct set only individuals for which expr is among their most specific
	// types are returned.
	Instances(ctx context.Context, expr kb.Expression, direct bool) ([]string, error)

	// IsEntailed reports whether the axiom follows from the knowledge base.
	IsEntailed(ctx context.Context, axiom kb.Axiom) (bool, error)
}

// Contains reports whether id is in the result set.
func Contains(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
