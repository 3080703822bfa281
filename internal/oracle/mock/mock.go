//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package mock provides a scriptable [oracle.Oracle] for tests.  Answers are
// looked up by the canonical string of the query expression; anything not
// scripted is answered with an empty set or false.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/opa"
	"github.com/manetu/tablevalidator/pkg/oracle"
)

var logger = logging.GetLogger("tablevalidator.oracle.mock")
var mockAgent = "mock"

// Operation names used as script keys and in the call log.
const (
	OpSubClasses        = "subclasses"
	OpDirectSubClasses  = "direct-subclasses"
	OpSuperClasses      = "superclasses"
	OpDirectSuperClass  = "direct-superclasses"
	OpEquivalentClasses = "equivalent"
	OpInstances         = "instances"
	OpDirectInstances   = "direct-instances"
	OpIsEntailed        = "entailed"
)

// Call records one question put to the oracle.
type Call struct {
	Op   string
	Expr string
}

// Script holds the canned answers.  Set answers are keyed by operation then by
// expression string; entailment answers are keyed by the axiom string.
type Script struct {
	Sets     map[string]map[string][]string
	Entailed map[string]bool
	// Unsupported operations return oracle.ErrUnsupported.
	Unsupported map[string]bool
	// Delay is applied before every answer; a done context interrupts it.
	Delay time.Duration
}

// Factory creates mock oracles that share one script.
type Factory struct {
	script *Script
}

// NewFactory creates a new Factory for the mock oracle.
func NewFactory(script *Script) oracle.Factory {
	return &Factory{script: script}
}

// NewOracle ignores the knowledge base and compiler and answers from the script.
func (f *Factory) NewOracle(_ *kb.KnowledgeBase, _ *opa.Compiler) (oracle.Oracle, error) {
	logger.Warn(mockAgent, "Init", "RUNNING IN MOCK MODE. SHOULD NOT BE USED IN PRODUCTION")
	return New(f.script), nil
}

// Oracle is the mock implementation.
type Oracle struct {
	script *Script

	mu    sync.Mutex
	calls []Call
}

var _ oracle.Oracle = &Oracle{}

// New creates a mock oracle.  A nil script answers everything negatively.
func New(script *Script) *Oracle {
	if script == nil {
		script = &Script{}
	}
	return &Oracle{script: script}
}

// NewScript creates an empty script.
func NewScript() *Script {
	return &Script{
		Sets:        make(map[string]map[string][]string),
		Entailed:    make(map[string]bool),
		Unsupported: make(map[string]bool),
	}
}

// Answer scripts the result set of op for the expression.
func (s *Script) Answer(op, expr string, ids ...string) *Script {
	if s.Sets == nil {
		s.Sets = make(map[string]map[string][]string)
	}
	if s.Sets[op] == nil {
		s.Sets[op] = make(map[string][]string)
	}
	s.Sets[op][expr] = ids
	return s
}

// Entails scripts the answer to an entailment question.
func (s *Script) Entails(axiom string, value bool) *Script {
	if s.Entailed == nil {
		s.Entailed = make(map[string]bool)
	}
	s.Entailed[axiom] = value
	return s
}

// Calls returns the questions asked so far, in order.
func (o *Oracle) Calls() []Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Call(nil), o.calls...)
}

func (o *Oracle) ask(ctx context.Context, op, expr string) error {
	o.mu.Lock()
	o.calls = append(o.calls, Call{Op: op, Expr: expr})
	o.mu.Unlock()

	logger.Debugf(mockAgent, "Ask", "%s %s", op, expr)

	if o.script.Delay > 0 {
		select {
		case <-time.After(o.script.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.script.Unsupported[op] {
		return oracle.ErrUnsupported
	}
	return nil
}

func (o *Oracle) set(ctx context.Context, op string, expr kb.Expression) ([]string, error) {
	if err := o.ask(ctx, op, expr.String()); err != nil {
		return nil, err
	}
	return o.script.Sets[op][expr.String()], nil
}

// SubClasses implements oracle.Oracle.
func (o *Oracle) SubClasses(ctx context.Context, expr kb.Expression, direct bool) ([]string, error) {
	if direct {
		return o.set(ctx, OpDirectSubClasses, expr)
	}
	return o.set(ctx, OpSubClasses, expr)
}

// SuperClasses implements oracle.Oracle.
func (o *Oracle) SuperClasses(ctx context.Context, expr kb.Expression, direct bool) ([]string, error) {
	if direct {
		return o.set(ctx, OpDirectSuperClass, expr)
	}
	return o.set(ctx, OpSuperClasses, expr)
}

// EquivalentClasses implements oracle.Oracle.
func (o *Oracle) EquivalentClasses(ctx context.Context, expr kb.Expression) ([]string, error) {
	return o.set(ctx, OpEquivalentClasses, expr)
}

// Instances implements oracle.Oracle.
func (o *Oracle) Instances(ctx context.Context, expr kb.Expression, direct bool) ([]string, error) {
	if direct {
		return o.set(ctx, OpDirectInstances, expr)
	}
	return o.set(ctx, OpInstances, expr)
}

// IsEntailed implements oracle.Oracle.
func (o *Oracle) IsEntailed(ctx context.Context, axiom kb.Axiom) (bool, error) {
	if err := o.ask(ctx, OpIsEntailed, axiom.String()); err != nil {
		return false, err
	}
	return o.script.Entailed[axiom.String()], nil
}
