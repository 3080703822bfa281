//
//  Copyright © Manetu Inc. All rights reserved.
//

package validator

import (
	"context"
	"errors"
	"time"

	"github.com/manetu/tablevalidator/pkg/common"
	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/metrics"
	"github.com/manetu/tablevalidator/pkg/oracle"
	"github.com/manetu/tablevalidator/pkg/rules"
)

// Outcome is the result of one query.
type Outcome int

const (
	// Satisfied means at least one of the query types holds.
	Satisfied Outcome = iota
	// Unsatisfied means none of the query types holds.
	Unsatisfied
	// Unresolved means the subject or the rule expression could not be
	// understood, so nothing was asked.
	Unresolved
	// TimedOut means an oracle query exceeded the query timeout.
	TimedOut
)

func (o Outcome) String() string {
	switch o {
	case Satisfied:
		return "satisfied"
	case Unsatisfied:
		return "unsatisfied"
	case Unresolved:
		return "unresolved"
	case TimedOut:
		return "timed out"
	}
	return "unknown"
}

var errTimeout = errors.New("oracle query timed out")

// dispatcher answers "subject <query types> expression" questions with the
// oracle.  Query types joined with '|' are OR-combined.
type dispatcher struct {
	vocab    *rules.Vocabulary
	resolver *resolver
	oracle   oracle.Oracle
	metrics  *metrics.Metrics
	timeout  time.Duration
}

// call runs one oracle operation under the query timeout.  A timeout of the
// operation itself becomes errTimeout; cancellation of ctx is returned as is.
func (d *dispatcher) call(ctx context.Context, op string, fn func(context.Context) error) error {
	qctx, cancel := ctx, context.CancelFunc(func() {})
	if d.timeout > 0 {
		qctx, cancel = context.WithTimeout(ctx, d.timeout)
	}
	defer cancel()

	start := time.Now()
	err := fn(qctx)
	d.metrics.ObserveQuery(op, time.Since(start))

	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return errTimeout
	}
	return err
}

func (d *dispatcher) contains(ctx context.Context, op, id string, fn func(context.Context) ([]string, error)) (bool, error) {
	var ids []string
	err := d.call(ctx, op, func(ctx context.Context) error {
		var err error
		ids, err = fn(ctx)
		return err
	})
	return oracle.Contains(ids, id), err
}

func (d *dispatcher) entailed(ctx context.Context, axiom kb.Axiom) (bool, error) {
	var ok bool
	err := d.call(ctx, "entailed", func(ctx context.Context) error {
		var err error
		ok, err = d.oracle.IsEntailed(ctx, axiom)
		return err
	})
	return ok, err
}

// definitions looks up every '|'-joined query type before anything is asked.
func (d *dispatcher) definitions(queryType string, column int) ([]rules.Definition, error) {
	var defs []rules.Definition
	for _, t := range rules.SplitTypes(queryType) {
		def, ok := d.vocab.Lookup(t)
		if !ok {
			return nil, common.NewStructuralError(common.UnrecognizedQueryType, column,
				"query type \"%s\" not recognized in rule \"%s\".", t, queryType)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// execute answers whether subject stands in any of the queryType relations
// to the class expression ruleText.  The returned error is a structural
// error, a cancellation of ctx, or an oracle failure; all of them abort the
// run.
func (d *dispatcher) execute(ctx context.Context, ectx EvaluationContext, subject, ruleText, queryType string) (Outcome, error) {
	logger.Debugf(agent, "Execute", "subject: \"%s\", rule: \"%s\", query type: \"%s\"", subject, ruleText, queryType)

	defs, err := d.definitions(queryType, ectx.Column)
	if err != nil {
		return Unresolved, err
	}

	ruleExpr, err := d.resolver.expression(ruleText)
	if err != nil {
		logger.Warnf(agent, "Execute", "Unable to parse rule \"%s %s\" at column %d.", queryType, ruleText, ectx.Column)
		return Unresolved, nil
	}

	var ask func(context.Context, rules.Definition) (bool, error)
	if e, ok := d.resolver.entity(subject); ok {
		switch e.Kind {
		case kb.IndividualKind:
			ask = func(ctx context.Context, def rules.Definition) (bool, error) {
				return d.individual(ctx, e.ID, ruleExpr, def)
			}
		default:
			ask = func(ctx context.Context, def rules.Definition) (bool, error) {
				return d.class(ctx, e.ID, ruleExpr, def)
			}
		}
	} else {
		subjectExpr, err := d.resolver.expression(subject)
		if err != nil {
			logger.Errorf(agent, "Execute", "Unable to parse subject \"%s\" at row %d.", subject, ectx.Row)
			return Unresolved, nil
		}
		ask = func(ctx context.Context, def rules.Definition) (bool, error) {
			return d.generalized(ctx, subjectExpr, ruleExpr, def)
		}
	}

	for _, def := range defs {
		ok, err := ask(ctx, def)
		switch {
		case errors.Is(err, errTimeout):
			logger.Warnf(agent, "Execute", "%s: \"%s %s %s\" timed out after %s", ectx, subject, def.Name, ruleText, d.timeout)
			return TimedOut, nil
		case errors.Is(err, oracle.ErrUnsupported):
			logger.Warnf(agent, "Execute", "%s queries are not supported by this oracle for \"%s\"", def.Name, subject)
			continue
		case err != nil:
			return Unresolved, err
		}
		if ok {
			return Satisfied, nil
		}
	}
	return Unsatisfied, nil
}

// negate applies a "not-" query type to a membership answer.
func negate(def rules.Definition, member bool) bool {
	return member != def.Negated
}

func (d *dispatcher) individual(ctx context.Context, id string, rule kb.Expression, def rules.Definition) (bool, error) {
	if def.Relation != rules.Instance {
		logger.Errorf(agent, "Individual", "%s validation not possible for individual %s.", def.Name, id)
		return false, nil
	}
	found, err := d.contains(ctx, "instances", id, func(ctx context.Context) ([]string, error) {
		return d.oracle.Instances(ctx, rule, def.Direct)
	})
	if err != nil {
		return false, err
	}
	return negate(def, found), nil
}

func (d *dispatcher) class(ctx context.Context, id string, rule kb.Expression, def rules.Definition) (bool, error) {
	var fn func(context.Context) ([]string, error)
	var op string
	switch def.Relation {
	case rules.SubClass:
		op = "subclasses"
		fn = func(ctx context.Context) ([]string, error) { return d.oracle.SubClasses(ctx, rule, def.Direct) }
	case rules.SuperClass:
		op = "superclasses"
		fn = func(ctx context.Context) ([]string, error) { return d.oracle.SuperClasses(ctx, rule, def.Direct) }
	case rules.Equivalent:
		op = "equivalent"
		fn = func(ctx context.Context) ([]string, error) { return d.oracle.EquivalentClasses(ctx, rule) }
	default:
		logger.Errorf(agent, "Class", "%s validation not possible for class %s.", def.Name, id)
		return false, nil
	}

	found, err := d.contains(ctx, op, id, fn)
	if err != nil {
		return false, err
	}
	return negate(def, found), nil
}

// generalized handles anonymous subjects by asking whether the matching axiom
// is entailed.  Only the indirect subclass, superclass and equivalence
// relations can be expressed that way.
func (d *dispatcher) generalized(ctx context.Context, subject, rule kb.Expression, def rules.Definition) (bool, error) {
	var axiom kb.Axiom
	switch {
	case def.Direct:
		logger.Warnf(agent, "Generalized", "%s validation not possible for class expression %s.", def.Name, subject)
		return false, nil
	case def.Relation == rules.SubClass:
		axiom = kb.Axiom{Kind: kb.SubClassOf, Left: subject, Right: rule}
	case def.Relation == rules.SuperClass:
		axiom = kb.Axiom{Kind: kb.SubClassOf, Left: rule, Right: subject}
	case def.Relation == rules.Equivalent:
		axiom = kb.Axiom{Kind: kb.EquivalentClasses, Left: subject, Right: rule}
	default:
		logger.Warnf(agent, "Generalized", "%s validation not possible for class expression %s.", def.Name, subject)
		return false, nil
	}

	ok, err := d.entailed(ctx, axiom)
	if err != nil {
		return false, err
	}
	return negate(def, ok), nil
}
