//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package validator checks the data of rule-annotated tables against a
// knowledge base.
//
// The first row of a table is its header and the second row holds the rules
// of each column, for example:
//
//	ID    Label        Parent
//	      is-required  subclass-of %2 (when %2 instance-of 'organ')
//	      heart        organ
//
// Every non-blank data row is walked column by column.  Each '|'-separated
// entry of a cell is checked against every rule of its column after the %N
// wildcards of the rule have been expanded with the terms of the same row.
// A rule that fails produces a [common.ValidationError] record; the walk
// always continues.  A broken rule definition produces a
// [common.StructuralError] and aborts the run.
package validator

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/manetu/tablevalidator/internal/logging"
	"github.com/manetu/tablevalidator/pkg/common"
	"github.com/manetu/tablevalidator/pkg/kb"
	"github.com/manetu/tablevalidator/pkg/metrics"
	"github.com/manetu/tablevalidator/pkg/oracle"
	"github.com/manetu/tablevalidator/pkg/report"
	"github.com/manetu/tablevalidator/pkg/rules"
	"github.com/manetu/tablevalidator/pkg/table"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var logger = logging.GetLogger("tablevalidator.validator")

const agent = "validator"

// Validator walks tables and records rule violations.  It is safe for
// concurrent use; every Validate call is an independent run.
type Validator struct {
	vocab      *rules.Vocabulary
	dispatcher *dispatcher
	options    Options
}

// New creates a Validator answering queries about k with o.
func New(k *kb.KnowledgeBase, o oracle.Oracle, options ...OptionsFunc) *Validator {
	opts := Options{
		Parallelism:   1,
		ReportFactory: report.NewNullFactory(),
		Silent:        true,
	}
	for _, fn := range options {
		fn(&opts)
	}
	if opts.Vocabulary == nil {
		opts.Vocabulary = rules.NewVocabulary()
	}

	return &Validator{
		vocab: opts.Vocabulary,
		dispatcher: &dispatcher{
			vocab:    opts.Vocabulary,
			resolver: &resolver{kb: k},
			oracle:   o,
			metrics:  opts.Metrics,
			timeout:  opts.QueryTimeout,
		},
		options: opts,
	}
}

// Query answers a single "subject queryType expression" question, as a
// main clause would be answered for a cell holding subject.
func (v *Validator) Query(ctx context.Context, subject, queryType, expression string) (Outcome, error) {
	return v.dispatcher.execute(ctx, EvaluationContext{}, subject, expression, queryType)
}

type column struct {
	index int
	name  string
	rules rules.RuleMap
}

// run is the state of one Validate call.
type run struct {
	id      string
	stream  report.Stream
	counter int
	result  *Result
}

// Validate checks every table in order.  The tables are not modified.
//
// A structural error in any rule definition aborts the run and is returned;
// records of tables completed before it have already been sent to the report
// stream.
func (v *Validator) Validate(ctx context.Context, tables []*table.Table) (*Result, error) {
	stream, err := v.options.ReportFactory.NewStream()
	if err != nil {
		return nil, errors.Wrap(err, "could not open report")
	}
	defer stream.Close()

	r := &run{
		id:     uuid.NewString(),
		stream: stream,
		result: &Result{Errors: []*common.ValidationError{}, InvalidTables: []string{}},
	}
	r.result.RunID = r.id

	logger.Debugf(agent, "Validate", "run %s: validating %d table(s)", r.id, len(tables))

	for _, t := range tables {
		if err := v.validateTable(ctx, r, t); err != nil {
			return nil, err
		}
	}

	return r.result, nil
}

func (v *Validator) columns(header, ruleRow []string) ([]column, error) {
	cols := make([]column, 0, len(header))
	for i, name := range header {
		m, err := v.vocab.Parse(table.Cell(ruleRow, i))
		if err != nil {
			var se *common.StructuralError
			if errors.As(err, &se) {
				se.Column = i + 1
			}
			return nil, err
		}
		cols = append(cols, column{index: i + 1, name: name, rules: m})
	}
	return cols, nil
}

// cell is one unit of work: a data cell of a column with rules.
type cell struct {
	ectx    EvaluationContext
	row     []string
	column  column
	ruleRow int
	records []*common.ValidationError
	err     error
}

func (v *Validator) validateTable(ctx context.Context, r *run, t *table.Table) error {
	t = t.Clone()
	t.SkipRow(v.options.SkipRow)

	if len(t.Rows) < 2 {
		return errors.Errorf("table %s needs a header row and a rule row", t.Name)
	}

	cols, err := v.columns(t.Rows[0], t.Rows[1])
	if err != nil {
		return err
	}
	ruleRow := t.RowNumbers[1]

	var cells []*cell
	for i := 2; i < len(t.Rows); i++ {
		row := t.Rows[i]
		if !table.HasContent(row) {
			logger.Debugf(agent, "Validate", "Skipping empty row %d", t.RowNumbers[i])
			continue
		}
		for _, c := range cols {
			if len(c.rules) == 0 {
				continue
			}
			cells = append(cells, &cell{
				ectx:    EvaluationContext{Table: t.Name, Row: t.RowNumbers[i], Column: c.index},
				row:     row,
				column:  c,
				ruleRow: ruleRow,
			})
		}
	}

	if v.options.Parallelism > 1 {
		// cells are launched in order, so once one fails every cell left
		// unlaunched sorts after it; cells in flight finish on ctx so the
		// lowest-ordered error is the one a sequential walk would report
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(v.options.Parallelism)
		for _, c := range cells {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				c.records, c.err = v.validateCell(ctx, t, c)
				return c.err
			})
		}
		if err := g.Wait(); err != nil {
			logger.Debugf(agent, "Validate", "%s: stopped launching cells: %v", t.Name, err)
		}
	}

	valid := true
	for _, c := range cells {
		if v.options.Parallelism <= 1 {
			c.records, c.err = v.validateCell(ctx, t, c)
		}
		if c.err != nil {
			return c.err
		}
		for _, rec := range c.records {
			r.counter++
			rec.ID = r.counter
			rec.RunID = r.id
			if rec.Level == common.LevelError {
				valid = false
			}
			r.result.Errors = append(r.result.Errors, rec)
			v.options.Metrics.RecordError(rec.Table, rec.Level)
			if err := r.stream.Send(rec); err != nil {
				logger.Warnf(agent, "Report", "could not send record %d: %+v", rec.ID, err)
			}
		}
	}

	if !valid {
		r.result.InvalidTables = append(r.result.InvalidTables, t.Name)
	}
	v.options.Metrics.RecordTable(valid)

	logger.Debugf(agent, "Validate", "%s: %d cell(s) checked, valid: %t", t.Name, len(cells), valid)

	return nil
}

// entries splits a cell into its '|'-separated data entries.  An empty cell
// has one empty entry, so presence rules still see it.
func entries(content string) []string {
	parts := strings.Split(strings.TrimSpace(content), "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// validateCell evaluates every rule of the column against every entry of the
// cell.  It does not stop at the first failure.
func (v *Validator) validateCell(ctx context.Context, t *table.Table, c *cell) ([]*common.ValidationError, error) {
	var records []*common.ValidationError
	data := entries(table.Cell(c.row, c.column.index-1))

	for _, group := range c.column.rules {
		for _, rule := range group.Contents {
			interpolated, err := v.dispatcher.resolver.interpolate(rule, c.row, c.column.index)
			if err != nil {
				return nil, err
			}
			for _, ir := range interpolated {
				for _, entry := range data {
					f, err := v.evaluate(ctx, c.ectx, entry, ir, group.Type)
					if err != nil {
						return nil, err
					}
					if f == nil {
						continue
					}
					if !v.options.Silent {
						logger.Infof(agent, "Validate", "%s: %s", c.ectx, f.message)
					}
					records = append(records, &common.ValidationError{
						Table:    c.ectx.Table,
						Cell:     c.ectx.Cell(),
						Level:    f.level,
						RuleID:   t.BaseName() + "!" + table.CellToA1(c.ruleRow, c.column.index),
						RuleName: group.Type,
						Value:    entry,
						Message:  f.message,
					})
				}
			}
		}
	}
	return records, nil
}

type finding struct {
	level   string
	message string
}

func timedOut(entry, ruleType, rule string) *finding {
	return &finding{
		level:   common.LevelWarn,
		message: "Could not validate rule: \"" + strings.TrimSpace(entry+" "+ruleType+" "+rule) + "\": oracle query timed out.",
	}
}

// evaluate checks one data entry against one interpolated rule.  Guards are
// evaluated first and the main clause only when all of them hold.
func (v *Validator) evaluate(ctx context.Context, ectx EvaluationContext, entry, rule, ruleType string) (*finding, error) {
	logger.Debugf(agent, "Evaluate", "Validating rule \"%s %s\" against \"%s\".", ruleType, rule, entry)

	def, ok := v.vocab.Primary(ruleType)
	if !ok {
		return nil, common.NewStructuralError(common.UnrecognizedRuleType, ectx.Column,
			"unrecognized rule type \"%s\".", ruleType)
	}

	sep, err := v.vocab.Separate(rule, ruleType, ectx.Column)
	if err != nil {
		return nil, err
	}

	for _, when := range sep.When {
		subject := strings.TrimSpace(when.Subject)
		if subject == "" {
			continue
		}
		outcome, err := v.dispatcher.execute(ctx, ectx, subject, when.Axiom, when.RuleType)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case Satisfied:
			continue
		case TimedOut:
			v.options.Metrics.RecordRule(ruleType, metrics.OutcomeTimeout)
			return timedOut(subject, when.RuleType, when.Axiom), nil
		}
		logger.Debugf(agent, "Evaluate", "When clause: \"%s %s %s\" is not satisfied. Skipping main clause.", subject, when.RuleType, when.Axiom)
		v.options.Metrics.RecordRule(ruleType, metrics.OutcomeSkipped)
		return nil, nil
	}

	if def.Category == rules.Presence {
		f, err := v.presence(ectx, def, sep.Main, entry)
		v.recordOutcome(ruleType, f)
		return f, err
	}

	if entry == "" {
		v.options.Metrics.RecordRule(ruleType, metrics.OutcomeSkipped)
		return nil, nil
	}

	outcome, err := v.dispatcher.execute(ctx, ectx, entry, sep.Main, ruleType)
	if err != nil {
		return nil, err
	}

	var f *finding
	switch outcome {
	case Satisfied:
		logger.Debugf(agent, "Evaluate", "Validated: \"%s %s %s\".", entry, ruleType, sep.Main)
	case TimedOut:
		f = timedOut(entry, ruleType, sep.Main)
	default:
		f = &finding{
			level:   common.LevelError,
			message: "Validation failed for rule: \"" + entry + " " + ruleType + " " + sep.Main + "\".",
		}
	}
	v.recordOutcome(ruleType, f)
	return f, nil
}

func (v *Validator) recordOutcome(ruleType string, f *finding) {
	switch {
	case f == nil:
		v.options.Metrics.RecordRule(ruleType, metrics.OutcomePass)
	case f.level == common.LevelWarn:
		v.options.Metrics.RecordRule(ruleType, metrics.OutcomeTimeout)
	default:
		v.options.Metrics.RecordRule(ruleType, metrics.OutcomeFail)
	}
}

// presence checks is-required and is-excluded rules.  The rule body must be
// a truth value; a false body disables the rule.
func (v *Validator) presence(ectx EvaluationContext, def rules.Definition, body, entry string) (*finding, error) {
	enabled, ok := rules.ParseTruth(body)
	if !ok {
		return nil, common.NewStructuralError(common.InvalidPresenceRule, ectx.Column,
			"invalid rule: \"%s\" for rule type: %s. Must be one of: true, t, 1, yes, y, false, f, 0, no, n", body, def.Name)
	}
	if !enabled {
		logger.Debugf(agent, "Presence", "Nothing to validate for rule: \"%s %s\"", def.Name, body)
		return nil, nil
	}

	switch def.Relation {
	case rules.Required:
		if entry == "" {
			return &finding{
				level:   common.LevelError,
				message: "Cell is empty but rule: \"" + def.Name + " " + body + "\" does not allow this.",
			}, nil
		}
	case rules.Excluded:
		if entry != "" {
			return &finding{
				level:   common.LevelError,
				message: "Cell is non-empty (\"" + entry + "\") but rule: \"" + def.Name + " " + body + "\" does not allow this.",
			}, nil
		}
	}
	return nil, nil
}
