//
//  Copyright © Manetu Inc. All rights reserved.
//

package validator

import (
	"time"

	"github.com/manetu/tablevalidator/pkg/metrics"
	"github.com/manetu/tablevalidator/pkg/report"
	"github.com/manetu/tablevalidator/pkg/rules"
)

// Options configures a Validator.
type Options struct {
	Parallelism   int
	QueryTimeout  time.Duration
	ReportFactory report.Factory
	Metrics       *metrics.Metrics
	Silent        bool
	SkipRow       int
	Vocabulary    *rules.Vocabulary
}

// OptionsFunc is a function that modifies Options.
type OptionsFunc func(*Options)

// WithParallelism sets the number of cells evaluated concurrently.  Values
// below 2 select sequential evaluation.  The report is identical either way.
func WithParallelism(n int) OptionsFunc {
	return func(o *Options) {
		o.Parallelism = n
	}
}

// WithQueryTimeout bounds every oracle query.  A query that runs out of time
// is reported as a warning and does not make the table invalid.  Zero
// disables the timeout.
func WithQueryTimeout(d time.Duration) OptionsFunc {
	return func(o *Options) {
		o.QueryTimeout = d
	}
}

// WithReport configures where the records of each run are sent.  A stream is
// created at the start of every Validate call and closed at its end.
func WithReport(factory report.Factory) OptionsFunc {
	return func(o *Options) {
		o.ReportFactory = factory
	}
}

// WithMetrics records rule, query and error metrics.
func WithMetrics(m *metrics.Metrics) OptionsFunc {
	return func(o *Options) {
		o.Metrics = m
	}
}

// WithSilent suppresses the info line logged for every failed rule.
func WithSilent(silent bool) OptionsFunc {
	return func(o *Options) {
		o.Silent = silent
	}
}

// WithSkipRow drops the row with this 1-based file row number from every
// table before validation.  Reported addresses stay in file coordinates.
func WithSkipRow(row int) OptionsFunc {
	return func(o *Options) {
		o.SkipRow = row
	}
}

// WithVocabulary replaces the default rule vocabulary.
func WithVocabulary(v *rules.Vocabulary) OptionsFunc {
	return func(o *Options) {
		o.Vocabulary = v
	}
}
