//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package metrics exports Prometheus metrics for validation runs.
//
// Metrics (with the configured namespace, "mtv" by default):
//   - mtv_rule_evaluations_total: rule evaluations by rule type and outcome
//   - mtv_oracle_query_duration_seconds: oracle query latency by operation
//   - mtv_validation_errors_total: recorded validation errors by table and level
//   - mtv_tables_validated_total: tables walked, by validity
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rule evaluation outcomes.
const (
	OutcomePass    = "pass"
	OutcomeFail    = "fail"
	OutcomeSkipped = "skipped"
	OutcomeTimeout = "timeout"
)

// Metrics holds the validator collectors and the registry they are
// registered on.  A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ruleEvaluations *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	tablesTotal     *prometheus.CounterVec
}

// New creates and registers the collectors.  A nil registry gets a fresh one.
func New(namespace string, registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "mtv"
	}

	m := &Metrics{
		registry: registry,

		ruleEvaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rule_evaluations_total",
				Help:      "Total number of rule evaluations",
			},
			[]string{"rule_type", "outcome"},
		),

		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "oracle_query_duration_seconds",
				Help:      "Duration of oracle queries in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
			[]string{"operation"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of recorded validation errors",
			},
			[]string{"table", "level"},
		),

		tablesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tables_validated_total",
				Help:      "Total number of validated tables",
			},
			[]string{"valid"},
		),
	}

	registry.MustRegister(m.ruleEvaluations, m.queryDuration, m.errorsTotal, m.tablesTotal)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRule counts one rule evaluation.
func (m *Metrics) RecordRule(ruleType, outcome string) {
	if m == nil {
		return
	}
	m.ruleEvaluations.WithLabelValues(ruleType, outcome).Inc()
}

// ObserveQuery records the latency of one oracle operation.
func (m *Metrics) ObserveQuery(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordError counts one recorded validation error.
func (m *Metrics) RecordError(table, level string) {
	if m == nil {
		return
	}
	m.errorsTotal.WithLabelValues(table, level).Inc()
}

// RecordTable counts one walked table.
func (m *Metrics) RecordTable(valid bool) {
	if m == nil {
		return
	}
	m.tablesTotal.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

// Handler exposes the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
