//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package common provides the error types shared across the table validator
// packages.
//
// # Error Handling
//
// Two disjoint error classes exist:
//
//   - [StructuralError] describes a broken rule definition (malformed rule
//     syntax, unknown rule or query type, bad when-clause, wildcard out of
//     range).  It is returned as a Go error and aborts the whole validation run.
//   - [ValidationError] describes a data cell that violates a rule.  It is a
//     record, never returned as an error; validation continues after it.
package common

import (
	"fmt"
	"strconv"
)

// Level values used in [ValidationError.Level].
const (
	LevelError = "error"
	LevelWarn  = "warn"
)

// ValidationError is one row of the validation report.
//
// Records are created by the walker and never mutated afterwards.
type ValidationError struct {
	// ID is the run-scoped ordinal of the record, starting at 1.
	ID int `json:"id"`
	// RunID identifies the validation run that produced the record.
	RunID string `json:"run_id,omitempty"`
	// Table is the table name, e.g. "terms.tsv".
	Table string `json:"table"`
	// Cell is the A1 address of the offending data cell.
	Cell string `json:"cell"`
	// Level is LevelError or LevelWarn.
	Level string `json:"level"`
	// RuleID is the A1 address of the rule definition, qualified by the table
	// base name ("terms!B2").
	RuleID string `json:"rule_id"`
	// RuleName is the rule type that failed, e.g. "subclass-of".
	RuleName string `json:"rule_name"`
	// Value is the offending data entry.
	Value string `json:"value"`
	// Fix is an optional suggested replacement value.
	Fix string `json:"fix"`
	// Message is the human readable description of the failure.
	Message string `json:"message"`
}

// ReportHeader is the column header of the tabular report artifact.
var ReportHeader = []string{"ID", "table", "cell", "level", "rule ID", "rule name", "value", "fix"}

// Row renders the record in [ReportHeader] order.
func (e *ValidationError) Row() []string {
	return []string{
		strconv.Itoa(e.ID),
		e.Table,
		e.Cell,
		e.Level,
		e.RuleID,
		e.RuleName,
		e.Value,
		e.Fix,
	}
}

// StructuralKind classifies a [StructuralError].
type StructuralKind string

// Structural error kinds.
const (
	MalformedRule         StructuralKind = "MALFORMED RULE"
	InvalidPresenceRule   StructuralKind = "INVALID PRESENCE RULE"
	ColumnOutOfRange      StructuralKind = "COLUMN OUT OF RANGE"
	NoMainClause          StructuralKind = "NO MAIN"
	MalformedWhenClause   StructuralKind = "MALFORMED WHEN CLAUSE"
	InvalidWhenType       StructuralKind = "INVALID WHEN TYPE"
	UnrecognizedQueryType StructuralKind = "UNRECOGNIZED QUERY TYPE"
	UnrecognizedRuleType  StructuralKind = "UNRECOGNIZED RULE TYPE"
)

const namespace = "validate#"

// StructuralError reports a broken rule definition.
type StructuralError struct {
	Kind StructuralKind
	// Column is the 1-based column holding the rule, or 0 when unknown.
	Column  int
	Message string
}

// Error implements the error interface
func (e *StructuralError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("%s%s ERROR in column %d: %s", namespace, e.Kind, e.Column, e.Message)
	}
	return fmt.Sprintf("%s%s ERROR %s", namespace, e.Kind, e.Message)
}

// NewStructuralError creates a [StructuralError] with a formatted message.
func NewStructuralError(kind StructuralKind, column int, format string, args ...interface{}) *StructuralError {
	return &StructuralError{Kind: kind, Column: column, Message: fmt.Sprintf(format, args...)}
}
