//
//  Copyright © Manetu Inc. All rights reserved.
//

package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/manetu/tablevalidator/pkg/common"
)

// Result is the outcome of one Validate call.
type Result struct {
	// RunID identifies the run; every record carries it.
	RunID string `json:"run_id"`
	// Errors holds every record in id order.
	Errors []*common.ValidationError `json:"errors"`
	// InvalidTables names the tables with at least one error level record,
	// in the order they were validated.
	InvalidTables []string `json:"invalid_tables"`
}

// Valid is true when no table is invalid.  Warnings do not count.
func (r *Result) Valid() bool {
	return len(r.InvalidTables) == 0
}

// HasErrors returns true if any record was produced, warnings included.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Count returns the number of records.
func (r *Result) Count() int {
	return len(r.Errors)
}

// ErrorsByTable groups records by table.
func (r *Result) ErrorsByTable() map[string][]*common.ValidationError {
	byTable := make(map[string][]*common.ValidationError)
	for _, e := range r.Errors {
		byTable[e.Table] = append(byTable[e.Table], e)
	}
	return byTable
}

// ErrorsByRule groups records by rule type.
func (r *Result) ErrorsByRule() map[string][]*common.ValidationError {
	byRule := make(map[string][]*common.ValidationError)
	for _, e := range r.Errors {
		byRule[e.RuleName] = append(byRule[e.RuleName], e)
	}
	return byRule
}

func writeCounts(sb *strings.Builder, title string, groups map[string][]*common.ValidationError) {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sb.WriteString(fmt.Sprintf("\n%s:\n", title))
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("  %s: %d errors\n", k, len(groups[k])))
	}
}

// Summary provides a concise summary of the records.
func (r *Result) Summary() string {
	if len(r.Errors) == 0 {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation Summary: %d errors found\n", len(r.Errors)))
	writeCounts(&sb, "By Table", r.ErrorsByTable())
	writeCounts(&sb, "By Rule", r.ErrorsByRule())

	return sb.String()
}
