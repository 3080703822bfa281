//
//  Copyright © Manetu Inc. All rights reserved.
//

package validator

import (
	"fmt"

	"github.com/manetu/tablevalidator/pkg/table"
)

// EvaluationContext locates the cell under evaluation.  It is passed by value
// down the call chain and only used for addressing and messages.
type EvaluationContext struct {
	// Table is the table name, e.g. "terms.tsv".
	Table string
	// Row is the 1-based row number in the table file.
	Row int
	// Column is the 1-based column number.
	Column int
}

// Cell returns the A1 address of the cell.
func (c EvaluationContext) Cell() string {
	return table.CellToA1(c.Row, c.Column)
}

func (c EvaluationContext) String() string {
	return fmt.Sprintf("At %s row %d, column %d", c.Table, c.Row, c.Column)
}
