//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package table holds the in-memory form of a rule-annotated table.
//
// Row 1 of a table is the human header, row 2 holds the rule strings for each
// column and every later row is data.  Row numbers are kept in file
// coordinates so that reports still point at the right line after a row has
// been skipped.
package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"
)

// Table is a named grid of cells.
type Table struct {
	// Name identifies the table in reports, e.g. "terms.tsv".
	Name string
	Rows [][]string
	// RowNumbers holds the 1-based file row number of each entry of Rows.
	RowNumbers []int
}

// New creates a table whose rows are numbered from 1.
func New(name string, rows [][]string) *Table {
	numbers := make([]int, len(rows))
	for i := range rows {
		numbers[i] = i + 1
	}
	return &Table{Name: name, Rows: rows, RowNumbers: numbers}
}

// Load reads a table from a CSV or TSV file, choosing the separator from the
// file extension (".tsv" and ".tab" are tab separated).
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open table %s", path)
	}
	defer f.Close()

	comma := ','
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".tab":
		comma = '\t'
	}

	return Read(filepath.Base(path), f, comma)
}

// Read parses delimited text into a table called name.
func Read(name string, r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse table %s", name)
	}

	return New(name, rows), nil
}

// BaseName is the table name without its extension, as used in rule ids.
func (t *Table) BaseName() string {
	return strings.TrimSuffix(t.Name, filepath.Ext(t.Name))
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	return deepcopy.Copy(t).(*Table)
}

// SkipRow removes the row with the given 1-based file row number.  Numbers
// that match no row are ignored; 0 means "skip nothing".
func (t *Table) SkipRow(number int) {
	if number <= 0 {
		return
	}
	for i, n := range t.RowNumbers {
		if n == number {
			t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
			t.RowNumbers = append(t.RowNumbers[:i], t.RowNumbers[i+1:]...)
			return
		}
	}
}

// Cell returns the content of a cell, or "" when the row is shorter than col.
func Cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

// HasContent reports whether any cell of the row is non-blank.
func HasContent(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// CellToA1 renders a 1-based row and column in spreadsheet notation, e.g.
// (3, 28) is "AB3".
func CellToA1(row, col int) string {
	var label []byte
	for col > 0 {
		rem := col % 26
		if rem == 0 {
			label = append(label, 'Z')
			col = col/26 - 1
		} else {
			label = append(label, byte('A'+rem-1))
			col /= 26
		}
	}
	for i, j := 0, len(label)-1; i < j; i, j = i+1, j-1 {
		label[i], label[j] = label[j], label[i]
	}
	return string(label) + strconv.Itoa(row)
}
