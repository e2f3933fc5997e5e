package tabular

import (
	"fmt"
	"strings"
)

// Table is an in-memory delimited table with a single header row.
type Table struct {
	Header   []string
	Rows     []Row
	Warnings []string
}

// Row holds the cells of a single data row, padded to the header width.
type Row struct {
	// Number is the 1-based line of the row in the source file, header included.
	Number int
	cells  []string
	index  map[string]int
}

// Expect pins a header name to a column position.
type Expect struct {
	Index int
	Name  string
}

// ColumnError reports a required column that is entirely absent.
type ColumnError struct {
	Index int
	Name  string
	Width int
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("required column %q (column %d) is missing: table has %d columns", e.Name, e.Index+1, e.Width)
}

// New builds a table from a header and raw records. Records shorter than the
// header are padded with empty strings and longer records are truncated.
func New(header []string, records [][]string) Table {
	t := Table{Header: append([]string(nil), header...)}
	t.Rows = make([]Row, 0, len(records))
	for i, record := range records {
		t.appendRow(i+2, record)
	}
	return t
}

// Append adds a row to the table.
func (t *Table) Append(cells ...string) {
	t.appendRow(len(t.Rows)+2, cells)
}

func (t *Table) appendRow(number int, record []string) {
	cells := make([]string, len(t.Header))
	copy(cells, record)
	t.Rows = append(t.Rows, Row{Number: number, cells: cells, index: t.headerIndex()})
}

func (t *Table) headerIndex() map[string]int {
	if len(t.Rows) > 0 && t.Rows[0].index != nil {
		return t.Rows[0].index
	}
	index := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}

// Width returns the number of columns.
func (t Table) Width() int {
	return len(t.Header)
}

// Column returns the position of the first column with the given header.
func (t Table) Column(name string) (int, bool) {
	for i, header := range t.Header {
		if header == name {
			return i, true
		}
	}
	return -1, false
}

// Records returns the table body as raw string records.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, row.Cells())
	}
	return out
}

// Normalize applies header expectations. A header that does not match at its
// expected position is renamed and a warning is recorded. A table too narrow
// to hold an expected column fails with *ColumnError.
func (t *Table) Normalize(expect ...Expect) error {
	for _, e := range expect {
		if e.Index >= len(t.Header) {
			return &ColumnError{Index: e.Index, Name: e.Name, Width: len(t.Header)}
		}
		if t.Header[e.Index] == e.Name {
			continue
		}
		t.Warnings = append(t.Warnings, fmt.Sprintf("column %d header %q renamed to %q", e.Index+1, t.Header[e.Index], e.Name))
		t.Header[e.Index] = e.Name
	}

	index := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	for i := range t.Rows {
		t.Rows[i].index = index
	}
	return nil
}

// Cell returns the cell at position i, or "" when out of range.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Value returns the cell under the named header and whether the header exists.
func (r Row) Value(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.cells[i], true
}

// Cells returns a copy of the row's cells.
func (r Row) Cells() []string {
	return append([]string(nil), r.cells...)
}

// Blank reports whether every cell is empty after trimming whitespace.
func (r Row) Blank() bool {
	for _, cell := range r.cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// BlankExcept reports whether every cell other than the given positions is empty.
func (r Row) BlankExcept(skip ...int) bool {
	for i, cell := range r.cells {
		if containsInt(skip, i) {
			continue
		}
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
