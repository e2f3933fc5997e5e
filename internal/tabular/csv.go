package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoHeader indicates the input did not contain a header row.
var ErrNoHeader = errors.New("table has no header row")

const byteOrderMark = "\ufeff"

// ReadCSV parses a comma-delimited table whose first record is the header.
// Empty cells stay empty strings, ragged rows are padded, fully blank rows are
// dropped and header expectations are applied through Normalize.
func ReadCSV(r io.Reader, expect ...Expect) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrNoHeader
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}

	t := Table{Header: cleanHeader(header)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read csv: %w", err)
		}
		line, _ := reader.FieldPos(0)
		t.appendRow(line, record)
	}

	t.dropBlankRows()
	if err := t.Normalize(expect...); err != nil {
		return Table{}, err
	}
	return t, nil
}

// WriteCSV serialises the table, header first.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row.cells); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cleanHeader(header []string) []string {
	cleaned := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}
		cleaned[i] = strings.TrimSpace(name)
	}
	return cleaned
}

func (t *Table) dropBlankRows() {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if !row.Blank() {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
}
