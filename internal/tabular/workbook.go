package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet names a table inside a workbook.
type Sheet struct {
	Name  string
	Table Table
}

// ReadWorkbook loads one sheet of an xlsx workbook as a table. An empty sheet
// name selects the first sheet.
func ReadWorkbook(r io.Reader, sheet string, expect ...Expect) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, ErrNoHeader
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 || len(records[0]) == 0 {
		return Table{}, ErrNoHeader
	}

	t := Table{Header: cleanHeader(records[0])}
	for i, record := range records[1:] {
		t.appendRow(i+2, record)
	}

	t.dropBlankRows()
	if err := t.Normalize(expect...); err != nil {
		return Table{}, err
	}
	return t, nil
}

// WriteWorkbook writes each table to its own sheet, in order, as text cells.
func WriteWorkbook(w io.Writer, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return fmt.Errorf("name sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}

		if err := writeSheetRow(f, sheet.Name, 1, sheet.Table.Header); err != nil {
			return err
		}
		for r, row := range sheet.Table.Rows {
			if err := writeSheetRow(f, sheet.Name, r+2, row.cells); err != nil {
				return err
			}
		}
	}

	if len(sheets) > 0 {
		f.SetActiveSheet(0)
	}
	_, err := f.WriteTo(w)
	return err
}

func writeSheetRow(f *excelize.File, sheet string, rowNumber int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	values := make([]interface{}, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
	}
	return nil
}
