package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/noah-isme/capstone-dashboard-api/internal/tabular"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// ErrUnknownFormat is returned when --format names an unsupported output.
var ErrUnknownFormat = errors.New("format must be json or table")

// NewRootCommand builds the dashctl command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dashctl",
		Short: "Inspect and convert roster and sprint peer-review spreadsheets",
		Long: `dashctl runs the dashboard ingestion pipeline against local files.

Commands:
  parse-roster   Parse a roster file and print the students
  parse-sprint   Parse a sprint peer-review file and print the records
  convert        Re-export a sprint file in the dashboard layout`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewParseRosterCommand())
	rootCmd.AddCommand(NewParseSprintCommand())
	rootCmd.AddCommand(NewConvertCommand())

	return rootCmd
}

func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// readTable loads a csv or xlsx file, choosing the reader by extension.
func readTable(path string, expect ...tabular.Expect) (tabular.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return tabular.Table{}, err
	}
	defer f.Close()

	if isWorkbook(path) {
		return tabular.ReadWorkbook(f, "", expect...)
	}
	return tabular.ReadCSV(f, expect...)
}

func writeTable(path, sheet string, t tabular.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if isWorkbook(path) {
		err = tabular.WriteWorkbook(f, tabular.Sheet{Name: sheet, Table: t})
	} else {
		err = tabular.WriteCSV(f, t)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}

func printJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func renderTable(w io.Writer, header table.Row, rows []table.Row) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(header)
	tbl.AppendRows(rows)
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d", len(rows))})
	tbl.Render()
}

func checkFormat(format string) error {
	if format != formatJSON && format != formatTable {
		return ErrUnknownFormat
	}
	return nil
}
