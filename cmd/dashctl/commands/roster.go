package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
)

// NewParseRosterCommand creates the parse-roster subcommand.
func NewParseRosterCommand() *cobra.Command {
	var (
		course string
		format string
	)

	cmd := &cobra.Command{
		Use:   "parse-roster <file>",
		Short: "Parse a roster csv or xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			layout := peerreview.RosterLayoutFor(models.Course{})
			t, err := readTable(args[0], layout.Expectations()...)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			data, err := peerreview.ParseRoster(t, course, layout)
			if err != nil {
				return err
			}

			printWarnings(cmd.ErrOrStderr(), data.Warnings)
			if format == formatJSON {
				return printJSON(cmd.OutOrStdout(), data.Students)
			}

			rows := make([]table.Row, 0, len(data.Students))
			for _, student := range data.Students {
				rows = append(rows, table.Row{student.Email, student.FullName, student.Project, student.TA})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Email", "Name", "Project", "TA"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "course name stamped on parsed students")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: json or table")

	return cmd
}
