package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/noah-isme/capstone-dashboard-api/internal/models"
	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
)

// ErrInvalidSprint is returned when --sprint is not a positive number.
var ErrInvalidSprint = errors.New("sprint must be a positive number")

// NewParseSprintCommand creates the parse-sprint subcommand.
func NewParseSprintCommand() *cobra.Command {
	var (
		sprint int
		format string
	)

	cmd := &cobra.Command{
		Use:   "parse-sprint <file>",
		Short: "Parse a sprint peer-review csv or xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			data, err := parseSprintFile(args[0], sprint)
			if err != nil {
				return err
			}

			printWarnings(cmd.ErrOrStderr(), data.Warnings)
			if format == formatJSON {
				return printJSON(cmd.OutOrStdout(), data.Records)
			}

			rows := make([]table.Row, 0, len(data.Records))
			for _, record := range data.Records {
				rows = append(rows, table.Row{
					record.Email,
					record.Submitted(),
					len(record.ReceivedPeerRevs),
					strconv.FormatFloat(record.AvgRating, 'f', 2, 64),
					strconv.FormatFloat(record.StddevRating, 'f', 2, 64),
				})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"Email", "Submitted", "Reviews", "Average", "Std Dev"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&sprint, "sprint", "s", 1, "sprint number")
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "output format: json or table")

	return cmd
}

func parseSprintFile(path string, sprint int) (peerreview.SprintData, error) {
	if sprint <= 0 {
		return peerreview.SprintData{}, ErrInvalidSprint
	}

	layout := peerreview.DefaultSprintLayout()
	t, err := readTable(path, layout.Expectations()...)
	if err != nil {
		return peerreview.SprintData{}, fmt.Errorf("read %s: %w", path, err)
	}
	return peerreview.ParseSprint(t, sprint, layout)
}

// teamsFromRoster maps student emails to projects for the export team column.
func teamsFromRoster(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	layout := peerreview.RosterLayoutFor(models.Course{})
	t, err := readTable(path, layout.Expectations()...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	data, err := peerreview.ParseRoster(t, "", layout)
	if err != nil {
		return nil, err
	}

	teams := make(map[string]string, len(data.Students))
	for _, student := range data.Students {
		teams[student.Email] = student.Project
	}
	return teams, nil
}
