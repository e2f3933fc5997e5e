package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/capstone-dashboard-api/internal/peerreview"
)

// NewConvertCommand creates the convert subcommand.
func NewConvertCommand() *cobra.Command {
	var (
		sprint int
		view   string
		roster string
	)

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Parse a sprint file and write it back in the dashboard export layout",
		Long: `convert parses a sprint peer-review file and writes the export layout.
The output format follows the output extension: .xlsx writes a workbook, anything else csv.
Team names come from --roster; without it every team reads as not found.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedView, ok := peerreview.ParseView(view)
			if !ok {
				return fmt.Errorf("unknown view %q: must be given or received", view)
			}

			data, err := parseSprintFile(args[0], sprint)
			if err != nil {
				return err
			}
			teams, err := teamsFromRoster(roster)
			if err != nil {
				return err
			}

			out := peerreview.SprintToTable(data.Records, teams, peerreview.ExportOptions{View: parsedView})
			if err := writeTable(args[1], fmt.Sprintf("Sprint %d", sprint), out); err != nil {
				return fmt.Errorf("write %s: %w", args[1], err)
			}

			printWarnings(cmd.ErrOrStderr(), data.Warnings)
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(data.Records), args[1])
			return nil
		},
	}

	cmd.Flags().IntVarP(&sprint, "sprint", "s", 1, "sprint number")
	cmd.Flags().StringVar(&view, "view", string(peerreview.ViewGiven), "slot view: given or received")
	cmd.Flags().StringVar(&roster, "roster", "", "roster file supplying team names")

	return cmd
}
