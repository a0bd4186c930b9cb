package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify store integrity",
		Long: `Scan every record and index and report inconsistencies: dangling index
entries, owner mismatches, records missing from or duplicated in an index,
and IDs beyond the allocator counter.

Exit codes:
  0 - No problems found
  1 - Problems found
  2 - Command error`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.reg.CheckIntegrity(s.ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "integrity scan failed", err)
			}

			if err := s.out.Success(report, func(w io.Writer) {
				fmt.Fprintf(w, "%d records, %d owners, %d categories, next id %d\n",
					report.Records, report.Owners, report.Categories, report.NextID)
				for _, p := range report.Problems {
					fmt.Fprintf(w, "  ✗ %s\n", p)
				}
				if report.OK() {
					fmt.Fprintln(w, "✓ store is consistent")
				}
			}); err != nil {
				return err
			}
			if !report.OK() {
				return NewExitError(ExitFailure, fmt.Sprintf("%d integrity problem(s)", len(report.Problems)))
			}
			return nil
		},
	}
}
