package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/accolade/internal/ir"
)

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	var achievement string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print the event log",
		Long: `Print every persisted event in sequence order, optionally only those of
one achievement.

Examples:
  accolade events
  accolade events --achievement 1 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uint64
			if cmd.Flags().Changed("achievement") {
				var err error
				if id, err = parseID(achievement); err != nil {
					return err
				}
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var events []ir.Event
			if id != 0 {
				events, err = s.store.ReadAchievementEvents(s.ctx, id)
			} else {
				events, err = s.store.ReadEvents(s.ctx)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read events", err)
			}

			return s.out.Success(map[string]any{"events": events}, func(w io.Writer) {
				if len(events) == 0 {
					fmt.Fprintln(w, "No events.")
					return
				}
				for _, ev := range events {
					fmt.Fprintln(w, eventLine(ev))
				}
			})
		},
	}

	cmd.Flags().StringVar(&achievement, "achievement", "", "only events of this achievement id")

	return cmd
}

func eventLine(ev ir.Event) string {
	subject := ""
	switch {
	case ev.AchievementID != 0:
		subject = fmt.Sprintf("achievement=%d", ev.AchievementID)
	case ev.Identity != "":
		subject = fmt.Sprintf("identity=%s", ev.Identity)
	}
	return fmt.Sprintf("%4d %s/%-20s %-24s call=%s", ev.Seq, ir.EventTopic, ev.Name, subject, ev.CallID)
}
