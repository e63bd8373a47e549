package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ezlockin/internal/ui/display"
)

func newStatsCmd(options *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show focus totals and recent history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opened, err := openApp(cmd, options, false)
			if err != nil {
				return err
			}
			defer opened.Close()

			out := cmd.OutOrStdout()
			status := opened.Snapshot()

			fmt.Fprintln(out, display.TotalFocus(status.Lifetime))
			fmt.Fprintf(out, "Since last long break: %s\n", formatDuration(status.Accumulated))
			fmt.Fprintln(out, display.LongBreakEstimate(status))

			if opened.History == nil {
				return nil
			}
			for _, window := range []struct {
				label string
				days  int
			}{{"Last 7 days", 7}, {"All time", 0}} {
				summary, err := opened.History.Summary(cmd.Context(), window.days)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d sessions, %s focused on %d days\n",
					window.label, summary.Sessions, formatDuration(summary.Focus), summary.ActiveDays)
			}
			return nil
		},
	}
}

func formatDuration(value time.Duration) string {
	seconds := int64(value / time.Second)
	if seconds >= 3600 {
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds/60)%60)
	}
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}
