package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ezlockin/internal/storage"
)

func newHistoryCmd(options *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed focus sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive, got %d", days)
			}
			opened, err := openApp(cmd, options, false)
			if err != nil {
				return err
			}
			defer opened.Close()
			if opened.History == nil {
				return errors.New("session history is unavailable, see " + storage.SessionLogFileName)
			}

			entries, err := opened.History.Recent(cmd.Context(), days)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No focus sessions in the last %d days.\n", days)
				return nil
			}

			writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(writer, "START\tEND\tFOCUS")
			for _, entry := range entries {
				fmt.Fprintf(writer, "%s\t%s\t%s\n",
					entry.Start.Local().Format(storage.TimestampLayout),
					entry.End.Local().Format(storage.TimestampLayout),
					formatDuration(entry.Duration))
			}
			return writer.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days to include")
	return cmd
}
