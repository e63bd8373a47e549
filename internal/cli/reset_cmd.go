package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// confirmReset asks before statistics are cleared.
var confirmReset = func() (bool, error) {
	confirmed := false
	err := huh.NewConfirm().
		Title("Clear all statistics?").
		Description("Lifetime and accumulated focus time go back to zero. The session log is kept.").
		Affirmative("Clear").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	return confirmed, err
}

func newResetStatsCmd(options *rootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-stats",
		Short: "Reset lifetime and accumulated focus time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !isInteractive() {
					return errors.New("refusing to reset statistics without --yes")
				}
				confirmed, err := confirmReset()
				if err != nil {
					return fmt.Errorf("confirm reset: %w", err)
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Statistics kept.")
					return nil
				}
			}

			opened, err := openApp(cmd, options, false)
			if err != nil {
				return err
			}
			defer opened.Close()

			if err := opened.ResetStatistics(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Statistics reset.")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
