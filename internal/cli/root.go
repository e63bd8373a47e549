// Package cli defines the ezlockin command tree.
package cli

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ezlockin/internal/app"
)

// Launcher starts the interactive front-ends. They are injected so the
// command tree does not depend on a display.
type Launcher struct {
	Desktop  func(*app.App) error
	Terminal func(*app.App) error
}

type rootOptions struct {
	debug bool
}

// isInteractive reports whether prompts can be shown on stdin.
var isInteractive = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// NewRootCmd creates the top-level "ezlockin" command. Without a
// subcommand it starts the desktop timer.
func NewRootCmd(launcher Launcher) *cobra.Command {
	options := &rootOptions{}

	root := &cobra.Command{
		Use:           "ezlockin",
		Short:         "Randomized focus timer with short and long breaks",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd, options, launcher.Desktop, true)
		},
	}
	root.PersistentFlags().BoolVar(&options.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newTUICmd(options, launcher),
		newStatsCmd(options),
		newHistoryCmd(options),
		newResetStatsCmd(options),
		newConfigCmd(options),
	)

	return root
}

func newTUICmd(options *rootOptions, launcher Launcher) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the timer in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd, options, launcher.Terminal, false)
		},
	}
}

func launch(cmd *cobra.Command, options *rootOptions, start func(*app.App) error, console bool) error {
	if start == nil {
		return cmd.Help()
	}
	opened, err := openApp(cmd, options, console)
	if err != nil {
		return err
	}
	defer opened.Close()
	return start(opened)
}

// openApp opens the data directory. Logs go to the terminal only for
// front-ends that do not draw on it.
func openApp(cmd *cobra.Command, options *rootOptions, console bool) (*app.App, error) {
	appOptions := app.Options{Debug: options.debug}
	if console {
		appOptions.Console = cmd.ErrOrStderr()
	}
	return app.Open(appOptions)
}
