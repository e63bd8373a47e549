package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ezlockin/internal/storage"
)

func newConfigCmd(options *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration document",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				opened, err := openApp(cmd, options, false)
				if err != nil {
					return err
				}
				defer opened.Close()
				fmt.Fprintln(cmd.OutOrStdout(), storage.ConfigPath(opened.DataDir))
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the configuration document",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				opened, err := openApp(cmd, options, false)
				if err != nil {
					return err
				}
				defer opened.Close()
				content, err := os.ReadFile(storage.ConfigPath(opened.DataDir))
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(content)
				return err
			},
		},
	)
	return cmd
}
