package main

import (
	"fmt"
	"os"

	"ezlockin/internal/cli"
	"ezlockin/internal/tui"
	"ezlockin/internal/ui/desktop"
)

func main() {
	root := cli.NewRootCmd(cli.Launcher{
		Desktop:  desktop.Run,
		Terminal: tui.Run,
	})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ezlockin: %v\n", err)
		os.Exit(1)
	}
}
