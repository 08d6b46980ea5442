package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/banshee-data/stopwindow/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("stopwindow\n")
			cmd.Printf("  Version: %s\n", version.Version)
			cmd.Printf("  Commit:  %s\n", version.GitSHA)
			cmd.Printf("  Built:   %s\n", version.BuildTime)
			cmd.Printf("  Runtime: %s\n", runtime.Version())
		},
	}
}
