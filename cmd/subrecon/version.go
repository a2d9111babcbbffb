package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X main.Version=..." at release time.
var (
	Version   = "1.0.0"
	BuildDate = "dev"
	GitCommit = "dev"
)

// GetVersionInfo returns formatted version information
func GetVersionInfo() string {
	if BuildDate != "dev" && GitCommit != "dev" {
		return Version + " (" + GitCommit + ", built " + BuildDate + ")"
	}
	return Version + " (dev build)"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "subrecon %s %s/%s\n", GetVersionInfo(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
