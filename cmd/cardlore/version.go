package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cardlore/cardlore/cmd/cardlore/internal"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format := globalFlags.Format()
		if format == internal.FormatText {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cardlore %s (commit %s, %s)\n", version, commit, runtime.Version())
			return err
		}
		return internal.NewFormatter(format, cmd.OutOrStdout()).PrintData(map[string]string{
			"version": version,
			"commit":  commit,
			"go":      runtime.Version(),
		})
	},
}
