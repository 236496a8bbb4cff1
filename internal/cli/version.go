// internal/cli/version.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, overridden at build time with -ldflags
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "bulkinstall version %s\n", Version)
		fmt.Fprintln(cmd.OutOrStdout(), "Multi-manager installation orchestrator")
		fmt.Fprintln(cmd.OutOrStdout(), "https://github.com/arc-language/bulkinstall")
	},
}
