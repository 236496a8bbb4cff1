// internal/cli/history.go
package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arc-language/bulkinstall/pkg/resultlog"
)

var (
	historyName  string
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past manager attempts from the result log",
	Long: `Print entries from the result log, including rotated .xz archives.

Examples:
  bulkinstall history
  bulkinstall history --name git
  bulkinstall history -n 20`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyName, "name", "", "only show entries for this package")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show only the most recent entries")
}

func runHistory(cmd *cobra.Command, args []string) error {
	entries, err := resultlog.ReadAll(config.ResultLog.Path)
	if err != nil {
		return fmt.Errorf("reading result log: %w", err)
	}

	var shown []resultlog.Entry
	for _, e := range entries {
		if historyName == "" || e.Name == historyName {
			shown = append(shown, e)
		}
	}
	if historyLimit > 0 && len(shown) > historyLimit {
		shown = shown[len(shown)-historyLimit:]
	}

	out := cmd.OutOrStdout()
	if len(shown) == 0 {
		fmt.Fprintln(out, "No entries.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPACKAGE\tMANAGER\tMODE\tOUTCOME\tDETAIL")
	for _, e := range shown {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Time.Format(resultlog.TimeFormat), e.Name, e.Manager, e.Mode, e.Outcome, e.Detail)
	}
	return w.Flush()
}
