// internal/cli/managers.go
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/bulkinstall"
)

var managersCmd = &cobra.Command{
	Use:     "managers",
	Aliases: []string{"list"},
	Short:   "List package managers and their availability",
	Long:    `List the package managers bulkinstall knows, in the order it tries them on this system.`,
	RunE:    runManagers,
}

func runManagers(cmd *cobra.Command, args []string) error {
	inst, err := bulkinstall.New(config)
	if err != nil {
		return err
	}
	defer inst.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Platform: %s\n\n", inst.Platform())
	fmt.Fprintf(out, "Managers:\n")
	for _, m := range inst.Managers(context.Background()) {
		marker := " "
		if m.Available {
			marker = "*"
		}
		rank := "-"
		if m.Rank > 0 {
			rank = fmt.Sprintf("%d", m.Rank)
		}
		fmt.Fprintf(out, "  %s %-3s %s\n", marker, rank, m.Name)
	}
	fmt.Fprintf(out, "\n* = available, number = default fallback position\n")
	return nil
}
