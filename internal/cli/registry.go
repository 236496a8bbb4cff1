// internal/cli/registry.go
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/spf13/cobra"

	"github.com/arc-language/bulkinstall/pkg/index"
	"github.com/arc-language/bulkinstall/pkg/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the package alias registry",
}

var registrySyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download the latest alias registry",
	Args:  cobra.NoArgs,
	RunE:  runRegistrySync,
}

var registryShowCmd = &cobra.Command{
	Use:   "show [package]",
	Short: "Show the per-manager names of a package",
	Long:  `Display the name each package manager uses for a package, from the synced alias registry.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runRegistryShow,
}

func init() {
	registryCmd.AddCommand(registrySyncCmd)
	registryCmd.AddCommand(registryShowCmd)
}

func runRegistrySync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := index.Options{URL: config.Registry.URL, Branch: config.Registry.Branch}
	if verbosity > 0 {
		opts.Progress = cmd.ErrOrStderr()
	}
	if err := index.Sync(ctx, config.Registry.Path, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registry synced to %s\n", config.Registry.Path)
	return nil
}

func runRegistryShow(cmd *cobra.Command, args []string) error {
	entry, err := registry.NewAliases(config.Registry.Path).Load(args[0])
	if err != nil {
		return err
	}

	managers := make([]string, 0, len(entry.Managers))
	for m := range entry.Managers {
		managers = append(managers, m)
	}
	sort.Strings(managers)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Package: %s\n", entry.Name)
	for _, m := range managers {
		fmt.Fprintf(out, "  %-8s %s\n", m, entry.Managers[m])
	}
	return nil
}
