// internal/cli/root.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/logging"
)

var (
	cfgFile   string
	logFile   string
	verbosity int
	config    *core.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bulkinstall",
	Short: "Install, update and remove software across package managers",
	Long: `bulkinstall - multi-manager installation orchestrator

Declare the software you want once and bulkinstall applies it through
winget, choco, scoop, apt, dnf, pacman, brew, pip, npm and more, falling
back to the next available manager when one fails.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/bulkinstall/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "diagnostic log file (default is $XDG_STATE_HOME/bulkinstall/bulkinstall.log)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v info, -vv debug, -vvv trace)")

	for _, mode := range core.Modes {
		rootCmd.AddCommand(newRunCmd(mode))
	}
	rootCmd.AddCommand(managersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig(cmd *cobra.Command, _ []string) error {
	var err error
	config, err = core.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := verbosity
	if level == 0 {
		level = config.LogLevel
	}
	path := logFile
	if path == "" {
		path = logging.DefaultLogFile()
	}
	logging.SetupLogger(level, path)
	return nil
}
