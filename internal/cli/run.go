// internal/cli/run.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arc-language/bulkinstall"
	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/manifest"
	"github.com/arc-language/bulkinstall/pkg/report"
)

// ErrRunFailed is returned when a run completes with failures or stops early
var ErrRunFailed = errors.New("one or more packages did not complete")

type runFlags struct {
	file       string
	tags       []string
	manager    string
	version    string
	customArgs string
	workers    int
	timeout    time.Duration
	sudo       string
	json       bool
}

var runHelp = map[core.Mode]string{
	core.ModeInstall:   "Install packages that are not yet present",
	core.ModeUninstall: "Remove packages that are present",
	core.ModeUpdate:    "Upgrade packages to the latest available version",
	core.ModeDryRun:    "Show the commands an install would run without running them",
}

func newRunCmd(mode core.Mode) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s [package...]", mode),
		Short: runHelp[mode],
		Long: fmt.Sprintf(`%s.

Packages come from a manifest file (-f) or from the command line.

Examples:
  bulkinstall %[2]s -f apps.yaml
  bulkinstall %[2]s -f apps.json --tags development,cli
  bulkinstall %[2]s git curl --manager apt`, runHelp[mode], mode),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMode(cmd, mode, &f, args)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "manifest file (YAML or JSON)")
	cmd.Flags().StringSliceVarP(&f.tags, "tags", "t", nil, "only process packages carrying one of these tags")
	cmd.Flags().StringVarP(&f.manager, "manager", "m", "", "pin command line packages to this manager")
	cmd.Flags().StringVar(&f.version, "version", "", "version pin for command line packages")
	cmd.Flags().StringVar(&f.customArgs, "args", "", "extra manager arguments for command line packages")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "packages processed at once (default from config)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "time limit for each manager command (default from config)")
	cmd.Flags().StringVar(&f.sudo, "sudo", "", "sudo policy for system managers: auto, always or never")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the summary as JSON")
	return cmd
}

func runMode(cmd *cobra.Command, mode core.Mode, f *runFlags, args []string) error {
	decls, err := declarations(f, args)
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return fmt.Errorf("no packages given: pass names or a manifest with -f")
	}

	cfg := *config
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.timeout > 0 {
		cfg.Timeout = f.timeout
	}
	if f.sudo != "" {
		cfg.Sudo = f.sudo
	}

	inst, err := bulkinstall.New(&cfg)
	if err != nil {
		return err
	}
	defer inst.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := inst.Run(ctx, decls, mode, f.tags)
	if summary == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if f.json {
		err = report.JSON(out, summary)
	} else {
		var available []string
		for _, m := range inst.Managers(ctx) {
			if m.Available {
				available = append(available, m.Name)
			}
		}
		err = report.Text(out, summary, report.Options{
			Color:    report.ColorEnabled(os.Stdout),
			Platform: inst.Platform().String(),
			Managers: available,
			LogPath:  inst.LogPath(),
		})
	}
	if err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if !summary.Successful() {
		return ErrRunFailed
	}
	return nil
}

func declarations(f *runFlags, args []string) ([]core.Declaration, error) {
	var decls []core.Declaration
	if f.file != "" {
		loaded, err := manifest.Load(f.file)
		if err != nil {
			return nil, err
		}
		decls = append(decls, loaded...)
	}

	if len(args) == 0 {
		return decls, nil
	}

	known := manifest.KnownManagers()
	if f.manager != "" && !known.Contains(f.manager) {
		return nil, fmt.Errorf("%w: unknown manager %q (known: %s)", core.ErrConfigurationRejected, f.manager, strings.Join(known.SortedValues(), ", "))
	}
	for _, name := range args {
		d := core.NewDeclaration(name)
		d.Manager = f.manager
		d.Version = f.version
		d.CustomArgs = f.customArgs
		decls = append(decls, d)
	}
	return decls, nil
}
