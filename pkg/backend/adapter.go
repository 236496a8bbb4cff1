// pkg/backend/adapter.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/juju/collections/set"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/logging"
	"github.com/arc-language/bulkinstall/pkg/runner"
)

// Adapter drives one package manager through its command line
type Adapter struct {
	spec   Spec
	runner runner.Runner
	opts   Options
	logger zerolog.Logger
}

var _ core.Adapter = (*Adapter)(nil)

// NewAdapter creates an adapter for spec that runs commands through r
func NewAdapter(spec Spec, r runner.Runner, opts Options) *Adapter {
	if opts.Timeout <= 0 {
		opts.Timeout = core.DefaultTimeout
	}
	return &Adapter{
		spec:   spec,
		runner: r,
		opts:   opts,
		logger: logging.GetLogger("backend").With().Str("manager", spec.Name).Logger(),
	}
}

// Name returns the manager name
func (a *Adapter) Name() string {
	return a.spec.Name
}

// Spec returns the command description this adapter was built from
func (a *Adapter) Spec() Spec {
	return a.spec
}

// IsAvailable reports whether any of the manager binaries is on PATH
func (a *Adapter) IsAvailable(_ context.Context) bool {
	_, ok := a.lookBinary()
	return ok
}

func (a *Adapter) lookBinary() (string, bool) {
	for _, b := range a.spec.Binaries {
		if _, err := a.runner.LookPath(b); err == nil {
			return b, true
		}
	}
	return "", false
}

// binary returns the executable to run, preferring one that exists
func (a *Adapter) binary() string {
	if b, ok := a.lookBinary(); ok {
		return b
	}
	if len(a.spec.Binaries) > 0 {
		return a.spec.Binaries[0]
	}
	return a.spec.Name
}

// IsInState reports whether name is installed (install/update) or absent (uninstall)
func (a *Adapter) IsInState(ctx context.Context, name string, mode core.Mode) (bool, error) {
	installed, err := a.Installed(ctx, name)
	if err != nil {
		return false, err
	}
	if mode.Target() == core.ModeUninstall {
		return !installed, nil
	}
	return installed, nil
}

// Installed reports whether the listing contains exactly name
func (a *Adapter) Installed(ctx context.Context, name string) (bool, error) {
	if a.spec.Probe != nil {
		return a.spec.Probe(ctx, a, name)
	}

	l := a.spec.List
	if l.Parse == nil {
		return false, fmt.Errorf("%s: no installed-package listing", a.spec.Name)
	}

	bin := l.Binary
	if bin == "" {
		bin = a.binary()
	}
	args := make([]string, 0, len(l.Args))
	for _, arg := range l.Args {
		args = append(args, strings.ReplaceAll(arg, nameToken, name))
	}

	res := a.run(ctx, runner.Command{Path: bin, Args: args})
	if res.Failed() {
		if res.TimedOut {
			return false, fmt.Errorf("listing %s packages: %w", a.spec.Name, core.ErrInvocationTimeout)
		}
		if !l.MissingOK || res.ExitCode <= 0 {
			return false, fmt.Errorf("listing %s packages: %s: %w", a.spec.Name, res.Tail(), core.ErrInvocationFailure)
		}
	}

	normalize := l.Normalize
	if normalize == nil {
		normalize = func(s string) string { return s }
	}
	entries := set.NewStrings()
	for _, e := range l.Parse(res.Stdout) {
		entries.Add(normalize(e))
	}
	return entries.Contains(normalize(name)), nil
}

// Command renders the argv for inv without running it
func (a *Adapter) Command(inv core.Invocation) (runner.Command, error) {
	mode := inv.Mode.Target()
	tmpl, ok := a.spec.Verbs[mode]
	if !ok {
		return runner.Command{}, fmt.Errorf("%s %s: %w", a.spec.Name, mode, core.ErrUnsupportedMode)
	}

	version := inv.Version
	if version == "" {
		version = a.spec.DefaultVersion
	}
	pkg := []string{inv.Name}
	if version != "" {
		if a.spec.Pin != nil {
			pkg = a.spec.Pin(inv.Name, version)
		} else {
			a.logger.Debug().Str("package", inv.Name).Str("version", inv.Version).Msg("Manager ignores version pins")
		}
	}

	args := make([]string, 0, len(tmpl)+len(pkg))
	for _, t := range tmpl {
		if t == pkgToken {
			args = append(args, pkg...)
			continue
		}
		args = append(args, strings.ReplaceAll(t, nameToken, inv.Name))
	}

	if inv.CustomArgs != "" {
		extra, err := shellquote.Split(inv.CustomArgs)
		if err != nil {
			return runner.Command{}, fmt.Errorf("parsing custom arguments %q: %w", inv.CustomArgs, err)
		}
		args = append(args, extra...)
	}

	cmd := runner.Command{Path: a.binary(), Args: args, Timeout: a.opts.Timeout}
	if a.useSudo() {
		cmd.Args = append([]string{cmd.Path}, cmd.Args...)
		cmd.Path = "sudo"
	}
	return cmd, nil
}

func (a *Adapter) useSudo() bool {
	if !a.spec.System {
		return false
	}
	switch a.opts.Sudo {
	case core.SudoAlways:
		return true
	case core.SudoNever:
		return false
	default:
		return !a.opts.IsRoot
	}
}

// Invoke builds the manager command and runs it unless DryRun is set
func (a *Adapter) Invoke(ctx context.Context, inv core.Invocation) (res core.InvokeResult) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().Interface("panic", r).Str("package", inv.Name).Msg("Recovered panic during invocation")
			res = core.InvokeResult{
				Detail: fmt.Sprintf("panic: %v", r),
				Err:    fmt.Errorf("%s: panic: %v: %w", a.spec.Name, r, core.ErrInvocationFailure),
			}
		}
	}()

	cmd, err := a.Command(inv)
	if err != nil {
		return core.InvokeResult{
			Detail: err.Error(),
			Err:    errors.Join(core.ErrInvocationFailure, err),
		}
	}
	line := cmd.String()

	if inv.DryRun {
		return core.InvokeResult{Succeeded: true, Detail: line, Command: line}
	}

	a.logger.Info().Str("package", inv.Name).Str("mode", inv.Mode.String()).Str("command", line).Msg("Running manager command")

	out := a.runner.Run(ctx, cmd)
	res = core.InvokeResult{Command: line, Duration: out.Duration}
	switch {
	case out.TimedOut:
		res.Detail = strings.TrimSpace(fmt.Sprintf("timeout after %s: %s", a.opts.Timeout, out.Tail()))
		res.Err = fmt.Errorf("%s: %w", line, core.ErrInvocationTimeout)
	case out.Failed():
		res.Detail = failureDetail(out)
		res.Err = fmt.Errorf("%s: %w", line, core.ErrInvocationFailure)
	default:
		res.Succeeded = true
	}
	return res
}

func failureDetail(out runner.Result) string {
	tail := out.Tail()
	switch {
	case out.ExitCode > 0 && tail != "":
		return fmt.Sprintf("exit status %d: %s", out.ExitCode, tail)
	case out.ExitCode > 0:
		return fmt.Sprintf("exit status %d", out.ExitCode)
	case out.Err != nil && tail != "":
		return fmt.Sprintf("%v: %s", out.Err, tail)
	case out.Err != nil:
		return out.Err.Error()
	}
	return tail
}

// run executes a read-only command with the adapter timeout
func (a *Adapter) run(ctx context.Context, cmd runner.Command) runner.Result {
	if cmd.Timeout == 0 {
		cmd.Timeout = a.opts.Timeout
	}
	return a.runner.Run(ctx, cmd)
}
