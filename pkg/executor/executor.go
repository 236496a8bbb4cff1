// Package executor runs one declaration against one manager: probe the
// current state, short-circuit when nothing needs doing, otherwise invoke.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/juju/clock"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/logging"
	"github.com/arc-language/bulkinstall/pkg/runner"
)

// Options configures an Executor
type Options struct {
	// Runner runs pre/post install hooks. Nil disables hooks.
	Runner runner.Runner

	// Timeout bounds each hook command
	Timeout time.Duration

	// Clock measures attempt durations
	Clock clock.Clock
}

// Executor turns (declaration, adapter, mode) into an Attempt
type Executor struct {
	runner  runner.Runner
	timeout time.Duration
	clock   clock.Clock
	logger  zerolog.Logger
}

// New creates an executor
func New(opts Options) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = core.DefaultTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	return &Executor{
		runner:  opts.Runner,
		timeout: opts.Timeout,
		clock:   opts.Clock,
		logger:  logging.GetLogger("executor"),
	}
}

// Execute probes, short-circuits or invokes, and reports the Attempt.
// It never panics and never returns an error; failures live in the Attempt.
func (e *Executor) Execute(ctx context.Context, decl core.Declaration, adapter core.Adapter, mode core.Mode) (attempt core.Attempt) {
	start := e.clock.Now()
	manager := adapter.Name()
	name := decl.NameFor(manager)
	target := mode.Target()

	logger := e.logger.With().
		Str("package", decl.Name).
		Str("manager", manager).
		Str("mode", mode.String()).
		Logger()

	attempt.Manager = manager
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered panic in adapter")
			attempt.Succeeded = false
			attempt.AlreadyInState = false
			attempt.ErrorDetail = fmt.Sprintf("panic: %v", r)
			attempt.Err = &core.Error{Op: string(mode), Package: decl.Name, Manager: manager, Err: core.ErrInvocationFailure}
		}
		attempt.Duration = e.clock.Now().Sub(start)
	}()

	inState, err := adapter.IsInState(ctx, name, target)
	if err != nil {
		logger.Warn().Err(err).Msg("State probe failed, assuming not in state")
		inState = false
	}

	if inState && (target == core.ModeUninstall || decl.SkipIfExists) {
		logger.Debug().Msg("Already in requested state")
		attempt.AlreadyInState = true
		attempt.Succeeded = true
		return attempt
	}

	dryRun := mode.IsDryRun()
	hooks := !dryRun && target != core.ModeUninstall

	if hooks {
		if err := e.runHooks(ctx, decl.PreInstall); err != nil {
			attempt.ErrorDetail = "pre-install hook failed: " + err.Error()
			attempt.Err = &core.Error{Op: string(mode), Package: decl.Name, Manager: manager, Err: errors.Join(core.ErrInvocationFailure, err)}
			return attempt
		}
	}

	res := adapter.Invoke(ctx, core.Invocation{
		Name:       name,
		Version:    decl.Version,
		Mode:       mode,
		CustomArgs: decl.CustomArgs,
		DryRun:     dryRun,
	})
	attempt.Command = res.Command
	if attempt.Command == "" && dryRun {
		attempt.Command = res.Detail
	}

	if !res.Succeeded {
		attempt.ErrorDetail = res.Detail
		if attempt.ErrorDetail == "" {
			attempt.ErrorDetail = "command failed"
		}
		cause := res.Err
		if cause == nil {
			cause = core.ErrInvocationFailure
		}
		attempt.Err = &core.Error{Op: string(mode), Package: decl.Name, Manager: manager, Err: cause}
		logger.Info().Str("detail", attempt.ErrorDetail).Msg("Attempt failed")
		return attempt
	}

	attempt.Succeeded = true
	if hooks {
		if err := e.runHooks(ctx, decl.PostInstall); err != nil {
			logger.Warn().Err(err).Msg("Post-install hook failed")
			attempt.ErrorDetail = "warning: post-install hook failed: " + err.Error()
		}
	}
	return attempt
}

// runHooks runs each command in order and stops at the first failure
func (e *Executor) runHooks(ctx context.Context, hooks []string) error {
	if len(hooks) == 0 {
		return nil
	}
	if e.runner == nil {
		return errors.New("no runner configured for hooks")
	}

	for _, hook := range hooks {
		argv, err := shellquote.Split(hook)
		if err != nil {
			return fmt.Errorf("parsing %q: %w", hook, err)
		}
		if len(argv) == 0 {
			continue
		}

		res := e.runner.Run(ctx, runner.Command{Path: argv[0], Args: argv[1:], Timeout: e.timeout})
		if res.Failed() {
			msg := res.Tail()
			if res.TimedOut {
				msg = strings.TrimSpace("timed out " + msg)
			}
			if msg == "" && res.Err != nil {
				msg = res.Err.Error()
			}
			return fmt.Errorf("%s: %s", shellquote.Join(argv...), msg)
		}
	}
	return nil
}
