// Package runner executes package manager commands as subprocesses.
//
// Every invocation is bounded by a timeout and reports its outcome as a
// Result value; process errors and panics never escape to the caller.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/arc-language/bulkinstall/pkg/logging"
)

const (
	// DefaultTimeout bounds commands that do not set their own timeout
	DefaultTimeout = 5 * time.Minute

	// waitDelay is how long to wait for output pipes after the process is killed
	waitDelay = 5 * time.Second

	// tailLines is how much output is kept for diagnostics
	tailLines = 20
	tailBytes = 2048
)

// Command is one subprocess to run
type Command struct {
	Path    string        // Binary name or path
	Args    []string      // Arguments, not including Path
	Timeout time.Duration // Zero means DefaultTimeout
	Env     []string      // Extra environment in KEY=VALUE form
}

// String renders the command line with shell quoting
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Path}, c.Args...)...)
}

// Result captures how a command ended
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
	Err      error // Start failure, non-zero exit, timeout or recovered panic
}

// Failed reports whether the command did not exit cleanly
func (r Result) Failed() bool {
	return r.Err != nil || r.TimedOut || r.ExitCode != 0
}

// Tail returns the last lines of stderr, falling back to stdout
func (r Result) Tail() string {
	out := strings.TrimSpace(r.Stderr)
	if out == "" {
		out = strings.TrimSpace(r.Stdout)
	}
	return tail(out)
}

func tail(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) > tailLines {
		lines = lines[len(lines)-tailLines:]
	}
	s = strings.Join(lines, "\n")
	if len(s) > tailBytes {
		cut := len(s) - tailBytes
		for cut < len(s) && !utf8.RuneStart(s[cut]) {
			cut++
		}
		s = "..." + s[cut:]
	}
	return s
}

// Runner runs commands and looks up binaries
type Runner interface {
	// LookPath reports where a binary is, like exec.LookPath
	LookPath(file string) (string, error)

	// Run executes the command and waits for it, honoring ctx and the timeout
	Run(ctx context.Context, cmd Command) Result
}

// Exec is the Runner backed by os/exec
type Exec struct {
	logger zerolog.Logger
}

// NewExec creates a Runner that spawns real processes
func NewExec() *Exec {
	return &Exec{logger: logging.GetLogger("runner")}
}

// LookPath checks if a command is available in PATH
func (e *Exec) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Run executes cmd, killing it when the timeout or ctx expires
func (e *Exec) Run(ctx context.Context, cmd Command) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				ExitCode: -1,
				Duration: time.Since(start),
				Err:      fmt.Errorf("running %s: panic: %v", cmd.Path, r),
			}
		}
	}()

	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(runCtx, cmd.Path, cmd.Args...)
	c.WaitDelay = waitDelay
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	e.logger.Debug().
		Str("command", cmd.Path).
		Strs("args", cmd.Args).
		Dur("timeout", timeout).
		Msg("Executing command")

	err := c.Run()
	res = Result{
		ExitCode: exitCode(err),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		Err:      err,
	}
	// An expired parent deadline is a timeout too; only cancellation is not
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && !errors.Is(ctx.Err(), context.Canceled) {
		res.TimedOut = true
		res.Err = fmt.Errorf("command exceeded %s: %w", timeout, context.DeadlineExceeded)
	}

	e.logger.Debug().
		Str("command", cmd.Path).
		Int("exit_code", res.ExitCode).
		Bool("timed_out", res.TimedOut).
		Dur("duration", res.Duration).
		Msg("Command finished")

	return res
}

// exitCode extracts exit code from exec error
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}
