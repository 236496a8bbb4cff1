// Package runnertest provides a scripted Runner for adapter tests.
package runnertest

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/arc-language/bulkinstall/pkg/runner"
)

// Runner answers commands from a table keyed by the rendered command line.
// Unknown commands fail with exit code 127.
type Runner struct {
	mu        sync.Mutex
	responses map[string]runner.Result
	handlers  []handler
	binaries  map[string]bool
	calls     []runner.Command
}

type handler struct {
	prefix string
	fn     func(runner.Command) runner.Result
}

// New creates a Runner where the given binaries resolve in LookPath
func New(binaries ...string) *Runner {
	r := &Runner{
		responses: make(map[string]runner.Result),
		binaries:  make(map[string]bool),
	}
	for _, b := range binaries {
		r.binaries[b] = true
	}
	return r
}

// On registers the result for an exact command line
func (r *Runner) On(cmdline string, res runner.Result) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[cmdline] = res
	return r
}

// OnPrefix registers a handler for every command line starting with prefix
func (r *Runner) OnPrefix(prefix string, fn func(runner.Command) runner.Result) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, handler{prefix: prefix, fn: fn})
	return r
}

// LookPath resolves only registered binaries
func (r *Runner) LookPath(file string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.binaries[file] {
		return "/usr/bin/" + file, nil
	}
	return "", &exec.Error{Name: file, Err: exec.ErrNotFound}
}

// Run records the command and returns its scripted result
func (r *Runner) Run(_ context.Context, cmd runner.Command) runner.Result {
	line := cmd.String()

	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	res, ok := r.responses[line]
	handlers := append([]handler(nil), r.handlers...)
	r.mu.Unlock()

	if ok {
		return res
	}
	for _, h := range handlers {
		if strings.HasPrefix(line, h.prefix) {
			return h.fn(cmd)
		}
	}
	return runner.Result{
		ExitCode: 127,
		Stderr:   fmt.Sprintf("unexpected command: %s", line),
		Err:      fmt.Errorf("exit status 127"),
	}
}

// Calls returns the rendered command lines run so far
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.String())
	}
	return out
}

// CallCount returns how many commands started with prefix
func (r *Runner) CallCount(prefix string) int {
	n := 0
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// OK is a successful result with the given stdout
func OK(stdout string) runner.Result {
	return runner.Result{Stdout: stdout}
}

// Exit is a failed result with the given exit code and stderr
func Exit(code int, stderr string) runner.Result {
	return runner.Result{
		ExitCode: code,
		Stderr:   stderr,
		Err:      fmt.Errorf("exit status %d", code),
	}
}
