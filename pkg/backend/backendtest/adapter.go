// Package backendtest provides an in-memory manager adapter for orchestration tests.
package backendtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juju/collections/set"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// Adapter keeps an installed set in memory and counts calls
type Adapter struct {
	name string

	mu          sync.Mutex
	available   bool
	installed   set.Strings
	failures    map[string]string // package -> detail for a failing invoke
	delay       time.Duration
	probeErr    error
	invocations []core.Invocation
	probes      int
	availChecks int
	panicOn     string
}

var _ core.Adapter = (*Adapter)(nil)

// New creates an available adapter with the given packages installed
func New(name string, installed ...string) *Adapter {
	return &Adapter{
		name:      name,
		available: true,
		installed: set.NewStrings(installed...),
		failures:  make(map[string]string),
	}
}

// Unavailable marks the manager as absent from the host
func (a *Adapter) Unavailable() *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.available = false
	return a
}

// FailOn makes every invoke for pkg fail with detail
func (a *Adapter) FailOn(pkg, detail string) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[pkg] = detail
	return a
}

// PanicOn makes invoke for pkg panic
func (a *Adapter) PanicOn(pkg string) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.panicOn = pkg
	return a
}

// ProbeError makes every state probe fail with err
func (a *Adapter) ProbeError(err error) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.probeErr = err
	return a
}

// Delay makes every non-dry-run invoke block for d or until ctx is done
func (a *Adapter) Delay(d time.Duration) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.delay = d
	return a
}

// Name returns the manager name
func (a *Adapter) Name() string {
	return a.name
}

// IsAvailable reports the configured availability
func (a *Adapter) IsAvailable(context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.availChecks++
	return a.available
}

// IsInState checks the in-memory installed set
func (a *Adapter) IsInState(_ context.Context, name string, mode core.Mode) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.probes++
	if a.probeErr != nil {
		return false, a.probeErr
	}
	installed := a.installed.Contains(name)
	if mode.Target() == core.ModeUninstall {
		return !installed, nil
	}
	return installed, nil
}

// Invoke records the call and applies it to the installed set unless DryRun
func (a *Adapter) Invoke(ctx context.Context, inv core.Invocation) core.InvokeResult {
	a.mu.Lock()
	a.invocations = append(a.invocations, inv)
	detail, fail := a.failures[inv.Name]
	delay := a.delay
	shouldPanic := a.panicOn != "" && a.panicOn == inv.Name
	a.mu.Unlock()

	line := fmt.Sprintf("%s %s %s", a.name, inv.Mode.Target(), inv.Name)
	if inv.DryRun {
		return core.InvokeResult{Succeeded: true, Detail: line, Command: line}
	}
	if shouldPanic {
		panic("backendtest: invoke " + inv.Name)
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return core.InvokeResult{
				Command: line,
				Detail:  "timeout: " + ctx.Err().Error(),
				Err:     fmt.Errorf("%s: %w", line, core.ErrInvocationTimeout),
			}
		}
	}

	if fail {
		return core.InvokeResult{
			Command: line,
			Detail:  detail,
			Err:     fmt.Errorf("%s: %w", line, core.ErrInvocationFailure),
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	switch inv.Mode.Target() {
	case core.ModeUninstall:
		a.installed.Remove(inv.Name)
	default:
		a.installed.Add(inv.Name)
	}
	return core.InvokeResult{Succeeded: true, Command: line}
}

// Installed reports whether pkg is in the in-memory set
func (a *Adapter) Installed(pkg string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.installed.Contains(pkg)
}

// Invocations returns a copy of the recorded invokes
func (a *Adapter) Invocations() []core.Invocation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]core.Invocation(nil), a.invocations...)
}

// Probes returns how many state probes were made
func (a *Adapter) Probes() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.probes
}

// AvailabilityChecks returns how many times IsAvailable was called
func (a *Adapter) AvailabilityChecks() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.availChecks
}
