// pkg/core/interface.go
package core

import (
	"context"
	"time"
)

// Adapter defines the capability set every package manager variant implements
type Adapter interface {
	// Name returns the manager name (e.g., "apt", "winget")
	Name() string

	// IsAvailable reports whether the manager binary is reachable on this host
	IsAvailable(ctx context.Context) bool

	// IsInState reports whether name is already installed (install/update)
	// or already absent (uninstall). Matching is exact per listing entry.
	IsInState(ctx context.Context, name string, mode Mode) (bool, error)

	// Invoke builds and, unless DryRun is set, runs the manager command.
	// It never panics; every process problem is reported in the result.
	Invoke(ctx context.Context, inv Invocation) InvokeResult
}

// Invocation describes one manager command to build
type Invocation struct {
	Name       string // Package name as understood by the manager
	Version    string // Optional version pin
	Mode       Mode   // Install, Uninstall or Update
	CustomArgs string // Opaque extra arguments, shell-quoted
	DryRun     bool   // Only render the command line
}

// InvokeResult is what an adapter reports back for one invocation
type InvokeResult struct {
	Succeeded bool
	Detail    string        // Command line on dry run, output tail on failure
	Command   string        // Rendered command line
	Err       error         // ErrInvocationFailure or ErrInvocationTimeout on failure
	Duration  time.Duration // Time spent running the command
}

// Lookup resolves manager names to adapter instances
type Lookup interface {
	Get(name string) (Adapter, bool)
}
