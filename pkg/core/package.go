// pkg/core/package.go
package core

import (
	"fmt"
	"strings"
	"time"
)

// Mode is the operation applied uniformly to every declaration in a run
type Mode string

const (
	// ModeInstall installs packages that are not yet present
	ModeInstall Mode = "install"
	// ModeUninstall removes packages that are present
	ModeUninstall Mode = "uninstall"
	// ModeUpdate upgrades packages to the latest available version
	ModeUpdate Mode = "update"
	// ModeDryRun simulates an install without touching the host
	ModeDryRun Mode = "dry-run"
)

// Modes lists every supported mode in display order
var Modes = []Mode{ModeInstall, ModeUninstall, ModeUpdate, ModeDryRun}

// ParseMode converts a user supplied string into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeInstall:
		return ModeInstall, nil
	case ModeUninstall, "remove":
		return ModeUninstall, nil
	case ModeUpdate, "upgrade":
		return ModeUpdate, nil
	case ModeDryRun, "dryrun", "simulate":
		return ModeDryRun, nil
	}
	return "", fmt.Errorf("unknown operation mode: %q", s)
}

// Target returns the mode whose semantics are probed and invoked.
// A dry run simulates an install.
func (m Mode) Target() Mode {
	if m == ModeDryRun {
		return ModeInstall
	}
	return m
}

// IsDryRun reports whether the mode must not mutate the host
func (m Mode) IsDryRun() bool {
	return m == ModeDryRun
}

func (m Mode) String() string {
	return string(m)
}

// Declaration is the validated, in-memory form of one configured package.
// It is built once at the start of a run and never modified afterwards.
type Declaration struct {
	Name         string            // Manager-specific identifier (e.g. "git", "Git.Git")
	Manager      string            // Optional pinned manager, disables fallback
	Candidates   []string          // Optional ordered managers to try when Manager is empty
	Tags         []string          // Free-form labels used for filtering
	Priority     int               // Higher runs first
	CustomArgs   string            // Extra arguments appended to the manager command line
	SkipIfExists bool              // Short-circuit install/update when already present
	Version      string            // Optional version pin
	Aliases      map[string]string // Per-manager package names overriding Name
	PreInstall   []string          // Commands run before install/update
	PostInstall  []string          // Commands run after a successful install/update
}

// NewDeclaration returns a declaration with the default field values
func NewDeclaration(name string) Declaration {
	return Declaration{
		Name:         name,
		SkipIfExists: true,
	}
}

// NameFor returns the package name to hand to the given manager
func (d Declaration) NameFor(manager string) string {
	if alias, ok := d.Aliases[manager]; ok && alias != "" {
		return alias
	}
	return d.Name
}

// Outcome is the classification of one declaration at the end of its state machine
type Outcome string

const (
	// OutcomeChanged means a manager command ran and succeeded
	OutcomeChanged Outcome = "changed"
	// OutcomeSkipped means the package was already in the requested state
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means no candidate manager succeeded
	OutcomeFailed Outcome = "failed"
)

func (o Outcome) String() string {
	return string(o)
}

// FailureReason separates environment problems from operational ones
type FailureReason string

const (
	// ReasonNone is used for non-failed outcomes
	ReasonNone FailureReason = ""
	// ReasonResolution means no available manager could be attempted
	ReasonResolution FailureReason = "resolution"
	// ReasonExecution means every attempted manager failed
	ReasonExecution FailureReason = "execution"
)

// Attempt is the immutable record of trying one declaration against one manager
type Attempt struct {
	Manager        string
	AlreadyInState bool // installed for install/update, absent for uninstall
	Succeeded      bool
	ErrorDetail    string
	Command        string        // Command line that ran, or would have run
	Err            error         // Classified taxonomy error for failed attempts
	Duration       time.Duration // Wall time spent on the attempt
}

// Outcome derives the per-attempt outcome written to the result log
func (a Attempt) Outcome() Outcome {
	switch {
	case !a.Succeeded:
		return OutcomeFailed
	case a.AlreadyInState:
		return OutcomeSkipped
	default:
		return OutcomeChanged
	}
}

// Detail is the diagnostic text for the attempt: the error or warning when
// there is one, otherwise the command line that ran or would have run
func (a Attempt) Detail() string {
	if a.ErrorDetail != "" {
		return a.ErrorDetail
	}
	return a.Command
}

// Classify derives the declaration outcome from its ordered attempts.
// The first successful attempt decides; no success means failure.
func Classify(attempts []Attempt) (Outcome, *Attempt) {
	for i := range attempts {
		if attempts[i].Succeeded {
			return attempts[i].Outcome(), &attempts[i]
		}
	}
	if len(attempts) == 0 {
		return OutcomeFailed, nil
	}
	return OutcomeFailed, &attempts[len(attempts)-1]
}
