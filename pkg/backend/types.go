// pkg/backend/types.go
package backend

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// Manager names
const (
	Winget  = "winget"
	Choco   = "choco"
	Scoop   = "scoop"
	Apt     = "apt"
	Yum     = "yum"
	Dnf     = "dnf"
	Pacman  = "pacman"
	Zypper  = "zypper"
	Apk     = "apk"
	Snap    = "snap"
	Flatpak = "flatpak"
	Brew    = "brew"
	Pip     = "pip"
	Npm     = "npm"
	Cargo   = "cargo"
	Go      = "go"
	Nix     = "nix"
)

// pkgToken expands to the package name plus any version pin
const pkgToken = "{pkg}"

// nameToken is replaced by the bare package name inside an argument
const nameToken = "{name}"

// Spec describes how to drive one package manager from the command line
type Spec struct {
	// Name is the manager name used in declarations
	Name string

	// Binaries are the executables tried in order; the first found is used
	Binaries []string

	// System managers are run through sudo when not root
	System bool

	// Verbs maps a mode to the argument template. Elements equal to "{pkg}"
	// expand to Pin(name, version); "{name}" inside an element is replaced
	// by the package name. A mode missing here is unsupported.
	Verbs map[core.Mode][]string

	// Pin renders the package argument(s) with a version constraint.
	// Nil means the manager ignores versions.
	Pin func(name, version string) []string

	// DefaultVersion is pinned when the declaration has no version
	DefaultVersion string

	// List describes the installed-package listing
	List Listing

	// Probe replaces the listing when set
	Probe func(ctx context.Context, a *Adapter, name string) (bool, error)
}

// Listing queries what a manager has installed
type Listing struct {
	// Binary overrides the manager binary (e.g. dpkg-query for apt)
	Binary string

	// Args is the argument template, "{name}" is replaced by the package name
	Args []string

	// MissingOK treats a non-zero exit as "not installed" instead of an error
	MissingOK bool

	// Parse extracts installed package names from stdout
	Parse func(out string) []string

	// Normalize canonicalizes both listing entries and the query
	Normalize func(string) string
}

// Options configures how adapters run commands
type Options struct {
	// Sudo is one of core.SudoAuto, core.SudoAlways, core.SudoNever
	Sudo string

	// Timeout bounds each manager command
	Timeout time.Duration

	// IsRoot reports whether the process already has root privileges
	IsRoot bool
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() Options {
	return Options{
		Sudo:    core.SudoAuto,
		Timeout: core.DefaultTimeout,
		IsRoot:  isRoot(),
	}
}

// OptionsFromConfig builds adapter options from the loaded configuration
func OptionsFromConfig(cfg *core.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}
	if cfg.Sudo != "" {
		opts.Sudo = cfg.Sudo
	}
	if cfg.Timeout > 0 {
		opts.Timeout = cfg.Timeout
	}
	return opts
}

func isRoot() bool {
	if runtime.GOOS == "windows" {
		return false
	}
	return os.Geteuid() == 0
}
