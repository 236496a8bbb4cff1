// pkg/registry/aliases.go
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrAliasNotFound is returned when the alias registry has no entry for a package
var ErrAliasNotFound = errors.New("alias not found")

// Entry represents a single deps/<name>/index.toml file
type Entry struct {
	Name     string            `toml:"name"`
	Managers map[string]string `toml:"backends"`
}

// Aliases provides lookup into the cached deps/ folder, which maps a
// canonical package name to the name each manager uses for it
type Aliases struct {
	depsDir string
}

// NewAliases creates an alias registry pointed at the cached deps directory
func NewAliases(cacheDir string) *Aliases {
	return &Aliases{
		depsDir: filepath.Join(cacheDir, "deps"),
	}
}

// Exists reports whether the registry has been synced
func (a *Aliases) Exists() bool {
	_, err := os.Stat(a.depsDir)
	return err == nil
}

// Resolve takes a canonical package name and a manager,
// returns the manager-specific package name.
// e.g. Resolve("sqlite3", "apt") -> "libsqlite3-dev"
func (a *Aliases) Resolve(name, manager string) (string, error) {
	entry, err := a.Load(name)
	if err != nil {
		return "", err
	}

	pkgName, ok := entry.Managers[manager]
	if !ok || pkgName == "" {
		return "", fmt.Errorf("registry: package '%s' has no entry for manager '%s': %w", name, manager, ErrAliasNotFound)
	}

	return pkgName, nil
}

// Load reads and parses deps/<name>/index.toml
func (a *Aliases) Load(name string) (*Entry, error) {
	if !a.Exists() {
		return nil, fmt.Errorf("registry: deps not found, run sync first: %w", ErrAliasNotFound)
	}
	if name == "" || name != filepath.Base(name) {
		return nil, fmt.Errorf("registry: invalid package name '%s': %w", name, ErrAliasNotFound)
	}

	path := filepath.Join(a.depsDir, name, "index.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		// Check if the directory exists, to give a better error message.
		if _, statErr := os.Stat(filepath.Dir(path)); statErr == nil {
			return nil, fmt.Errorf("registry: found package '%s' directory, but missing index.toml", name)
		}
		return nil, fmt.Errorf("registry: package '%s': %w", name, ErrAliasNotFound)
	}

	var entry Entry
	if _, err := toml.Decode(string(data), &entry); err != nil {
		return nil, fmt.Errorf("registry: failed to parse '%s': %w", name, err)
	}

	return &entry, nil
}

// Apply fills in per-manager names from the registry without overriding
// names the declaration already sets. Unknown packages are returned as is.
func (a *Aliases) Apply(name string, names map[string]string) map[string]string {
	entry, err := a.Load(name)
	if err != nil {
		return names
	}

	merged := make(map[string]string, len(entry.Managers)+len(names))
	for manager, alias := range entry.Managers {
		merged[manager] = alias
	}
	for manager, alias := range names {
		merged[manager] = alias
	}
	return merged
}
