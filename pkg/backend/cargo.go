// pkg/backend/cargo.go
package backend

import (
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// CargoSpec drives "cargo install" for Rust binaries
var CargoSpec = Spec{
	Name:     Cargo,
	Binaries: []string{"cargo"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", pkgToken},
		core.ModeUpdate:    {"install", "--force", pkgToken},
		core.ModeUninstall: {"uninstall", nameToken},
	},
	Pin: flag("--version"),
	List: Listing{
		Args:  []string{"install", "--list"},
		Parse: parseCargoList,
	},
}

// parseCargoList reads "name vX.Y.Z:" headers and skips the indented binaries
func parseCargoList(out string) []string {
	var result []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			result = append(result, strings.TrimSuffix(fields[0], ":"))
		}
	}
	return result
}
