// pkg/backend/brew.go
package backend

import (
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// BrewSpec drives Homebrew. Versioned formulae are addressed as name@version.
var BrewSpec = Spec{
	Name:     Brew,
	Binaries: []string{"brew"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", pkgToken},
		core.ModeUpdate:    {"upgrade", pkgToken},
		core.ModeUninstall: {"uninstall", nameToken},
	},
	Pin: join("@"),
	List: Listing{
		Args:  []string{"list", "-1"},
		Parse: parseBrewList,
	},
}

// parseBrewList reads "brew list -1", which may include "==> Formulae" headers
func parseBrewList(out string) []string {
	var result []string
	for _, line := range lines(out) {
		if strings.HasPrefix(line, "==>") {
			continue
		}
		result = append(result, strings.Fields(line)...)
	}
	return result
}
