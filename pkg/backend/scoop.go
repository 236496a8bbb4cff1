// pkg/backend/scoop.go
package backend

import (
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// ScoopSpec drives Scoop. Versions are pinned as name@version.
var ScoopSpec = Spec{
	Name:     Scoop,
	Binaries: []string{"scoop"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", pkgToken},
		core.ModeUpdate:    {"update", nameToken},
		core.ModeUninstall: {"uninstall", nameToken},
	},
	Pin: join("@"),
	List: Listing{
		Args:      []string{"list"},
		Parse:     parseScoopList,
		Normalize: strings.ToLower,
	},
}

// parseScoopList reads the table printed by "scoop list"
func parseScoopList(out string) []string {
	var result []string
	for _, line := range lines(out) {
		name := strings.Fields(line)[0]
		switch {
		case strings.HasSuffix(line, ":"), name == "Name", strings.HasPrefix(name, "----"):
			continue
		}
		result = append(result, name)
	}
	return result
}
