// pkg/backend/npm.go
package backend

import (
	"path/filepath"
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// NpmSpec drives npm for global Node.js packages
var NpmSpec = Spec{
	Name:     Npm,
	Binaries: []string{"npm"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", "-g", pkgToken},
		core.ModeUpdate:    {"update", "-g", nameToken},
		core.ModeUninstall: {"uninstall", "-g", nameToken},
	},
	Pin: join("@"),
	List: Listing{
		Args:      []string{"ls", "-g", "--depth=0", "--parseable"},
		MissingOK: true,
		Parse:     parseNpmParseable,
	},
}

// parseNpmParseable extracts package names, including @scope/name, from
// the module paths printed by "npm ls --parseable"
func parseNpmParseable(out string) []string {
	const marker = "node_modules/"
	var result []string
	for _, line := range lines(out) {
		line = filepath.ToSlash(line)
		i := strings.LastIndex(line, marker)
		if i < 0 {
			continue
		}
		if name := line[i+len(marker):]; name != "" {
			result = append(result, name)
		}
	}
	return result
}
