// pkg/backend/pip.go
package backend

import (
	"regexp"
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// PipSpec drives pip for user-level Python packages
var PipSpec = Spec{
	Name:     Pip,
	Binaries: []string{"pip3", "pip"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", pkgToken},
		core.ModeUpdate:    {"install", "--upgrade", pkgToken},
		core.ModeUninstall: {"uninstall", "-y", nameToken},
	},
	Pin: join("=="),
	List: Listing{
		Args:      []string{"list", "--format=freeze"},
		Parse:     beforeSep("=="),
		Normalize: normalizePythonName,
	},
}

var pythonNameSeparators = regexp.MustCompile(`[-_.]+`)

// normalizePythonName applies PEP 503 name normalization
func normalizePythonName(name string) string {
	if i := strings.IndexAny(name, "[=<>!~ "); i >= 0 {
		name = name[:i]
	}
	return pythonNameSeparators.ReplaceAllString(strings.ToLower(name), "-")
}
