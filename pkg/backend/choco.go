// pkg/backend/choco.go
package backend

import (
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// ChocoSpec drives Chocolatey. The limited listing prints "name|version" lines.
var ChocoSpec = Spec{
	Name:     Choco,
	Binaries: []string{"choco"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", pkgToken, "-y", "--no-progress"},
		core.ModeUpdate:    {"upgrade", pkgToken, "-y", "--no-progress"},
		core.ModeUninstall: {"uninstall", nameToken, "-y"},
	},
	Pin: flag("--version"),
	List: Listing{
		Args:      []string{"list", "--limit-output", "--exact", nameToken},
		MissingOK: true,
		Parse:     beforeSep("|"),
		Normalize: strings.ToLower,
	},
}
