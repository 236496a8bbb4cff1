// pkg/backend/winget.go
package backend

import (
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
)

var wingetAccept = []string{"--accept-package-agreements", "--accept-source-agreements"}

// WingetSpec drives the Windows Package Manager. Package names are winget IDs
// and match case-insensitively.
var WingetSpec = Spec{
	Name:     Winget,
	Binaries: []string{"winget"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   append([]string{"install", "--id", pkgToken, "--exact", "--silent"}, wingetAccept...),
		core.ModeUpdate:    append([]string{"upgrade", "--id", pkgToken, "--exact", "--silent"}, wingetAccept...),
		core.ModeUninstall: {"uninstall", "--id", nameToken, "--exact", "--silent"},
	},
	Pin: flag("--version"),
	List: Listing{
		Args:      []string{"list", "--id", nameToken, "--exact", "--accept-source-agreements"},
		MissingOK: true,
		Parse:     tokens,
		Normalize: strings.ToLower,
	},
}
