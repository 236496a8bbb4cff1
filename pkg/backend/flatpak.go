// pkg/backend/flatpak.go
package backend

import "github.com/arc-language/bulkinstall/pkg/core"

// FlatpakSpec drives flatpak with applications from flathub.
// Package names are application IDs such as org.gimp.GIMP.
var FlatpakSpec = Spec{
	Name:     Flatpak,
	Binaries: []string{"flatpak"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", "-y", "--noninteractive", "flathub", nameToken},
		core.ModeUpdate:    {"update", "-y", "--noninteractive", nameToken},
		core.ModeUninstall: {"uninstall", "-y", "--noninteractive", nameToken},
	},
	List: Listing{
		Args:  []string{"list", "--app", "--columns=application"},
		Parse: words,
	},
}
