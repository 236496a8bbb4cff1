// pkg/backend/dnf.go
package backend

import "github.com/arc-language/bulkinstall/pkg/core"

// DnfSpec drives dnf on Fedora and RHEL
var DnfSpec = Spec{
	Name:     Dnf,
	Binaries: []string{"dnf"},
	System:   true,
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", "-y", pkgToken},
		core.ModeUpdate:    {"upgrade", "-y", pkgToken},
		core.ModeUninstall: {"remove", "-y", nameToken},
	},
	Pin:  join("-"),
	List: rpmListing,
}
