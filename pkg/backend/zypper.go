// pkg/backend/zypper.go
package backend

import "github.com/arc-language/bulkinstall/pkg/core"

// ZypperSpec drives zypper on openSUSE and SLES
var ZypperSpec = Spec{
	Name:     Zypper,
	Binaries: []string{"zypper"},
	System:   true,
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"--non-interactive", "install", pkgToken},
		core.ModeUpdate:    {"--non-interactive", "update", pkgToken},
		core.ModeUninstall: {"--non-interactive", "remove", nameToken},
	},
	Pin:  join("="),
	List: rpmListing,
}
