// pkg/backend/pacman.go
package backend

import "github.com/arc-language/bulkinstall/pkg/core"

// PacmanSpec drives pacman on Arch and Manjaro. Pacman has no version pins.
var PacmanSpec = Spec{
	Name:     Pacman,
	Binaries: []string{"pacman"},
	System:   true,
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"-S", "--noconfirm", "--needed", pkgToken},
		core.ModeUpdate:    {"-S", "--noconfirm", pkgToken},
		core.ModeUninstall: {"-R", "--noconfirm", nameToken},
	},
	List: Listing{
		Args:      []string{"-Qq", nameToken},
		MissingOK: true,
		Parse:     words,
	},
}
