// pkg/backend/apk.go
package backend

import "github.com/arc-language/bulkinstall/pkg/core"

// ApkSpec drives apk on Alpine
var ApkSpec = Spec{
	Name:     Apk,
	Binaries: []string{"apk"},
	System:   true,
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"add", pkgToken},
		core.ModeUpdate:    {"upgrade", pkgToken},
		core.ModeUninstall: {"del", nameToken},
	},
	Pin: join("="),
	List: Listing{
		Args:      []string{"info", "-e", nameToken},
		MissingOK: true,
		Parse:     words,
	},
}
