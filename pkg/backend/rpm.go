// pkg/backend/rpm.go
package backend

import "github.com/arc-language/bulkinstall/pkg/core"

// rpmListing asks the rpm database for the exact package name
var rpmListing = Listing{
	Binary:    "rpm",
	Args:      []string{"-q", "--qf", "%{NAME}\n", nameToken},
	MissingOK: true,
	Parse:     words,
}

// YumSpec drives yum on older RHEL and CentOS hosts
var YumSpec = Spec{
	Name:     Yum,
	Binaries: []string{"yum"},
	System:   true,
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", "-y", pkgToken},
		core.ModeUpdate:    {"update", "-y", pkgToken},
		core.ModeUninstall: {"remove", "-y", nameToken},
	},
	Pin:  join("-"),
	List: rpmListing,
}
