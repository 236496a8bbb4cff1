// pkg/backend/snap.go
package backend

import "github.com/arc-language/bulkinstall/pkg/core"

// SnapSpec drives snapd. A version is treated as a channel.
var SnapSpec = Spec{
	Name:     Snap,
	Binaries: []string{"snap"},
	System:   true,
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", pkgToken},
		core.ModeUpdate:    {"refresh", pkgToken},
		core.ModeUninstall: {"remove", nameToken},
	},
	Pin: func(name, version string) []string {
		return []string{name, "--channel=" + version}
	},
	List: Listing{
		Args:      []string{"list", nameToken},
		MissingOK: true,
		Parse:     parseSnapList,
	},
}

func parseSnapList(out string) []string {
	var result []string
	for i, name := range firstFields(out) {
		if i == 0 && name == "Name" {
			continue
		}
		result = append(result, name)
	}
	return result
}
