// pkg/backend/apt.go
package backend

import (
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
)

// AptSpec drives apt-get on Debian and Ubuntu. Installed state comes from dpkg.
var AptSpec = Spec{
	Name:     Apt,
	Binaries: []string{"apt-get"},
	System:   true,
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"install", "-y", pkgToken},
		core.ModeUpdate:    {"install", "--only-upgrade", "-y", pkgToken},
		core.ModeUninstall: {"remove", "-y", nameToken},
	},
	Pin: join("="),
	List: Listing{
		Binary:    "dpkg-query",
		Args:      []string{"-W", `-f=${Package}\t${db:Status-Abbrev}\n`, nameToken},
		MissingOK: true,
		Parse:     parseDpkgStatus,
	},
}

// parseDpkgStatus keeps packages whose dpkg status is "ii" (installed, ok).
// The ":arch" qualifier of multi-arch packages is dropped.
func parseDpkgStatus(out string) []string {
	var result []string
	for _, line := range lines(out) {
		name, status, ok := strings.Cut(line, "\t")
		if !ok || !strings.HasPrefix(strings.TrimSpace(status), "ii") {
			continue
		}
		name, _, _ = strings.Cut(name, ":")
		result = append(result, name)
	}
	return result
}
