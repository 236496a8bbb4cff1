// pkg/platform/order.go
package platform

import (
	"github.com/arc-language/bulkinstall/pkg/backend"
)

var (
	windowsOrder = []string{backend.Winget, backend.Choco, backend.Scoop, backend.Pip, backend.Npm, backend.Cargo, backend.Go}
	darwinOrder  = []string{backend.Brew, backend.Nix, backend.Pip, backend.Npm, backend.Cargo, backend.Go}
	linuxOrder   = []string{
		backend.Apt, backend.Dnf, backend.Yum, backend.Pacman, backend.Zypper, backend.Apk,
		backend.Snap, backend.Flatpak, backend.Nix, backend.Brew,
		backend.Pip, backend.Npm, backend.Cargo, backend.Go,
	}
)

// nativeManager is the manager a distribution ships with
var nativeManager = map[string]string{
	DistroDebian: backend.Apt,
	DistroFedora: backend.Dnf,
	DistroArch:   backend.Pacman,
	DistroSUSE:   backend.Zypper,
	DistroAlpine: backend.Apk,
}

// DefaultOrder returns the static manager priority order for the platform.
// On Linux the distribution's native manager comes first.
func DefaultOrder(p *Platform) []string {
	switch p.OS {
	case "windows":
		return clone(windowsOrder)
	case "darwin":
		return clone(darwinOrder)
	case "linux":
		order := clone(linuxOrder)
		if native, ok := nativeManager[p.Distro]; ok {
			order = moveFirst(order, native)
		}
		return order
	}
	// Unknown systems only get the language ecosystem managers
	return []string{backend.Pip, backend.Npm, backend.Cargo, backend.Go}
}

// Order returns override when it is set and the platform default otherwise
func Order(p *Platform, override []string) []string {
	if len(override) > 0 {
		return dedupe(override)
	}
	return DefaultOrder(p)
}
