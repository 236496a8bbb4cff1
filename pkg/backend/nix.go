// pkg/backend/nix.go
package backend

import (
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
	"zombiezen.com/go/nix"
)

const nixpkgsPrefix = "nixpkgs#"

// NixSpec drives "nix profile" with packages from the nixpkgs flake
var NixSpec = Spec{
	Name:     Nix,
	Binaries: []string{"nix"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall:   {"profile", "install", nixpkgsPrefix + nameToken},
		core.ModeUpdate:    {"profile", "upgrade", nameToken},
		core.ModeUninstall: {"profile", "remove", nameToken},
	},
	List: Listing{
		Args:      []string{"--extra-experimental-features", "nix-command flakes", "profile", "list"},
		Parse:     parseNixProfile,
		Normalize: normalizeNixAttr,
	},
}

// parseNixProfile collects package names from "nix profile list" in both
// the tabular and the "Name:" block formats. Store paths are reduced to the
// derivation name without its version.
func parseNixProfile(out string) []string {
	var result []string
	for _, line := range lines(out) {
		if v, ok := strings.CutPrefix(line, "Name:"); ok {
			result = append(result, strings.TrimSpace(v))
			continue
		}
		if v, ok := strings.CutPrefix(line, "Flake attribute:"); ok {
			result = append(result, strings.TrimSpace(v))
			continue
		}
		for _, tok := range strings.Fields(line) {
			if strings.Contains(tok, "#") {
				_, attr, _ := strings.Cut(tok, "#")
				result = append(result, attr)
				continue
			}
			sp, err := nix.ParseStorePath(tok)
			if err != nil {
				continue
			}
			result = append(result, drvName(sp.Name()))
		}
	}
	return result
}

// normalizeNixAttr strips the flake reference and system prefix from an attribute path
func normalizeNixAttr(attr string) string {
	attr = strings.TrimPrefix(attr, nixpkgsPrefix)
	if rest, ok := strings.CutPrefix(attr, "legacyPackages."); ok {
		if _, after, ok := strings.Cut(rest, "."); ok {
			return after
		}
	}
	if rest, ok := strings.CutPrefix(attr, "packages."); ok {
		if _, after, ok := strings.Cut(rest, "."); ok {
			return after
		}
	}
	return attr
}

// drvName splits "hello-2.12.1" into "hello" the way Nix splits derivation
// names: the version starts at the first dash not followed by a letter
func drvName(name string) string {
	for i := 0; i+1 < len(name); i++ {
		if name[i] != '-' {
			continue
		}
		c := name[i+1]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return name[:i]
		}
	}
	return name
}
