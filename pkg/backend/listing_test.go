package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDpkgStatus(t *testing.T) {
	out := "git\tii \nlibc6:amd64\tii \ngit-lfs\trc \n"
	assert.Equal(t, []string{"git", "libc6"}, parseDpkgStatus(out))
}

func TestParseScoopList(t *testing.T) {
	out := `Installed apps:

Name    Version Source Updated             Info
----    ------- ------ -------             ----
7zip    23.01   main   2024-01-10 10:00:00
git     2.43.0  main   2024-01-10 10:01:00
`
	assert.Equal(t, []string{"7zip", "git"}, parseScoopList(out))
}

func TestParseSnapList(t *testing.T) {
	out := "Name  Version  Rev  Tracking  Publisher  Notes\ncode  1.86     150  stable    vscode**   classic\n"
	assert.Equal(t, []string{"code"}, parseSnapList(out))
}

func TestParseBrewList(t *testing.T) {
	out := "==> Formulae\ngit\nwget\n\n==> Casks\nfirefox\n"
	assert.Equal(t, []string{"git", "wget", "firefox"}, parseBrewList(out))
}

func TestRpmWordsSkipsMessages(t *testing.T) {
	assert.Empty(t, words("package git is not installed\n"))
	assert.Equal(t, []string{"git"}, words("git\n"))
}

func TestChocoLimitedOutput(t *testing.T) {
	assert.Equal(t, []string{"nodejs", "git"}, beforeSep("|")("nodejs|21.6.1\ngit|2.43.0\n"))
}

func TestNormalizePythonName(t *testing.T) {
	tests := map[string]string{
		"Django":            "django",
		"zope.interface":    "zope-interface",
		"typing_extensions": "typing-extensions",
		"requests[socks]":   "requests",
		"foo__bar..baz":     "foo-bar-baz",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizePythonName(in), in)
	}
}

func TestParseNpmParseable(t *testing.T) {
	out := "/usr/lib\n/usr/lib/node_modules/npm\n/usr/lib/node_modules/@angular/cli\n/usr/lib/node_modules/typescript\n"
	assert.Equal(t, []string{"npm", "@angular/cli", "typescript"}, parseNpmParseable(out))
}

func TestParseCargoList(t *testing.T) {
	out := "bat v0.24.0:\n    bat\nripgrep v14.1.0:\n    rg\n"
	assert.Equal(t, []string{"bat", "ripgrep"}, parseCargoList(out))
}

func TestParseNixProfile(t *testing.T) {
	t.Run("block format", func(t *testing.T) {
		out := `Name:               hello
Flake attribute:    legacyPackages.x86_64-linux.hello
Original flake URL: flake:nixpkgs
Locked flake URL:   github:NixOS/nixpkgs/0123456789abcdef
Store paths:        /nix/store/s66mzxpvicwk07gjbjfw9izjfa797vsw-hello-2.12.1
`
		names := parseNixProfile(out)
		assert.Contains(t, names, "hello")
		assert.Contains(t, names, "legacyPackages.x86_64-linux.hello")
	})

	t.Run("table format", func(t *testing.T) {
		out := "0 flake:nixpkgs#legacyPackages.x86_64-linux.ripgrep github:NixOS/nixpkgs/abc#legacyPackages.x86_64-linux.ripgrep /nix/store/s66mzxpvicwk07gjbjfw9izjfa797vsw-ripgrep-14.1.0\n"
		names := parseNixProfile(out)
		assert.Contains(t, names, "ripgrep")
	})
}

func TestNormalizeNixAttr(t *testing.T) {
	assert.Equal(t, "hello", normalizeNixAttr("nixpkgs#hello"))
	assert.Equal(t, "hello", normalizeNixAttr("legacyPackages.x86_64-linux.hello"))
	assert.Equal(t, "python3Packages.requests", normalizeNixAttr("legacyPackages.aarch64-darwin.python3Packages.requests"))
}

func TestDrvName(t *testing.T) {
	assert.Equal(t, "hello", drvName("hello-2.12.1"))
	assert.Equal(t, "git-lfs", drvName("git-lfs-3.4.1"))
	assert.Equal(t, "nix-prefetch-git", drvName("nix-prefetch-git"))
}

func TestGoBinaryName(t *testing.T) {
	if goBinaryName("x") != "x" {
		t.Skip("windows adds .exe")
	}
	assert.Equal(t, "gopls", goBinaryName("golang.org/x/tools/gopls"))
	assert.Equal(t, "migrate", goBinaryName("github.com/golang-migrate/migrate/v4"))
}
