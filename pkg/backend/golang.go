// pkg/backend/golang.go
package backend

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/runner"
)

// GoSpec drives "go install" for Go binaries. Package names are module
// package paths. The go tool cannot uninstall.
var GoSpec = Spec{
	Name:     Go,
	Binaries: []string{"go"},
	Verbs: map[core.Mode][]string{
		core.ModeInstall: {"install", pkgToken},
		core.ModeUpdate:  {"install", pkgToken},
	},
	Pin:            pinGoPackage,
	DefaultVersion: "latest",
	Probe:          probeGoBinary,
}

func pinGoPackage(name, version string) []string {
	if strings.Contains(name, "@") {
		return []string{name}
	}
	return []string{name + "@" + version}
}

var majorVersionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// goBinaryName returns the executable name "go install" writes for pkgPath
func goBinaryName(pkgPath string) string {
	elem := path.Base(pkgPath)
	if majorVersionSuffix.MatchString(elem) {
		if parent := path.Base(path.Dir(pkgPath)); parent != "." && parent != "/" {
			elem = parent
		}
	}
	if runtime.GOOS == "windows" {
		elem += ".exe"
	}
	return elem
}

// probeGoBinary checks the build info of the binary in GOBIN (or GOPATH/bin)
// and matches its main package path exactly
func probeGoBinary(ctx context.Context, a *Adapter, name string) (bool, error) {
	pkgPath, _, _ := strings.Cut(name, "@")

	res := a.run(ctx, runner.Command{Path: a.binary(), Args: []string{"env", "GOBIN", "GOPATH"}})
	if res.Failed() {
		return false, fmt.Errorf("reading go env: %s: %w", res.Tail(), core.ErrInvocationFailure)
	}
	env := strings.Split(strings.ReplaceAll(res.Stdout, "\r\n", "\n"), "\n")
	var gobin, gopath string
	if len(env) > 0 {
		gobin = strings.TrimSpace(env[0])
	}
	if len(env) > 1 {
		gopath = strings.TrimSpace(env[1])
	}
	dir := gobin
	if dir == "" {
		list := filepath.SplitList(gopath)
		if len(list) == 0 || list[0] == "" {
			return false, fmt.Errorf("neither GOBIN nor GOPATH is set: %w", core.ErrInvocationFailure)
		}
		dir = filepath.Join(list[0], "bin")
	}

	bin := filepath.Join(dir, goBinaryName(pkgPath))
	res = a.run(ctx, runner.Command{Path: a.binary(), Args: []string{"version", "-m", bin}})
	if res.Failed() {
		return false, nil
	}
	for _, line := range lines(res.Stdout) {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "path" && fields[1] == pkgPath {
			return true, nil
		}
	}
	return false, nil
}
