// Package manifest loads package declarations from a YAML or JSON file.
//
// The file is either a bare list of entries or a mapping with a "packages"
// list. Field names follow the apps.json convention:
//
//   - name: git
//     manager: apt
//     candidates: [apt, snap]
//     customArgs: --no-install-recommends
//     version: 1:2.43.0-1
//     tags: [development]
//     priority: 10
//     skipIfExists: true
//     preInstall: ["echo starting"]
//     postInstall: ["git --version"]
//     names: {dnf: git-core}
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/juju/collections/set"
	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"github.com/arc-language/bulkinstall/pkg/backend"
	"github.com/arc-language/bulkinstall/pkg/core"
)

// entry is the on-disk form of one declaration
type entry struct {
	Name         string            `yaml:"name"`
	Manager      string            `yaml:"manager"`
	Candidates   []string          `yaml:"candidates"`
	CustomArgs   string            `yaml:"customArgs"`
	Version      string            `yaml:"version"`
	Tags         []string          `yaml:"tags"`
	Priority     int               `yaml:"priority"`
	SkipIfExists *bool             `yaml:"skipIfExists"`
	PreInstall   []string          `yaml:"preInstall"`
	PostInstall  []string          `yaml:"postInstall"`
	Names        map[string]string `yaml:"names"`
}

type document struct {
	Packages []entry `yaml:"packages"`
}

// ValidationError lists every structural problem found in a manifest
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", core.ErrConfigurationRejected, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return core.ErrConfigurationRejected
}

// Load reads and validates the manifest at path
func Load(path string) ([]core.Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	decls, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return decls, nil
}

// Parse decodes and validates manifest content against the built-in managers
func Parse(data []byte) ([]core.Declaration, error) {
	return ParseWith(data, KnownManagers())
}

// KnownManagers returns the names of the built-in managers
func KnownManagers() set.Strings {
	known := set.NewStrings()
	for _, spec := range backend.Builtin() {
		known.Add(spec.Name)
	}
	return known
}

// ParseWith decodes and validates manifest content, accepting only managers in known
func ParseWith(data []byte, known set.Strings) ([]core.Declaration, error) {
	entries, err := decode(data)
	if err != nil {
		return nil, err
	}

	var problems []string
	seen := set.NewStrings()
	decls := make([]core.Declaration, 0, len(entries))
	for i, e := range entries {
		where := fmt.Sprintf("entry %d", i+1)
		if e.Name != "" {
			where = fmt.Sprintf("entry %d (%s)", i+1, e.Name)
		}
		if errs := validate(e, known); len(errs) > 0 {
			for _, err := range errs {
				problems = append(problems, where+": "+err)
			}
			continue
		}
		if seen.Contains(e.Name) {
			problems = append(problems, where+": duplicate name")
			continue
		}
		seen.Add(e.Name)
		decls = append(decls, e.declaration())
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return decls, nil
}

func decode(data []byte) ([]entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(trimmed, &root); err != nil {
		return nil, &ValidationError{Problems: []string{"invalid syntax: " + err.Error()}}
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	var entries []entry
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&entries); err != nil {
			return nil, &ValidationError{Problems: []string{err.Error()}}
		}
	case yaml.MappingNode:
		var d document
		if err := doc.Decode(&d); err != nil {
			return nil, &ValidationError{Problems: []string{err.Error()}}
		}
		entries = d.Packages
	default:
		return nil, &ValidationError{Problems: []string{"expected a list of packages"}}
	}
	return entries, nil
}

func validate(e entry, known set.Strings) []string {
	var errs []string
	if strings.TrimSpace(e.Name) == "" {
		errs = append(errs, "name is required")
	} else if strings.ContainsAny(e.Name, " \t\r\n") {
		errs = append(errs, "name must not contain whitespace")
	}

	if e.Manager != "" && !known.Contains(e.Manager) {
		errs = append(errs, fmt.Sprintf("unknown manager %q", e.Manager))
	}
	for _, c := range e.Candidates {
		if !known.Contains(c) {
			errs = append(errs, fmt.Sprintf("unknown candidate manager %q", c))
		}
	}
	for m := range e.Names {
		if !known.Contains(m) {
			errs = append(errs, fmt.Sprintf("names: unknown manager %q", m))
		}
	}

	if e.CustomArgs != "" {
		if _, err := shellquote.Split(e.CustomArgs); err != nil {
			errs = append(errs, fmt.Sprintf("customArgs: %v", err))
		}
	}
	for _, hook := range append(append([]string(nil), e.PreInstall...), e.PostInstall...) {
		if _, err := shellquote.Split(hook); err != nil {
			errs = append(errs, fmt.Sprintf("hook %q: %v", hook, err))
		}
	}
	return errs
}

func (e entry) declaration() core.Declaration {
	d := core.NewDeclaration(strings.TrimSpace(e.Name))
	d.Manager = e.Manager
	d.Candidates = e.Candidates
	d.CustomArgs = e.CustomArgs
	d.Version = e.Version
	d.Tags = e.Tags
	d.Priority = e.Priority
	if e.SkipIfExists != nil {
		d.SkipIfExists = *e.SkipIfExists
	}
	d.PreInstall = e.PreInstall
	d.PostInstall = e.PostInstall
	d.Aliases = e.Names
	return d
}

// IsRejected reports whether err is a manifest validation failure
func IsRejected(err error) bool {
	return errors.Is(err, core.ErrConfigurationRejected)
}
