package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/bulkinstall/pkg/core"
)

func TestParseYAMLList(t *testing.T) {
	decls, err := Parse([]byte(`
- name: git
  manager: apt
  tags: [development, vcs]
  priority: 10
- name: sqlite3
  candidates: [dnf, apt]
  names:
    apt: libsqlite3-dev
  skipIfExists: false
  customArgs: --no-install-recommends
  preInstall: ["echo before"]
  postInstall: ["sqlite3 --version"]
`))
	require.NoError(t, err)
	require.Len(t, decls, 2)

	git := decls[0]
	assert.Equal(t, "git", git.Name)
	assert.Equal(t, "apt", git.Manager)
	assert.Equal(t, []string{"development", "vcs"}, git.Tags)
	assert.Equal(t, 10, git.Priority)
	assert.True(t, git.SkipIfExists, "skipIfExists defaults to true")

	sqlite := decls[1]
	assert.Equal(t, []string{"dnf", "apt"}, sqlite.Candidates)
	assert.False(t, sqlite.SkipIfExists)
	assert.Equal(t, "libsqlite3-dev", sqlite.NameFor("apt"))
	assert.Equal(t, "sqlite3", sqlite.NameFor("dnf"))
	assert.Equal(t, []string{"echo before"}, sqlite.PreInstall)
}

func TestParseJSONAppsFile(t *testing.T) {
	decls, err := Parse([]byte(`[
  {"name": "Git.Git", "manager": "winget", "customArgs": "--scope machine", "source": "ignored", "force": true},
  {"name": "nodejs", "version": "20.11.0", "dependencies": []}
]`))
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "--scope machine", decls[0].CustomArgs)
	assert.Equal(t, "20.11.0", decls[1].Version)
}

func TestParsePackagesMapping(t *testing.T) {
	decls, err := Parse([]byte("packages:\n  - name: ripgrep\n    manager: cargo\n"))
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "cargo", decls[0].Manager)
}

func TestParseEmpty(t *testing.T) {
	decls, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		problem string
	}{
		{"missing name", "- manager: apt\n", "name is required"},
		{"whitespace in name", "- name: two words\n", "whitespace"},
		{"unknown manager", "- name: git\n  manager: portage\n", `unknown manager "portage"`},
		{"unknown candidate", "- name: git\n  candidates: [apt, emerge]\n", `unknown candidate manager "emerge"`},
		{"unknown alias manager", "- name: git\n  names: {emerge: dev-vcs/git}\n", `names: unknown manager "emerge"`},
		{"bad custom args", "- name: git\n  customArgs: \"--opt 'unterminated\"\n", "customArgs"},
		{"bad hook", "- name: git\n  preInstall: [\"echo 'oops\"]\n", "hook"},
		{"duplicate", "- name: git\n- name: git\n", "duplicate name"},
		{"scalar document", "just a string\n", "expected a list"},
		{"syntax error", "- name: [unclosed\n", "invalid syntax"},
		{"wrong type", "- name: git\n  priority: high\n", "cannot unmarshal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, IsRejected(err))
			assert.ErrorIs(t, err, core.ErrConfigurationRejected)
			assert.Contains(t, err.Error(), tt.problem)
		})
	}
}

func TestParseReportsEveryProblem(t *testing.T) {
	_, err := Parse([]byte("- manager: apt\n- name: git\n  manager: portage\n"))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 2)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: htop\n"), 0644))

	decls, err := Load(path)
	require.NoError(t, err)
	require.Len(t, decls, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	assert.False(t, IsRejected(err))
}
