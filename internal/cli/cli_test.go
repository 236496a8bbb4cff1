package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/resultlog"
)

// execute runs the root command with a config file rooted in a temp dir
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		body := fmt.Sprintf("result_log:\n  path: %s\nregistry:\n  path: %s\n",
			filepath.Join(dir, "results.log"), filepath.Join(dir, "registry"))
		require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0644))
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath, "--log-file", filepath.Join(dir, "debug.log")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bulkinstall version "+Version)
}

func TestRunCommandsRegistered(t *testing.T) {
	for _, mode := range core.Modes {
		cmd, _, err := rootCmd.Find([]string{mode.String()})
		require.NoError(t, err)
		assert.Equal(t, mode.String(), cmd.Name())
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new", "config.yaml")

	rootCmd.SetArgs([]string{"--config", path, "--log-file", filepath.Join(dir, "debug.log"), "config", "init"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Wrote "+path)

	cfg, err := core.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultWorkers, cfg.Workers)
	assert.Equal(t, core.DefaultTimeout, cfg.Timeout)

	rootCmd.SetArgs([]string{"--config", path, "--log-file", filepath.Join(dir, "debug.log"), "config", "init"})
	assert.Error(t, rootCmd.Execute())
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	log, err := resultlog.Open(filepath.Join(dir, "results.log"), resultlog.Options{})
	require.NoError(t, err)
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, log.Append(resultlog.Entry{Time: stamp, Name: "git", Manager: "apt", Mode: core.ModeInstall, Outcome: core.OutcomeChanged}))
	require.NoError(t, log.Append(resultlog.Entry{Time: stamp, Name: "curl", Manager: "apt", Mode: core.ModeInstall, Outcome: core.OutcomeSkipped}))
	require.NoError(t, log.Close())

	out, err := execute(t, dir, "history", "--name", "git")
	require.NoError(t, err)
	assert.Contains(t, out, "git")
	assert.Contains(t, out, "changed")
	assert.NotContains(t, out, "curl")
	historyName = ""
}

func TestHistoryEmpty(t *testing.T) {
	out, err := execute(t, t.TempDir(), "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries.")
}

func TestRegistryShow(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "registry", "deps", "sqlite3")
	require.NoError(t, os.MkdirAll(entry, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(entry, "index.toml"),
		[]byte("name = \"sqlite3\"\n[backends]\napt = \"libsqlite3-dev\"\nbrew = \"sqlite\"\n"), 0644))

	out, err := execute(t, dir, "registry", "show", "sqlite3")
	require.NoError(t, err)
	assert.Contains(t, out, "Package: sqlite3")
	assert.Contains(t, out, "libsqlite3-dev")
	assert.Regexp(t, `apt\s+libsqlite3-dev\n\s+brew\s+sqlite`, out)
}

func TestDeclarationsFromArgs(t *testing.T) {
	decls, err := declarations(&runFlags{manager: "apt", version: "2.43", customArgs: "--no-install-recommends"}, []string{"git", "curl"})
	require.NoError(t, err)
	require.Len(t, decls, 2)
	assert.Equal(t, "apt", decls[1].Manager)
	assert.Equal(t, "2.43", decls[0].Version)
	assert.True(t, decls[0].SkipIfExists)

	_, err = declarations(&runFlags{manager: "portage"}, []string{"git"})
	assert.ErrorIs(t, err, core.ErrConfigurationRejected)
}

func TestDeclarationsFromManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: git\n- name: htop\n"), 0644))

	decls, err := declarations(&runFlags{file: path}, []string{"curl"})
	require.NoError(t, err)
	require.Len(t, decls, 3)
	assert.Equal(t, "curl", decls[2].Name)
}

func TestRunRequiresPackages(t *testing.T) {
	_, err := execute(t, t.TempDir(), "dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no packages given")
}
