package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/bulkinstall/pkg/backend/backendtest"
	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/runner/runnertest"
)

func TestExecuteInstallChanged(t *testing.T) {
	apt := backendtest.New("apt")
	attempt := New(Options{}).Execute(context.Background(), core.NewDeclaration("git"), apt, core.ModeInstall)

	assert.Equal(t, "apt", attempt.Manager)
	assert.True(t, attempt.Succeeded)
	assert.False(t, attempt.AlreadyInState)
	assert.Equal(t, core.OutcomeChanged, attempt.Outcome())
	assert.True(t, apt.Installed("git"))
}

func TestExecuteShortCircuits(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		mode      core.Mode
		skip      bool
		invokes   int
		inState   bool
	}{
		{"install present", []string{"git"}, core.ModeInstall, true, 0, true},
		{"update present", []string{"git"}, core.ModeUpdate, true, 0, true},
		{"uninstall absent", nil, core.ModeUninstall, true, 0, true},
		{"uninstall absent ignores skipIfExists", nil, core.ModeUninstall, false, 0, true},
		{"install present without skip reinstalls", []string{"git"}, core.ModeInstall, false, 1, false},
		{"update absent invokes", nil, core.ModeUpdate, true, 1, false},
		{"uninstall present invokes", []string{"git"}, core.ModeUninstall, true, 1, false},
		{"dry run present", []string{"git"}, core.ModeDryRun, true, 0, true},
		{"dry run absent", nil, core.ModeDryRun, true, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := backendtest.New("apt", tt.installed...)
			decl := core.NewDeclaration("git")
			decl.SkipIfExists = tt.skip

			attempt := New(Options{}).Execute(context.Background(), decl, adapter, tt.mode)
			assert.True(t, attempt.Succeeded)
			assert.Equal(t, tt.inState, attempt.AlreadyInState)
			assert.Len(t, adapter.Invocations(), tt.invokes)
			assert.Equal(t, 1, adapter.Probes())
		})
	}
}

func TestExecuteDryRunDoesNotMutate(t *testing.T) {
	brew := backendtest.New("brew")
	attempt := New(Options{}).Execute(context.Background(), core.NewDeclaration("wget"), brew, core.ModeDryRun)

	require.True(t, attempt.Succeeded)
	assert.False(t, brew.Installed("wget"))
	assert.Equal(t, "brew install wget", attempt.Detail())

	invs := brew.Invocations()
	require.Len(t, invs, 1)
	assert.True(t, invs[0].DryRun)
}

func TestExecuteFailure(t *testing.T) {
	choco := backendtest.New("choco").FailOn("nodejs", "exit status 1: not found")
	attempt := New(Options{}).Execute(context.Background(), core.NewDeclaration("nodejs"), choco, core.ModeInstall)

	assert.False(t, attempt.Succeeded)
	assert.Equal(t, "exit status 1: not found", attempt.ErrorDetail)
	assert.ErrorIs(t, attempt.Err, core.ErrInvocationFailure)

	var coreErr *core.Error
	require.True(t, errors.As(attempt.Err, &coreErr))
	assert.Equal(t, "choco", coreErr.Manager)
}

func TestExecuteProbeErrorProceeds(t *testing.T) {
	apt := backendtest.New("apt").ProbeError(errors.New("dpkg locked"))
	attempt := New(Options{}).Execute(context.Background(), core.NewDeclaration("git"), apt, core.ModeInstall)

	assert.True(t, attempt.Succeeded)
	assert.False(t, attempt.AlreadyInState)
	assert.Len(t, apt.Invocations(), 1)
}

func TestExecuteRecoversAdapterPanic(t *testing.T) {
	npm := backendtest.New("npm").PanicOn("typescript")
	attempt := New(Options{}).Execute(context.Background(), core.NewDeclaration("typescript"), npm, core.ModeInstall)

	assert.False(t, attempt.Succeeded)
	assert.Contains(t, attempt.ErrorDetail, "panic")
	assert.ErrorIs(t, attempt.Err, core.ErrInvocationFailure)
}

func TestExecuteUsesManagerAlias(t *testing.T) {
	apt := backendtest.New("apt")
	decl := core.NewDeclaration("sqlite3")
	decl.Aliases = map[string]string{"apt": "libsqlite3-dev"}

	New(Options{}).Execute(context.Background(), decl, apt, core.ModeInstall)
	assert.True(t, apt.Installed("libsqlite3-dev"))
}

func TestExecuteHooks(t *testing.T) {
	r := runnertest.New().
		On("echo before", runnertest.OK("before")).
		On("echo after", runnertest.OK("after"))
	apt := backendtest.New("apt")
	decl := core.NewDeclaration("git")
	decl.PreInstall = []string{"echo before"}
	decl.PostInstall = []string{"echo after"}

	attempt := New(Options{Runner: r}).Execute(context.Background(), decl, apt, core.ModeInstall)
	assert.True(t, attempt.Succeeded)
	assert.Empty(t, attempt.ErrorDetail)
	assert.Equal(t, []string{"echo before", "echo after"}, r.Calls())
}

func TestExecutePreHookFailureFailsAttempt(t *testing.T) {
	r := runnertest.New().On("false", runnertest.Exit(1, "nope"))
	apt := backendtest.New("apt")
	decl := core.NewDeclaration("git")
	decl.PreInstall = []string{"false"}

	attempt := New(Options{Runner: r}).Execute(context.Background(), decl, apt, core.ModeInstall)
	assert.False(t, attempt.Succeeded)
	assert.Contains(t, attempt.ErrorDetail, "pre-install hook failed")
	assert.Empty(t, apt.Invocations())
}

func TestExecutePostHookFailureWarns(t *testing.T) {
	r := runnertest.New().On("false", runnertest.Exit(1, "nope"))
	apt := backendtest.New("apt")
	decl := core.NewDeclaration("git")
	decl.PostInstall = []string{"false"}

	attempt := New(Options{Runner: r}).Execute(context.Background(), decl, apt, core.ModeInstall)
	assert.True(t, attempt.Succeeded)
	assert.Contains(t, attempt.ErrorDetail, "warning: post-install hook failed")
}

func TestExecuteSkipsHooksOnDryRunAndShortCircuit(t *testing.T) {
	r := runnertest.New()
	decl := core.NewDeclaration("git")
	decl.PreInstall = []string{"echo before"}

	New(Options{Runner: r}).Execute(context.Background(), decl, backendtest.New("apt"), core.ModeDryRun)
	New(Options{Runner: r}).Execute(context.Background(), decl, backendtest.New("apt", "git"), core.ModeInstall)
	assert.Empty(t, r.Calls())
}

func TestExecuteTimeoutIsTagged(t *testing.T) {
	slow := backendtest.New("scoop").Delay(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	attempt := New(Options{}).Execute(ctx, core.NewDeclaration("7zip"), slow, core.ModeInstall)
	assert.False(t, attempt.Succeeded)
	assert.True(t, core.IsTimeout(attempt.Err))
	assert.Contains(t, attempt.ErrorDetail, "timeout")
}
