package runner

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunSuccess(t *testing.T) {
	skipOnWindows(t)

	res := NewExec().Run(context.Background(), Command{Path: "sh", Args: []string{"-c", "echo hello"}})
	require.NoError(t, res.Err)
	assert.False(t, res.Failed())
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
}

func TestExecRunNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	res := NewExec().Run(context.Background(), Command{Path: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}})
	assert.True(t, res.Failed())
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.Equal(t, "boom", res.Tail())
}

func TestExecRunTimeout(t *testing.T) {
	skipOnWindows(t)

	res := NewExec().Run(context.Background(), Command{
		Path:    "sh",
		Args:    []string{"-c", "sleep 5"},
		Timeout: 100 * time.Millisecond,
	})
	assert.True(t, res.Failed())
	assert.True(t, res.TimedOut)
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestExecRunMissingBinary(t *testing.T) {
	res := NewExec().Run(context.Background(), Command{Path: "definitely-not-a-real-binary-xyz"})
	assert.True(t, res.Failed())
	assert.Error(t, res.Err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecLookPath(t *testing.T) {
	_, err := NewExec().LookPath("definitely-not-a-real-binary-xyz")
	assert.Error(t, err)
}

func TestCommandString(t *testing.T) {
	cmd := Command{Path: "winget", Args: []string{"install", "--id", "Git.Git", "--override", "/SILENT /DIR=C:\\Git"}}
	assert.Equal(t, `winget install --id Git.Git --override '/SILENT /DIR=C:\Git'`, cmd.String())
}

func TestResultTail(t *testing.T) {
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, "line")
	}
	res := Result{Stdout: strings.Join(lines, "\n")}
	assert.Len(t, strings.Split(res.Tail(), "\n"), tailLines)

	res = Result{Stdout: "out", Stderr: "  err  "}
	assert.Equal(t, "err", res.Tail())

	res = Result{Stderr: strings.Repeat("x", 5000)}
	assert.True(t, strings.HasPrefix(res.Tail(), "..."))
	assert.Len(t, res.Tail(), tailBytes+3)
}

func TestResultTailKeepsRunesWhole(t *testing.T) {
	res := Result{Stderr: strings.Repeat("€", 1000)}
	out := res.Tail()
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasPrefix(out, "..."))
	assert.LessOrEqual(t, len(out), tailBytes+3)
}

func TestExecRunParentDeadlineIsTimeout(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res := NewExec().Run(ctx, Command{Path: "sh", Args: []string{"-c", "sleep 5"}, Timeout: time.Minute})
	assert.True(t, res.Failed())
	assert.True(t, res.TimedOut)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestExecRunParentCancelIsNotTimeout(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	res := NewExec().Run(ctx, Command{Path: "sh", Args: []string{"-c", "sleep 5"}, Timeout: time.Minute})
	assert.True(t, res.Failed())
	assert.False(t, res.TimedOut)
}
