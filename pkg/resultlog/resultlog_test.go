package resultlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-language/bulkinstall/pkg/core"
)

var epoch = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func TestFormatLine(t *testing.T) {
	line := FormatLine(Entry{
		Time:    epoch,
		Name:    "git",
		Manager: "apt",
		Mode:    core.ModeInstall,
		Outcome: core.OutcomeFailed,
		Detail:  "exit status 100:\nE: locked\twait",
	})
	assert.Equal(t, "2024-03-01T12:30:00.000Z\tgit\tapt\tinstall\tfailed\texit status 100: | E: locked wait", line)
	assert.Len(t, strings.Split(line, "\t"), 6)
}

func TestParseLineRoundTrip(t *testing.T) {
	e := Entry{Time: epoch, Name: "nodejs", Manager: "choco", Mode: core.ModeUpdate, Outcome: core.OutcomeSkipped}
	got, err := ParseLine(FormatLine(e))
	require.NoError(t, err)
	assert.True(t, e.Time.Equal(got.Time))
	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, e.Outcome, got.Outcome)
	assert.Empty(t, got.Detail)

	_, err = ParseLine("not a log line")
	assert.Error(t, err)
}

func TestAppendStampsWithClock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "results.log")
	l, err := Open(path, Options{Clock: testclock.NewClock(epoch)})
	require.NoError(t, err)

	require.NoError(t, l.Append(Entry{Name: "git", Manager: "apt", Mode: core.ModeInstall, Outcome: core.OutcomeChanged}))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T12:30:00.000Z\tgit\tapt\tinstall\tchanged\t\n", string(data))

	assert.Error(t, l.Append(Entry{Name: "late"}))
	assert.NoError(t, l.Close())
}

func TestConcurrentAppendsDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.log")
	l, err := Open(path, Options{Clock: testclock.NewClock(epoch)})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				err := l.Append(Entry{
					Name:    fmt.Sprintf("pkg-%d-%d", worker, j),
					Manager: "npm",
					Mode:    core.ModeInstall,
					Outcome: core.OutcomeChanged,
					Detail:  strings.Repeat("x", 200),
				})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, l.Close())

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, entries, 16*50)
}

func TestRotationCompressesToXZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.log")
	clk := testclock.NewClock(epoch)
	l, err := Open(path, Options{MaxBytes: 200, Clock: clk})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		clk.Advance(time.Second)
		require.NoError(t, l.Append(Entry{
			Name:    fmt.Sprintf("pkg%d", i),
			Manager: "brew",
			Mode:    core.ModeInstall,
			Outcome: core.OutcomeChanged,
			Detail:  strings.Repeat("d", 80),
		}))
	}
	require.NoError(t, l.Close())

	archives, err := Archives(path)
	require.NoError(t, err)
	assert.NotEmpty(t, archives)
	for _, a := range archives {
		assert.True(t, strings.HasSuffix(a, ".xz"))
	}

	all, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, e := range all {
		assert.Equal(t, fmt.Sprintf("pkg%d", i), e.Name)
	}
}

func TestReadAllWithoutLog(t *testing.T) {
	entries, err := ReadAll(filepath.Join(t.TempDir(), "missing.log"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func appendRotating(t *testing.T, path string, n int) {
	t.Helper()
	clk := testclock.NewClock(epoch)
	l, err := Open(path, Options{MaxBytes: 200, Clock: clk})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		clk.Advance(time.Second)
		require.NoError(t, l.Append(Entry{
			Name:    fmt.Sprintf("pkg%d", i),
			Manager: "brew",
			Mode:    core.ModeInstall,
			Outcome: core.OutcomeChanged,
			Detail:  strings.Repeat("d", 80),
		}))
	}
	require.NoError(t, l.Close())
}

func TestRotationCompressFailureKeepsWriting(t *testing.T) {
	compressFile = func(string, string) error { return fmt.Errorf("no space left on device") }
	t.Cleanup(func() { compressFile = compress })

	path := filepath.Join(t.TempDir(), "results.log")
	appendRotating(t, path, 5)

	archives, err := Archives(path)
	require.NoError(t, err)
	assert.Empty(t, archives)

	all, err := ReadAll(path)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestRotationRemoveFailureKeepsWriting(t *testing.T) {
	removeFile = func(string) error { return fmt.Errorf("permission denied") }
	t.Cleanup(func() { removeFile = os.Remove })

	path := filepath.Join(t.TempDir(), "results.log")
	appendRotating(t, path, 5)

	archives, err := Archives(path)
	require.NoError(t, err)
	assert.Empty(t, archives)

	all, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, e := range all {
		assert.Equal(t, fmt.Sprintf("pkg%d", i), e.Name)
	}
}
