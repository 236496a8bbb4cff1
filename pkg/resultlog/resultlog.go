// Package resultlog is the append-only audit trail of every attempt.
//
// Each line has the form
//
//	<timestamp>\t<name>\t<manager>\t<mode>\t<outcome>\t<detail>
//
// Writes from concurrent workers are serialized. When the file grows past
// its size limit it is compressed into a timestamped .xz archive next to it.
package resultlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/ulikunitz/xz"

	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/logging"
)

// TimeFormat is the timestamp layout of the first column
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

const archiveSuffix = ".xz"

// Replaced in tests to make rotation fail
var (
	compressFile = compress
	removeFile   = os.Remove
)

// Entry is one line of the log
type Entry struct {
	Time    time.Time
	Name    string
	Manager string
	Mode    core.Mode
	Outcome core.Outcome
	Detail  string
}

// Sink receives log entries
type Sink interface {
	Append(e Entry) error
}

// FormatLine renders e as one line without the trailing newline. Tabs and
// newlines inside fields are replaced so every entry stays on one line.
func FormatLine(e Entry) string {
	fields := []string{
		e.Time.UTC().Format(TimeFormat),
		clean(e.Name),
		clean(e.Manager),
		clean(string(e.Mode)),
		clean(string(e.Outcome)),
		clean(e.Detail),
	}
	return strings.Join(fields, "\t")
}

var cleaner = strings.NewReplacer("\t", " ", "\r\n", " | ", "\n", " | ", "\r", " ")

func clean(s string) string {
	return cleaner.Replace(s)
}

// ParseLine is the inverse of FormatLine
func ParseLine(line string) (Entry, error) {
	fields := strings.SplitN(strings.TrimRight(line, "\r\n"), "\t", 6)
	if len(fields) != 6 {
		return Entry{}, fmt.Errorf("malformed result log line: %d fields", len(fields))
	}
	ts, err := time.Parse(TimeFormat, fields[0])
	if err != nil {
		return Entry{}, fmt.Errorf("malformed result log timestamp: %w", err)
	}
	return Entry{
		Time:    ts,
		Name:    fields[1],
		Manager: fields[2],
		Mode:    core.Mode(fields[3]),
		Outcome: core.Outcome(fields[4]),
		Detail:  fields[5],
	}, nil
}

// Options configures a Log
type Options struct {
	// MaxBytes triggers rotation once the file reaches it. Zero disables rotation.
	MaxBytes int64

	// Clock stamps entries without a time and names archives
	Clock clock.Clock
}

// Log is a file-backed Sink
type Log struct {
	mu     sync.Mutex
	path   string
	opts   Options
	file   *os.File
	size   int64
	closed bool
}

var _ Sink = (*Log)(nil)

// Open opens path for appending, creating it and its directory if needed
func Open(path string, opts Options) (*Log, error) {
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating result log directory: %w", err)
	}

	l := &Log{path: path, opts: opts}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening result log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat result log: %w", err)
	}
	l.file = f
	l.size = info.Size()
	return nil
}

// Path returns the file being written
func (l *Log) Path() string {
	return l.path
}

// Append writes one entry. It is safe for concurrent use.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return fmt.Errorf("result log %s is closed", l.path)
	}
	if e.Time.IsZero() {
		e.Time = l.opts.Clock.Now()
	}

	n, err := io.WriteString(l.file, FormatLine(e)+"\n")
	l.size += int64(n)
	if err != nil {
		return fmt.Errorf("writing result log: %w", err)
	}

	if l.opts.MaxBytes > 0 && l.size >= l.opts.MaxBytes {
		if err := l.rotate(); err != nil {
			return err
		}
	}
	return nil
}

// rotate compresses the current file into an archive and starts a new one.
// A failed compression keeps the uncompressed file; only failing to reopen
// it is returned, since the entry that triggered rotation is already written.
func (l *Log) rotate() error {
	logger := logging.GetLogger("resultlog").With().Str("path", l.path).Logger()
	if err := l.file.Close(); err != nil {
		logger.Warn().Err(err).Msg("Closing result log for rotation failed")
	}

	stamp := l.opts.Clock.Now().UTC().Format("20060102T150405.000")
	stamp = strings.ReplaceAll(stamp, ".", "")
	archive := fmt.Sprintf("%s.%s%s", l.path, stamp, archiveSuffix)
	for i := 1; fileExists(archive); i++ {
		archive = fmt.Sprintf("%s.%s-%d%s", l.path, stamp, i, archiveSuffix)
	}

	if err := compressFile(l.path, archive); err != nil {
		logger.Warn().Err(err).Msg("Compressing result log failed, continuing uncompressed")
		os.Remove(archive)
	} else if err := removeFile(l.path); err != nil {
		// The entries stay in the live file; drop the archive so they are not read twice
		logger.Warn().Err(err).Msg("Removing rotated result log failed, continuing uncompressed")
		os.Remove(archive)
	}

	if err := l.open(); err != nil {
		l.closed = true
		return fmt.Errorf("reopening result log after rotation: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func compress(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	w, err := xz.NewWriter(out)
	if err != nil {
		out.Close()
		return err
	}
	if _, err := io.Copy(w, in); err != nil {
		w.Close()
		out.Close()
		return err
	}
	if err := w.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Close flushes and closes the file
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

// Read parses a log file, decompressing it when it ends in .xz
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, archiveSuffix) {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		r = xr
	}

	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		e, err := ParseLine(scanner.Text())
		if err != nil {
			return entries, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}

// Archives lists the rotated archives of path, oldest first
func Archives(path string) ([]string, error) {
	matches, err := filepath.Glob(path + ".*" + archiveSuffix)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ReadAll reads every archive of path followed by the live file
func ReadAll(path string) ([]Entry, error) {
	archives, err := Archives(path)
	if err != nil {
		return nil, err
	}

	var all []Entry
	for _, a := range archives {
		entries, err := Read(a)
		if err != nil {
			return all, err
		}
		all = append(all, entries...)
	}

	entries, err := Read(path)
	if err != nil && !os.IsNotExist(err) {
		return all, err
	}
	return append(all, entries...), nil
}
