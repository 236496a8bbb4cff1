// Package report renders a run summary for people and for scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/arc-language/bulkinstall/pkg/core"
)

const rule = "=================================================="

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Options adds host context to the text report
type Options struct {
	Color    bool     // Style headings with ANSI colors
	Platform string   // Detected platform, shown when set
	Managers []string // Available managers, shown when set
	LogPath  string   // Result log location, shown when set
}

// ColorEnabled reports whether f is a terminal that should get styled output
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type printer struct {
	w     io.Writer
	color bool
	err   error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) style(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

// Text writes a human readable summary of s to w
func Text(w io.Writer, s *core.RunSummary, opts Options) error {
	p := &printer{w: w, color: opts.Color}

	p.printf("\n%s\n%s\n%s\n", rule, p.style(titleStyle, "BULK INSTALL SUMMARY"), rule)
	p.printf("Run: %s\n", s.RunID)
	p.printf("Mode: %s\n", s.Mode)
	if opts.Platform != "" {
		p.printf("Platform: %s\n", opts.Platform)
	}
	if len(s.Tags) > 0 {
		p.printf("Tags: %s\n", strings.Join(s.Tags, ", "))
	}
	p.printf("Total: %d  changed: %d  skipped: %d  failed: %d\n", s.Total, s.Changed, s.Skipped, s.Failed)
	if !s.Started.IsZero() && !s.Finished.IsZero() {
		p.printf("Duration: %.2f seconds\n", s.Finished.Sub(s.Started).Seconds())
	}
	if len(opts.Managers) > 0 {
		p.printf("Available managers: %s\n", strings.Join(opts.Managers, ", "))
	}

	if changed := s.ByOutcome(core.OutcomeChanged); len(changed) > 0 {
		p.printf("\n%s\n", p.style(successStyle, changedHeading(s.Mode)+":"))
		for _, e := range changed {
			p.printf("  • %s (%s)\n", e.Name, e.Manager)
		}
	}

	if skipped := s.ByOutcome(core.OutcomeSkipped); len(skipped) > 0 {
		p.printf("\n%s\n", p.style(skipStyle, "Skipped:"))
		for _, e := range skipped {
			p.printf("  • %s (%s)\n", e.Name, e.Manager)
		}
	}

	if failed := s.ByOutcome(core.OutcomeFailed); len(failed) > 0 {
		p.printf("\n%s\n", p.style(errorStyle, "Failed:"))
		for _, e := range failed {
			manager := e.Manager
			if manager == "" {
				manager = "-"
			}
			p.printf("  • %s (%s)", e.Name, manager)
			for i, line := range detailLines(e.Detail) {
				if i == 0 {
					p.printf(": %s", p.style(mutedStyle, line))
					continue
				}
				p.printf("\n      %s", p.style(mutedStyle, line))
			}
			p.printf("\n")
		}
	}

	if len(s.NotAttempted) > 0 {
		p.printf("\n%s\n", p.style(warnStyle, "Not attempted:"))
		for _, name := range s.NotAttempted {
			p.printf("  • %s\n", name)
		}
	}

	if s.Aborted != "" {
		p.printf("\n%s %s\n", p.style(warnStyle, "Run aborted:"), s.Aborted)
	}
	if opts.LogPath != "" {
		p.printf("\nResult log: %s\n", opts.LogPath)
	}
	p.printf("%s\n", rule)
	return p.err
}

// JSON writes s as indented JSON
func JSON(w io.Writer, s *core.RunSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func changedHeading(m core.Mode) string {
	switch m {
	case core.ModeUninstall:
		return "Uninstalled"
	case core.ModeUpdate:
		return "Updated"
	case core.ModeDryRun:
		return "Would install"
	}
	return "Installed"
}

// detailLines splits a captured output tail into its non-empty lines
func detailLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimRight(line, " \t\r"); strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
