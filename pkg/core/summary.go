// pkg/core/summary.go
package core

import "time"

// SummaryEntry is the final classification of one declaration
type SummaryEntry struct {
	Name     string        `json:"name"`
	Manager  string        `json:"manager,omitempty"` // Deciding manager, or last attempted on failure
	Outcome  Outcome       `json:"outcome"`
	Reason   FailureReason `json:"reason,omitempty"`
	Detail   string        `json:"detail,omitempty"`
	Attempts []Attempt     `json:"-"`
}

// RunSummary aggregates the outcome of one orchestrator run
type RunSummary struct {
	RunID        string         `json:"run_id"`
	Mode         Mode           `json:"mode"`
	Tags         []string       `json:"tags,omitempty"`
	Started      time.Time      `json:"started"`
	Finished     time.Time      `json:"finished"`
	Total        int            `json:"total"` // Declarations selected for the run
	Changed      int            `json:"changed"`
	Skipped      int            `json:"skipped"`
	Failed       int            `json:"failed"`
	Entries      []SummaryEntry `json:"entries"`                 // Classified declarations in processing order
	NotAttempted []string       `json:"not_attempted,omitempty"` // Never dispatched because the run stopped early
	Aborted      string         `json:"aborted,omitempty"`       // Reason the run stopped early
}

// Add records a classified declaration and bumps the matching counter
func (s *RunSummary) Add(e SummaryEntry) {
	switch e.Outcome {
	case OutcomeChanged:
		s.Changed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
	s.Entries = append(s.Entries, e)
}

// Processed returns the number of declarations that reached a classification
func (s *RunSummary) Processed() int {
	return len(s.Entries)
}

// ByOutcome returns the entries carrying the given outcome, in processing order
func (s *RunSummary) ByOutcome(o Outcome) []SummaryEntry {
	var out []SummaryEntry
	for _, e := range s.Entries {
		if e.Outcome == o {
			out = append(out, e)
		}
	}
	return out
}

// Successful reports whether the run completed with no failures
func (s *RunSummary) Successful() bool {
	return s.Failed == 0 && s.Aborted == "" && len(s.NotAttempted) == 0
}
