// Package orchestrator runs a set of declarations through resolution and
// execution on a bounded worker pool and aggregates the outcomes.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/collections/set"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/executor"
	"github.com/arc-language/bulkinstall/pkg/logging"
	"github.com/arc-language/bulkinstall/pkg/metrics"
	"github.com/arc-language/bulkinstall/pkg/resolver"
	"github.com/arc-language/bulkinstall/pkg/resultlog"
	"github.com/arc-language/bulkinstall/pkg/runner"
)

// noManager fills the manager column when nothing could be attempted
const noManager = "-"

// Config wires an Orchestrator
type Config struct {
	// Lookup maps manager names to adapters. Required.
	Lookup core.Lookup

	// Order is the platform default manager order
	Order []string

	// Workers bounds how many declarations run at once
	Workers int

	// Timeout bounds each attempt
	Timeout time.Duration

	// Log receives one entry per attempt. Optional.
	Log resultlog.Sink

	// Metrics records attempts and outcomes. Optional.
	Metrics *metrics.Metrics

	// Runner runs pre/post install hooks. Optional.
	Runner runner.Runner

	// Clock stamps the summary and the result log
	Clock clock.Clock
}

// RunOptions is the per-run configuration surface
type RunOptions struct {
	Mode core.Mode
	Tags []string
}

// Orchestrator drives declarations to their classified outcome
type Orchestrator struct {
	cfg      Config
	executor *executor.Executor
	logger   zerolog.Logger
}

// New creates an orchestrator
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Lookup == nil {
		return nil, errors.New("orchestrator: adapter lookup is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = core.DefaultWorkers
	}
	if cfg.Workers > core.MaxWorkers {
		cfg.Workers = core.MaxWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = core.DefaultTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	return &Orchestrator{
		cfg: cfg,
		executor: executor.New(executor.Options{
			Runner:  cfg.Runner,
			Timeout: cfg.Timeout,
			Clock:   cfg.Clock,
		}),
		logger: logging.GetLogger("orchestrator"),
	}, nil
}

// result is what a worker hands to the aggregator
type result struct {
	index        int
	entry        core.SummaryEntry
	notAttempted bool
}

// Run processes decls in mode. The summary is returned even when the run
// stops early; the error is then the cancellation or the fault that
// stopped it.
func (o *Orchestrator) Run(ctx context.Context, decls []core.Declaration, opts RunOptions) (*core.RunSummary, error) {
	if !validMode(opts.Mode) {
		return nil, fmt.Errorf("orchestrator: unknown mode %q", opts.Mode)
	}

	selected := Select(decls, opts.Tags)
	summary := &core.RunSummary{
		RunID:   uuid.NewString(),
		Mode:    opts.Mode,
		Tags:    opts.Tags,
		Started: o.cfg.Clock.Now(),
		Total:   len(selected),
	}
	logger := o.logger.With().Str("run_id", summary.RunID).Str("mode", opts.Mode.String()).Logger()
	logger.Info().Int("declarations", len(selected)).Int("workers", o.cfg.Workers).Msg("Run started")

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	res := resolver.New(o.cfg.Lookup, o.cfg.Order)
	results := make(chan result)
	slots := make([]*result, len(selected))

	aggregated := make(chan struct{})
	go func() {
		defer close(aggregated)
		for r := range results {
			r := r
			slots[r.index] = &r
			if !r.notAttempted {
				o.cfg.Metrics.ObserveDeclaration(opts.Mode, r.entry.Outcome)
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for i := range selected {
		if runCtx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			results <- o.process(runCtx, cancel, res, i, selected[i], opts.Mode)
			return nil
		})
	}
	_ = g.Wait()
	close(results)
	<-aggregated

	for i, r := range slots {
		if r == nil || r.notAttempted {
			summary.NotAttempted = append(summary.NotAttempted, selected[i].Name)
			continue
		}
		summary.Add(r.entry)
	}
	summary.Finished = o.cfg.Clock.Now()
	o.cfg.Metrics.ObserveRun(summary)

	var err error
	if cause := context.Cause(runCtx); cause != nil && runCtx.Err() != nil {
		err = cause
		summary.Aborted = cause.Error()
		logger.Warn().Err(cause).Int("not_attempted", len(summary.NotAttempted)).Msg("Run stopped early")
	}

	logger.Info().
		Int("total", summary.Total).
		Int("changed", summary.Changed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Finished.Sub(summary.Started)).
		Msg("Run finished")
	return summary, err
}

// process runs one declaration's full state machine on the calling worker
func (o *Orchestrator) process(runCtx context.Context, abort context.CancelCauseFunc, res *resolver.Resolver, index int, decl core.Declaration, mode core.Mode) result {
	if runCtx.Err() != nil {
		return result{index: index, notAttempted: true}
	}

	// A dispatched declaration runs to completion; only the timeout stops it
	ctx := context.WithoutCancel(runCtx)
	logger := o.logger.With().Str("package", decl.Name).Logger()

	candidates := res.Resolve(ctx, decl)
	var attempts []core.Attempt
	for _, manager := range candidates {
		adapter, ok := o.cfg.Lookup.Get(manager)
		if !ok || !res.Available(ctx, manager) {
			logger.Debug().Str("manager", manager).Msg("Skipping unavailable manager")
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
		attempt := o.executor.Execute(attemptCtx, decl, adapter, mode)
		cancel()

		attempts = append(attempts, attempt)
		o.cfg.Metrics.ObserveAttempt(mode, attempt)

		if err := o.record(decl.Name, mode, attempt.Manager, attempt.Outcome(), attempt.Detail()); err != nil {
			abort(err)
			break
		}
		if attempt.Succeeded {
			break
		}
	}

	entry := classify(decl, attempts)
	if entry.Reason == core.ReasonResolution {
		logger.Warn().Strs("candidates", candidates).Msg("No available manager")
		if err := o.record(decl.Name, mode, noManager, core.OutcomeFailed, entry.Detail); err != nil {
			abort(err)
		}
	}
	return result{index: index, entry: entry}
}

// record appends one result log line
func (o *Orchestrator) record(name string, mode core.Mode, manager string, outcome core.Outcome, detail string) error {
	if o.cfg.Log == nil {
		return nil
	}
	err := o.cfg.Log.Append(resultlog.Entry{
		Time:    o.cfg.Clock.Now(),
		Name:    name,
		Manager: manager,
		Mode:    mode,
		Outcome: outcome,
		Detail:  detail,
	})
	if err != nil {
		return fmt.Errorf("result log: %w", err)
	}
	return nil
}

// classify derives the summary entry from the ordered attempts
func classify(decl core.Declaration, attempts []core.Attempt) core.SummaryEntry {
	outcome, decisive := core.Classify(attempts)
	entry := core.SummaryEntry{
		Name:     decl.Name,
		Outcome:  outcome,
		Attempts: attempts,
	}

	if decisive == nil {
		entry.Reason = core.ReasonResolution
		entry.Detail = core.ErrResolutionFailure.Error()
		return entry
	}

	entry.Manager = decisive.Manager
	entry.Detail = decisive.Detail()
	if outcome == core.OutcomeFailed {
		entry.Reason = core.ReasonExecution
	}
	return entry
}

// Select applies the tag filter and orders by descending priority, keeping
// declaration order on ties
func Select(decls []core.Declaration, tags []string) []core.Declaration {
	filter := set.NewStrings(tags...)

	selected := make([]core.Declaration, 0, len(decls))
	for _, d := range decls {
		if filter.IsEmpty() || !filter.Intersection(set.NewStrings(d.Tags...)).IsEmpty() {
			selected = append(selected, d)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Priority > selected[j].Priority
	})
	return selected
}

func validMode(m core.Mode) bool {
	for _, known := range core.Modes {
		if m == known {
			return true
		}
	}
	return false
}
