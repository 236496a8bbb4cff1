// bulkinstall.go
package bulkinstall

import (
	"context"
	"fmt"

	"github.com/juju/clock"
	"github.com/rs/zerolog"

	"github.com/arc-language/bulkinstall/pkg/backend"
	"github.com/arc-language/bulkinstall/pkg/core"
	"github.com/arc-language/bulkinstall/pkg/logging"
	"github.com/arc-language/bulkinstall/pkg/metrics"
	"github.com/arc-language/bulkinstall/pkg/orchestrator"
	"github.com/arc-language/bulkinstall/pkg/platform"
	"github.com/arc-language/bulkinstall/pkg/registry"
	"github.com/arc-language/bulkinstall/pkg/resultlog"
	"github.com/arc-language/bulkinstall/pkg/runner"
)

// Re-export core types for convenience
type (
	Config       = core.Config
	Declaration  = core.Declaration
	Mode         = core.Mode
	Outcome      = core.Outcome
	Attempt      = core.Attempt
	RunSummary   = core.RunSummary
	SummaryEntry = core.SummaryEntry
	Adapter      = core.Adapter
)

// Re-export modes and outcomes
const (
	ModeInstall   = core.ModeInstall
	ModeUninstall = core.ModeUninstall
	ModeUpdate    = core.ModeUpdate
	ModeDryRun    = core.ModeDryRun

	OutcomeChanged = core.OutcomeChanged
	OutcomeSkipped = core.OutcomeSkipped
	OutcomeFailed  = core.OutcomeFailed
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return core.DefaultConfig()
}

// NewDeclaration returns a declaration with default field values
func NewDeclaration(name string) Declaration {
	return core.NewDeclaration(name)
}

// Option customizes how New wires an Installer
type Option func(*options)

type options struct {
	runner   runner.Runner
	adapters []core.Adapter
	platform *platform.Platform
	clock    clock.Clock
}

// WithRunner runs manager commands and hooks through r instead of os/exec
func WithRunner(r runner.Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithAdapters replaces the built-in manager adapters
func WithAdapters(adapters ...core.Adapter) Option {
	return func(o *options) { o.adapters = adapters }
}

// WithPlatform skips host detection
func WithPlatform(p *platform.Platform) Option {
	return func(o *options) { o.platform = p }
}

// WithClock stamps the summary and result log from c
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Installer applies declarations to the host through its package managers
type Installer struct {
	config   *Config
	platform *platform.Platform
	registry *registry.Registry
	aliases  *registry.Aliases
	log      *resultlog.Log
	metrics  *metrics.Metrics
	orch     *orchestrator.Orchestrator
	order    []string
	logger   zerolog.Logger
}

// New creates an Installer from cfg
func New(cfg *Config, opts ...Option) (*Installer, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	if err := cfg.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfigurationRejected, err)
	}

	o := options{clock: clock.WallClock}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runner == nil {
		o.runner = runner.NewExec()
	}
	if o.platform == nil {
		o.platform = platform.Detect()
	}
	if o.adapters == nil {
		for _, a := range backend.NewBuiltin(o.runner, backend.OptionsFromConfig(cfg)) {
			o.adapters = append(o.adapters, a)
		}
	}

	reg := registry.New()
	for _, a := range o.adapters {
		if err := reg.Register(a); err != nil {
			return nil, fmt.Errorf("registering adapters: %w", err)
		}
	}

	log, err := resultlog.Open(cfg.ResultLog.Path, resultlog.Options{
		MaxBytes: cfg.ResultLog.MaxBytes,
		Clock:    o.clock,
	})
	if err != nil {
		return nil, fmt.Errorf("opening result log: %w", err)
	}

	m := metrics.New()
	order := platform.Order(o.platform, cfg.Priority)

	orch, err := orchestrator.New(orchestrator.Config{
		Lookup:  reg,
		Order:   order,
		Workers: cfg.Workers,
		Timeout: cfg.Timeout,
		Log:     log,
		Metrics: m,
		Runner:  o.runner,
		Clock:   o.clock,
	})
	if err != nil {
		log.Close()
		return nil, err
	}

	return &Installer{
		config:   cfg,
		platform: o.platform,
		registry: reg,
		aliases:  registry.NewAliases(cfg.Registry.Path),
		log:      log,
		metrics:  m,
		orch:     orch,
		order:    order,
		logger:   logging.GetLogger("installer"),
	}, nil
}

// Run applies mode to every declaration carrying at least one of tags
// (all declarations when tags is empty). The summary is returned even when
// the run stops early.
func (i *Installer) Run(ctx context.Context, decls []Declaration, mode Mode, tags []string) (*RunSummary, error) {
	done := logging.LogOperationStart(i.logger, "run")
	defer done()

	resolved := make([]Declaration, len(decls))
	synced := i.aliases.Exists()
	for n, d := range decls {
		if synced {
			d.Aliases = i.aliases.Apply(d.Name, d.Aliases)
		}
		resolved[n] = d
	}

	summary, err := i.orch.Run(ctx, resolved, orchestrator.RunOptions{Mode: mode, Tags: tags})
	if summary != nil {
		if werr := i.metrics.WriteTextfile(i.config.Metrics.Textfile); werr != nil {
			i.logger.Warn().Err(werr).Msg("Failed to export metrics")
		}
	}
	return summary, err
}

// ManagerStatus describes one registered manager on this host
type ManagerStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Rank      int    `json:"rank"` // Position in the default order, 0 when not in it
}

// Managers reports every registered manager in default order first
func (i *Installer) Managers(ctx context.Context) []ManagerStatus {
	var out []ManagerStatus
	seen := make(map[string]bool)
	add := func(name string, rank int) {
		a, ok := i.registry.Get(name)
		if !ok || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, ManagerStatus{Name: name, Available: a.IsAvailable(ctx), Rank: rank})
	}
	for n, name := range i.order {
		add(name, n+1)
	}
	for _, name := range i.registry.Names() {
		add(name, 0)
	}
	return out
}

// Platform returns the detected host platform
func (i *Installer) Platform() *platform.Platform {
	return i.platform
}

// Order returns the default manager order for this host
func (i *Installer) Order() []string {
	return append([]string(nil), i.order...)
}

// LogPath returns the result log location
func (i *Installer) LogPath() string {
	return i.log.Path()
}

// Metrics exposes the collectors updated by Run
func (i *Installer) Metrics() *metrics.Metrics {
	return i.metrics
}

// Close releases the result log
func (i *Installer) Close() error {
	return i.log.Close()
}
