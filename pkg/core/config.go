// pkg/core/config.go
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultWorkers is the default number of declarations processed at once
	DefaultWorkers = 2
	// MaxWorkers is the hard ceiling on concurrency
	MaxWorkers = 16
	// DefaultTimeout bounds a single manager invocation
	DefaultTimeout = 5 * time.Minute
	// DefaultLogMaxBytes is the result log size that triggers rotation
	DefaultLogMaxBytes = 8 << 20

	// EnvPrefix prefixes every environment override
	EnvPrefix = "BULKINSTALL_"
)

// Sudo policies for system package managers
const (
	SudoAuto   = "auto"
	SudoAlways = "always"
	SudoNever  = "never"
)

// Config holds bulkinstall configuration
type Config struct {
	Workers   int           `koanf:"workers" yaml:"workers"`
	Timeout   time.Duration `koanf:"timeout" yaml:"-"`
	Sudo      string        `koanf:"sudo" yaml:"sudo"`
	Priority  []string      `koanf:"priority" yaml:"priority,omitempty"`
	LogLevel  int           `koanf:"log_level" yaml:"log_level"`
	ResultLog ResultLog     `koanf:"result_log" yaml:"result_log"`
	Registry  Registry      `koanf:"registry" yaml:"registry"`
	Metrics   Metrics       `koanf:"metrics" yaml:"metrics"`
}

// ResultLog configures the append-only audit log
type ResultLog struct {
	Path     string `koanf:"path" yaml:"path"`
	MaxBytes int64  `koanf:"max_bytes" yaml:"max_bytes"`
}

// Registry configures the package alias registry
type Registry struct {
	Path   string `koanf:"path" yaml:"path"`
	URL    string `koanf:"url" yaml:"url,omitempty"`
	Branch string `koanf:"branch" yaml:"branch,omitempty"`
}

// Metrics configures the Prometheus textfile export
type Metrics struct {
	Textfile string `koanf:"textfile" yaml:"textfile,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers: DefaultWorkers,
		Timeout: DefaultTimeout,
		Sudo:    SudoAuto,
		ResultLog: ResultLog{
			Path:     filepath.Join(xdg.StateHome, "bulkinstall", "results.log"),
			MaxBytes: DefaultLogMaxBytes,
		},
		Registry: Registry{
			Path:   filepath.Join(xdg.CacheHome, "bulkinstall", "registry"),
			Branch: "main",
		},
	}
}

// DefaultConfigPath returns where the config file lives when none is given
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "bulkinstall", "config.yaml")
}

func defaultsMap() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"workers":              d.Workers,
		"timeout":              d.Timeout.String(),
		"sudo":                 d.Sudo,
		"log_level":            d.LogLevel,
		"result_log.path":      d.ResultLog.Path,
		"result_log.max_bytes": d.ResultLog.MaxBytes,
		"registry.path":        d.Registry.Path,
		"registry.branch":      d.Registry.Branch,
	}
}

// LoadConfig loads configuration from defaults, the YAML file at path and
// BULKINSTALL_* environment variables, in that order of precedence
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		// result_log and log_level keep their underscore, nested keys use "__"
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize clamps values into their allowed ranges and rejects unknown settings
func (c *Config) Normalize() error {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Workers > MaxWorkers {
		c.Workers = MaxWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	switch c.Sudo {
	case "":
		c.Sudo = SudoAuto
	case SudoAuto, SudoAlways, SudoNever:
	default:
		return fmt.Errorf("invalid sudo policy %q (want auto, always or never)", c.Sudo)
	}
	if c.ResultLog.MaxBytes < 0 {
		c.ResultLog.MaxBytes = 0
	}
	return nil
}

// MarshalYAML writes the timeout in its human form so the file round-trips
func (c Config) MarshalYAML() (interface{}, error) {
	type plain Config
	return struct {
		plain   `yaml:",inline"`
		Timeout string `yaml:"timeout"`
	}{plain: plain(c), Timeout: c.Timeout.String()}, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
