// Package config loads pkgbuild configuration from YAML, .env files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pkgbuild/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = "pkgbuild.yaml"

// Config represents the application configuration.
type Config struct {
	// Workspace is the workspace root used when the CLI is not given one.
	Workspace string `yaml:"workspace,omitempty"`
	// DefaultWorkspace receives build output when the package root is not a workspace
	// and hack mode is enabled.
	DefaultWorkspace string `yaml:"default_workspace,omitempty"`
	// SearchPath lists extra directories consulted by the hack-mode fallback.
	SearchPath []string `yaml:"search_path,omitempty"`
	// HackMode treats arbitrary directories as package sources.
	HackMode bool `yaml:"hack_mode,omitempty"`
	// Cfgs are global configuration tags merged into every unit compilation.
	Cfgs []string `yaml:"cfgs,omitempty"`
	// TempDir is where fetches are staged; empty means os.TempDir().
	TempDir string `yaml:"temp_dir,omitempty"`

	Cache    CacheConfig    `yaml:"cache"`
	Compiler CompilerConfig `yaml:"compiler"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// CacheConfig configures the incremental work cache.
type CacheConfig struct {
	// Database is the sqlite file; relative paths are resolved against the
	// destination workspace.
	Database string `yaml:"database,omitempty"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// CompilerConfig configures the external compiler command.
type CompilerConfig struct {
	Command  string              `yaml:"command,omitempty"`
	Args     []string            `yaml:"args,omitempty"`
	KindArgs map[string][]string `yaml:"kind_args,omitempty"`
	Env      []string            `yaml:"env,omitempty"`
}

// FetchConfig configures git fetching.
type FetchConfig struct {
	ShallowDepth int         `yaml:"shallow_depth,omitempty"`
	Retry        RetryConfig `yaml:"retry"`
}

// RetryConfig holds raw backoff settings for transient clone failures.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode,omitempty"`
	Initial    time.Duration    `yaml:"initial,omitempty"`
	Max        time.Duration    `yaml:"max,omitempty"`
	MaxRetries *int             `yaml:"max_retries,omitempty"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig configures metrics output.
type MetricsConfig struct {
	// Textfile, when set, receives the Prometheus registry after each command.
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configPath (a missing file yields defaults), loads .env files and
// applies environment overrides.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()
	return LoadWith(configPath, os.Getenv)
}

// LoadWith is Load without .env handling and with an injectable environment lookup.
func LoadWith(configPath string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath) // #nosec G304 -- user-supplied config path
		switch {
		case err == nil:
			expanded := os.Expand(string(data), getenv)
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, errors.ConfigError("failed to parse configuration").
					WithCause(err).
					WithContext("path", configPath).
					Build()
			}
		case os.IsNotExist(err):
			// defaults only
		default:
			return nil, errors.ConfigError("failed to read configuration").
				WithCause(err).
				WithContext("path", configPath).
				Build()
		}
	}

	applyEnv(cfg, getenv)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env then .env.local; variables already set win.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load %s: %v\n", name, err)
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Workspace == "" {
		cfg.Workspace = "."
	}
	if cfg.Cache.Database == "" {
		cfg.Cache.Database = filepath.Join(".pkgbuild", "workcache.db")
	}
	if cfg.Compiler.Command == "" {
		cfg.Compiler.Command = "rustc"
	}
	if cfg.Compiler.KindArgs == nil {
		cfg.Compiler.KindArgs = map[string][]string{
			"library":    {"--crate-type=lib"},
			"executable": {"--crate-type=bin"},
			"test":       {"--test"},
			"benchmark":  {"--test", "--cfg", "bench"},
		}
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	if cfg.Fetch.Retry.Mode != "" {
		cfg.Fetch.Retry.Mode = NormalizeRetryBackoff(string(cfg.Fetch.Retry.Mode))
	}
}

// Validate rejects impossible settings.
func (c *Config) Validate() error {
	if c.Fetch.ShallowDepth < 0 {
		return errors.ValidationError("fetch.shallow_depth cannot be negative").Build()
	}
	if c.Fetch.Retry.MaxRetries != nil && *c.Fetch.Retry.MaxRetries < 0 {
		return errors.ValidationError("fetch.retry.max_retries cannot be negative").Build()
	}
	if c.Fetch.Retry.Initial < 0 || c.Fetch.Retry.Max < 0 {
		return errors.ValidationError("fetch.retry durations cannot be negative").Build()
	}
	return nil
}
