// Package config loads and validates lpmatch configuration from TOML files
// and environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dhowes/lpmatch/internal/matcher"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "LPMATCH_"

// Config is the top-level application configuration.
type Config struct {
	Matcher  MatcherConfig  `toml:"matcher"`
	Executor ExecutorConfig `toml:"executor"`
	Logging  LoggingConfig  `toml:"logging"`
	Watch    WatchConfig    `toml:"watch"`
}

// MatcherConfig configures the prefix matcher.
type MatcherConfig struct {
	// Strategy selects the matching implementation (e.g. "trie").
	Strategy string `toml:"strategy"`

	// PrefixFile is the path of the plain-text prefix list, one prefix
	// per line.
	PrefixFile string `toml:"prefix_file"`
}

// ExecutorConfig configures the batch worker pool.
type ExecutorConfig struct {
	// Workers is the fixed pool size. Zero means the number of CPUs.
	Workers int `toml:"workers"`

	// QueueSize is the task queue buffer size.
	QueueSize int `toml:"queue_size"`

	// GracePeriodMS is the shutdown grace period in milliseconds.
	GracePeriodMS int `toml:"grace_period_ms"`

	// ForcePeriodMS is the post-force shutdown wait in milliseconds.
	ForcePeriodMS int `toml:"force_period_ms"`
}

// GracePeriod returns the grace period as a duration.
func (c ExecutorConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMS) * time.Millisecond
}

// ForcePeriod returns the force period as a duration.
func (c ExecutorConfig) ForcePeriod() time.Duration {
	return time.Duration(c.ForcePeriodMS) * time.Millisecond
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `toml:"level"`
}

// WatchConfig configures prefix file reload watching.
type WatchConfig struct {
	// Enabled turns on the prefix file watcher.
	Enabled bool `toml:"enabled"`

	// DebounceMS collapses bursts of file events within this window.
	DebounceMS int `toml:"debounce_ms"`
}

// Debounce returns the debounce window as a duration.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Matcher: MatcherConfig{
			Strategy: string(matcher.StrategyTrie),
		},
		Executor: ExecutorConfig{
			Workers:       0,
			QueueSize:     64,
			GracePeriodMS: 5000,
			ForcePeriodMS: 5000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Enabled:    false,
			DebounceMS: 250,
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path, and
// environment overrides, in that order of increasing priority. An empty
// path skips the file layer; a non-empty path that cannot be read is an
// error, since a misconfigured service must not start.
//
// Load does not call Validate: command-line overrides are applied after
// loading, and the host validates the final configuration before
// constructing the service.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays LPMATCH_* environment variables onto the config.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvPrefix + "PREFIX_FILE"); ok {
		c.Matcher.PrefixFile = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "STRATEGY"); ok {
		c.Matcher.Strategy = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "WORKERS"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Executor.Workers = n
		}
	}
}

// Validate checks the configuration for construction-time errors.
func (c *Config) Validate() error {
	if c.Matcher.PrefixFile == "" {
		return ErrNoPrefixFile
	}
	if _, err := matcher.ParseStrategy(c.Matcher.Strategy); err != nil {
		return err
	}
	if c.Executor.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidValue)
	}
	if c.Executor.GracePeriodMS < 0 || c.Executor.ForcePeriodMS < 0 {
		return fmt.Errorf("%w: shutdown periods must not be negative", ErrInvalidValue)
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce must not be negative", ErrInvalidValue)
	}
	return nil
}
