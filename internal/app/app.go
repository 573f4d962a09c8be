package app

import (
	"context"
	"sync"
	"time"

	"github.com/dhowes/lpmatch/internal/config"
	"github.com/dhowes/lpmatch/internal/logging"
	"github.com/dhowes/lpmatch/internal/watch"
)

// Options carries command-line overrides into application construction.
type Options struct {
	// ConfigPath is the TOML configuration file. Empty means defaults
	// plus environment.
	ConfigPath string

	// PrefixFile overrides the configured prefix file path.
	PrefixFile string

	// Strategy overrides the configured matching strategy.
	Strategy string

	// LogLevel overrides the configured log level.
	LogLevel string

	// Workers overrides the configured worker count when positive.
	Workers int

	// Watch enables the prefix file watcher.
	Watch bool
}

// Application owns the service and its collaborators for the lifetime of
// the process.
type Application struct {
	cfg     config.Config
	log     *logging.Logger
	service *Service
	watcher *watch.Watcher

	shutdownOnce sync.Once
	shutdownErr  error
}

// New loads configuration, applies option overrides, and constructs the
// service and (optionally) the prefix file watcher. Construction is
// all-or-nothing: on error nothing is left running.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.PrefixFile != "" {
		cfg.Matcher.PrefixFile = opts.PrefixFile
	}
	if opts.Strategy != "" {
		cfg.Matcher.Strategy = opts.Strategy
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	if opts.Workers > 0 {
		cfg.Executor.Workers = opts.Workers
	}
	if opts.Watch {
		cfg.Watch.Enabled = true
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Prefix: "lpmatch",
	})

	service, err := NewService(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &Application{
		cfg:     cfg,
		log:     log,
		service: service,
	}

	if cfg.Watch.Enabled {
		watcher, err := watch.New(cfg.Matcher.PrefixFile, cfg.Watch.Debounce(), func() {
			if rerr := service.ReloadPrefixes(); rerr != nil {
				log.Warn("prefix reload failed, keeping previous prefixes: %v", rerr)
			}
		}, log)
		if err != nil {
			a.Shutdown()
			return nil, err
		}
		a.watcher = watcher
	}

	return a, nil
}

// Service returns the matching service.
func (a *Application) Service() *Service {
	return a.service
}

// Logger returns the application logger.
func (a *Application) Logger() *logging.Logger {
	return a.log
}

// Config returns the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

// Shutdown stops the watcher and retires the worker pool. It is safe to
// call from multiple exit paths; only the first call does the work.
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		if a.watcher != nil {
			if err := a.watcher.Close(); err != nil {
				a.log.Warn("closing watcher: %v", err)
			}
		}

		// Budget for the pool's own grace and force periods, plus slack.
		budget := a.cfg.Executor.GracePeriod() + a.cfg.Executor.ForcePeriod() + time.Second
		ctx, cancel := context.WithTimeout(context.Background(), budget)
		defer cancel()

		if err := a.service.Shutdown(ctx); err != nil {
			a.log.Error("service shutdown: %v", err)
			a.shutdownErr = err
			return
		}
		a.log.Info("service shut down")
	})
	return a.shutdownErr
}
