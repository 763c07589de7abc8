package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	appconfig "github.com/Iron-Ham/tourguide/internal/config"
	"github.com/Iron-Ham/tourguide/internal/definition"
	"github.com/Iron-Ham/tourguide/internal/event"
	"github.com/Iron-Ham/tourguide/internal/logging"
	"github.com/Iron-Ham/tourguide/internal/metrics"
	"github.com/Iron-Ham/tourguide/internal/tour"
	"github.com/Iron-Ham/tourguide/internal/tui/styles"
	"github.com/Iron-Ham/tourguide/internal/tui/tooltip"
)

// environment bundles everything a command needs to mount tours: the loaded
// configuration, logging, the event bus, the definition catalog, the
// registry and the presentational layer.
type environment struct {
	cfg      *appconfig.Config
	logger   *logging.Logger
	bus      *event.Bus
	actions  *definition.Actions
	catalog  *definition.Catalog
	watcher  *definition.Watcher // nil unless tours.watch is set
	registry *tour.Registry
	policy   tour.FallbackPolicy
	styles   styles.Styles
	renderer tooltip.Renderer

	collector     *metrics.Collector
	stopMetrics   context.CancelFunc
	metricsServer sync.WaitGroup
}

// newLogger builds the logger described by cfg. Disabled logging yields a
// logger that discards everything.
func newLogger(cfg *appconfig.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.NopLogger(), nil
	}
	return logging.NewRotatingLogger(cfg.Logging.ResolveLogDir(), cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// newEnvironment loads the tour catalog and wires the registry, metrics and
// renderer from cfg. The caller must Close it.
func newEnvironment(ctx context.Context, cfg *appconfig.Config) (*environment, error) {
	policy, err := tour.ParseFallbackPolicy(cfg.Tours.FallbackPolicy)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	env := &environment{
		cfg:     cfg,
		logger:  logger,
		bus:     event.NewBus(logger),
		actions: definition.NewActions(logger),
		policy:  policy,
	}

	if err := env.loadCatalog(); err != nil {
		_ = logger.Close()
		return nil, err
	}

	_, themeErrs := styles.DiscoverCustomThemes(appconfig.ThemesDir())
	for _, err := range themeErrs {
		logger.Warn("skipping custom theme", "error", err.Error())
	}
	env.styles = styles.ForTheme(cfg.TUI.Theme)
	env.renderer = tooltip.Renderer{
		Styles: env.styles,
		Width:  cfg.TUI.TooltipWidth,
		Labels: tooltip.Labels{
			Next:  cfg.TUI.NextLabel,
			Prev:  cfg.TUI.PrevLabel,
			Start: cfg.TUI.StartLabel,
		},
	}

	env.registry = tour.NewRegistry(
		tour.DenyList(cfg.Tours.Disabled...),
		func(tourID string) {
			logger.WithTour(tourID).Info("tour completed")
		},
		tour.WithExclusive(cfg.Tours.Exclusive),
		tour.WithRegistryLogger(logger),
		tour.WithRegistryBus(env.bus),
	)

	if cfg.Metrics.Enabled {
		env.startMetrics(ctx)
	}

	logger.Info("environment ready",
		"tours", env.catalog.Len(),
		"watch", env.watcher != nil,
		"fallback_policy", policy.String(),
	)
	return env, nil
}

// loadCatalog loads the tours directory, watching it for changes when
// configured to and when the directory exists.
func (e *environment) loadCatalog() error {
	dir := e.cfg.Tours.ResolveToursDir()

	if e.cfg.Tours.Watch {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			w, err := definition.NewWatcher(dir, e.actions,
				definition.WithWatcherBus(e.bus),
				definition.WithWatcherLogger(e.logger),
			)
			if err != nil {
				return err
			}
			e.watcher = w
			e.catalog = w.Catalog()
			return nil
		}
		e.logger.Debug("tours directory missing, not watching", "dir", dir)
	}

	catalog, err := definition.LoadDir(dir, e.actions)
	if err != nil {
		return err
	}
	e.catalog = catalog
	return nil
}

// startMetrics attaches a collector to the bus and serves it in the
// background until Close.
func (e *environment) startMetrics(ctx context.Context) {
	e.collector = metrics.NewCollector(e.logger)
	e.collector.Attach(e.bus)

	ctx, e.stopMetrics = context.WithCancel(ctx)
	e.metricsServer.Add(1)
	go func() {
		defer e.metricsServer.Done()
		if err := e.collector.Serve(ctx, e.cfg.Metrics.Listen); err != nil {
			e.logger.Error("metrics endpoint failed", "addr", e.cfg.Metrics.Listen, "error", err.Error())
		}
	}()
}

// Catalog returns the current catalog, following reloads when watching.
func (e *environment) Catalog() *definition.Catalog {
	if e.watcher != nil {
		return e.watcher.Catalog()
	}
	return e.catalog
}

// Close stops the watcher and the metrics endpoint, drops the remaining bus
// subscriptions and closes the log.
func (e *environment) Close() {
	if e.watcher != nil {
		e.watcher.Stop()
	}
	if e.collector != nil {
		e.stopMetrics()
		e.metricsServer.Wait()
		e.collector.Detach()
	}
	e.bus.Clear()
	_ = e.logger.Close()
}
