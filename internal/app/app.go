package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/patchgraph/internal/ctxlog"
	"github.com/specialistvlad/patchgraph/internal/metrics"
	"github.com/specialistvlad/patchgraph/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	metrics    *metrics.Registry
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, node kind
// registry and metrics registry. With no modules, the core modules are used.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All node modules registered.", "count", len(modules), "kinds", reg.Kinds())

	if err := reg.Validate(ctx); err != nil {
		// A broken module is a programmer error.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		metrics:  metrics.NewRegistry(),
	}
}

// Registry returns the application's node kind registry.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the application's metrics registry.
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}
