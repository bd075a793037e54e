// Package app wires the application together: block registry, HCL loader,
// diagram builds, code generation, and the optional plan artifact, behind one
// Run entry point.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/blockflow/internal/codegen"
	"github.com/vk/blockflow/internal/ctxlog"
	"github.com/vk/blockflow/internal/diagram"
	"github.com/vk/blockflow/internal/hclload"
	"github.com/vk/blockflow/internal/plan"
	"github.com/vk/blockflow/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	loader   *hclload.Loader
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// With no modules given, the built-in block library registers.
func NewApp(outW io.Writer, config *Config, modules ...registry.Module) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All block modules registered.", "types", len(reg.Types()))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   config,
		registry: reg,
		loader:   hclload.NewLoader(reg),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Run executes the pipeline once, or repeatedly when watch mode is enabled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if a.config.Watch {
		return a.watch(ctx)
	}
	return a.runOnce(ctx)
}

// runOnce loads every diagram, builds it, emits generated code, and writes
// the plan artifact when configured.
func (a *App) runOnce(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	diagrams, err := a.loader.Load(ctx, a.config.GridPath)
	if err != nil {
		return err
	}
	if len(diagrams) == 0 {
		return fmt.Errorf("no diagrams found under %s", a.config.GridPath)
	}

	var targets []codegen.Target
	var plans []*plan.Plan
	for _, d := range diagrams {
		result, err := d.Build(ctx)
		if err != nil {
			return fmt.Errorf("diagram %q: %w", d.Name(), err)
		}
		logger.Info("Diagram built.",
			"diagram", d.Name(),
			"steps", len(result.Ordered),
			"severed_edges", len(result.Severed),
		)
		targets = append(targets, codegen.Target{Diagram: d, Result: result})
		plans = append(plans, plan.FromBuild(d, result))
	}

	writer := codegen.NewWriter(a.config.OutDir).WithWorkers(a.config.Workers)
	if err := writer.GenerateAll(ctx, targets); err != nil {
		return err
	}
	logger.Info("Code generation finished.", "diagrams", len(targets), "dir", a.config.OutDir)

	if a.config.PlanPath != "" {
		if err := plan.WriteAll(a.config.PlanPath, plans); err != nil {
			return err
		}
		logger.Info("Execution plan written.", "path", a.config.PlanPath)
	}
	return nil
}

// Build loads and builds the configured diagrams without emitting anything.
// Watch mode and tests use it to validate a grid cheaply.
func (a *App) Build(ctx context.Context) ([]*diagram.Diagram, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	diagrams, err := a.loader.Load(ctx, a.config.GridPath)
	if err != nil {
		return nil, err
	}
	for _, d := range diagrams {
		if _, err := d.Build(ctx); err != nil {
			return nil, fmt.Errorf("diagram %q: %w", d.Name(), err)
		}
	}
	return diagrams, nil
}
