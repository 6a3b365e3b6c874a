package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/dyninputs/internal/cleanup"
	"github.com/vk/dyninputs/internal/config"
	"github.com/vk/dyninputs/internal/ctxlog"
	"github.com/vk/dyninputs/internal/dyninputs"
	"github.com/vk/dyninputs/internal/graph"
	"github.com/vk/dyninputs/internal/registry"
	"github.com/vk/dyninputs/internal/scheduler"
)

// EventSourceDialer opens the backend event stream the cleanup relay listens on.
type EventSourceDialer func(ctx context.Context, url string) (cleanup.Source, error)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	graph      *graph.Graph
	loop       *scheduler.Loop
	extension  *dyninputs.Extension
	dialEvents EventSourceDialer
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App: logger, node type registry, host graph with the dynamic
// inputs extension installed, and the event loop driving it. Configuration
// errors are fatal and panic.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg, err := registry.NewWithBuiltins(ctx)
	if err != nil {
		panic(fmt.Errorf("failed to register built-in node types: %w", err))
	}

	if cfg.RegistryPath != "" {
		model, err := loader.Load(ctx, cfg.RegistryPath)
		if err != nil {
			panic(fmt.Errorf("failed to load configuration: %w", err))
		}
		if err := reg.PopulateFromModel(ctx, model); err != nil {
			panic(fmt.Errorf("failed to populate registry: %w", err))
		}
		logger.Debug("Registry populated from config model.", "path", cfg.RegistryPath)
	}
	logger.Debug("Node type registry ready.", "count", reg.Len())

	loop := scheduler.NewLoop()
	ext := dyninputs.NewExtension(reg, loop, dyninputs.Options{
		InitialDelay: cfg.InitialDelay,
		PollInterval: cfg.PollInterval,
	})

	g := graph.New()
	g.RegisterExtension(ctx, ext)
	for _, nt := range reg.Types() {
		if err := g.RegisterNodeType(ctx, multiSwitchDef(nt)); err != nil {
			panic(err)
		}
	}
	for _, def := range plainDefs() {
		if err := g.RegisterNodeType(ctx, def); err != nil {
			panic(err)
		}
	}
	logger.Debug("Host node types registered.", "count", len(g.NodeTypes()))

	return &App{
		outW:       outW,
		logger:     logger,
		config:     cfg,
		registry:   reg,
		graph:      g,
		loop:       loop,
		extension:  ext,
		dialEvents: dialSocketIO,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Graph returns the host graph. This is primarily for testing.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

// SetEventSourceDialer replaces the socket.io dialer used by the cleanup relay.
func (a *App) SetEventSourceDialer(d EventSourceDialer) {
	a.dialEvents = d
}

func dialSocketIO(ctx context.Context, url string) (cleanup.Source, error) {
	return cleanup.DialSocketIO(ctx, url, cleanup.SocketIOOptions{})
}
