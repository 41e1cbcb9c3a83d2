// Package processing runs pipelines: it walks the stage tree, executes steps
// through their workers and threads their outputs through the context store.
package processing

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/systemstart/reviewflow/pkg/api"
	"github.com/systemstart/reviewflow/pkg/config"
	"github.com/systemstart/reviewflow/pkg/models"
	"github.com/systemstart/reviewflow/pkg/tools"
	"github.com/systemstart/reviewflow/pkg/vcs"
	"github.com/systemstart/reviewflow/pkg/workers"
)

// WorkerFactory creates the worker for one step.
type WorkerFactory func(step string, cfg api.WorkerConfig) (workers.Worker, error)

// Engine executes pipelines under one configuration. It holds no per-run
// state, so concurrent runs do not interfere.
type Engine struct {
	cfg       config.Config
	logger    *slog.Logger
	runner    vcs.Runner
	tree      fs.FS
	registry  *tools.Registry
	models    models.Provider
	newWorker WorkerFactory
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRunner sets the version-control runner used by the default tools.
func WithRunner(r vcs.Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithTree sets the working tree listed by the structure tool.
func WithTree(tree fs.FS) Option {
	return func(e *Engine) { e.tree = tree }
}

// WithTools replaces the default tool registry.
func WithTools(reg *tools.Registry) Option {
	return func(e *Engine) { e.registry = reg }
}

// WithAdapters sets the model adapter provider.
func WithAdapters(p models.Provider) Option {
	return func(e *Engine) { e.models = p }
}

// WithWorkerFactory replaces worker construction.
func WithWorkerFactory(f WorkerFactory) Option {
	return func(e *Engine) { e.newWorker = f }
}

// NewEngine creates an engine for cfg.
func NewEngine(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	if e.registry == nil {
		if e.runner == nil {
			e.runner = vcs.NewGit(cfg.Repository)
		}
		if e.tree == nil {
			e.tree = os.DirFS(cfg.Repository)
		}
		e.registry = tools.NewDefaultRegistry(e.runner, e.tree, cfg.ToolSettings())
	}
	if e.models == nil {
		e.models = models.NewCache(cfg.Keys)
	}
	return e
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Tools returns the engine's tool registry.
func (e *Engine) Tools() *tools.Registry {
	return e.registry
}

// withModel returns a copy of e whose model workers use the override.
func (e *Engine) withModel(m api.ModelOverride) *Engine {
	clone := *e
	clone.cfg = e.cfg.WithModel(m.Adapter, m.Name)
	return &clone
}

func (e *Engine) worker(step string, cfg api.WorkerConfig) (workers.Worker, error) {
	if e.newWorker != nil {
		return e.newWorker(step, cfg)
	}
	return workers.New(step, cfg, workers.Deps{
		Models:  e.models,
		Adapter: e.cfg.Model.Adapter,
		Model:   e.cfg.Model.Name,
	})
}
