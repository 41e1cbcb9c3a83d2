package workers

import (
	"fmt"

	"github.com/systemstart/reviewflow/pkg/api"
	"github.com/systemstart/reviewflow/pkg/models"
)

// Deps are the run-level collaborators of workers.
type Deps struct {
	Models  models.Provider
	Adapter string // default adapter for model workers
	Model   string // default model for model workers
}

// New creates a Worker for the step named name.
func New(name string, cfg api.WorkerConfig, deps Deps) (Worker, error) {
	switch cfg.Type {
	case api.WorkerTools:
		return NewToolsWorker(cfg), nil
	case api.WorkerTemplate:
		return NewTemplateWorker(name, cfg.Template)
	case api.WorkerModel:
		return newModelWorker(cfg, deps)
	default:
		return nil, fmt.Errorf("unknown worker type: %s", cfg.Type)
	}
}

func newModelWorker(cfg api.WorkerConfig, deps Deps) (Worker, error) {
	if deps.Models == nil {
		return nil, fmt.Errorf("model worker needs a model provider")
	}

	name, model := deps.Adapter, deps.Model
	if cfg.Adapter != "" {
		name, model = cfg.Adapter, ""
	}
	if cfg.Model != "" {
		model = cfg.Model
	}

	adapter, err := deps.Models.Adapter(name)
	if err != nil {
		return nil, fmt.Errorf("selecting model adapter: %w", err)
	}
	return NewModelWorker(adapter, model, cfg.Calls), nil
}
