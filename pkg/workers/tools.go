package workers

import (
	"context"
	"fmt"

	"github.com/systemstart/reviewflow/pkg/api"
)

type toolsWorker struct {
	calls []api.CallConfig
	emit  string
}

// NewToolsWorker creates a worker that runs a fixed script of tool calls and
// publishes their results.
func NewToolsWorker(cfg api.WorkerConfig) Worker {
	return &toolsWorker{calls: cfg.Calls, emit: cfg.Emit}
}

func (w *toolsWorker) Execute(ctx context.Context, in Input, tb Toolbox) (*Output, error) {
	set, err := runCalls(ctx, in.Step, w.calls, in.Values, tb)
	if err != nil {
		return nil, err
	}

	out := &Output{Calls: set.records}
	switch {
	case w.emit != "":
		res, ok := set.byAlias[w.emit]
		if !ok {
			return nil, fmt.Errorf("emitted alias %q was not called", w.emit)
		}
		out.Value = res
	case len(set.results) == 1:
		out.Value = set.results[0].Result
	case len(set.results) > 1:
		out.Value = set.results
	default:
		out.Text = in.Instruction
	}
	return out, nil
}
