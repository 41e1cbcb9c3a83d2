package workers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/systemstart/reviewflow/pkg/api"
	"github.com/systemstart/reviewflow/pkg/blackboard"
	"github.com/systemstart/reviewflow/pkg/models"
)

type modelWorker struct {
	adapter models.Adapter
	model   string
	calls   []api.CallConfig
}

// NewModelWorker creates a worker that runs its scripted calls, then prompts
// adapter with the instruction followed by the call results and read values.
func NewModelWorker(adapter models.Adapter, model string, calls []api.CallConfig) Worker {
	if model == "" {
		model = adapter.DefaultModel()
	}
	return &modelWorker{adapter: adapter, model: model, calls: calls}
}

func (w *modelWorker) Execute(ctx context.Context, in Input, tb Toolbox) (*Output, error) {
	set, err := runCalls(ctx, in.Step, w.calls, in.Values, tb)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(in, set)
	slog.Debug("prompting model", "step", in.Step, "adapter", w.adapter.Name(), "model", w.model, "promptChars", len(prompt))

	text, err := w.adapter.Generate(ctx, w.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating with %s/%s: %w", w.adapter.Name(), w.model, err)
	}
	return &Output{Text: text, Calls: set.records}, nil
}

func buildPrompt(in Input, set *callSet) string {
	var b strings.Builder
	b.WriteString(in.Instruction)
	for _, r := range set.results {
		fmt.Fprintf(&b, "\n\n## %s (%s)\n%s", r.Name, r.Result.Status, r.Result.Text())
	}
	for _, key := range in.Reads {
		fmt.Fprintf(&b, "\n\n## %s\n%s", key, blackboard.Stringify(in.Values[key]))
	}
	return b.String()
}
