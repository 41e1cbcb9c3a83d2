// Package workers executes the body of one step: scripted tool calls,
// template rendering or a model prompt.
package workers

import (
	"context"
	"time"

	"github.com/systemstart/reviewflow/pkg/tools"
)

// Input is what a worker sees of the run: its resolved instruction and the
// context values the step references.
type Input struct {
	Step        string
	Instruction string
	Values      map[string]any
	Reads       []string
}

// CallRecord logs one tool call made by a worker.
type CallRecord struct {
	Tool      string        `json:"tool"`
	Alias     string        `json:"alias,omitempty"`
	Params    tools.Params  `json:"params,omitempty"`
	Status    tools.Status  `json:"status"`
	Error     string        `json:"error,omitempty"`
	Truncated bool          `json:"truncated,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Output is the product of a worker. Value is published when set, Text
// otherwise.
type Output struct {
	Text  string
	Value any
	Calls []CallRecord
}

// Published returns the value to store under the step's output key.
func (o *Output) Published() any {
	if o.Value != nil {
		return o.Value
	}
	return o.Text
}

// Toolbox is the set of tools a step declared.
type Toolbox interface {
	Invoke(ctx context.Context, name string, params tools.Params) tools.Result
}

// Worker executes one step.
type Worker interface {
	Execute(ctx context.Context, in Input, tb Toolbox) (*Output, error)
}

// Func adapts a function to the Worker interface.
type Func func(ctx context.Context, in Input, tb Toolbox) (*Output, error)

func (f Func) Execute(ctx context.Context, in Input, tb Toolbox) (*Output, error) {
	return f(ctx, in, tb)
}
