package workers

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/systemstart/reviewflow/pkg/api"
	"github.com/systemstart/reviewflow/pkg/blackboard"
	"github.com/systemstart/reviewflow/pkg/tools"
)

// NamedResult pairs a call's alias (or tool name) with its result.
type NamedResult struct {
	Name   string       `json:"name"`
	Result tools.Result `json:"result"`
}

// callSet is the outcome of running a step's scripted calls.
type callSet struct {
	records []CallRecord
	results []NamedResult
	byAlias map[string]tools.Result
}

// runCalls executes calls in order. Args resolve against the step's values
// and the text of earlier aliased calls. A failing call is recorded and never
// aborts the step, but any later call whose args reference its alias is
// skipped with an error result naming the failure.
func runCalls(ctx context.Context, step string, calls []api.CallConfig, values map[string]any, tb Toolbox) (*callSet, error) {
	scope := maps.Clone(values)
	if scope == nil {
		scope = make(map[string]any)
	}
	set := &callSet{byAlias: make(map[string]tools.Result)}

	for i, call := range calls {
		if dep, failed := failedDependency(call, set.byAlias); failed {
			res := tools.Failure("skipped: %s failed: %s", dep, set.byAlias[dep].Error)
			set.add(step, call, nil, res, 0)
			continue
		}

		params := make(tools.Params, len(call.Args))
		for k, tmpl := range call.Args {
			v, err := blackboard.Resolve(tmpl, scope)
			if err != nil {
				return nil, fmt.Errorf("resolving argument %q of call %d (%s): %w", k, i, call.Tool, err)
			}
			params[k] = v
		}

		start := time.Now()
		res := tb.Invoke(ctx, call.Tool, params)
		set.add(step, call, params, res, time.Since(start))
		if call.As != "" && res.OK() {
			scope[call.As] = res.Text()
		}
	}
	return set, nil
}

func (s *callSet) add(step string, call api.CallConfig, params tools.Params, res tools.Result, elapsed time.Duration) {
	s.records = append(s.records, CallRecord{
		Tool:      call.Tool,
		Alias:     call.As,
		Params:    params,
		Status:    res.Status,
		Error:     res.Error,
		Truncated: res.Truncated,
		Duration:  elapsed,
	})

	name := call.As
	if name == "" {
		name = call.Tool
	}
	s.results = append(s.results, NamedResult{Name: name, Result: res})

	if !res.OK() {
		slog.Warn("tool call failed", "step", step, "tool", call.Tool, "error", res.Error)
	}
	if call.As != "" {
		s.byAlias[call.As] = res
	}
}

// failedDependency returns the first alias referenced by call's args whose
// call did not succeed.
func failedDependency(call api.CallConfig, byAlias map[string]tools.Result) (string, bool) {
	for _, key := range slices.Sorted(maps.Keys(call.Args)) {
		for _, id := range blackboard.Identifiers(call.Args[key]) {
			if res, ok := byAlias[id]; ok && !res.OK() {
				return id, true
			}
		}
	}
	return "", false
}
