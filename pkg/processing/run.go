package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/systemstart/reviewflow/pkg/api"
	"github.com/systemstart/reviewflow/pkg/blackboard"
	"github.com/systemstart/reviewflow/pkg/workers"
)

// Run executes pipeline p with the given initial context. The returned
// result is non-nil even when err is not, and keeps the partial context.
func (e *Engine) Run(ctx context.Context, p *api.Pipeline, initial map[string]any) (*RunResult, error) {
	start := time.Now()
	res := &RunResult{RunID: uuid.NewString(), Pipeline: p.Name}
	logger := e.logger.With("run", res.RunID, "pipeline", p.Name)

	fail := func(err error) (*RunResult, error) {
		res.Status = StatusFailed
		res.Error = err.Error()
		res.Duration = time.Since(start)
		logger.Error("run failed", "failedAt", res.FailedAt, "error", err)
		return res, err
	}

	if err := p.Validate(); err != nil {
		return fail(fmt.Errorf("validating pipeline: %w", err))
	}
	inputs, err := p.ResolveInputs(initial)
	if err != nil {
		return fail(fmt.Errorf("resolving inputs: %w", err))
	}

	r := &run{
		engine: e,
		logger: logger,
		store:  blackboard.New(inputs),
		sem:    make(chan struct{}, max(e.cfg.MaxParallel, 1)),
		order:  make(map[string]int),
	}
	api.Walk(p.Root, func(path string, _ api.Node) {
		r.order[path] = len(r.order)
	})

	logger.Info("run started", "inputs", len(inputs), "maxParallel", cap(r.sem))
	runErr := r.node(ctx, p.Root, p.Root.Name)

	res.Steps = r.sortedRecords()
	res.Context = r.store.Snapshot()
	res.Outputs = r.store.Outputs()
	if p.Report != "" {
		if v, ok := r.store.Get(p.Report); ok {
			res.Report = blackboard.Stringify(v)
		}
	}

	if runErr != nil {
		var stepErr *StepError
		if errors.As(runErr, &stepErr) {
			res.FailedAt = stepErr.Path
		}
		return fail(runErr)
	}

	res.Status = StatusSucceeded
	res.Duration = time.Since(start)
	logger.Info("run finished", "steps", len(res.Steps), "duration", res.Duration)
	return res, nil
}

// run is the execution state of one pipeline run.
type run struct {
	engine *Engine
	logger *slog.Logger
	store  *blackboard.Store

	// sem bounds concurrently executing steps. Only leaf steps hold a slot,
	// so nested stages never deadlock waiting on their children.
	sem chan struct{}

	order   map[string]int
	mu      sync.Mutex
	records []StepRecord
}

func (r *run) node(ctx context.Context, n api.Node, path string) error {
	switch n.Kind() {
	case api.NodeStep:
		return r.step(ctx, n, path)
	case api.NodeSequential:
		return r.sequential(ctx, n, path)
	case api.NodeParallel:
		return r.parallel(ctx, n, path)
	default:
		return &StepError{Path: path, Step: n.Name, Err: fmt.Errorf("node has no runnable kind")}
	}
}

// sequential runs children in order and stops at the first failure.
func (r *run) sequential(ctx context.Context, n api.Node, path string) error {
	for i, child := range n.Sequential {
		childPath := path + "/" + child.Name
		if err := ctx.Err(); err != nil {
			return &StepError{Path: childPath, Step: child.Name, Err: err}
		}

		r.logger.Debug("entering stage", "stage", childPath)
		if err := r.node(ctx, child, childPath); err != nil {
			if skipped := len(n.Sequential) - i - 1; skipped > 0 {
				r.logger.Warn("skipping remaining stages", "stage", path, "skipped", skipped)
			}
			return err
		}
	}
	return nil
}

// parallel starts every child and waits for all of them. Started siblings
// are never cancelled; the first failure in declaration order is reported.
func (r *run) parallel(ctx context.Context, n api.Node, path string) error {
	errs := make([]error, len(n.Parallel))

	var wg sync.WaitGroup
	for i, child := range n.Parallel {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = r.node(ctx, child, path+"/"+child.Name)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) step(ctx context.Context, n api.Node, path string) (err error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return &StepError{Path: path, Step: n.Name, Err: ctx.Err()}
	}
	defer func() { <-r.sem }()

	rec := StepRecord{Path: path, Name: n.Name, Output: n.Step.Output, Started: time.Now()}
	logger := r.logger.With("step", n.Name)
	logger.Info("running step", "path", path)

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("worker panicked: %v", p)
		}
		rec.Duration = time.Since(rec.Started)
		if err != nil {
			rec.Status = StatusFailed
			rec.Error = err.Error()
			logger.Error("step failed", "error", err, "duration", rec.Duration)
			err = &StepError{Path: path, Step: n.Name, Err: err}
		} else {
			rec.Status = StatusSucceeded
			logger.Info("step finished", "output", rec.Output, "calls", len(rec.Calls), "duration", rec.Duration)
		}
		r.record(rec)
	}()

	return r.execute(ctx, n, &rec)
}

// execute resolves the step's references against the current context,
// runs its worker and publishes the result.
func (r *run) execute(ctx context.Context, n api.Node, rec *StepRecord) error {
	s := n.Step

	worker, err := r.engine.worker(n.Name, s.Worker)
	if err != nil {
		return fmt.Errorf("creating worker: %w", err)
	}

	values, err := blackboard.Select(r.store.Snapshot(), s.References())
	if err != nil {
		return err
	}
	instruction, err := blackboard.Resolve(s.Instruction, values)
	if err != nil {
		return err
	}

	out, err := worker.Execute(ctx, workers.Input{
		Step:        n.Name,
		Instruction: instruction,
		Values:      values,
		Reads:       s.Reads,
	}, r.engine.registry.Subset(s.Tools))
	if out != nil {
		rec.Calls = out.Calls
	}
	if err != nil {
		return fmt.Errorf("executing worker: %w", err)
	}
	if out == nil {
		return fmt.Errorf("worker produced no output")
	}

	return r.store.Publish(s.Output, out.Published())
}

func (r *run) record(rec StepRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

func (r *run) sortedRecords() []StepRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]StepRecord, len(r.records))
	copy(records, r.records)
	sort.SliceStable(records, func(i, j int) bool {
		return r.order[records[i].Path] < r.order[records[j].Path]
	})
	return records
}
