package processing

import (
	"context"
	"fmt"
	"sync"

	"github.com/systemstart/reviewflow/pkg/api"
	"github.com/systemstart/reviewflow/pkg/blackboard"
)

// BatchResult is the outcome of one batch entry.
type BatchResult struct {
	Name   string
	Result *RunResult
	Err    error
}

// RunBatch runs p once per batch entry, each with its own context store and
// model selection. At most MaxParallel runs execute at once.
func (e *Engine) RunBatch(ctx context.Context, b *api.Batch, p *api.Pipeline, base map[string]any) ([]BatchResult, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validating batch: %w", err)
	}

	results := make([]BatchResult, len(b.Runs))
	sem := make(chan struct{}, max(e.cfg.MaxParallel, 1))

	var wg sync.WaitGroup
	for i, entry := range b.Runs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			e.logger.Info("processing batch run", "name", entry.Name)
			initial := blackboard.MergeContext(base, entry.Context)
			res, err := e.withModel(entry.Model).Run(ctx, p, initial)
			results[i] = BatchResult{Name: entry.Name, Result: res, Err: err}
		}()
	}
	wg.Wait()

	var failed []string
	for _, r := range results {
		if r.Err != nil {
			e.logger.Error("batch run failed", "name", r.Name, "error", r.Err)
			failed = append(failed, r.Name)
		}
	}
	if len(failed) > 0 {
		return results, fmt.Errorf("%d run(s) failed: %v", len(failed), failed)
	}
	return results, nil
}
