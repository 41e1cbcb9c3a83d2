package tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/systemstart/reviewflow/pkg/vcs"
)

// runGit runs one git command bounded by timeout.
func runGit(ctx context.Context, runner vcs.Runner, timeout time.Duration, args ...string) (vcs.Output, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return runner.Run(ctx, args...)
}

// gitFailure maps a runner error onto an error result. prefix labels domain
// errors, e.g. "Git diff failed".
func gitFailure(prefix string, err error) Result {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Failure("git command timed out")
	case errors.Is(err, context.Canceled):
		return Failure("git command cancelled")
	case errors.Is(err, vcs.ErrNotInstalled):
		return Failure("git is not installed or not in PATH")
	}

	var exitErr *vcs.ExitError
	if errors.As(err, &exitErr) {
		return Failure("%s: %s", prefix, strings.TrimSpace(exitErr.Stderr))
	}
	return Failure("%s: %v", prefix, err)
}

// validRef rejects refs that git would parse as options.
func validRef(ref string) bool {
	return ref != "" && !strings.HasPrefix(ref, "-")
}

// truncate cuts s to at most limit characters.
func truncate(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}
	return s, false
}
