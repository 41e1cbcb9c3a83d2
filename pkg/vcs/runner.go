// Package vcs runs read-only version-control commands against a working tree.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrNotInstalled is returned when the command binary cannot be found.
var ErrNotInstalled = errors.New("binary not found in PATH")

// Output holds what a command printed.
type Output struct {
	Stdout string
	Stderr string
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s", strings.Join(e.Args, " "), e.ExitCode, strings.TrimSpace(e.Stderr))
}

// Runner executes one command and returns its output. Implementations must
// honour ctx cancellation and deadlines.
type Runner interface {
	Run(ctx context.Context, args ...string) (Output, error)
}

// Git runs the git binary inside Dir.
type Git struct {
	Dir    string
	Binary string
}

// NewGit creates a git runner rooted at dir.
func NewGit(dir string) *Git {
	return &Git{Dir: dir, Binary: "git"}
}

// Run executes git with args. A non-zero exit returns *ExitError together with
// the captured output; a missing binary returns ErrNotInstalled; an expired
// ctx returns ctx.Err().
func (g *Git) Run(ctx context.Context, args ...string) (Output, error) {
	binary := g.Binary
	if binary == "" {
		binary = "git"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return Output{}, fmt.Errorf("%s: %w", binary, ErrNotInstalled)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = g.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running git", "dir", g.Dir, "args", args)

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, &ExitError{
			Args:     append([]string{binary}, args...),
			ExitCode: exitErr.ExitCode(),
			Stderr:   out.Stderr,
		}
	}
	return out, fmt.Errorf("running %s: %w", binary, err)
}
