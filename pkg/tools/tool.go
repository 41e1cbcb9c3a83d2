// Package tools wraps external capabilities behind one call contract: every
// invocation is bounded by a timeout and ends in a Result, never a Go error.
package tools

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/systemstart/reviewflow/pkg/blackboard"
)

// Status of a tool invocation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Params are the string arguments of one call.
type Params map[string]string

// Get returns params[key], or def when the key is absent or blank.
func (p Params) Get(key, def string) string {
	if v, ok := p[key]; ok && v != "" {
		return v
	}
	return def
}

// Result is the outcome of one invocation.
type Result struct {
	Status    Status `json:"status"`
	Payload   any    `json:"payload,omitempty"`
	Error     string `json:"error_message,omitempty"`
	Truncated bool   `json:"truncated"`
}

// Success wraps a payload.
func Success(payload any) Result {
	return Result{Status: StatusSuccess, Payload: payload}
}

// Failure builds an error result with a human-readable message.
func Failure(format string, args ...any) Result {
	return Result{Status: StatusError, Error: fmt.Sprintf(format, args...)}
}

// OK reports whether the call succeeded.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Text returns the payload's primary text, used when one call feeds another.
func (r Result) Text() string {
	if !r.OK() {
		return "error: " + r.Error
	}
	if t, ok := r.Payload.(interface{ Text() string }); ok {
		return t.Text()
	}
	return blackboard.Stringify(r.Payload)
}

// String makes results render as their text inside instructions.
func (r Result) String() string {
	return r.Text()
}

// Tool is one external capability.
type Tool interface {
	Name() string
	Description() string
	Invoke(ctx context.Context, params Params) Result
}

// Registry holds the tools available to a run, or to one step.
type Registry struct {
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry from tools. Later duplicates are ignored.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			slog.Warn("skipping tool", "tool", t.Name(), "error", err)
		}
	}
	return r
}

// Register adds t.
func (r *Registry) Register(t Tool) error {
	if _, ok := r.tools[t.Name()]; ok {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	r.order = append(r.order, t.Name())
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names lists registered tools in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Subset returns a registry restricted to names. Unknown names are dropped.
func (r *Registry) Subset(names []string) *Registry {
	sub := &Registry{tools: make(map[string]Tool, len(names))}
	for _, name := range r.order {
		if slices.Contains(names, name) {
			sub.tools[name] = r.tools[name]
			sub.order = append(sub.order, name)
		}
	}
	return sub
}

// Invoke calls the named tool. Unknown tools and panics become error results.
func (r *Registry) Invoke(ctx context.Context, name string, params Params) Result {
	t, ok := r.tools[name]
	if !ok {
		return Failure("tool %q is not available", name)
	}

	start := time.Now()
	res := safeInvoke(ctx, t, params)
	slog.Debug("tool invoked", "tool", name, "status", res.Status, "truncated", res.Truncated, "duration", time.Since(start))
	return res
}

func safeInvoke(ctx context.Context, t Tool, params Params) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("tool panicked", "tool", t.Name(), "panic", p)
			res = Failure("tool %s failed unexpectedly: %v", t.Name(), p)
		}
	}()
	return t.Invoke(ctx, params)
}
