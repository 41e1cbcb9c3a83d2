package api

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/systemstart/reviewflow/pkg/blackboard"
)

var validWorkerTypes = map[string]bool{
	WorkerTools:    true,
	WorkerTemplate: true,
	WorkerModel:    true,
}

// Validate checks the pipeline definition for errors, including references
// to context keys that no earlier stage produces.
func (p *Pipeline) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pipeline name is required")
	}

	inputs := make(map[string]bool)
	for i, in := range p.Inputs {
		if !blackboard.IsIdentifier(in.Name) {
			return fmt.Errorf("input %d: invalid name %q", i, in.Name)
		}
		if inputs[in.Name] {
			return fmt.Errorf("input %q: duplicate name", in.Name)
		}
		inputs[in.Name] = true
	}

	v := &validator{
		inputs:  inputs,
		names:   make(map[string]bool),
		outputs: make(map[string]string),
	}
	if _, err := v.node(p.Root, maps.Clone(inputs)); err != nil {
		return err
	}

	if p.Report != "" {
		if _, ok := v.outputs[p.Report]; !ok {
			return fmt.Errorf("report %q is not the output of any step", p.Report)
		}
	}
	return nil
}

// OutputKeys lists every step output key in definition order.
func (p *Pipeline) OutputKeys() []string {
	var keys []string
	Walk(p.Root, func(_ string, n Node) {
		if n.Step != nil {
			keys = append(keys, n.Step.Output)
		}
	})
	return keys
}

// Walk visits n and its descendants depth-first, passing each node's
// slash-joined path.
func Walk(n Node, fn func(path string, n Node)) {
	walk(n.Name, n, fn)
}

func walk(path string, n Node, fn func(string, Node)) {
	fn(path, n)
	for _, child := range n.Children() {
		walk(path+"/"+child.Name, child, fn)
	}
}

// References returns the context keys a step needs: placeholders in its
// instruction and call args, plus its reads. Placeholders naming the alias of
// an earlier call in the same step are local and excluded.
func (s *StepConfig) References() []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(keys ...string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				refs = append(refs, k)
			}
		}
	}

	add(blackboard.Identifiers(s.Instruction)...)
	aliases := make(map[string]bool)
	for _, call := range s.Worker.Calls {
		for _, key := range slices.Sorted(maps.Keys(call.Args)) {
			for _, id := range blackboard.Identifiers(call.Args[key]) {
				if !aliases[id] {
					add(id)
				}
			}
		}
		if call.As != "" {
			aliases[call.As] = true
		}
	}
	add(s.Reads...)
	return refs
}

type validator struct {
	inputs  map[string]bool
	names   map[string]bool
	outputs map[string]string // output key -> producing step
}

// node validates n given the keys visible to it and returns the output keys
// it produces.
func (v *validator) node(n Node, visible map[string]bool) ([]string, error) {
	if n.Name == "" {
		return nil, fmt.Errorf("node name is required")
	}
	if v.names[n.Name] {
		return nil, fmt.Errorf("duplicate node name %q", n.Name)
	}
	v.names[n.Name] = true

	switch n.Kind() {
	case NodeStep:
		if err := v.step(n.Name, n.Step, visible); err != nil {
			return nil, fmt.Errorf("step %q: %w", n.Name, err)
		}
		return []string{n.Step.Output}, nil

	case NodeSequential:
		if len(n.Sequential) == 0 {
			return nil, fmt.Errorf("stage %q: sequential stage has no children", n.Name)
		}
		scope := maps.Clone(visible)
		var produced []string
		for _, child := range n.Sequential {
			keys, err := v.node(child, scope)
			if err != nil {
				return nil, err
			}
			for _, k := range keys {
				scope[k] = true
			}
			produced = append(produced, keys...)
		}
		return produced, nil

	case NodeParallel:
		if len(n.Parallel) == 0 {
			return nil, fmt.Errorf("stage %q: parallel stage has no children", n.Name)
		}
		var produced []string
		for _, child := range n.Parallel {
			keys, err := v.node(child, visible)
			if err != nil {
				return nil, err
			}
			produced = append(produced, keys...)
		}
		return produced, nil

	default:
		return nil, fmt.Errorf("node %q: exactly one of sequential, parallel or step must be set", n.Name)
	}
}

func (v *validator) step(name string, s *StepConfig, visible map[string]bool) error {
	if !blackboard.IsIdentifier(s.Output) {
		return fmt.Errorf("invalid output key %q", s.Output)
	}
	if v.inputs[s.Output] {
		return fmt.Errorf("output key %q collides with an input", s.Output)
	}
	if prev, ok := v.outputs[s.Output]; ok {
		return fmt.Errorf("output key %q is already produced by step %q", s.Output, prev)
	}
	v.outputs[s.Output] = name

	if err := validateWorker(s); err != nil {
		return err
	}

	for _, key := range s.References() {
		if !visible[key] {
			return &blackboard.UnresolvedKeyError{Key: key}
		}
	}
	return nil
}

func validateWorker(s *StepConfig) error {
	w := s.Worker
	if !validWorkerTypes[w.Type] {
		valid := slices.Sorted(maps.Keys(validWorkerTypes))
		return fmt.Errorf("worker type %q is not valid (valid: %s)", w.Type, strings.Join(valid, ", "))
	}
	if w.Type == WorkerTemplate && w.Template == "" {
		return fmt.Errorf("worker.template is required for %q workers", WorkerTemplate)
	}

	aliases := make(map[string]bool)
	for i, call := range w.Calls {
		if call.Tool == "" {
			return fmt.Errorf("call %d: tool is required", i)
		}
		if !slices.Contains(s.Tools, call.Tool) {
			return fmt.Errorf("call %d: tool %q is not declared in the step's tools", i, call.Tool)
		}
		if call.As == "" {
			continue
		}
		if !blackboard.IsIdentifier(call.As) {
			return fmt.Errorf("call %d: invalid alias %q", i, call.As)
		}
		if aliases[call.As] {
			return fmt.Errorf("call %d: duplicate alias %q", i, call.As)
		}
		aliases[call.As] = true
	}

	if w.Emit != "" && !aliases[w.Emit] {
		return fmt.Errorf("worker.emit %q does not name a call alias", w.Emit)
	}
	return nil
}
