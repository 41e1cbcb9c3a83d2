package api

import (
	"fmt"
	"maps"
)

// ResolveInputs returns initial merged with input defaults. It fails when a
// required input is missing. Keys that are not declared inputs pass through.
func (p *Pipeline) ResolveInputs(initial map[string]any) (map[string]any, error) {
	resolved := maps.Clone(initial)
	if resolved == nil {
		resolved = make(map[string]any)
	}

	for _, in := range p.Inputs {
		if v, ok := resolved[in.Name]; ok && v != nil {
			continue
		}
		if in.Default == nil {
			return nil, fmt.Errorf("input %q is required", in.Name)
		}
		resolved[in.Name] = in.Default
	}
	return resolved, nil
}
