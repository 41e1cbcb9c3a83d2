// Package blackboard holds the run-scoped context store that steps publish
// into and the placeholder resolver that reads from it.
package blackboard

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// DuplicateKeyError is returned when a key is published twice, or when a step
// tries to publish over a run input.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("context key %q already published", e.Key)
}

// Store is a write-once key/value store scoped to a single run.
// Inputs are seeded at construction and never change; outputs are published
// exactly once each.
type Store struct {
	mu      sync.RWMutex
	inputs  map[string]any
	outputs map[string]any
}

// New creates a store seeded with the run's initial context.
func New(initial map[string]any) *Store {
	inputs := make(map[string]any, len(initial))
	maps.Copy(inputs, initial)
	return &Store{
		inputs:  inputs,
		outputs: make(map[string]any),
	}
}

// Publish records value under key. It fails if key is already present.
func (s *Store) Publish(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outputs[key]; ok {
		return &DuplicateKeyError{Key: key}
	}
	if _, ok := s.inputs[key]; ok {
		return &DuplicateKeyError{Key: key}
	}
	s.outputs[key] = value
	return nil
}

// Get returns the value for key, looking at outputs before inputs.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.outputs[key]; ok {
		return v, true
	}
	v, ok := s.inputs[key]
	return v, ok
}

// Keys returns the published output keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.outputs))
}

// Outputs returns a copy of the published outputs.
func (s *Store) Outputs() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.outputs)
}

// Snapshot returns a copy of inputs and outputs merged into one map.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]any, len(s.inputs)+len(s.outputs))
	maps.Copy(snap, s.inputs)
	maps.Copy(snap, s.outputs)
	return snap
}
