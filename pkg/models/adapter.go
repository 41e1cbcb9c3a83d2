// Package models provides the language-model adapters used by model workers.
package models

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter sends one prompt to a model provider.
type Adapter interface {
	// Name returns the adapter identifier.
	Name() string

	// DefaultModel is used when a step or run names no model.
	DefaultModel() string

	// Generate returns the model's text response to prompt.
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Keys carries provider credentials.
type Keys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// New creates the named adapter.
func New(name string, keys Keys) (Adapter, error) {
	switch name {
	case "", "mock":
		return NewMockAdapter(), nil
	case "anthropic":
		return NewAnthropicAdapter(keys.Anthropic)
	case "openai":
		return NewOpenAIAdapter(keys.OpenAI)
	case "google":
		return NewGoogleAdapter(keys.Google)
	default:
		return nil, fmt.Errorf("unknown model adapter %q", name)
	}
}

// Names lists the adapters New understands.
func Names() []string {
	return []string{"anthropic", "google", "mock", "openai"}
}

// Provider hands out adapters by name.
type Provider interface {
	Adapter(name string) (Adapter, error)
}

// Cache creates adapters on first use and reuses them afterwards. It is safe
// for concurrent use.
type Cache struct {
	keys     Keys
	mu       sync.Mutex
	adapters map[string]Adapter
}

// NewCache creates a provider over keys, optionally pre-seeded with adapters.
func NewCache(keys Keys, adapters ...Adapter) *Cache {
	c := &Cache{keys: keys, adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		c.adapters[a.Name()] = a
	}
	return c
}

// Adapter returns the named adapter, creating it when needed.
func (c *Cache) Adapter(name string) (Adapter, error) {
	if name == "" {
		name = "mock"
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if a, ok := c.adapters[name]; ok {
		return a, nil
	}
	a, err := New(name, c.keys)
	if err != nil {
		return nil, err
	}
	c.adapters[name] = a
	return a, nil
}

// Loaded lists the adapters created so far.
func (c *Cache) Loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.adapters))
	for name := range c.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
