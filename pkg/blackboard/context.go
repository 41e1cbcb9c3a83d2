package blackboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadContextFile reads initial run values from a YAML mapping. Every
// top-level key must be a placeholder identifier; nested values are kept as
// decoded. An empty file yields an empty map.
func LoadContextFile(filename string) (map[string]any, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening context file: %w", err)
	}
	defer f.Close()

	values := make(map[string]any)
	if err := yaml.NewDecoder(f).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing context file %s: %w", filename, err)
	}
	if values == nil {
		values = make(map[string]any)
	}

	for key := range values {
		if !IsIdentifier(key) {
			return nil, fmt.Errorf("context file %s: key %q is not a valid identifier", filename, key)
		}
	}
	return values, nil
}

// MergeContext layers the given maps into a new one. Later layers win on
// top-level keys; nested maps are replaced, not merged.
func MergeContext(layers ...map[string]any) map[string]any {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	merged := make(map[string]any, size)
	for _, l := range layers {
		for k, v := range l {
			merged[k] = v
		}
	}
	return merged
}

// ParseAssignments turns key=value pairs into string context values.
func ParseAssignments(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || !IsIdentifier(key) {
			return nil, fmt.Errorf("invalid assignment %q (expected identifier=value)", pair)
		}
		values[key] = value
	}
	return values, nil
}
