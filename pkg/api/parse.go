package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ParsePipeline decodes and validates a pipeline definition.
func ParsePipeline(data []byte) (*Pipeline, error) {
	var p Pipeline
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing pipeline: document is empty")
		}
		return nil, fmt.Errorf("parsing pipeline: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating pipeline %q: %w", p.Name, err)
	}
	return &p, nil
}

// LoadPipeline reads a pipeline file, sets FilePath, and validates it.
func LoadPipeline(filename string) (*Pipeline, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline file: %w", err)
	}

	p, err := ParsePipeline(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	p.FilePath = absPath
	return p, nil
}

// LoadBatch reads a batch-run file, unmarshals it, and validates.
func LoadBatch(filename string) (*Batch, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validating batch file: %w", err)
	}
	return &b, nil
}

// Validate checks the batch for errors.
func (b *Batch) Validate() error {
	if len(b.Runs) == 0 {
		return fmt.Errorf("runs list is empty")
	}

	names := make(map[string]bool)
	for i, run := range b.Runs {
		if run.Name == "" {
			return fmt.Errorf("run %d: name is required", i)
		}
		if names[run.Name] {
			return fmt.Errorf("run %q: duplicate name", run.Name)
		}
		names[run.Name] = true
	}
	return nil
}
