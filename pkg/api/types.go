package api

const (
	WorkerTools    = "tools"
	WorkerTemplate = "template"
	WorkerModel    = "model"

	NodeSequential = "sequential"
	NodeParallel   = "parallel"
	NodeStep       = "step"
)

// Pipeline is the YAML pipeline definition format.
type Pipeline struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Report      string  `yaml:"report,omitempty"`
	Inputs      []Input `yaml:"inputs,omitempty"`
	Root        Node    `yaml:"root"`

	// Set by the loader, not from YAML.
	FilePath string `yaml:"-"`
}

// Input declares one initial context key.
type Input struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Default is used when the run supplies no value; nil makes the input required.
	Default any `yaml:"default,omitempty"`
}

// Node is a stage (sequential or parallel) or a step. Exactly one of
// Sequential, Parallel and Step is set.
type Node struct {
	Name       string      `yaml:"name"`
	Sequential []Node      `yaml:"sequential,omitempty"`
	Parallel   []Node      `yaml:"parallel,omitempty"`
	Step       *StepConfig `yaml:"step,omitempty"`
}

// Kind returns the node kind, or "" when none or several are set.
func (n Node) Kind() string {
	kind, count := "", 0
	if n.Sequential != nil {
		kind, count = NodeSequential, count+1
	}
	if n.Parallel != nil {
		kind, count = NodeParallel, count+1
	}
	if n.Step != nil {
		kind, count = NodeStep, count+1
	}
	if count != 1 {
		return ""
	}
	return kind
}

// Children returns the child nodes of a stage.
func (n Node) Children() []Node {
	if n.Sequential != nil {
		return n.Sequential
	}
	return n.Parallel
}

// StepConfig defines a single step.
type StepConfig struct {
	Instruction string       `yaml:"instruction"`
	Tools       []string     `yaml:"tools,omitempty"`
	Output      string       `yaml:"output"`
	Reads       []string     `yaml:"reads,omitempty"`
	Worker      WorkerConfig `yaml:"worker"`
}

// WorkerConfig selects and configures the worker that executes a step.
type WorkerConfig struct {
	Type     string       `yaml:"type"`
	Calls    []CallConfig `yaml:"calls,omitempty"`
	Emit     string       `yaml:"emit,omitempty"`
	Template string       `yaml:"template,omitempty"`
	Adapter  string       `yaml:"adapter,omitempty"`
	Model    string       `yaml:"model,omitempty"`
}

// CallConfig is one scripted tool call. Args may reference context keys and
// the aliases of earlier calls of the same step.
type CallConfig struct {
	Tool string            `yaml:"tool"`
	As   string            `yaml:"as,omitempty"`
	Args map[string]string `yaml:"args,omitempty"`
}

// Batch is the YAML batch-run file format.
type Batch struct {
	Runs []BatchRun `yaml:"runs"`
}

// BatchRun is one run of a batch with its own initial context.
type BatchRun struct {
	Name    string         `yaml:"name"`
	Context map[string]any `yaml:"context,omitempty"`
	Model   ModelOverride  `yaml:"model,omitempty"`
}

// ModelOverride replaces the configured model adapter for one run.
type ModelOverride struct {
	Adapter string `yaml:"adapter,omitempty"`
	Name    string `yaml:"name,omitempty"`
}
