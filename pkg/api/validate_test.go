package api

import (
	"errors"
	"strings"
	"testing"

	"github.com/systemstart/reviewflow/pkg/blackboard"
)

func toolsStep(output, instruction string) *StepConfig {
	return &StepConfig{
		Instruction: instruction,
		Output:      output,
		Worker:      WorkerConfig{Type: WorkerTools},
	}
}

func validPipeline() *Pipeline {
	return &Pipeline{
		Name:   "review",
		Report: "report",
		Inputs: []Input{{Name: "target_branch", Default: "main"}},
		Root: Node{
			Name: "root",
			Sequential: []Node{
				{Name: "gather", Parallel: []Node{
					{Name: "a", Step: toolsStep("a_out", "diff against {target_branch}")},
					{Name: "b", Step: toolsStep("b_out", "")},
				}},
				{Name: "report_step", Step: toolsStep("report", "{a_out} {b_out}")},
			},
		},
	}
}

func TestValidate_ValidPipeline(t *testing.T) {
	if err := validPipeline().Validate(); err != nil {
		t.Fatalf("expected valid pipeline, got error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Pipeline)
		errMsg string
	}{
		{
			name:   "missing pipeline name",
			mutate: func(p *Pipeline) { p.Name = "" },
			errMsg: "pipeline name is required",
		},
		{
			name:   "missing node name",
			mutate: func(p *Pipeline) { p.Root.Sequential[0].Parallel[1].Name = "" },
			errMsg: "node name is required",
		},
		{
			name:   "duplicate node name",
			mutate: func(p *Pipeline) { p.Root.Sequential[0].Parallel[1].Name = "a" },
			errMsg: `duplicate node name "a"`,
		},
		{
			name:   "duplicate output key",
			mutate: func(p *Pipeline) { p.Root.Sequential[0].Parallel[1].Step.Output = "a_out" },
			errMsg: `output key "a_out" is already produced by step "a"`,
		},
		{
			name:   "output collides with input",
			mutate: func(p *Pipeline) { p.Root.Sequential[0].Parallel[1].Step.Output = "target_branch" },
			errMsg: "collides with an input",
		},
		{
			name:   "empty parallel stage",
			mutate: func(p *Pipeline) { p.Root.Sequential[0].Parallel = []Node{} },
			errMsg: "parallel stage has no children",
		},
		{
			name: "node with two kinds",
			mutate: func(p *Pipeline) {
				p.Root.Sequential[1].Parallel = []Node{{Name: "x", Step: toolsStep("x", "")}}
			},
			errMsg: "exactly one of",
		},
		{
			name:   "unknown worker type",
			mutate: func(p *Pipeline) { p.Root.Sequential[1].Step.Worker.Type = "oracle" },
			errMsg: `worker type "oracle" is not valid`,
		},
		{
			name:   "template worker without template",
			mutate: func(p *Pipeline) { p.Root.Sequential[1].Step.Worker.Type = WorkerTemplate },
			errMsg: "worker.template is required",
		},
		{
			name: "undeclared tool",
			mutate: func(p *Pipeline) {
				p.Root.Sequential[1].Step.Worker.Calls = []CallConfig{{Tool: "git_diff"}}
			},
			errMsg: `tool "git_diff" is not declared`,
		},
		{
			name: "emit without alias",
			mutate: func(p *Pipeline) {
				s := p.Root.Sequential[1].Step
				s.Tools = []string{"git_diff"}
				s.Worker.Calls = []CallConfig{{Tool: "git_diff", As: "diff"}}
				s.Worker.Emit = "patch"
			},
			errMsg: `worker.emit "patch" does not name a call alias`,
		},
		{
			name:   "report not an output",
			mutate: func(p *Pipeline) { p.Report = "nope" },
			errMsg: `report "nope" is not the output of any step`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPipeline()
			tt.mutate(p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Fatalf("expected %q in error, got: %v", tt.errMsg, err)
			}
		})
	}
}

func TestValidate_UnresolvedReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Pipeline)
		key    string
	}{
		{
			name:   "sibling parallel output",
			mutate: func(p *Pipeline) { p.Root.Sequential[0].Parallel[1].Step.Instruction = "uses {a_out}" },
			key:    "a_out",
		},
		{
			name:   "later output",
			mutate: func(p *Pipeline) { p.Root.Sequential[0].Parallel[0].Step.Reads = []string{"report"} },
			key:    "report",
		},
		{
			name: "unknown key in call args",
			mutate: func(p *Pipeline) {
				s := p.Root.Sequential[0].Parallel[0].Step
				s.Tools = []string{"git_diff"}
				s.Worker.Calls = []CallConfig{{Tool: "git_diff", Args: map[string]string{"source": "{source_branch}"}}}
			},
			key: "source_branch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPipeline()
			tt.mutate(p)
			err := p.Validate()

			var unresolved *blackboard.UnresolvedKeyError
			if !errors.As(err, &unresolved) {
				t.Fatalf("expected UnresolvedKeyError, got %v", err)
			}
			if unresolved.Key != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, unresolved.Key)
			}
		})
	}
}

func TestStepReferences(t *testing.T) {
	s := &StepConfig{
		Instruction: "Review {diff_data} against {target_branch}",
		Tools:       []string{"git_diff", "check_secrets"},
		Reads:       []string{"commit_summary", "diff_data"},
		Worker: WorkerConfig{
			Type: WorkerTools,
			Calls: []CallConfig{
				{Tool: "git_diff", As: "diff", Args: map[string]string{"target": "{target_branch}", "source": "{source_branch}"}},
				{Tool: "check_secrets", Args: map[string]string{"text": "{diff}"}},
			},
		},
	}

	got := strings.Join(s.References(), ",")
	want := "diff_data,target_branch,source_branch,commit_summary"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestWalk(t *testing.T) {
	var paths []string
	Walk(validPipeline().Root, func(path string, _ Node) {
		paths = append(paths, path)
	})

	want := "root,root/gather,root/gather/a,root/gather/b,root/report_step"
	if got := strings.Join(paths, ","); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
