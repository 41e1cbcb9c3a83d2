package workers

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/systemstart/reviewflow/pkg/blackboard"
)

// TemplateData is the dot value of a template worker's template.
type TemplateData struct {
	Step        string
	Instruction string
	Values      map[string]any
}

type templateWorker struct {
	tmpl *template.Template
}

// NewTemplateWorker parses text as a text/template with sprig functions and
// a "text" function rendering any context value as text.
func NewTemplateWorker(name, text string) (Worker, error) {
	funcs := sprig.TxtFuncMap()
	funcs["text"] = blackboard.Stringify

	tmpl, err := template.New(name).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &templateWorker{tmpl: tmpl}, nil
}

func (w *templateWorker) Execute(ctx context.Context, in Input, _ Toolbox) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	data := TemplateData{Step: in.Step, Instruction: in.Instruction, Values: in.Values}
	if err := w.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}
	return &Output{Text: buf.String()}, nil
}
