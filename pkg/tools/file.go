package tools

import (
	"context"
	"strings"

	"github.com/systemstart/reviewflow/pkg/vcs"
)

// FileContent is returned by the file_content tool.
type FileContent struct {
	Path      string `json:"path"`
	Ref       string `json:"ref"`
	Content   string `json:"content"`
	LineCount int    `json:"line_count"`
}

func (f FileContent) Text() string { return f.Content }

type fileContentTool struct {
	runner   vcs.Runner
	settings Settings
}

// NewFileContentTool creates the file_content tool (`git show ref:path`).
func NewFileContentTool(runner vcs.Runner, settings Settings) Tool {
	return &fileContentTool{runner: runner, settings: settings}
}

func (t *fileContentTool) Name() string { return "file_content" }

func (t *fileContentTool) Description() string {
	return "Content of a file at a ref (params: path, ref)."
}

func (t *fileContentTool) Invoke(ctx context.Context, params Params) Result {
	path := params.Get("path", "")
	if path == "" {
		return Failure("path is required")
	}
	ref := params.Get("ref", "HEAD")
	if !validRef(ref) {
		return Failure("invalid ref: %q", ref)
	}

	out, err := runGit(ctx, t.runner, t.settings.CommandTimeout, "show", ref+":"+path)
	if err != nil {
		return gitFailure("Cannot read file", err)
	}

	content, truncated := truncate(out.Stdout, t.settings.MaxFileChars)
	res := Success(FileContent{
		Path:      path,
		Ref:       ref,
		Content:   content,
		LineCount: strings.Count(content, "\n") + 1,
	})
	res.Truncated = truncated
	return res
}
