package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/systemstart/reviewflow/pkg/vcs"
)

// FileChange is one line of `git diff --name-status`.
type FileChange struct {
	Status string `json:"status"`
	File   string `json:"file"`
}

// DiffPayload is returned by the git_diff tool.
type DiffPayload struct {
	Diff         string       `json:"diff"`
	FilesChanged []FileChange `json:"files_changed"`
	FileCount    int          `json:"file_count"`
	Stats        string       `json:"stats"`
}

func (p DiffPayload) Text() string { return p.Diff }

type diffTool struct {
	runner   vcs.Runner
	settings Settings
}

// NewDiffTool creates the git_diff tool (three-dot diff of target...source).
func NewDiffTool(runner vcs.Runner, settings Settings) Tool {
	return &diffTool{runner: runner, settings: settings}
}

func (t *diffTool) Name() string { return "git_diff" }

func (t *diffTool) Description() string {
	return "Diff between a target and source ref (params: target, source)."
}

func (t *diffTool) Invoke(ctx context.Context, params Params) Result {
	target := params.Get("target", "main")
	source := params.Get("source", "HEAD")
	if !validRef(target) || !validRef(source) {
		return Failure("invalid ref: target=%q source=%q", target, source)
	}
	revRange := target + "..." + source

	out, err := runGit(ctx, t.runner, t.settings.DiffTimeout, "diff", revRange)
	if err != nil {
		return gitFailure("Git diff failed", err)
	}

	var files []FileChange
	nameStatus, err := runGit(ctx, t.runner, t.settings.CommandTimeout, "diff", "--name-status", revRange)
	if err != nil {
		slog.Warn("name-status listing failed", "range", revRange, "error", err)
	} else {
		files = parseNameStatus(nameStatus.Stdout)
	}

	var stats string
	stat, err := runGit(ctx, t.runner, t.settings.CommandTimeout, "diff", "--stat", revRange)
	if err != nil {
		slog.Warn("diffstat failed", "range", revRange, "error", err)
	} else {
		stats = strings.TrimSpace(stat.Stdout)
	}

	diff, truncated := truncate(out.Stdout, t.settings.MaxDiffChars)
	if files == nil {
		files = []FileChange{}
	}

	res := Success(DiffPayload{
		Diff:         diff,
		FilesChanged: files,
		FileCount:    len(files),
		Stats:        stats,
	})
	res.Truncated = truncated
	return res
}

func parseNameStatus(output string) []FileChange {
	var files []FileChange
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		status, file, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		files = append(files, FileChange{
			Status: strings.TrimSpace(status),
			File:   strings.TrimSpace(file),
		})
	}
	return files
}
