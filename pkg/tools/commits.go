package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/systemstart/reviewflow/pkg/vcs"
)

const shortHashLen = 8

// Commit is one entry of the commit log.
type Commit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

// CommitLog is returned by the commit_messages tool.
type CommitLog struct {
	Commits     []Commit `json:"commits"`
	CommitCount int      `json:"commit_count"`
}

func (l CommitLog) Text() string {
	var b strings.Builder
	for _, c := range l.Commits {
		fmt.Fprintf(&b, "%s %s %s: %s\n", c.Hash, c.Date, c.Author, c.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

type commitsTool struct {
	runner   vcs.Runner
	settings Settings
}

// NewCommitsTool creates the commit_messages tool (commits reachable from
// source but not from target).
func NewCommitsTool(runner vcs.Runner, settings Settings) Tool {
	return &commitsTool{runner: runner, settings: settings}
}

func (t *commitsTool) Name() string { return "commit_messages" }

func (t *commitsTool) Description() string {
	return "Commits on source that are not on target (params: target, source)."
}

func (t *commitsTool) Invoke(ctx context.Context, params Params) Result {
	target := params.Get("target", "main")
	source := params.Get("source", "HEAD")
	if !validRef(target) || !validRef(source) {
		return Failure("invalid ref: target=%q source=%q", target, source)
	}

	out, err := runGit(ctx, t.runner, t.settings.CommandTimeout,
		"log", target+".."+source, "--pretty=format:%H|%an|%ad|%s", "--date=short")
	if err != nil {
		return gitFailure("Git log failed", err)
	}

	commits := parseCommitLog(out.Stdout)
	return Success(CommitLog{Commits: commits, CommitCount: len(commits)})
}

// parseCommitLog reads hash|author|date|subject lines. Lines with fewer
// fields are skipped; subjects may contain the separator.
func parseCommitLog(output string) []Commit {
	commits := []Commit{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			continue
		}
		hash := parts[0]
		if len(hash) > shortHashLen {
			hash = hash[:shortHashLen]
		}
		commits = append(commits, Commit{
			Hash:    hash,
			Author:  parts[1],
			Date:    parts[2],
			Message: parts[3],
		})
	}
	return commits
}
