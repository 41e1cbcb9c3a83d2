package tools

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Structure is returned by the repo_structure tool.
type Structure struct {
	Tree string `json:"tree"`
}

func (s Structure) Text() string { return s.Tree }

type structureTool struct {
	tree     fs.FS
	settings Settings
}

// NewStructureTool creates the repo_structure tool over a working tree.
func NewStructureTool(tree fs.FS, settings Settings) Tool {
	return &structureTool{tree: tree, settings: settings}
}

func (t *structureTool) Name() string { return "repo_structure" }

func (t *structureTool) Description() string {
	return "Directory listing of the working tree (params: max_depth)."
}

func (t *structureTool) Invoke(ctx context.Context, params Params) Result {
	depth := t.settings.StructureDepth
	if raw := params.Get("max_depth", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Failure("invalid max_depth %q", raw)
		}
		depth = n
	}

	ctx, cancel := context.WithTimeout(ctx, t.settings.CommandTimeout)
	defer cancel()

	paths, err := listTree(ctx, t.tree, depth, t.settings.StructureExcludes)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Failure("structure listing timed out")
	case errors.Is(err, context.Canceled):
		return Failure("structure listing cancelled")
	case err != nil:
		return Failure("Cannot list structure: %v", err)
	}
	return Success(Structure{Tree: strings.Join(paths, "\n")})
}

// listTree walks tree like `find . -maxdepth depth`, pruning every entry that
// matches one of the exclude globs.
func listTree(ctx context.Context, tree fs.FS, depth int, excludes []string) ([]string, error) {
	var paths []string
	err := fs.WalkDir(tree, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == "." {
			paths = append(paths, ".")
			return nil
		}
		if excluded(path, excludes) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		level := strings.Count(path, "/") + 1
		if level > depth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		paths = append(paths, "./"+path)
		if d.IsDir() && level == depth {
			return fs.SkipDir
		}
		return nil
	})
	return paths, err
}

func excluded(path string, patterns []string) bool {
	for _, pattern := range patterns {
		ok, err := doublestar.Match(pattern, path)
		if err != nil {
			slog.Warn("ignoring invalid exclude pattern", "pattern", pattern, "error", err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
