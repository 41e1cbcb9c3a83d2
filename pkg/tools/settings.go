package tools

import (
	"io/fs"
	"time"

	"github.com/systemstart/reviewflow/pkg/vcs"
)

const (
	DefaultDiffTimeout    = 30 * time.Second
	DefaultCommandTimeout = 15 * time.Second
	DefaultMaxDiffChars   = 80000
	DefaultMaxFileChars   = 50000
	DefaultStructureDepth = 3
)

// DefaultStructureExcludes prunes VCS internals, dependency caches and build
// caches from structure listings.
var DefaultStructureExcludes = []string{
	"**/.git",
	"**/node_modules",
	"**/__pycache__",
	"**/.venv",
}

// Settings bound the tools of one run.
type Settings struct {
	DiffTimeout       time.Duration
	CommandTimeout    time.Duration
	MaxDiffChars      int
	MaxFileChars      int
	StructureDepth    int
	StructureExcludes []string
}

// DefaultSettings returns the stock limits.
func DefaultSettings() Settings {
	return Settings{
		DiffTimeout:       DefaultDiffTimeout,
		CommandTimeout:    DefaultCommandTimeout,
		MaxDiffChars:      DefaultMaxDiffChars,
		MaxFileChars:      DefaultMaxFileChars,
		StructureDepth:    DefaultStructureDepth,
		StructureExcludes: DefaultStructureExcludes,
	}
}

// NewDefaultRegistry registers the five review tools over one working tree.
func NewDefaultRegistry(runner vcs.Runner, tree fs.FS, settings Settings) *Registry {
	return NewRegistry(
		NewDiffTool(runner, settings),
		NewFileContentTool(runner, settings),
		NewCommitsTool(runner, settings),
		NewSecretScanTool(nil),
		NewStructureTool(tree, settings),
	)
}
