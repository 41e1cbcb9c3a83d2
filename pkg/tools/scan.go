package tools

import (
	"context"

	"github.com/systemstart/reviewflow/pkg/secrets"
)

type secretScanTool struct {
	scanner *secrets.Scanner
}

// NewSecretScanTool creates the check_secrets tool. A nil scanner uses the
// default pattern table.
func NewSecretScanTool(scanner *secrets.Scanner) Tool {
	if scanner == nil {
		scanner = secrets.NewScanner()
	}
	return &secretScanTool{scanner: scanner}
}

func (t *secretScanTool) Name() string { return "check_secrets" }

func (t *secretScanTool) Description() string {
	return "Scan text for credential patterns (params: text)."
}

func (t *secretScanTool) Invoke(_ context.Context, params Params) Result {
	return Success(t.scanner.Scan(params.Get("text", "")))
}
