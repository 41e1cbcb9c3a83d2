// Package pipelines ships the built-in pipeline definitions.
package pipelines

import (
	_ "embed"

	"github.com/systemstart/reviewflow/pkg/api"
)

//go:embed codereview.yaml
var codeReview []byte

// CodeReviewYAML returns the source of the built-in code-review pipeline.
func CodeReviewYAML() []byte {
	return append([]byte(nil), codeReview...)
}

// Default returns the built-in three-phase code-review pipeline.
func Default() (*api.Pipeline, error) {
	return api.ParsePipeline(codeReview)
}
