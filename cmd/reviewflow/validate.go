package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/systemstart/reviewflow/pkg/api"
)

func validateCmd() *cobra.Command {
	var pipelineFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a pipeline definition and print its stage tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPipeline(pipelineFile)
			if err != nil {
				return fail(exitLoadPipelineFailed, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pipeline %s is valid\n", p.Name)
			api.Walk(p.Root, func(path string, n api.Node) {
				indent := strings.Repeat("  ", strings.Count(path, "/"))
				if n.Step != nil {
					fmt.Fprintf(out, "%s%s (%s worker) -> %s\n", indent, n.Name, n.Step.Worker.Type, n.Step.Output)
					return
				}
				fmt.Fprintf(out, "%s%s [%s]\n", indent, n.Name, n.Kind())
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&pipelineFile, "pipeline", "", "pipeline definition file (default: built-in code review)")
	return cmd
}
