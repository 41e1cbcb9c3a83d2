package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systemstart/reviewflow/pkg/api"
	"github.com/systemstart/reviewflow/pkg/processing"
)

func batchCmd() *cobra.Command {
	var (
		pipelineFile string
		contextFile  string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "batch <runs.yaml>",
		Short: "Run a pipeline once per entry of a batch file",
		Long: `Each entry of the batch file gets its own run: a fresh context built from
--context-file merged with the entry's context, and optionally its own
model adapter. Reports are written to --output-dir/<name>.md.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := api.LoadBatch(args[0])
			if err != nil {
				return fail(exitLoadPipelineFailed, err)
			}
			p, err := loadPipeline(pipelineFile)
			if err != nil {
				return fail(exitLoadPipelineFailed, err)
			}
			base, err := initialContext(contextFile, nil)
			if err != nil {
				return fail(exitLoadContextFailed, err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			results, runErr := processing.NewEngine(cfg).RunBatch(ctx, b, p, base)

			if outputDir != "" {
				if err := writeBatchReports(outputDir, results); err != nil {
					return fail(exitWriteOutputFailed, err)
				}
			}
			printBatchSummary(cmd, results)

			if runErr != nil {
				return fail(exitRunFailed, runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pipelineFile, "pipeline", "", "pipeline definition file (default: built-in code review)")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "context YAML shared by every run")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for per-run reports")
	return cmd
}

func writeBatchReports(dir string, results []processing.BatchResult) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, r := range results {
		if r.Result == nil || r.Err != nil {
			continue
		}
		path := filepath.Join(dir, r.Name+".md")
		if err := os.WriteFile(path, []byte(r.Result.Report), 0o600); err != nil {
			return fmt.Errorf("writing report for %s: %w", r.Name, err)
		}
	}
	return nil
}

func printBatchSummary(cmd *cobra.Command, results []processing.BatchResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTATUS\tRUN ID\tFAILED AT")
	for _, r := range results {
		status, runID, failedAt := processing.StatusFailed, "-", "-"
		if r.Result != nil {
			status, runID = r.Result.Status, r.Result.RunID
			if r.Result.FailedAt != "" {
				failedAt = r.Result.FailedAt
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, status, runID, failedAt)
	}
	w.Flush()
}
