package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/systemstart/reviewflow/pkg/blackboard"
	"github.com/systemstart/reviewflow/pkg/processing"
)

func runCmd() *cobra.Command {
	var (
		pipelineFile string
		target       string
		source       string
		contextFile  string
		assignments  []string
		outputFile   string
		contextOut   string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline once and print its report",
		Long: `Runs the pipeline (the built-in code review unless --pipeline is given)
against the configured repository. The report goes to stdout or --output.
With --context-out the full run result, including every published output,
is written as JSON, or YAML for .yaml/.yml files, even when the run fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadPipeline(pipelineFile)
			if err != nil {
				return fail(exitLoadPipelineFailed, err)
			}

			initial, err := initialContext(contextFile, assignments)
			if err != nil {
				return fail(exitLoadContextFailed, err)
			}
			if target != "" {
				initial["target_branch"] = target
			}
			if source != "" {
				initial["source_branch"] = source
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, runErr := processing.NewEngine(cfg).Run(ctx, p, initial)

			if contextOut != "" {
				if err := writeResult(contextOut, res); err != nil {
					return fail(exitWriteOutputFailed, err)
				}
				slog.Info("wrote run result", "path", contextOut)
			}
			if runErr != nil {
				return fail(exitRunFailed, runErr)
			}

			if err := writeReport(cmd, outputFile, res.Report); err != nil {
				return fail(exitWriteOutputFailed, err)
			}
			slog.Info("done", "run", res.RunID, "duration", res.Duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&pipelineFile, "pipeline", "", "pipeline definition file (default: built-in code review)")
	cmd.Flags().StringVar(&target, "target", "", "target branch (sets target_branch)")
	cmd.Flags().StringVar(&source, "source", "", "source branch (sets source_branch)")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "initial context YAML file")
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "initial context value as key=value (repeatable)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "write the report to this file instead of stdout")
	cmd.Flags().StringVar(&contextOut, "context-out", "", "write the run result to this file")
	return cmd
}

func initialContext(contextFile string, assignments []string) (map[string]any, error) {
	global := map[string]any{}
	if contextFile != "" {
		loaded, err := blackboard.LoadContextFile(contextFile)
		if err != nil {
			return nil, err
		}
		global = loaded
	}

	set, err := blackboard.ParseAssignments(assignments)
	if err != nil {
		return nil, err
	}
	return blackboard.MergeContext(global, set), nil
}

func writeReport(cmd *cobra.Command, path, report string) error {
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), report)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}
	if err := os.WriteFile(path, []byte(report), 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// writeResult encodes res as JSON, or as YAML with the same field names when
// path ends in .yaml or .yml.
func writeResult(path string, res *processing.RunResult) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run result: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("decoding run result: %w", err)
		}
		if data, err = yaml.Marshal(generic); err != nil {
			return fmt.Errorf("encoding run result as yaml: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing run result: %w", err)
	}
	return nil
}
