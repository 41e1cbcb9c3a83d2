package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/systemstart/reviewflow/pkg/secrets"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [file|-]",
		Short: "Scan a file or stdin for secrets",
		Long: `Prints the secret scan report as JSON. Findings carry pattern names and
counts only, never the matched text. Exits 1 when anything was found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return fail(exitLoadContextFailed, err)
			}

			report := secrets.Scan(string(data))
			slog.Debug("scan finished", "findings", report.FindingCount, "risk", report.RiskLevel)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fail(exitWriteOutputFailed, err)
			}

			if report.RiskLevel != secrets.RiskClean {
				return fail(exitFindings, nil)
			}
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}
