package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/systemstart/reviewflow/pkg/api"
	"github.com/systemstart/reviewflow/pkg/config"
	"github.com/systemstart/reviewflow/pkg/logging"
	"github.com/systemstart/reviewflow/pkg/pipelines"
)

var version = "dev"

const (
	_ = iota
	exitFindings
	exitUsage
	exitDotenvError
	exitLoadConfigurationFailed
	exitLoadContextFailed
	exitLoadPipelineFailed
	exitRunFailed
	exitWriteOutputFailed
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error) error {
	return &exitError{code: code, err: err}
}

var (
	configFile  string
	repository  string
	loggingType string
	logLevel    string

	cfg config.Config
)

func main() {
	root := rootCmd()
	err := root.Execute()
	if err == nil {
		return
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			slog.Error("command failed", "command", root.Name(), "error", ee.err)
		}
		os.Exit(ee.code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(exitUsage)
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reviewflow",
		Short: "Run staged code-review pipelines over a git repository",
		Long: `reviewflow runs pipelines of sequential and parallel stages. Each step
calls bounded git and secret-scan tools, publishes one value to a shared
run context, and later stages build on earlier results.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logging.Initialize(os.Stderr, loggingType, logLevel); err != nil {
				return fail(exitUsage, err)
			}
			if err := includeEnv(); err != nil {
				return fail(exitDotenvError, err)
			}

			loaded, err := config.Load(configFile)
			if err != nil {
				return fail(exitLoadConfigurationFailed, err)
			}
			if repository != "" {
				loaded.Repository = repository
			}
			cfg = loaded
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&repository, "repository", "", "git working tree to review (overrides config)")
	root.PersistentFlags().StringVar(&loggingType, "logging-type", logging.Tint, "logging type: json, text or tint")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "logging level: debug, info, warn, error")

	root.AddCommand(runCmd())
	root.AddCommand(batchCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(scanCmd())
	root.AddCommand(versionCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		// logging and config are not needed here
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func includeEnv() error {
	err := godotenv.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("loading .env: %w", err)
		}
		slog.Debug("no .env file found")
		return nil
	}
	slog.Info("using .env file")
	return nil
}

func loadPipeline(path string) (*api.Pipeline, error) {
	if path == "" {
		return pipelines.Default()
	}
	return api.LoadPipeline(path)
}
