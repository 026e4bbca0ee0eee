package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MadeByDW91/gokartpartpicker.com/config"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/delivery/cli"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"github.com/spf13/cobra"
)

// exitFailure is returned for anything that stops a run before a batch
// report exists. Batch outcomes use 0, 1 and 2.
const exitFailure = 3

var version = "1.0.0"

// exitError carries a batch outcome that is not an error but still needs a
// non-zero status.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "partingest",
		Short: "Normalize, validate and ingest go-kart parts catalogs",
		Long: `partingest runs supplier part listings through brand resolution, name
normalization, category inference, spec extraction, schema validation and
duplicate detection, then reports or commits the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.init()
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format (console, json)")

	cmd.AddCommand(ingestCmd(opts))
	cmd.AddCommand(registryCmd(opts))
	cmd.AddCommand(versionCmd())

	return cmd
}

func (o *rootOptions) init() error {
	cfg, err := config.LoadFile(o.configFile)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}

	logEnv := "development"
	if cfg.Log.Format == "json" {
		logEnv = "production"
	}
	if err := logger.Initialize(logEnv, cfg.Log.Level); err != nil {
		return err
	}

	o.cfg = cfg
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "partingest version %s\n", version)
		},
	}
}

// exitCode maps a command result to the process status and reports
// failures on stderr.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	cli.NewConsole(os.Stderr).PrintError(err)
	return exitFailure
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	logger.Sync()

	os.Exit(exitCode(err))
}
