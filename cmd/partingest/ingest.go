package main

import (
	"errors"
	"fmt"

	"github.com/MadeByDW91/gokartpartpicker.com/internal/app"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/delivery/cli"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/reader"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/report"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/usecase"
	"github.com/spf13/cobra"
)

type ingestOptions struct {
	file      string
	stdin     bool
	format    string
	mode      string
	outputDir string
	quiet     bool
	upload    bool
}

func ingestCmd(root *rootOptions) *cobra.Command {
	opts := &ingestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run a parts file through the ingestion pipeline",
		Long: `Read supplier rows from a CSV, TSV, JSON or JSONL file (or stdin), process
every row and write reports.

Exit status is 0 when every record is ready, 1 when any record needs review,
2 when any record is invalid and 3 when the run fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "input file")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "read rows from stdin")
	cmd.Flags().StringVar(&opts.format, "format", "", "input format: csv, tsv, json, jsonl (default: from extension, tsv for stdin)")
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(domain.ModeDryRun), "dry-run, commit or report-only")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "report directory (default: reports.output_dir)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "upload reports to reports.s3_bucket")

	return cmd
}

func runIngest(cmd *cobra.Command, root *rootOptions, opts *ingestOptions) error {
	ctx := cmd.Context()
	cfg := root.cfg

	mode, err := domain.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	if opts.upload && cfg.Reports.S3Bucket == "" {
		return errors.New("--upload needs reports.s3_bucket")
	}

	rows, source, err := readRows(cmd, opts)
	if err != nil {
		return err
	}

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = application.Close() }()

	request := &usecase.IngestRequest{Rows: rows, Mode: mode, Source: source}

	var progress *cli.Progress
	if !opts.quiet && len(rows) > 0 {
		progress = cli.NewProgress(cmd.ErrOrStderr(), len(rows), "Processing")
		request.Progress = progress.Update
	}

	batch, err := application.Service.Ingest(ctx, request)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.Reports.OutputDir
	}
	writer, err := report.NewWriter(outputDir)
	if err != nil {
		return err
	}
	artifacts, err := writer.Generate(batch)
	if err != nil {
		return err
	}

	var uploaded []string
	if opts.upload {
		uploader, err := report.LoadS3Uploader(ctx, cfg.Reports.Region, cfg.Reports.S3Bucket, cfg.Reports.S3Prefix)
		if err != nil {
			return err
		}
		if uploaded, err = uploader.Upload(ctx, batch.BatchID, artifacts); err != nil {
			return err
		}
	}

	console := cli.NewConsole(cmd.OutOrStdout())
	console.PrintSummary(batch)
	console.PrintIssues(batch)
	console.PrintArtifacts(artifacts, uploaded)

	if code := batch.ExitCode(); code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// readRows loads input rows and names their source for the batch report
func readRows(cmd *cobra.Command, opts *ingestOptions) ([]domain.Row, string, error) {
	format, err := reader.ParseFormat(opts.format)
	if err != nil {
		return nil, "", err
	}

	switch {
	case opts.stdin && opts.file != "":
		return nil, "", errors.New("use either --file or --stdin, not both")
	case opts.stdin:
		// Pasted spreadsheet cells arrive tab-separated
		if format == "" {
			format = reader.FormatTSV
		}
		rows, err := reader.Read(cmd.InOrStdin(), format)
		return rows, "stdin", err
	case opts.file != "":
		rows, err := reader.ReadFile(opts.file, format)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", opts.file, err)
		}
		return rows, opts.file, nil
	}
	return nil, "", errors.New("an input is required: --file or --stdin")
}
