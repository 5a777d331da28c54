package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/dropfolder"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/infrastructure/sheet"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load a CSV or Excel anomaly export into Bronze",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
			ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

			path, _ := cmd.Flags().GetString("file")
			path = strings.TrimSpace(path)
			if path == "" {
				return errors.New("--file is required")
			}
			source, _ := cmd.Flags().GetString("source")

			result, err := ingestFile(ctx, svc, path, source)
			if err != nil {
				logging.Error(ctx, "ingest failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "ingest file")
			}
			return writeImportResult(cmd.OutOrStdout(), result)
		}),
	}
	cmd.Flags().String("file", "", "CSV or XLSX file to ingest")
	cmd.Flags().String("source", "", "Source identifier stored with each row (defaults to the file name)")
	cmd.AddCommand(newIngestWatchCmd())
	return cmd
}

func newIngestWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Ingest every CSV or Excel export dropped into a directory",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
			dir, _ := cmd.Flags().GetString("dir")
			if strings.TrimSpace(dir) == "" {
				return errors.New("--dir is required")
			}
			settle, _ := cmd.Flags().GetDuration("settle")
			source, _ := cmd.Flags().GetString("source")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			watcher := dropfolder.NewWatcher(dir, settle)
			return watcher.Run(ctx, func(ctx context.Context, path string) error {
				result, err := ingestFile(ctx, svc, path, source)
				if err != nil {
					return err
				}
				return writeImportResult(out, result)
			})
		}),
	}
	cmd.Flags().String("dir", "", "Directory to watch")
	cmd.Flags().Duration("settle", 500*time.Millisecond, "Quiet period before a file is read")
	cmd.Flags().String("source", "", "Source identifier stored with each row (defaults to the file name)")
	return cmd
}

func ingestFile(ctx context.Context, svc *pipeline.Service, path string, source string) (pipeline.ImportResult, error) {
	if strings.TrimSpace(source) == "" {
		source = filepath.Base(path)
	}

	decoded, err := sheet.ReadFile(path)
	if err != nil {
		return pipeline.ImportResult{}, errs.Wrapf(err, "read %s", path)
	}

	switch decoded.Format {
	case sheet.FormatExcel:
		return svc.IngestRows(ctx, pipeline.IngestRowsInput{Rows: decoded.Rows, Source: source})
	default:
		return svc.IngestCSV(ctx, pipeline.IngestCSVInput{Text: decoded.Text, Source: source})
	}
}

func writeImportResult(w io.Writer, result pipeline.ImportResult) error {
	if _, err := fmt.Fprintf(w, "run %s: %d rows, %d stored, %d failed\n",
		result.ProcessingLogID, result.TotalRows, result.SuccessCount, result.ErrorCount); err != nil {
		return errs.Wrap(err, "write ingest output")
	}
	for _, line := range result.Errors {
		if _, err := fmt.Fprintf(w, "  - %s\n", line); err != nil {
			return errs.Wrap(err, "write ingest output")
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newIngestCmd())
}
