package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run medallion stages",
}

func newStageCmd(use string, short string, stage func(*pipeline.Service) func(context.Context) (pipeline.StageResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
			ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

			result, err := stage(svc)(ctx)
			if writeErr := writeStageResult(cmd.OutOrStdout(), use, result); writeErr != nil {
				return writeErr
			}
			if err != nil {
				logging.Error(ctx, "stage failed", slog.String("stage", use), slog.Any("err", errs.Loggable(err)))
				return errs.Wrapf(err, "run %s", use)
			}
			return nil
		}),
	}
}

var pipelineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run Bronze to Silver then Silver to Gold",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		result, err := svc.RunCompletePipeline(ctx)
		out := cmd.OutOrStdout()
		if _, writeErr := fmt.Fprintf(out, "pipeline run %s success=%t\n", result.RunID, result.Success); writeErr != nil {
			return errs.Wrap(writeErr, "write pipeline output")
		}
		if writeErr := writeStageResult(out, "bronze-to-silver", result.BronzeToSilver); writeErr != nil {
			return writeErr
		}
		if writeErr := writeStageResult(out, "silver-to-gold", result.SilverToGold); writeErr != nil {
			return writeErr
		}
		if err != nil {
			logging.Error(ctx, "pipeline failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "run pipeline")
		}
		return nil
	}),
}

func writeStageResult(w io.Writer, stage string, result pipeline.StageResult) error {
	if result.RunID == "" {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%s run %s: processed=%d succeeded=%d failed=%d\n",
		stage, result.RunID, result.RecordsProcessed, result.RecordsSucceeded, result.RecordsFailed); err != nil {
		return errs.Wrap(err, "write stage output")
	}

	keys := make([]string, 0, len(result.Metadata))
	for key := range result.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := fmt.Fprintf(w, "  %s: %v\n", key, result.Metadata[key]); err != nil {
			return errs.Wrap(err, "write stage output")
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(
		newStageCmd("bronze-to-silver", "Cleanse unprocessed Bronze rows into Silver", func(s *pipeline.Service) func(context.Context) (pipeline.StageResult, error) {
			return s.RunBronzeToSilver
		}),
		newStageCmd("silver-to-gold", "Promote Silver records to Gold anomalies", func(s *pipeline.Service) func(context.Context) (pipeline.StageResult, error) {
			return s.RunSilverToGold
		}),
		pipelineRunCmd,
	)
}
