package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect pipeline run history",
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent pipeline runs",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
			limit, _ := cmd.Flags().GetInt("limit")
			job, _ := cmd.Flags().GetString("job")
			status, _ := cmd.Flags().GetString("status")

			runs, err := svc.ListRuns(cmd.Context(), limit)
			if err != nil {
				return errs.Wrap(err, "list runs")
			}
			runs = selectRuns(runs, job, status)
			if len(runs) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no runs")
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), renderRunsTable(runs)); err != nil {
				return errs.Wrap(err, "write runs output")
			}
			return nil
		}),
	}
	cmd.Flags().Int("limit", 20, "Number of recent runs")
	cmd.Flags().String("job", "", "Optional job filter")
	cmd.Flags().String("status", "", "Optional status filter")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one pipeline run with its metadata",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
			runID, _ := cmd.Flags().GetString("id")
			if strings.TrimSpace(runID) == "" {
				return errors.New("--id is required")
			}
			run, err := svc.GetRun(cmd.Context(), runID)
			if err != nil {
				return errs.Wrapf(err, "get run %s", runID)
			}
			return writeRun(cmd.OutOrStdout(), run)
		}),
	}
	cmd.Flags().String("id", "", "Run id")
	return cmd
}

func selectRuns(runs []ports.PipelineRun, job string, status string) []ports.PipelineRun {
	job = strings.TrimSpace(strings.ToLower(job))
	status = strings.TrimSpace(strings.ToLower(status))
	if job == "" && status == "" {
		return runs
	}
	out := make([]ports.PipelineRun, 0, len(runs))
	for _, run := range runs {
		if job != "" && run.JobName != job {
			continue
		}
		if status != "" && run.Status != status {
			continue
		}
		out = append(out, run)
	}
	return out
}

func renderRunsTable(runs []ports.PipelineRun) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.RunID,
			run.JobName,
			run.SourceLayer + ">" + run.TargetLayer,
			run.Status,
			strconv.Itoa(run.RecordsProcessed),
			strconv.Itoa(run.RecordsSucceeded),
			strconv.Itoa(run.RecordsFailed),
			run.StartTime.Format(time.DateTime),
			runDuration(run),
		})
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RUN", "JOB", "LAYERS", "STATUS", "PROC", "OK", "FAIL", "STARTED", "DURATION").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func runDuration(run ports.PipelineRun) string {
	if run.EndTime == nil {
		return "-"
	}
	return run.EndTime.Sub(run.StartTime).Round(time.Millisecond).String()
}

func writeRun(w io.Writer, run ports.PipelineRun) error {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s (%s)\n", run.RunID, run.JobName)
	fmt.Fprintf(&b, "layers:   %s -> %s\n", run.SourceLayer, run.TargetLayer)
	fmt.Fprintf(&b, "status:   %s\n", run.Status)
	fmt.Fprintf(&b, "records:  processed=%d succeeded=%d failed=%d\n", run.RecordsProcessed, run.RecordsSucceeded, run.RecordsFailed)
	fmt.Fprintf(&b, "started:  %s\n", run.StartTime.Format(time.DateTime))
	if run.EndTime != nil {
		fmt.Fprintf(&b, "ended:    %s (%s)\n", run.EndTime.Format(time.DateTime), runDuration(run))
	}
	if run.ErrorMessage != nil {
		fmt.Fprintf(&b, "error:    %s\n", *run.ErrorMessage)
	}

	keys := make([]string, 0, len(run.Metadata))
	for key := range run.Metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "  %s: %v\n", key, run.Metadata[key])
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errs.Wrap(err, "write run output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(newRunsListCmd(), newRunsShowCmd())
}
