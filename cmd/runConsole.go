package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/runconsole"
)

var consoleRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Start the pipeline runs console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		job, _ := cmd.Flags().GetString("job")
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := runconsole.NewRunModel(ctx, svc, runconsole.Options{
			JobFilter:       job,
			StatusFilter:    status,
			Limit:           limit,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run runs console")
		}
		return nil
	}),
}

func init() {
	consoleCmd.AddCommand(consoleRunsCmd)
	consoleRunsCmd.Flags().String("job", "", "Optional job filter (bronze_ingest|bronze_to_silver|silver_to_gold|complete_pipeline)")
	consoleRunsCmd.Flags().String("status", "", "Optional status filter (running|completed|completed_with_errors|failed)")
	consoleRunsCmd.Flags().Int("limit", 30, "Number of recent runs to load")
	consoleRunsCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
