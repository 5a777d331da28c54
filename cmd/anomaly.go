package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

const detectedAtLayout = "2006-01-02 15:04"

var anomalyCmd = &cobra.Command{
	Use:   "anomaly",
	Short: "Create or inspect Gold anomalies",
}

func newAnomalyCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a Gold anomaly directly from operator input",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
			ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

			input, err := parseCreateAnomalyFlags(cmd)
			if err != nil {
				return err
			}
			created, err := svc.CreateAnomaly(ctx, input)
			if err != nil {
				logging.Error(ctx, "create anomaly failed", slog.Any("err", errs.Loggable(err)))
				return errs.Wrap(err, "create anomaly")
			}
			return writeAnomaly(cmd.OutOrStdout(), created)
		}),
	}
	cmd.Flags().String("equipment", "", "Equipment code (num_equipement)")
	cmd.Flags().String("description", "", "Anomaly description")
	cmd.Flags().String("equipment-description", "", "Equipment name, defaults to the code")
	cmd.Flags().String("section", "", "Owning section (section_proprietaire)")
	cmd.Flags().String("system", "", "System (systeme)")
	cmd.Flags().String("detected-at", "", "Detection time as YYYY-MM-DD HH:MM, defaults to now")
	cmd.Flags().Int("reliability", 0, "Reliability factor 1-3, 0 leaves it unset")
	cmd.Flags().Int("availability", 0, "Availability factor 1-3, 0 leaves it unset")
	cmd.Flags().Int("process-safety", 0, "Process safety factor 1-3, 0 leaves it unset")
	cmd.Flags().String("reporter", "", "Reporter email, defaults to the pipeline system user")
	return cmd
}

func parseCreateAnomalyFlags(cmd *cobra.Command) (pipeline.CreateAnomalyInput, error) {
	flags := cmd.Flags()
	input := pipeline.CreateAnomalyInput{}
	input.EquipmentCode, _ = flags.GetString("equipment")
	input.Description, _ = flags.GetString("description")
	input.EquipmentDescription, _ = flags.GetString("equipment-description")
	input.Section, _ = flags.GetString("section")
	input.System, _ = flags.GetString("system")
	input.ReporterEmail, _ = flags.GetString("reporter")

	detectedAt, _ := flags.GetString("detected-at")
	if detectedAt = strings.TrimSpace(detectedAt); detectedAt != "" {
		parsed, err := time.ParseInLocation(detectedAtLayout, detectedAt, time.UTC)
		if err != nil {
			parsed, err = time.ParseInLocation(time.DateOnly, detectedAt, time.UTC)
		}
		if err != nil {
			return pipeline.CreateAnomalyInput{}, fmt.Errorf("invalid --detected-at %q: want %s", detectedAt, detectedAtLayout)
		}
		input.DetectedAt = parsed
	}

	input.Reliability = optionalFactor(cmd, "reliability")
	input.Availability = optionalFactor(cmd, "availability")
	input.ProcessSafety = optionalFactor(cmd, "process-safety")
	return input, nil
}

func optionalFactor(cmd *cobra.Command, name string) *int {
	value, _ := cmd.Flags().GetInt(name)
	if value == 0 {
		return nil
	}
	return &value
}

func newAnomalyShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a Gold anomaly by code",
		RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
			code, _ := cmd.Flags().GetString("code")
			if strings.TrimSpace(code) == "" {
				return errors.New("--code is required")
			}
			found, err := svc.GetAnomaly(cmd.Context(), code)
			if err != nil {
				return errs.Wrapf(err, "get anomaly %s", code)
			}
			return writeAnomaly(cmd.OutOrStdout(), found)
		}),
	}
	cmd.Flags().String("code", "", "Anomaly code, e.g. ABO-2025-001")
	return cmd
}

func writeAnomaly(w io.Writer, a ports.Anomaly) error {
	lines := []string{
		fmt.Sprintf("%s  %s", a.Code, a.Title),
		fmt.Sprintf("equipment:   %s", a.EquipmentIdentifier),
		fmt.Sprintf("section:     %s", a.Section),
		fmt.Sprintf("detected:    %s", a.DetectedAt.Format(detectedAtLayout)),
		fmt.Sprintf("factors:     F=%d D=%d S=%d", a.Reliability, a.Availability, a.ProcessSafety),
		fmt.Sprintf("criticality: %s (severity %s, priority %s)", a.Criticality, a.Severity, a.Priority),
		fmt.Sprintf("due:         %s (SLA %dh)", a.DueDate.Format(detectedAtLayout), a.SLAHours),
		fmt.Sprintf("impact:      cost=%.0f downtime=%.1fh safety=%t environment=%t production=%t",
			a.EstimatedCost, a.DowntimeHours, a.SafetyImpact, a.EnvironmentalImpact, a.ProductionImpact),
		fmt.Sprintf("confidence:  %.2f [%s]", a.AIConfidence, strings.Join(a.AIFactors, ", ")),
		fmt.Sprintf("origin:      %s, status %s", a.Origin, a.Status),
	}
	if a.System != nil {
		lines = append(lines, fmt.Sprintf("system:      %s", *a.System))
	}
	if _, err := fmt.Fprintln(w, strings.Join(lines, "\n")); err != nil {
		return errs.Wrap(err, "write anomaly output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(anomalyCmd)
	anomalyCmd.AddCommand(newAnomalyCreateCmd(), newAnomalyShowCmd())
}
