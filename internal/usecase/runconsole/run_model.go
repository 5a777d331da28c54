package runconsole

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

const (
	maxAuditLines   = 8
	maxShownSamples = 5
	defaultLimit    = 30
)

// Runner is the part of the pipeline service the console drives.
type Runner interface {
	ListRuns(ctx context.Context, limit int) ([]ports.PipelineRun, error)
	RunBronzeToSilver(ctx context.Context) (pipeline.StageResult, error)
	RunSilverToGold(ctx context.Context) (pipeline.StageResult, error)
	RunCompletePipeline(ctx context.Context) (pipeline.CompleteResult, error)
}

type Options struct {
	JobFilter       string
	StatusFilter    string
	Limit           int
	RefreshInterval time.Duration
}

type runModel struct {
	ctx             context.Context
	runner          Runner
	jobFilter       string
	statusFilter    string
	limit           int
	refreshInterval time.Duration

	runs          []ports.PipelineRun
	selectedIndex int
	busy          bool
	status        string
	auditLogs     []string
}

type runsLoadedMsg struct {
	items []ports.PipelineRun
	err   error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action string
	result string
	err    error
}

func NewRunModel(ctx context.Context, runner Runner, options Options) tea.Model {
	limit := options.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	return &runModel{
		ctx:             ctx,
		runner:          runner,
		jobFilter:       strings.TrimSpace(strings.ToLower(options.JobFilter)),
		statusFilter:    strings.TrimSpace(strings.ToLower(options.StatusFilter)),
		limit:           limit,
		refreshInterval: interval,
		status:          "loading",
	}
}

func (m *runModel) Init() tea.Cmd {
	return tea.Batch(m.loadRunsCmd(), m.tickCmd())
}

func (m *runModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadRunsCmd(), m.tickCmd())
	case runsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.runs = msg.items
		if len(m.runs) == 0 {
			m.selectedIndex = 0
			if !m.busy {
				m.status = "no runs yet"
			}
			return m, nil
		}
		if m.selectedIndex >= len(m.runs) {
			m.selectedIndex = len(m.runs) - 1
		}
		if !m.busy {
			m.status = fmt.Sprintf("refreshed, %d runs", len(m.runs))
		}
		return m, nil
	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			m.appendAuditLog(msg.action, "failed", msg.err)
		} else {
			m.status = fmt.Sprintf("%s done: %s", msg.action, msg.result)
			m.appendAuditLog(msg.action, msg.result, nil)
		}
		m.selectedIndex = 0
		return m, m.loadRunsCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "g":
			m.status = "refreshing"
			return m, m.loadRunsCmd()
		case "up", "k":
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
			return m, nil
		case "down", "j":
			if m.selectedIndex < len(m.runs)-1 {
				m.selectedIndex++
			}
			return m, nil
		case "b":
			return m, m.stageCmd(pipeline.JobBronzeToSilver, m.runner.RunBronzeToSilver)
		case "s":
			return m, m.stageCmd(pipeline.JobSilverToGold, m.runner.RunSilverToGold)
		case "p":
			return m, m.completeCmd()
		}
	}
	return m, nil
}

func (m *runModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Medallion Runs"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"job=%s status=%s limit=%d refresh=%s",
		firstNonEmpty(m.jobFilter, "all"),
		firstNonEmpty(m.statusFilter, "all"),
		m.limit,
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Runs"))
	builder.WriteString("\n")
	if len(m.runs) == 0 {
		builder.WriteString(dimStyle.Render("- no runs"))
		builder.WriteString("\n\n")
	} else {
		for index, run := range m.runs {
			line := fmt.Sprintf(
				"%s %-17s %-21s %d/%d/%d %s",
				shortID(run.RunID),
				run.JobName,
				run.Status,
				run.RecordsProcessed,
				run.RecordsSucceeded,
				run.RecordsFailed,
				run.StartTime.Format(time.DateTime),
			)
			if index == m.selectedIndex {
				builder.WriteString(selectedStyle.Render("> " + line))
			} else {
				builder.WriteString("  " + line)
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	if run, ok := m.selectedRun(); ok {
		builder.WriteString(renderDetail(run))
	} else {
		builder.WriteString(dimStyle.Render("- no detail"))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Audit Log"))
	builder.WriteString("\n")
	if len(m.auditLogs) == 0 {
		builder.WriteString(dimStyle.Render("- no actions"))
		builder.WriteString("\n\n")
	} else {
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  g refresh  b bronze→silver  s silver→gold  p full pipeline  q quit"))
	return builder.String()
}

func renderDetail(run ports.PipelineRun) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("RunID: %s\n", run.RunID))
	builder.WriteString(fmt.Sprintf("Job: %s (%s → %s)\n", run.JobName, run.SourceLayer, run.TargetLayer))
	builder.WriteString(fmt.Sprintf("Status: %s\n", run.Status))
	builder.WriteString(fmt.Sprintf("Records: processed=%d succeeded=%d failed=%d\n", run.RecordsProcessed, run.RecordsSucceeded, run.RecordsFailed))
	if run.EndTime != nil {
		builder.WriteString(fmt.Sprintf("Duration: %s\n", run.EndTime.Sub(run.StartTime).Round(time.Millisecond)))
	} else {
		builder.WriteString("Duration: running\n")
	}
	if run.ErrorMessage != nil {
		builder.WriteString(fmt.Sprintf("Error: %s\n", *run.ErrorMessage))
	}

	keys := make([]string, 0, len(run.Metadata))
	for key := range run.Metadata {
		if key != "errors" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		builder.WriteString(fmt.Sprintf("%s: %v\n", key, run.Metadata[key]))
	}

	samples := errorSamples(run.Metadata)
	if len(samples) > 0 {
		builder.WriteString("Errors:\n")
		if len(samples) > maxShownSamples {
			samples = samples[:maxShownSamples]
		}
		for _, sample := range samples {
			builder.WriteString("- " + sample + "\n")
		}
	}
	return builder.String()
}

func errorSamples(metadata map[string]any) []string {
	switch values := metadata["errors"].(type) {
	case []string:
		return values
	case []any:
		out := make([]string, 0, len(values))
		for _, value := range values {
			out = append(out, fmt.Sprint(value))
		}
		return out
	}
	return nil
}

func (m *runModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *runModel) loadRunsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.runner.ListRuns(m.ctx, m.limit)
		if err != nil {
			return runsLoadedMsg{err: err}
		}
		return runsLoadedMsg{items: filterRuns(items, m.jobFilter, m.statusFilter)}
	}
}

func (m *runModel) stageCmd(action string, run func(context.Context) (pipeline.StageResult, error)) tea.Cmd {
	if m.busy {
		m.status = "a stage is already running"
		return nil
	}
	m.busy = true
	m.status = "running " + action + "..."
	return func() tea.Msg {
		result, err := run(m.ctx)
		return actionDoneMsg{action: action, result: stageSummary(result), err: err}
	}
}

func (m *runModel) completeCmd() tea.Cmd {
	if m.busy {
		m.status = "a stage is already running"
		return nil
	}
	m.busy = true
	m.status = "running " + pipeline.JobCompletePipeline + "..."
	return func() tea.Msg {
		result, err := m.runner.RunCompletePipeline(m.ctx)
		if err == nil && !result.Success {
			err = errors.New("pipeline did not succeed")
		}
		summary := fmt.Sprintf("silver %s, gold %s", stageSummary(result.BronzeToSilver), stageSummary(result.SilverToGold))
		return actionDoneMsg{action: pipeline.JobCompletePipeline, result: summary, err: err}
	}
}

func stageSummary(result pipeline.StageResult) string {
	return fmt.Sprintf("%d/%d ok, %d failed", result.RecordsSucceeded, result.RecordsProcessed, result.RecordsFailed)
}

func (m *runModel) selectedRun() (ports.PipelineRun, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.runs) {
		return ports.PipelineRun{}, false
	}
	return m.runs[m.selectedIndex], true
}

func (m *runModel) appendAuditLog(action string, outcome string, err error) {
	timestamp := time.Now().Format(time.TimeOnly)
	line := fmt.Sprintf("%s %s %s", timestamp, action, outcome)
	if err != nil {
		line += " (" + err.Error() + ")"
	}
	m.auditLogs = append([]string{line}, m.auditLogs...)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[:maxAuditLines]
	}

	logging.Info(m.ctx, "run console action",
		slog.String("action", action),
		slog.String("result", outcome),
	)
}

func filterRuns(items []ports.PipelineRun, jobFilter string, statusFilter string) []ports.PipelineRun {
	filtered := make([]ports.PipelineRun, 0, len(items))
	for _, item := range items {
		if jobFilter != "" && item.JobName != jobFilter {
			continue
		}
		if statusFilter != "" && item.Status != statusFilter {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if normalized != "" {
			return normalized
		}
	}
	return ""
}
