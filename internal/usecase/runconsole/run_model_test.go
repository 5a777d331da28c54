package runconsole

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/usecase/pipeline"
)

type fakeRunner struct {
	runs        []ports.PipelineRun
	listErr     error
	stageCalls  []string
	completeErr error
}

func (f *fakeRunner) ListRuns(_ context.Context, _ int) ([]ports.PipelineRun, error) {
	return f.runs, f.listErr
}

func (f *fakeRunner) RunBronzeToSilver(_ context.Context) (pipeline.StageResult, error) {
	f.stageCalls = append(f.stageCalls, pipeline.JobBronzeToSilver)
	return pipeline.StageResult{RecordsProcessed: 5, RecordsSucceeded: 4, RecordsFailed: 1}, nil
}

func (f *fakeRunner) RunSilverToGold(_ context.Context) (pipeline.StageResult, error) {
	f.stageCalls = append(f.stageCalls, pipeline.JobSilverToGold)
	return pipeline.StageResult{RecordsProcessed: 3, RecordsSucceeded: 3}, nil
}

func (f *fakeRunner) RunCompletePipeline(_ context.Context) (pipeline.CompleteResult, error) {
	f.stageCalls = append(f.stageCalls, pipeline.JobCompletePipeline)
	return pipeline.CompleteResult{}, f.completeErr
}

func sampleRuns() []ports.PipelineRun {
	start := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	message := "list silver anomalies: database is locked"
	return []ports.PipelineRun{
		{
			RunID: "0f1e2d3c-aaaa", JobName: pipeline.JobSilverToGold, SourceLayer: "silver", TargetLayer: "gold",
			Status: ports.RunStatusFailed, StartTime: start, EndTime: &end, ErrorMessage: &message,
			Metadata: map[string]any{"existingSkipped": 2, "errors": []any{"clean 4: boom"}},
		},
		{
			RunID: "9a8b7c6d-bbbb", JobName: pipeline.JobBronzeToSilver, SourceLayer: "bronze", TargetLayer: "silver",
			Status: ports.RunStatusCompleted, StartTime: start, EndTime: &end, RecordsProcessed: 5, RecordsSucceeded: 5,
		},
	}
}

func runMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected command")
	}
	return cmd()
}

func TestFilterRuns(t *testing.T) {
	runs := sampleRuns()
	if got := filterRuns(runs, "", ""); len(got) != 2 {
		t.Fatalf("no filter = %d", len(got))
	}
	if got := filterRuns(runs, pipeline.JobBronzeToSilver, ""); len(got) != 1 || got[0].RunID != "9a8b7c6d-bbbb" {
		t.Fatalf("job filter = %+v", got)
	}
	if got := filterRuns(runs, "", ports.RunStatusFailed); len(got) != 1 || got[0].JobName != pipeline.JobSilverToGold {
		t.Fatalf("status filter = %+v", got)
	}
}

func TestRunModelLoadsAndRendersDetail(t *testing.T) {
	runner := &fakeRunner{runs: sampleRuns()}
	model := NewRunModel(context.Background(), runner, Options{}).(*runModel)

	updated, _ := model.Update(runMsg(t, model.loadRunsCmd()))
	model = updated.(*runModel)
	view := model.View()
	for _, want := range []string{"0f1e2d3c", "existingSkipped: 2", "clean 4: boom", "database is locked", "Duration: 1.5s"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	model.Update(tea.KeyMsg{Type: tea.KeyDown})
	if model.selectedIndex != 1 {
		t.Fatalf("selectedIndex = %d, want 1", model.selectedIndex)
	}
	model.Update(tea.KeyMsg{Type: tea.KeyDown})
	if model.selectedIndex != 1 {
		t.Fatalf("selectedIndex moved past the end: %d", model.selectedIndex)
	}
}

func TestRunModelTriggersStagesOneAtATime(t *testing.T) {
	runner := &fakeRunner{runs: sampleRuns()}
	model := NewRunModel(context.Background(), runner, Options{}).(*runModel)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	if !model.busy || cmd == nil {
		t.Fatalf("busy = %v after b", model.busy)
	}
	if _, second := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}); second != nil {
		t.Fatal("second stage started while busy")
	}

	done := runMsg(t, cmd)
	model.Update(done)
	if model.busy {
		t.Fatal("still busy after action done")
	}
	if len(runner.stageCalls) != 1 || runner.stageCalls[0] != pipeline.JobBronzeToSilver {
		t.Fatalf("stage calls = %v", runner.stageCalls)
	}
	if !strings.Contains(model.status, "4/5 ok, 1 failed") || len(model.auditLogs) != 1 {
		t.Fatalf("status = %q audit = %v", model.status, model.auditLogs)
	}
}

func TestRunModelReportsPipelineFailure(t *testing.T) {
	runner := &fakeRunner{completeErr: errors.New("bronze to silver: disk full")}
	model := NewRunModel(context.Background(), runner, Options{}).(*runModel)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	model.Update(runMsg(t, cmd))
	if !strings.Contains(model.status, "disk full") || !strings.Contains(model.auditLogs[0], "failed") {
		t.Fatalf("status = %q audit = %v", model.status, model.auditLogs)
	}
}

func TestRunModelKeepsRunsOnRefreshError(t *testing.T) {
	runner := &fakeRunner{runs: sampleRuns()}
	model := NewRunModel(context.Background(), runner, Options{}).(*runModel)
	model.Update(runMsg(t, model.loadRunsCmd()))

	runner.listErr = errors.New("closed")
	model.Update(runMsg(t, model.loadRunsCmd()))
	if len(model.runs) != 2 || !strings.Contains(model.status, "refresh failed") {
		t.Fatalf("runs = %d status = %q", len(model.runs), model.status)
	}
}
