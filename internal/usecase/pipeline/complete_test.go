package pipeline

import (
	"context"
	"testing"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

func TestRunCompletePipeline(t *testing.T) {
	env := setupService(t, nil)
	ctx := context.Background()
	ingestSample(t, env)

	result, err := env.svc.RunCompletePipeline(ctx)
	if err != nil {
		t.Fatalf("RunCompletePipeline() error = %v", err)
	}
	if !result.Success {
		t.Fatalf("RunCompletePipeline() success = false: %+v", result)
	}
	if result.BronzeToSilver.RecordsSucceeded != 4 || result.SilverToGold.RecordsSucceeded != 3 {
		t.Fatalf("stage results = %+v / %+v", result.BronzeToSilver, result.SilverToGold)
	}

	run, err := env.svc.GetRun(ctx, result.RunID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.JobName != JobCompletePipeline || run.SourceLayer != LayerBronze || run.TargetLayer != LayerGold {
		t.Fatalf("run = %+v", run)
	}
	// the rejected Bronze row is carried into the pipeline run
	if run.Status != ports.RunStatusCompletedWithErrors || run.RecordsProcessed != 8 || run.RecordsFailed != 1 {
		t.Fatalf("run counters = %+v", run)
	}
	if run.Metadata["silverToGoldRunId"] != result.SilverToGold.RunID {
		t.Fatalf("run metadata = %v", run.Metadata)
	}

	runs, err := env.svc.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	// ingest, bronze to silver, silver to gold, complete
	if len(runs) != 4 {
		t.Fatalf("ListRuns() = %d runs", len(runs))
	}
}

func TestRunCompletePipelineOnEmptyStore(t *testing.T) {
	env := setupService(t, nil)

	result, err := env.svc.RunCompletePipeline(context.Background())
	if err != nil {
		t.Fatalf("RunCompletePipeline() error = %v", err)
	}
	if !result.Success || result.BronzeToSilver.RecordsProcessed != 0 || result.SilverToGold.RecordsProcessed != 0 {
		t.Fatalf("RunCompletePipeline() = %+v", result)
	}
	if env.predictor.calls != 0 {
		t.Fatalf("predictor calls = %d", env.predictor.calls)
	}
}

func TestGetRunRequiresID(t *testing.T) {
	env := setupService(t, nil)
	if _, err := env.svc.GetRun(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty run id")
	}
}
