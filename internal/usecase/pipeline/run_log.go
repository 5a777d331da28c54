package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

const maxErrorLength = 300

// stageCounters accumulates the per-record outcome of a stage.
type stageCounters struct {
	processed int
	succeeded int
	failed    int
	errors    *sampler
}

func newStageCounters(limit int) stageCounters {
	return stageCounters{errors: newSampler(limit)}
}

func (c *stageCounters) fail(format string, args ...any) {
	c.failed++
	c.errors.add(fmt.Sprintf(format, args...))
}

// sampler keeps the first limit entries it sees.
type sampler struct {
	limit int
	items []string
}

func newSampler(limit int) *sampler {
	return &sampler{limit: limit, items: []string{}}
}

func (s *sampler) add(item string) {
	if len(s.items) < s.limit {
		s.items = append(s.items, item)
	}
}

func (s *Service) openRun(ctx context.Context, job string, source string, target string) (ports.PipelineRun, error) {
	run, err := s.repo.CreateRun(ctx, ports.PipelineRun{
		RunID:       s.newRunID(),
		JobName:     job,
		SourceLayer: source,
		TargetLayer: target,
		StartTime:   s.now(),
		Status:      ports.RunStatusRunning,
	})
	if err != nil {
		return ports.PipelineRun{}, errs.Wrapf(err, "open %s run", job)
	}

	logging.Info(logging.WithRun(ctx, "", run.RunID), "pipeline run started",
		slog.String("job", job),
		slog.String("source_layer", source),
		slog.String("target_layer", target),
	)
	return run, nil
}

// finishRun closes a run that reached the end of its loop. Any failed
// record turns the status into completed_with_errors.
func (s *Service) finishRun(ctx context.Context, run ports.PipelineRun, counters stageCounters, metadata map[string]any) (ports.PipelineRun, error) {
	end := s.now()
	run.RecordsProcessed = counters.processed
	run.RecordsSucceeded = counters.succeeded
	run.RecordsFailed = counters.failed
	run.EndTime = &end
	run.Metadata = metadata
	run.Status = ports.RunStatusCompleted
	if counters.failed > 0 {
		run.Status = ports.RunStatusCompletedWithErrors
	}

	if err := s.repo.FinishRun(ctx, run); err != nil {
		return run, errs.Wrapf(err, "finish %s run", run.JobName)
	}

	logging.Info(logging.WithRun(ctx, "", run.RunID), "pipeline run finished",
		slog.String("job", run.JobName),
		slog.String("status", run.Status),
		slog.Int("processed", run.RecordsProcessed),
		slog.Int("succeeded", run.RecordsSucceeded),
		slog.Int("failed", run.RecordsFailed),
		slog.Duration("elapsed", end.Sub(run.StartTime)),
	)
	return run, nil
}

// failRun marks a run failed after a stage-level error. The stage error is
// what callers see; a failure to record it is only logged.
func (s *Service) failRun(ctx context.Context, run ports.PipelineRun, counters stageCounters, metadata map[string]any, cause error) {
	end := s.now()
	message := errs.Brief(cause, maxErrorLength)
	run.RecordsProcessed = counters.processed
	run.RecordsSucceeded = counters.succeeded
	run.RecordsFailed = counters.failed
	run.EndTime = &end
	run.Metadata = metadata
	run.Status = ports.RunStatusFailed
	run.ErrorMessage = &message

	logCtx := logging.WithRun(ctx, "", run.RunID)
	logging.Error(logCtx, "pipeline run failed",
		slog.String("job", run.JobName),
		slog.Any("err", errs.Loggable(errs.WithStack(cause))),
	)

	// The stage context may be the one that was cancelled.
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := s.repo.FinishRun(ctx, run); err != nil {
		logging.Error(logCtx, "record failed run", slog.Any("err", errs.Loggable(err)))
	}
}

func stageResult(run ports.PipelineRun, counters stageCounters, metadata map[string]any) StageResult {
	return StageResult{
		RunID:            run.RunID,
		RecordsProcessed: counters.processed,
		RecordsSucceeded: counters.succeeded,
		RecordsFailed:    counters.failed,
		Metadata:         metadata,
	}
}
