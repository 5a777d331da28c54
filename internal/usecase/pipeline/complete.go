package pipeline

import (
	"context"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
)

// RunCompletePipeline runs Bronze to Silver, then Silver to Gold, under its
// own run record. A stage that returns an error halts the pipeline; records
// that merely failed inside a stage do not.
func (s *Service) RunCompletePipeline(ctx context.Context) (CompleteResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return CompleteResult{}, err
	}

	run, err := s.openRun(ctx, JobCompletePipeline, LayerBronze, LayerGold)
	if err != nil {
		return CompleteResult{}, err
	}
	logCtx := logging.WithRun(ctx, "pipeline.complete", run.RunID)

	result := CompleteResult{RunID: run.RunID}
	counters := newStageCounters(s.opts.ErrorSampleLimit)
	metadata := func() map[string]any {
		return map[string]any{
			"bronzeToSilverRunId": result.BronzeToSilver.RunID,
			"silverToGoldRunId":   result.SilverToGold.RunID,
			"errors":              counters.errors.items,
		}
	}
	absorb := func(stage StageResult) {
		counters.processed += stage.RecordsProcessed
		counters.succeeded += stage.RecordsSucceeded
		counters.failed += stage.RecordsFailed
		if samples, ok := stage.Metadata["errors"].([]string); ok {
			for _, sample := range samples {
				counters.errors.add(sample)
			}
		}
	}

	result.BronzeToSilver, err = s.RunBronzeToSilver(logCtx)
	absorb(result.BronzeToSilver)
	if err != nil {
		err = errs.Wrap(err, "bronze to silver")
		s.failRun(logCtx, run, counters, metadata(), err)
		return result, err
	}

	result.SilverToGold, err = s.RunSilverToGold(logCtx)
	absorb(result.SilverToGold)
	if err != nil {
		err = errs.Wrap(err, "silver to gold")
		s.failRun(logCtx, run, counters, metadata(), err)
		return result, err
	}

	if _, err := s.finishRun(logCtx, run, counters, metadata()); err != nil {
		return result, err
	}
	result.Success = true
	return result, nil
}
