package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

// RunSilverToGold promotes Silver records page by page. Records whose
// equipment already has a Gold anomaly are skipped, so the stage can be
// re-run safely. Prediction failures never abort the stage.
func (s *Service) RunSilverToGold(ctx context.Context) (StageResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return StageResult{}, err
	}

	run, err := s.openRun(ctx, JobSilverToGold, LayerSilver, LayerGold)
	if err != nil {
		return StageResult{}, err
	}
	logCtx := logging.WithRun(ctx, "pipeline.silver_to_gold", run.RunID)

	counters := newStageCounters(s.opts.ErrorSampleLimit)
	existing := 0
	pages := 0
	var enriched enrichStats
	metadata := func() map[string]any {
		return map[string]any{
			"existingSkipped":      existing,
			"pages":                pages,
			"predictionsRequested": enriched.requested,
			"predictionsReceived":  enriched.predicted,
			"predictionsCached":    enriched.cached,
			"predictionsFailed":    enriched.failed,
			"errors":               counters.errors.items,
		}
	}
	fail := func(err error) (StageResult, error) {
		s.failRun(logCtx, run, counters, metadata(), err)
		return stageResult(run, counters, metadata()), err
	}

	site, reporter, err := s.ensureDefaults(ctx)
	if err != nil {
		return fail(err)
	}

	var limiter *rate.Limiter
	if s.opts.PageDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(s.opts.PageDelay), 1)
	}

	var afterID uint64
	for {
		if err := ctx.Err(); err != nil {
			return fail(errs.Wrap(err, "silver to gold interrupted"))
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return fail(errs.Wrap(err, "wait for next page"))
			}
		}

		page, err := s.repo.ListCleanAnomalies(ctx, afterID, s.opts.PageSize)
		if err != nil {
			return fail(errs.Wrap(err, "list silver anomalies"))
		}
		if len(page) == 0 {
			break
		}
		pages++
		afterID = page[len(page)-1].ID

		promoted := make(map[uint64]bool, len(page))
		pending := make([]ports.CleanAnomaly, 0, len(page))
		for _, clean := range page {
			_, found, err := s.repo.FindAnomalyByEquipmentIdentifier(ctx, clean.EquipmentCode)
			if err != nil {
				// persistGold checks again inside its transaction.
				logging.Debug(logCtx, "gold pre-check lookup failed",
					slog.Uint64("clean_anomaly_id", clean.ID),
					slog.String("equipment", clean.EquipmentCode),
					slog.Any("err", errs.Loggable(err)),
				)
			} else if found {
				promoted[clean.ID] = true
				continue
			}
			pending = append(pending, clean)
		}

		predictions, stats := s.enrich(logCtx, pending)
		enriched.add(stats)
		if stats.failed > 0 {
			logging.Warn(logCtx, "page scored partially, placeholders apply",
				slog.Int("page", pages),
				slog.Int("requested", stats.requested),
				slog.Int("failed", stats.failed),
			)
		}

		for _, clean := range page {
			counters.processed++
			if promoted[clean.ID] {
				existing++
				continue
			}

			var predicted *PredictedFields
			if result, ok := predictions[clean.ID]; ok {
				mapped := MapPrediction(result, s.random, s.opts.PredictionRule)
				predicted = &mapped
			}

			cleanID := clean.ID
			draft := s.buildAnomaly(goldDraft{
				EquipmentCode:        clean.EquipmentCode,
				EquipmentDescription: clean.EquipmentDescription,
				Description:          clean.Description,
				System:               clean.System,
				Section:              clean.Section,
				DetectedAt:           clean.DetectedAt,
				Reliability:          clean.Reliability,
				Availability:         clean.Availability,
				ProcessSafety:        clean.ProcessSafety,
				QualityScore:         clean.QualityScore,
				CleanAnomalyID:       &cleanID,
				Origin:               OriginPipeline,
				Rule:                 s.opts.BatchRule,
				Prediction:           predicted,
			})

			created, err := s.persistGold(ctx, draft, clean.EquipmentDescription, site.ID, reporter.ID)
			if errors.Is(err, ErrAnomalyExists) {
				existing++
				continue
			}
			if err != nil {
				logging.Error(logCtx, "promote silver anomaly failed",
					slog.Uint64("clean_anomaly_id", clean.ID),
					slog.Any("err", errs.Loggable(err)),
				)
				counters.fail("clean %d: %s", clean.ID, errs.Brief(err, maxErrorLength))
				continue
			}

			counters.succeeded++
			logging.Info(logCtx, "anomaly promoted",
				slog.Uint64("clean_anomaly_id", clean.ID),
				slog.String("code", created.Code),
				slog.String("criticality", created.Criticality),
			)
		}
	}

	run, err = s.finishRun(logCtx, run, counters, metadata())
	return stageResult(run, counters, metadata()), err
}
