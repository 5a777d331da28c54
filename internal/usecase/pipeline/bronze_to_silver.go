package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/columns"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

const duplicateSampleLimit = 10

type cleanseOutcome int

const (
	outcomeStored cleanseOutcome = iota
	outcomeDuplicate
)

// RunBronzeToSilver cleanses every unprocessed Bronze row. Rejected rows
// stay unprocessed so that a later run with a better mapping can pick them
// up again; stored and duplicate rows are marked processed. A row rejected
// again for the same reason is reported in previouslyRejected, not failed.
func (s *Service) RunBronzeToSilver(ctx context.Context) (StageResult, error) {
	if err := s.checkReady(ctx); err != nil {
		return StageResult{}, err
	}

	run, err := s.openRun(ctx, JobBronzeToSilver, LayerBronze, LayerSilver)
	if err != nil {
		return StageResult{}, err
	}
	logCtx := logging.WithRun(ctx, "pipeline.bronze_to_silver", run.RunID)

	counters := newStageCounters(s.opts.ErrorSampleLimit)
	duplicates := 0
	rejected := 0
	previouslyRejected := 0
	duplicateSamples := make([]uint64, 0, duplicateSampleLimit)
	metadata := func() map[string]any {
		return map[string]any{
			"duplicatesSkipped":  duplicates,
			"duplicateSamples":   duplicateSamples,
			"rejected":           rejected,
			"previouslyRejected": previouslyRejected,
			"errors":             counters.errors.items,
		}
	}

	var afterID uint64
	for {
		if err := ctx.Err(); err != nil {
			wrapped := errs.Wrap(err, "bronze to silver interrupted")
			s.failRun(logCtx, run, counters, metadata(), wrapped)
			return stageResult(run, counters, metadata()), wrapped
		}

		batch, err := s.repo.ListUnprocessedRawAnomalies(ctx, afterID, bronzeBatchSize)
		if err != nil {
			wrapped := errs.Wrap(err, "list unprocessed bronze anomalies")
			s.failRun(logCtx, run, counters, metadata(), wrapped)
			return stageResult(run, counters, metadata()), wrapped
		}
		if len(batch) == 0 {
			break
		}

		for _, raw := range batch {
			afterID = raw.ID
			counters.processed++
			rowCtx := logging.WithAttrs(logCtx, slog.Uint64("raw_anomaly_id", raw.ID))

			cleaned, err := anomaly.Cleanse(ResolveRawFields(raw, s.opts.Positions))
			if err != nil {
				rejected++
				reason := errs.Brief(err, maxErrorLength)
				if s.rejectedBefore(rowCtx, raw.ID, reason) {
					previouslyRejected++
					logging.Debug(rowCtx, "bronze row still rejected", slog.String("reason", reason))
					continue
				}
				logging.Warn(rowCtx, "bronze row rejected", slog.Any("err", errs.Loggable(err)))
				counters.fail("raw %d: %s", raw.ID, reason)
				s.rememberRejection(rowCtx, raw.ID, reason)
				continue
			}

			outcome, err := s.storeClean(ctx, raw, cleaned)
			if err != nil {
				logging.Error(rowCtx, "store silver anomaly failed", slog.Any("err", errs.Loggable(err)))
				counters.fail("raw %d: %s", raw.ID, errs.Brief(err, maxErrorLength))
				continue
			}

			counters.succeeded++
			if outcome == outcomeDuplicate {
				duplicates++
				if len(duplicateSamples) < duplicateSampleLimit {
					duplicateSamples = append(duplicateSamples, raw.ID)
				}
				logging.Info(rowCtx, "bronze row is a duplicate")
			}
		}
	}

	run, err = s.finishRun(logCtx, run, counters, metadata())
	return stageResult(run, counters, metadata()), err
}

func rejectionKey(rawID uint64) string {
	return fmt.Sprintf("bronze:rejected:%d", rawID)
}

// rejectedBefore reports whether an earlier run already rejected the row for
// the same reason. Such rows are counted once as failures, not on every run.
func (s *Service) rejectedBefore(ctx context.Context, rawID uint64, reason string) bool {
	if s.cache == nil {
		return false
	}
	previous, found, err := s.cache.Get(ctx, rejectionKey(rawID))
	if err != nil {
		logging.Debug(ctx, "read rejection marker failed", slog.Any("err", errs.Loggable(err)))
		return false
	}
	return found && previous == reason
}

func (s *Service) rememberRejection(ctx context.Context, rawID uint64, reason string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, rejectionKey(rawID), reason, 0); err != nil {
		logging.Warn(ctx, "store rejection marker failed", slog.Any("err", errs.Loggable(err)))
	}
}

// storeClean inserts the Silver record and flips the Bronze flag in one
// transaction. A record with the same dedup key only flips the flag.
func (s *Service) storeClean(ctx context.Context, raw ports.RawAnomaly, cleaned anomaly.Cleaned) (cleanseOutcome, error) {
	clean := ports.CleanAnomaly{
		EquipmentCode:        cleaned.EquipmentCode,
		System:               cleaned.System,
		Description:          cleaned.Description,
		DetectedAt:           cleaned.DetectedAt,
		EquipmentDescription: cleaned.EquipmentDescription,
		Section:              cleaned.Section,
		Reliability:          cleaned.Reliability,
		Availability:         cleaned.Availability,
		ProcessSafety:        cleaned.ProcessSafety,
		Criticality:          cleaned.Criticality,
		QualityScore:         cleaned.QualityScore,
		ValidationErrors:     cleaned.ValidationErrors,
		NormalizedFields:     cleaned.NormalizedFields,
		RawAnomalyID:         raw.ID,
	}

	outcome := outcomeStored
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		_, found, err := s.repo.FindCleanAnomalyByKey(txCtx, clean.Key())
		if err != nil {
			return err
		}
		if found {
			outcome = outcomeDuplicate
		} else if _, err := s.repo.CreateCleanAnomaly(txCtx, clean); err != nil {
			return err
		}
		return s.repo.MarkRawAnomalyProcessed(txCtx, raw.ID, s.now())
	})
	if err != nil {
		return outcomeStored, err
	}
	return outcome, nil
}

// ResolveRawFields picks the effective value of each field: the named
// Bronze column first, then the mapping stored with the original row, then
// the fixed positional index when the mapped cell is missing or null.
func ResolveRawFields(raw ports.RawAnomaly, positions columns.Positions) anomaly.RawFields {
	resolve := func(field columns.Field, named *string) *string {
		if named != nil {
			if cleaned := columns.Clean(*named); cleaned != nil {
				return cleaned
			}
		}
		values := raw.OriginalRow.Values
		if len(values) == 0 {
			return nil
		}
		if idx, ok := raw.OriginalRow.Mapping[string(field)]; ok && idx >= 0 && idx < len(values) {
			if cleaned := columns.Clean(values[idx]); cleaned != nil {
				return cleaned
			}
		}
		return positions.Lookup(values, field)
	}

	return anomaly.RawFields{
		EquipmentCode:        resolve(columns.FieldEquipmentCode, raw.EquipmentCode),
		System:               resolve(columns.FieldSystem, raw.System),
		Description:          resolve(columns.FieldDescription, raw.Description),
		DetectedAt:           resolve(columns.FieldDetectedAt, raw.DetectedAt),
		EquipmentDescription: resolve(columns.FieldEquipmentDescription, raw.EquipmentDescription),
		Section:              resolve(columns.FieldSection, raw.Section),
		Reliability:          resolve(columns.FieldReliability, raw.Reliability),
		Availability:         resolve(columns.FieldAvailability, raw.Availability),
		ProcessSafety:        resolve(columns.FieldProcessSafety, raw.ProcessSafety),
		Criticality:          resolve(columns.FieldCriticality, raw.Criticality),
	}
}
