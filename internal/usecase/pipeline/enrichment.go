package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/bootstrap/logging"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/errs"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

const predictionCachePrefix = "prediction:clean:"

type enrichStats struct {
	requested int
	predicted int
	cached    int
	failed    int
}

func (e *enrichStats) add(other enrichStats) {
	e.requested += other.requested
	e.predicted += other.predicted
	e.cached += other.cached
	e.failed += other.failed
}

func needsPrediction(clean ports.CleanAnomaly) bool {
	return clean.Reliability == nil || clean.Availability == nil || clean.ProcessSafety == nil
}

func predictionCacheKey(cleanID uint64) string {
	return predictionCachePrefix + strconv.FormatUint(cleanID, 10)
}

// enrich scores the page records that miss a factor, one call per page.
// Cached predictions are reused; a failed batch leaves the records without
// prediction so that placeholders apply.
func (s *Service) enrich(ctx context.Context, page []ports.CleanAnomaly) (map[uint64]ports.PredictionResult, enrichStats) {
	predictions := make(map[uint64]ports.PredictionResult)
	var stats enrichStats
	if s.predictor == nil {
		return predictions, stats
	}

	requests := make([]ports.PredictionRequest, 0, len(page))
	for _, clean := range page {
		if !needsPrediction(clean) {
			continue
		}
		if cached, ok := s.cachedPrediction(ctx, clean.ID); ok {
			predictions[clean.ID] = cached
			stats.cached++
			continue
		}
		requests = append(requests, ports.PredictionRequest{
			AnomalyID:     strconv.FormatUint(clean.ID, 10),
			Description:   clean.Description,
			EquipmentName: clean.EquipmentDescription,
			EquipmentID:   clean.EquipmentCode,
		})
	}
	if len(requests) == 0 {
		return predictions, stats
	}

	stats.requested = len(requests)
	batch := s.predictor.Predict(ctx, requests)
	if batch.Status == ports.PredictionStatusFailed && len(batch.Results) == 0 {
		stats.failed = len(requests)
		return predictions, stats
	}

	for _, result := range batch.Results {
		if result.Status == ports.PredictionStatusFailed {
			continue
		}
		id, err := strconv.ParseUint(result.AnomalyID, 10, 64)
		if err != nil {
			continue
		}
		predictions[id] = result
		stats.predicted++
		s.cachePrediction(ctx, id, result)
	}
	stats.failed = len(requests) - stats.predicted
	return predictions, stats
}

func (s *Service) cachedPrediction(ctx context.Context, cleanID uint64) (ports.PredictionResult, bool) {
	if s.cache == nil {
		return ports.PredictionResult{}, false
	}
	raw, found, err := s.cache.Get(ctx, predictionCacheKey(cleanID))
	if err != nil || !found {
		return ports.PredictionResult{}, false
	}
	var result ports.PredictionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return ports.PredictionResult{}, false
	}
	return result, true
}

// cachePrediction is best effort; a cache failure only costs a re-score.
func (s *Service) cachePrediction(ctx context.Context, cleanID uint64, result ports.PredictionResult) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, predictionCacheKey(cleanID), string(raw), s.opts.PredictionCacheTTL); err != nil {
		logging.Warn(ctx, "cache prediction failed",
			slog.Uint64("clean_anomaly_id", cleanID),
			slog.Any("err", errs.Loggable(err)),
		)
	}
}
