package pipeline

import (
	"math"

	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/domain/anomaly"
	"github.com/zouhairDe/TAQAGroup-AI-sub000/internal/ports"
)

// PredictedFields are the anomaly fields derived from one prediction.
type PredictedFields struct {
	Reliability            int
	Availability           int
	ProcessSafety          int
	Band                   anomaly.Band
	DurationToResolveHours int
	RiskLevel              string
	WeakestAspect          string
	RecommendedAction      string
	CriticalFactors        []string
	Recommendations        []string
}

// MapPrediction rounds the three factor scores, classifies their sum with
// rule and draws a presentation-only duration to resolve.
func MapPrediction(result ports.PredictionResult, rnd anomaly.Random, rule anomaly.BandRule) PredictedFields {
	reliability := int(math.Round(result.Predictions.Reliability.Score))
	availability := int(math.Round(result.Predictions.Availability.Score))
	processSafety := int(math.Round(result.Predictions.ProcessSafety.Score))

	return PredictedFields{
		Reliability:            reliability,
		Availability:           availability,
		ProcessSafety:          processSafety,
		Band:                   anomaly.ClassifyWith(rule, reliability+availability+processSafety),
		DurationToResolveHours: anomaly.ResolutionHours(rnd),
		RiskLevel:              result.RiskAssessment.OverallRiskLevel,
		WeakestAspect:          result.RiskAssessment.WeakestAspect,
		RecommendedAction:      result.RiskAssessment.RecommendedAction,
		CriticalFactors:        result.RiskAssessment.CriticalFactors,
		Recommendations:        result.MaintenanceRecommendations,
	}
}
